// Copyright 2026 The Decodeengine Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// ----------------

/*
decodefile recognizes and parses a single file's format.

Usage:

decodefile [filename]

If no filename is given, stdin is used. Either way, the recognized format
name and its decoded value (via Go's "%#v" verb) are written to stdout.
There is no pretty-printer: this tool exists to exercise lib/dispatch, not
to render a particular format's contents.

Examples:

  decodefile foo.png
  decodefile < foo.tar
*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/google/decodeengine/lib/dispatch"
	"github.com/google/decodeengine/lib/engine"
)

func usage() {
	// TODO: fmt.Fprintf(os.Stderr, usageStr)
}

func main() {
	if err := main1(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main1() error {
	flag.Usage = usage
	flag.Parse()

	r := io.Reader(os.Stdin)
	switch flag.NArg() {
	case 0:
		// No-op.
	case 1:
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	default:
		return errors.New("too many filenames; the maximum is one")
	}

	input, err := ioutil.ReadAll(r)
	if err != nil {
		return err
	}

	e := engine.New(input)
	v, err := dispatch.Decode(e)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n%#v\n", v.Format, v)
	return nil
}
