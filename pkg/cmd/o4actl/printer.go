// Copyright (c) 2024 The ocr4all-ajax Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package o4actl

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	okColor   = color.New(color.FgHiGreen)
	failColor = color.New(color.FgRed)
)

type printer struct {
	out io.Writer
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out}
}

func (p *printer) Printf(format string, a ...interface{}) {
	fmt.Fprintf(p.out, format, a...)
}

func (p *printer) OK(format string, a ...interface{}) {
	okColor.Fprint(p.out, "✔ ")
	fmt.Fprintf(p.out, format+"\n", a...)
}

func (p *printer) Fail(format string, a ...interface{}) {
	failColor.Fprint(p.out, "✘ ")
	fmt.Fprintf(p.out, format+"\n", a...)
}
