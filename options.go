// Copyright 2025 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tcpp implements a small, embeddable preprocessor modeled on the
// classical C preprocessor: object- and function-like macros, conditional
// compilation, file inclusion, stringize and token concatenation, line
// continuation, and a constant-expression evaluator for #if/#elif.
//
// The package keeps no global state: every Expander owns its own macro
// table and conditional stack, and reads from streams supplied by the
// host.
package tcpp

import (
	"github.com/bnoazx005/tcpp/internal/lexer"
	"github.com/bnoazx005/tcpp/internal/macro"
	"github.com/bnoazx005/tcpp/internal/token"
)

// Stream is the capability the host installs to feed source lines to the
// engine. See lexer.Stream for the concrete contract; this alias lets
// callers depend only on the root package.
type Stream = lexer.Stream

// NewStringStream builds a Stream over an in-memory string.
func NewStringStream(src string) *lexer.StringStream {
	return lexer.NewStringStream(src)
}

// IncludeResolver resolves a #include directive to a new Stream. path is
// the raw text between the delimiters; isSystem is true for `<path>`
// inclusion and false for `"path"`. Returning nil silently fails the
// inclusion.
type IncludeResolver func(path string, isSystem bool) Stream

// CustomDirectiveHandler is invoked when a directive registered via
// AddCustomDirective is encountered. It receives the owning Expander, the
// output produced so far, and returns text to splice into the output.
type CustomDirectiveHandler func(e *Expander, currentOutput string) string

// Define is a user-supplied macro, usable as an Options.UserDefines entry.
// A nil Params marks an object-like macro; a non-nil (possibly empty)
// Params marks a function-like one.
type Define struct {
	Name   string
	Params []string
	Body   string
}

// Options configures an Expander.
type Options struct {
	// SkipComments, if true, replaces each commentary token with a single
	// space in the output instead of passing its raw text through.
	SkipComments bool
	// UserDefines seeds the symbol table before processing begins.
	UserDefines []Define
	// ErrorSink receives every error the Expander detects. A nil sink
	// discards errors.
	ErrorSink ErrorSink
	// IncludeResolver resolves #include directives. A nil resolver fails
	// every inclusion silently.
	IncludeResolver IncludeResolver
}

func (o Options) seedTable() (*macro.Table, error) {
	tbl := macro.NewTable()
	tbl.Define(macro.Descriptor{Name: "__LINE__"})
	for _, d := range o.UserDefines {
		body := suppressSelfReference(d.Name, tokenizeDefineBody(d.Body))
		if !tbl.Define(macro.Descriptor{Name: d.Name, Params: d.Params, Body: body}) {
			return tbl, errAlreadyDefined(d.Name)
		}
	}
	return tbl, nil
}

type defineConflict struct{ name string }

func (e defineConflict) Error() string { return "macro already defined: " + e.name }

func errAlreadyDefined(name string) error { return defineConflict{name: name} }

// tokenizeDefineBody scans a plain-text macro body supplied through
// Options.UserDefines into a raw token sequence, mirroring what #define
// would have captured from source text.
func tokenizeDefineBody(src string) []token.Token {
	if src == "" {
		return []token.Token{token.New(token.Number, "1", token.Position{Line: 1, Column: 1})}
	}
	sc := lexer.NewScanner(lexer.NewStringStream(src))
	var out []token.Token
	for {
		tok := sc.NextToken()
		if tok.Kind == token.End {
			break
		}
		out = append(out, tok)
	}
	return out
}
