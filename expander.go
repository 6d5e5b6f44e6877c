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

package tcpp

import (
	"strconv"
	"strings"

	"github.com/bnoazx005/tcpp/internal/collections"
	"github.com/bnoazx005/tcpp/internal/expr"
	"github.com/bnoazx005/tcpp/internal/lexer"
	"github.com/bnoazx005/tcpp/internal/macro"
	"github.com/bnoazx005/tcpp/internal/token"
)

// Expander is the preprocessing engine: it drives a Scanner to completion,
// maintaining the macro table and the conditional-block stack, and emits
// the expanded output text. Use of the class is the same as a one-shot
// iterator: create it, call Process once.
type Expander struct {
	scanner      *lexer.Scanner
	macros       *macro.Table
	conditionals conditionalStack
	context      collections.Set[string]

	opts            Options
	errorSink       ErrorSink
	includeResolver IncludeResolver
	customHandlers  map[string]CustomDirectiveHandler

	output []byte
}

// NewExpander creates an Expander reading from root. root is owned by the
// Expander from this point on. Returns an error if Options.UserDefines
// contains a duplicate name.
func NewExpander(root Stream, opts Options) (*Expander, error) {
	macros, err := opts.seedTable()
	if err != nil {
		return nil, err
	}
	return &Expander{
		scanner:         lexer.NewScanner(root),
		macros:          macros,
		context:         collections.Set[string]{},
		opts:            opts,
		errorSink:       opts.ErrorSink,
		includeResolver: opts.IncludeResolver,
		customHandlers:  map[string]CustomDirectiveHandler{},
	}, nil
}

// AddCustomDirective registers a host-provided directive handler. Returns
// false if the directive was already registered.
func (e *Expander) AddCustomDirective(name string, handler CustomDirectiveHandler) bool {
	if _, exists := e.customHandlers[name]; exists {
		return false
	}
	e.scanner.AddCustomDirective(name)
	e.customHandlers[name] = handler
	return true
}

// SymbolTable returns a read-only snapshot of the currently defined
// macros.
func (e *Expander) SymbolTable() map[string]macro.Descriptor {
	return e.macros.Snapshot()
}

func (e *Expander) reportError(kind ErrorKind, line int) {
	if e.errorSink != nil {
		e.errorSink(ErrorRecord{Kind: kind, Line: line})
	}
}

func (e *Expander) next() token.Token { return e.scanner.NextToken() }

func (e *Expander) nextSkipSpace() token.Token {
	for {
		tok := e.next()
		if tok.Kind != token.Space {
			return tok
		}
	}
}

func (e *Expander) skipToNewline() {
	for {
		tok := e.next()
		if tok.Kind == token.Newline || tok.Kind == token.End {
			return
		}
	}
}

func (e *Expander) collectLineTokens() []token.Token {
	var toks []token.Token
	for {
		tok := e.next()
		if tok.Kind == token.Newline || tok.Kind == token.End {
			return toks
		}
		toks = append(toks, tok)
	}
}

// expect reports UnexpectedToken when actual does not match expected. It
// never aborts processing: the engine is best-effort by design.
func (e *Expander) expect(expected token.Kind, actual token.Token) {
	if actual.Kind != expected {
		e.reportError(UnexpectedToken, actual.Pos.Line)
	}
}

func (e *Expander) appendString(s string) {
	if e.conditionals.shouldSkipOutput() {
		return
	}
	e.output = append(e.output, s...)
}

func (e *Expander) trimTrailingSpace() {
	if n := len(e.output); n > 0 && e.output[n-1] == ' ' {
		e.output = e.output[:n-1]
	}
}

// Process drives the scanner to completion, returning the concatenated
// expanded text. Call it at most once per Expander.
func (e *Expander) Process() string {
	for {
		tok := e.next()
		if tok.Kind == token.End {
			break
		}

		switch tok.Kind {
		case token.Define:
			e.handleDefine()
		case token.Undef:
			e.handleUndef()
		case token.If:
			e.handleIf()
		case token.Ifdef:
			e.handleIfdefLike(false)
		case token.Ifndef:
			e.handleIfdefLike(true)
		case token.Elif:
			e.handleElif(tok.Pos.Line)
		case token.Else:
			e.handleElse(tok.Pos.Line)
		case token.Endif:
			e.handleEndif(tok.Pos.Line)
		case token.Include:
			e.handleInclude(tok.Pos.Line)
		case token.Identifier:
			e.handleIdentifier(tok)
		case token.RejectMacro:
			e.context.Remove(tok.Text)
		case token.Concat:
			e.handleConcat()
		case token.Stringize:
			e.handleStringize(tok)
		case token.CustomDirective:
			e.handleCustomDirective(tok)
		case token.Commentary:
			if e.opts.SkipComments {
				e.appendString(" ")
			} else {
				e.appendString(tok.Text)
			}
		default:
			e.appendString(tok.Text)
		}
	}
	return string(e.output)
}

// --- #define / #undef -----------------------------------------------

func (e *Expander) handleDefine() {
	tok := e.next()
	e.expect(token.Space, tok)

	tok = e.next()
	e.expect(token.Identifier, tok)
	name := tok.Text
	line := tok.Pos.Line

	var params []string
	var body []token.Token

	tok = e.next()
	switch tok.Kind {
	case token.Space:
		body = e.extractDefineBody()
	case token.Newline:
		body = []token.Token{token.New(token.Number, "1", tok.Pos)}
	case token.ParenOpen:
		params = e.parseParamList()
		body = e.extractDefineBody()
	default:
		e.reportError(InvalidMacroDefinition, line)
		return
	}

	body = suppressSelfReference(name, body)

	if e.conditionals.shouldSkipOutput() {
		return
	}
	if !e.macros.Define(macro.Descriptor{Name: name, Params: params, Body: body}) {
		e.reportError(MacroAlreadyDefined, line)
	}
}

// parseParamList consumes a function-like macro's parameter list right
// after its opening '(', which has already been consumed.
func (e *Expander) parseParamList() []string {
	params := []string{}
	tok := e.nextSkipSpace()
	if tok.Kind == token.ParenClose {
		return params
	}
	for {
		e.expect(token.Identifier, tok)
		params = append(params, tok.Text)
		tok = e.nextSkipSpace()
		if tok.Kind == token.ParenClose {
			return params
		}
		e.expect(token.Comma, tok)
		tok = e.nextSkipSpace()
	}
}

// extractDefineBody captures a macro's replacement token sequence, up to
// (not including) the terminating newline. Leading whitespace is skipped;
// an empty result defaults to the literal body number("1").
func (e *Expander) extractDefineBody() []token.Token {
	tok := e.nextSkipSpace()
	var body []token.Token
	for tok.Kind != token.Newline && tok.Kind != token.End {
		body = append(body, tok)
		tok = e.next()
	}
	if len(body) == 0 {
		body = []token.Token{token.New(token.Number, "1", tok.Pos)}
	}
	return body
}

// suppressSelfReference downgrades any body identifier matching name to a
// blob, so the macro cannot recursively expand itself from within its own
// definition, on top of the reject-sentinel context suppression applied at
// expansion time.
func suppressSelfReference(name string, body []token.Token) []token.Token {
	out := make([]token.Token, len(body))
	for i, t := range body {
		if t.Kind == token.Identifier && t.Text == name {
			t.Kind = token.Blob
		}
		out[i] = t
	}
	return out
}

func (e *Expander) handleUndef() {
	tok := e.nextSkipSpace()
	e.expect(token.Identifier, tok)
	line := tok.Pos.Line
	e.skipToNewline()

	if e.conditionals.shouldSkipOutput() {
		return
	}
	if tok.Kind == token.Identifier && !e.macros.Undef(tok.Text) {
		e.reportError(UndefinedMacro, line)
	}
}

// --- conditional compilation -------------------------------------------

func (e *Expander) handleIf() {
	tok := e.next()
	e.expect(token.Space, tok)
	exprTokens := e.collectLineTokens()
	result := expr.New(exprTokens, e.macros).Eval()
	e.conditionals.push(result == 0)
}

func (e *Expander) handleIfdefLike(isIfndef bool) {
	tok := e.next()
	e.expect(token.Space, tok)
	tok = e.next()
	e.expect(token.Identifier, tok)
	name := tok.Text
	e.skipToNewline()

	defined := e.macros.Defined(name)
	shouldSkip := !defined
	if isIfndef {
		shouldSkip = defined
	}
	e.conditionals.push(shouldSkip)
}

func (e *Expander) handleElif(line int) {
	tok := e.next()
	e.expect(token.Space, tok)
	exprTokens := e.collectLineTokens()
	result := expr.New(exprTokens, e.macros).Eval()
	if !e.conditionals.elif(result != 0) {
		e.reportError(ElifBlockAfterElseFound, line)
	}
}

func (e *Expander) handleElse(line int) {
	e.skipToNewline()
	if !e.conditionals.else_() {
		e.reportError(AnotherElseBlockFound, line)
	}
}

func (e *Expander) handleEndif(line int) {
	e.skipToNewline()
	if !e.conditionals.pop() {
		e.reportError(UnbalancedEndif, line)
	}
}

// --- #include ------------------------------------------------------------

func (e *Expander) handleInclude(line int) {
	if e.conditionals.shouldSkipOutput() {
		e.skipToNewline()
		return
	}

	tok := e.nextSkipSpace()
	if tok.Kind != token.AngleOpen && tok.Kind != token.Quote {
		e.skipToNewline()
		e.reportError(InvalidIncludeDirective, line)
		return
	}
	isSystem := tok.Kind == token.AngleOpen
	closeKind := token.Quote
	if isSystem {
		closeKind = token.AngleClose
	}

	var path strings.Builder
	for {
		tok = e.next()
		if tok.Kind == closeKind {
			break
		}
		if tok.Kind == token.Newline || tok.Kind == token.End {
			e.reportError(UnexpectedEndOfIncludePath, line)
			break
		}
		path.WriteString(tok.Text)
	}
	e.skipToNewline()

	if e.includeResolver == nil {
		return
	}
	if stream := e.includeResolver(path.String(), isSystem); stream != nil {
		e.scanner.PushStream(stream)
	}
}

// --- identifier expansion -------------------------------------------------

func (e *Expander) handleIdentifier(tok token.Token) {
	if e.context.Contains(tok.Text) {
		e.appendString(tok.Text)
		return
	}

	desc, ok := e.macros.Lookup(tok.Text)
	if !ok {
		e.appendString(tok.Text)
		return
	}

	if !desc.IsFunctionLike() {
		if e.nextSignificantIsConcat() {
			e.appendString(tok.Text)
			return
		}
		body := desc.Body
		if tok.Text == "__LINE__" {
			body = []token.Token{token.New(token.Blob, strconv.Itoa(tok.Pos.Line), tok.Pos)}
		}
		e.pushExpansion(tok.Text, append([]token.Token{}, body...))
		return
	}

	if !e.nextSignificantIsParen() {
		e.appendString(tok.Text)
		return
	}
	for e.scanner.PeekToken(0).Kind == token.Space {
		e.next()
	}

	args := e.captureMacroArgs()
	if len(args) != len(desc.Params) {
		e.reportError(InconsistentMacroArity, tok.Pos.Line)
	}
	e.pushExpansion(tok.Text, macro.Substitute(desc.Body, desc.Params, args))
}

// pushExpansion marks name as being expanded, and pushes replacement
// followed by a reject_macro sentinel onto the scanner's lookahead queue so
// the context is released once the replacement has been fully consumed.
func (e *Expander) pushExpansion(name string, replacement []token.Token) {
	e.context.Add(name)
	replacement = append(replacement, token.New(token.RejectMacro, name, token.Position{}))
	e.scanner.PushTokensFront(replacement)
}

func (e *Expander) nextSignificantIsParen() bool {
	i := 0
	for {
		t := e.scanner.PeekToken(i)
		if t.Kind != token.Space {
			return t.Kind == token.ParenOpen
		}
		i++
	}
}

func (e *Expander) nextSignificantIsConcat() bool {
	i := 0
	for {
		t := e.scanner.PeekToken(i)
		if t.Kind != token.Space {
			return t.Kind == token.Concat
		}
		i++
	}
}

// captureMacroArgs consumes a parenthesized, comma-separated argument list;
// '(' has already been confirmed present but not yet consumed.
func (e *Expander) captureMacroArgs() [][]token.Token {
	e.next() // '('
	var args [][]token.Token
	var current []token.Token
	depth := 0
	for {
		tok := e.next()
		if tok.Kind == token.End {
			if len(current) > 0 || len(args) > 0 {
				args = append(args, trimSpaceTokens(current))
			}
			return args
		}
		if depth == 0 && tok.Kind == token.ParenClose {
			if len(current) > 0 || len(args) > 0 {
				args = append(args, trimSpaceTokens(current))
			}
			return args
		}
		if depth == 0 && tok.Kind == token.Comma {
			args = append(args, trimSpaceTokens(current))
			current = nil
			continue
		}
		switch tok.Kind {
		case token.ParenOpen, token.BracketOpen:
			depth++
		case token.ParenClose, token.BracketClose:
			depth--
		}
		current = append(current, tok)
	}
}

func trimSpaceTokens(toks []token.Token) []token.Token {
	start := 0
	for start < len(toks) && toks[start].Kind == token.Space {
		start++
	}
	end := len(toks)
	for end > start && toks[end-1].Kind == token.Space {
		end--
	}
	if start == end {
		return nil
	}
	return toks[start:end]
}

// --- macro operators & custom directives ----------------------------------

func (e *Expander) handleConcat() {
	e.trimTrailingSpace()
	tok := e.nextSkipSpace()
	e.appendString(tok.Text)
}

func (e *Expander) handleStringize(op token.Token) {
	if len(e.context) == 0 {
		e.reportError(IncorrectOperationUsage, op.Pos.Line)
	}
	tok := e.next()
	e.appendString(`"` + tok.Text + `"`)
}

func (e *Expander) handleCustomDirective(tok token.Token) {
	handler, ok := e.customHandlers[tok.Text]
	if !ok {
		e.skipToNewline()
		e.reportError(UndefinedDirective, tok.Pos.Line)
		return
	}
	e.appendString(handler(e, string(e.output)))
	e.skipToNewline()
}
