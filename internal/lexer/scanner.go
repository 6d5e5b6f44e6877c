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

// Package lexer implements the token scanner: a pull-based source of
// tokens backed by a stack of line-producing Streams, with a lookahead
// queue that also absorbs tokens pushed back by the expander during macro
// replacement.
package lexer

import (
	"strings"

	"github.com/bnoazx005/tcpp/internal/token"
)

// Scanner produces tokens on demand from the active stream. It owns a
// lookahead/pushback queue and recognizes directives, operators,
// identifiers, numbers, string separators and commentary.
type Scanner struct {
	streams   []Stream
	buf       string
	line, col int

	lookahead []token.Token
	lastPos   token.Position

	customDirectives map[string]bool
}

// NewScanner creates a Scanner reading from root. root is owned by the
// Scanner from this point on.
func NewScanner(root Stream) *Scanner {
	return &Scanner{
		streams:          []Stream{root},
		line:             1,
		col:              1,
		customDirectives: map[string]bool{},
	}
}

// NextToken returns the next token from the active stream, or token.EOF
// when every stream is exhausted.
func (s *Scanner) NextToken() token.Token {
	var t token.Token
	if len(s.lookahead) > 0 {
		t = s.lookahead[0]
		s.lookahead = s.lookahead[1:]
	} else {
		t = s.scanNext()
	}
	if t.Kind != token.End {
		s.lastPos = t.Pos
	}
	return t
}

// PeekToken returns the token offset positions ahead without consuming it.
// offset = 0 peeks the immediately next token. Peeked tokens are buffered
// so a subsequent NextToken yields them in order.
func (s *Scanner) PeekToken(offset int) token.Token {
	for len(s.lookahead) <= offset {
		next := s.scanNext()
		s.lookahead = append(s.lookahead, next)
		if next.Kind == token.End {
			break
		}
	}
	if offset < len(s.lookahead) {
		return s.lookahead[offset]
	}
	return token.EOF
}

// PushTokensFront inserts tokens at the head of the lookahead queue. Used
// by the expander to feed macro replacements back through the pipeline.
func (s *Scanner) PushTokensFront(tokens []token.Token) {
	if len(tokens) == 0 {
		return
	}
	merged := make([]token.Token, 0, len(tokens)+len(s.lookahead))
	merged = append(merged, tokens...)
	merged = append(merged, s.lookahead...)
	s.lookahead = merged
}

// PushStream pushes a new stream onto the input-stream stack, taking
// ownership of it. The new stream becomes the active source.
func (s *Scanner) PushStream(st Stream) {
	s.streams = append(s.streams, st)
}

// PopStream pops the active stream. Any buffered but unconsumed text from
// that stream is discarded.
func (s *Scanner) PopStream() {
	if len(s.streams) == 0 {
		return
	}
	s.streams = s.streams[:len(s.streams)-1]
	s.buf = ""
}

// AddCustomDirective registers a caller-defined directive name. When
// "#name" is seen, the scanner emits token.CustomDirective with name as
// raw text.
func (s *Scanner) AddCustomDirective(name string) {
	s.customDirectives[name] = true
}

// CurrentLine and CurrentColumn report the position of the most recently
// produced (NextToken'd) token, for diagnostics.
func (s *Scanner) CurrentLine() int   { return s.lastPos.Line }
func (s *Scanner) CurrentColumn() int { return s.lastPos.Column }

// fillLine refills buf from the top of the stream stack, joining
// backslash-newline continuations greedily. Returns false once every
// stream is exhausted.
func (s *Scanner) fillLine() bool {
	for s.buf == "" {
		if len(s.streams) == 0 {
			return false
		}
		top := s.streams[len(s.streams)-1]
		if !top.HasNextLine() {
			s.streams = s.streams[:len(s.streams)-1]
			continue
		}
		raw := top.ReadLine()
		for continuationPending(raw) && top.HasNextLine() {
			next := top.ReadLine()
			raw = joinContinuation(raw, next)
			s.line++
		}
		s.buf = raw
	}
	return true
}

// consume advances buf by n bytes, tracking line/column as it crosses
// embedded newlines (only possible inside multi-line comments, since
// continuation joins already strip their newline).
func (s *Scanner) consume(n int) {
	for i := 0; i < n; i++ {
		if s.buf[i] == '\n' {
			s.line++
			s.col = 1
		} else {
			s.col++
		}
	}
	s.buf = s.buf[n:]
}

// continuationPending reports whether raw ends (ignoring its trailing
// newline) with an odd run of backslashes: the trailing backslash signals
// a line continuation, not an escaped backslash.
func continuationPending(raw string) bool {
	body := strings.TrimSuffix(raw, "\n")
	body = strings.TrimSuffix(body, "\r")
	if body == "" {
		return false
	}
	n := 0
	for i := len(body) - 1; i >= 0 && body[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// joinContinuation drops raw's trailing continuation backslash (and its
// newline) and appends next in its place.
func joinContinuation(raw, next string) string {
	body := strings.TrimSuffix(raw, "\n")
	body = strings.TrimSuffix(body, "\r")
	body = body[:len(body)-1]
	return body + next
}

func isWhitespaceByte(c byte) bool {
	switch c {
	case '\t', '\v', '\f', '\r', ' ':
		return true
	}
	return false
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// scanNext produces exactly one token, bypassing the lookahead queue. It
// implements the priority order described by the engine's scanning
// contract: comments, then newline, then whitespace, then '#', then
// numbers, identifiers, operators, punctuation, and finally blobs.
func (s *Scanner) scanNext() token.Token {
	if !s.fillLine() {
		return token.EOF
	}

	pos := token.Position{Line: s.line, Column: s.col}
	c := s.buf[0]

	switch {
	case strings.HasPrefix(s.buf, "//"):
		return s.scanSingleLineComment(pos)
	case strings.HasPrefix(s.buf, "/*"):
		return s.scanMultiLineComment(pos)
	case strings.HasPrefix(s.buf, "\r\n"):
		s.consume(2)
		return token.New(token.Newline, "\r\n", pos)
	case c == '\n':
		s.consume(1)
		return token.New(token.Newline, "\n", pos)
	case isWhitespaceByte(c):
		s.consume(1)
		return token.New(token.Space, string(c), pos)
	case c == '#':
		return s.scanHash(pos)
	case c >= '0' && c <= '9':
		return s.scanNumber(pos)
	case c == '_' || isLetter(c):
		return s.scanIdentifier(pos)
	case c == '<' || c == '>' || c == '!' || c == '&' || c == '|':
		return s.scanMaybeTwoCharOperator(pos, c)
	case c == '=':
		if strings.HasPrefix(s.buf, "==") {
			s.consume(2)
			return token.New(token.Equal, "==", pos)
		}
		s.consume(1)
		return token.New(token.Blob, "=", pos)
	default:
		if kind, ok := oneCharTokens[c]; ok {
			s.consume(1)
			return token.New(kind, string(c), pos)
		}
		return s.scanBlob(pos)
	}
}

func (s *Scanner) scanMaybeTwoCharOperator(pos token.Position, c byte) token.Token {
	if len(s.buf) >= 2 {
		if kind, ok := twoCharOperators[s.buf[:2]]; ok {
			text := s.buf[:2]
			s.consume(2)
			return token.New(kind, text, pos)
		}
	}
	kind := oneCharTokens[c]
	s.consume(1)
	return token.New(kind, string(c), pos)
}

// scanHash implements the directive/concat/stringize dispatch right after
// a leading '#', per the engine's step-5 rule.
func (s *Scanner) scanHash(pos token.Position) token.Token {
	j := 1
	for j < len(s.buf) && isWhitespaceByte(s.buf[j]) {
		j++
	}

	var name string
	if j < len(s.buf) && (s.buf[j] == '_' || isLetter(s.buf[j])) {
		name = identifierRegex.FindString(s.buf[j:])
	}

	if name != "" {
		if kind, ok := directiveKinds[name]; ok {
			s.consume(j + len(name))
			return token.New(kind, name, pos)
		}
		if s.customDirectives[name] {
			s.consume(j + len(name))
			return token.New(token.CustomDirective, name, pos)
		}
	}

	if len(s.buf) > 1 && s.buf[1] == '#' {
		s.consume(2)
		return token.New(token.Concat, "##", pos)
	}
	if len(s.buf) > 1 && !isWhitespaceByte(s.buf[1]) {
		s.consume(1)
		return token.New(token.Stringize, "#", pos)
	}
	s.consume(1)
	return token.New(token.Blob, "#", pos)
}

// scanNumber recognizes a hex-prefixed or decimal run of digits. Fractional
// parts are never fused with the integer part that precedes them.
func (s *Scanner) scanNumber(pos token.Position) token.Token {
	if strings.HasPrefix(s.buf, "0x") || strings.HasPrefix(s.buf, "0X") {
		if m := hexNumberRegex.FindString(s.buf); m != "" {
			s.consume(len(m))
			return token.New(token.Number, m, pos)
		}
	}
	m := decNumberRegex.FindString(s.buf)
	s.consume(len(m))
	return token.New(token.Number, m, pos)
}

// scanIdentifier recognizes a run of letters/digits/underscore starting
// with a letter or underscore, classifying it as the "defined" keyword, a
// C keyword, or a plain identifier.
func (s *Scanner) scanIdentifier(pos token.Position) token.Token {
	m := identifierRegex.FindString(s.buf)
	s.consume(len(m))
	if m == "defined" {
		return token.New(token.Defined, m, pos)
	}
	if _, ok := keywords[m]; ok {
		return token.New(token.Keyword, m, pos)
	}
	return token.New(token.Identifier, m, pos)
}

// scanBlob accumulates unrecognized characters up to the next structural
// boundary.
func (s *Scanner) scanBlob(pos token.Position) token.Token {
	i := 1
	for i < len(s.buf) && !structuralBoundary(s.buf[i]) {
		i++
	}
	text := s.buf[:i]
	s.consume(i)
	return token.New(token.Blob, text, pos)
}

// scanSingleLineComment consumes up to (but not including) the terminating
// newline, which is left for the next token.
func (s *Scanner) scanSingleLineComment(pos token.Position) token.Token {
	text := s.buf
	if nl := strings.IndexByte(s.buf, '\n'); nl >= 0 {
		text = s.buf[:nl]
	}
	s.consume(len(text))
	return token.New(token.Commentary, text, pos)
}

// scanMultiLineComment consumes a /* ... */ block, nesting lexically: an
// inner "/*" opens a further level, closed by the next "*/". It may span
// any number of physical lines. An unterminated comment at true EOF is
// tolerated and closes silently.
func (s *Scanner) scanMultiLineComment(pos token.Position) token.Token {
	var text strings.Builder
	depth := 0
	for {
		for len(s.buf) >= 2 {
			switch {
			case s.buf[0] == '/' && s.buf[1] == '*':
				depth++
				text.WriteString("/*")
				s.consume(2)
			case s.buf[0] == '*' && s.buf[1] == '/':
				depth--
				text.WriteString("*/")
				s.consume(2)
				if depth == 0 {
					return token.New(token.Commentary, text.String(), pos)
				}
			default:
				text.WriteByte(s.buf[0])
				s.consume(1)
			}
		}
		if len(s.buf) == 1 {
			text.WriteByte(s.buf[0])
			s.consume(1)
		}
		if !s.fillLine() {
			return token.New(token.Commentary, text.String(), pos)
		}
	}
}
