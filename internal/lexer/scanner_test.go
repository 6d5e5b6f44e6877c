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

package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnoazx005/tcpp/internal/token"
)

func allTokens(src string) []token.Token {
	sc := NewScanner(NewStringStream(src))
	var out []token.Token
	for {
		tok := sc.NextToken()
		out = append(out, tok)
		if tok.Kind == token.End {
			return out
		}
	}
}

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestScannerIdentifiersAndKeywords(t *testing.T) {
	toks := allTokens("foo int _bar123")
	require.Len(t, toks, 6) // identifier, space, keyword, space, identifier, EOF
	assert.Equal(t, token.Identifier, toks[0].Kind)
	assert.Equal(t, "foo", toks[0].Text)
	assert.Equal(t, token.Keyword, toks[2].Kind)
	assert.Equal(t, token.Identifier, toks[4].Kind)
}

func TestScannerDefinedKeyword(t *testing.T) {
	toks := allTokens("defined")
	assert.Equal(t, token.Defined, toks[0].Kind)
}

func TestScannerNumbersDoNotFuseFractions(t *testing.T) {
	toks := allTokens("1.0001")
	kindsOnly := kinds(toks)
	assert.Equal(t, []token.Kind{token.Number, token.Blob, token.Number, token.End}, kindsOnly)
	assert.Equal(t, "1", toks[0].Text)
	assert.Equal(t, ".", toks[1].Text)
	assert.Equal(t, "0001", toks[2].Text)
}

func TestScannerHexNumber(t *testing.T) {
	toks := allTokens("0x1A3F")
	assert.Equal(t, token.Number, toks[0].Kind)
	assert.Equal(t, "0x1A3F", toks[0].Text)
}

func TestScannerDirectives(t *testing.T) {
	toks := allTokens("#define")
	assert.Equal(t, token.Define, toks[0].Kind)

	toks = allTokens("#  ifdef")
	assert.Equal(t, token.Ifdef, toks[0].Kind)
}

func TestScannerCustomDirective(t *testing.T) {
	sc := NewScanner(NewStringStream("#pragma"))
	sc.AddCustomDirective("pragma")
	tok := sc.NextToken()
	assert.Equal(t, token.CustomDirective, tok.Kind)
	assert.Equal(t, "pragma", tok.Text)
}

func TestScannerStringizeConcatAndBareHash(t *testing.T) {
	toks := allTokens("##")
	assert.Equal(t, token.Concat, toks[0].Kind)

	toks = allTokens("#X")
	assert.Equal(t, token.Stringize, toks[0].Kind)

	toks = allTokens("# X")
	assert.Equal(t, token.Blob, toks[0].Kind)
	assert.Equal(t, "#", toks[0].Text)
}

func TestScannerTwoCharOperators(t *testing.T) {
	toks := allTokens("<<>>&&||==!=<=>=")
	got := kinds(toks[:8])
	assert.Equal(t, []token.Kind{
		token.ShiftLeft, token.ShiftRight, token.LogicalAnd, token.LogicalOr,
		token.Equal, token.NotEqual, token.LessEqual, token.GreaterEqual,
	}, got)
}

func TestScannerBareEqualsIsBlob(t *testing.T) {
	toks := allTokens("=")
	assert.Equal(t, token.Blob, toks[0].Kind)
	assert.Equal(t, "=", toks[0].Text)
}

func TestScannerSingleLineComment(t *testing.T) {
	toks := allTokens("// hello\nfoo")
	assert.Equal(t, token.Commentary, toks[0].Kind)
	assert.Equal(t, "// hello", toks[0].Text)
	assert.Equal(t, token.Newline, toks[1].Kind)
	assert.Equal(t, token.Identifier, toks[2].Kind)
}

func TestScannerMultiLineCommentSpansLines(t *testing.T) {
	toks := allTokens("/* a\nb */x")
	assert.Equal(t, token.Commentary, toks[0].Kind)
	assert.Equal(t, "/* a\nb */", toks[0].Text)
	assert.Equal(t, token.Identifier, toks[1].Kind)
}

func TestScannerMultiLineCommentNests(t *testing.T) {
	toks := allTokens("/* a /* b */ c */x")
	assert.Equal(t, token.Commentary, toks[0].Kind)
	assert.Equal(t, token.Identifier, toks[1].Kind)
}

func TestScannerUnterminatedCommentToleratedAtEOF(t *testing.T) {
	toks := allTokens("/* never closes")
	assert.Equal(t, token.Commentary, toks[0].Kind)
	assert.Equal(t, token.End, toks[1].Kind)
}

func TestScannerLineContinuation(t *testing.T) {
	toks := allTokens("foo\\\nbar")
	assert.Equal(t, []token.Kind{token.Identifier, token.End}, kinds(toks))
	assert.Equal(t, "foobar", toks[0].Text)
	assert.Equal(t, token.End, toks[1].Kind)
}

func TestScannerLineTracking(t *testing.T) {
	sc := NewScanner(NewStringStream("a\nb\nc"))
	for i := 0; i < 5; i++ {
		sc.NextToken() // a, newline, b, newline, c
	}
	assert.Equal(t, 3, sc.CurrentLine())
}

func TestScannerPeekDoesNotConsume(t *testing.T) {
	sc := NewScanner(NewStringStream("a b"))
	first := sc.PeekToken(0)
	second := sc.PeekToken(1)
	assert.Equal(t, token.Identifier, first.Kind)
	assert.Equal(t, token.Space, second.Kind)
	assert.Equal(t, first, sc.NextToken())
	assert.Equal(t, second, sc.NextToken())
}

func TestScannerPushTokensFront(t *testing.T) {
	sc := NewScanner(NewStringStream("b"))
	sc.PushTokensFront([]token.Token{token.New(token.Identifier, "a", token.Position{Line: 1, Column: 1})})
	assert.Equal(t, "a", sc.NextToken().Text)
	assert.Equal(t, "b", sc.NextToken().Text)
}

func TestScannerPushPopStream(t *testing.T) {
	sc := NewScanner(NewStringStream("outer"))
	sc.PushStream(NewStringStream("inner"))
	assert.Equal(t, "inner", sc.NextToken().Text)
	assert.Equal(t, "outer", sc.NextToken().Text)
	assert.Equal(t, token.End, sc.NextToken().Kind)

	sc2 := NewScanner(NewStringStream("a"))
	sc2.PushStream(NewStringStream("b"))
	sc2.PopStream()
	assert.Equal(t, "a", sc2.NextToken().Text)
}

func TestScannerPunctuation(t *testing.T) {
	toks := allTokens(`,()[]<>"+-*/;`)
	got := kinds(toks[:13])
	assert.Equal(t, []token.Kind{
		token.Comma, token.ParenOpen, token.ParenClose, token.BracketOpen, token.BracketClose,
		token.AngleOpen, token.AngleClose, token.Quote, token.Plus, token.Minus, token.Star,
		token.Slash, token.Semicolon,
	}, got)
}
