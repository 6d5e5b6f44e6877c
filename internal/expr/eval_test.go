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

package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnoazx005/tcpp/internal/lexer"
	"github.com/bnoazx005/tcpp/internal/macro"
	"github.com/bnoazx005/tcpp/internal/token"
)

func tokenize(t *testing.T, src string) []token.Token {
	t.Helper()
	sc := lexer.NewScanner(lexer.NewStringStream(src))
	var out []token.Token
	for {
		tok := sc.NextToken()
		if tok.Kind == token.End {
			return out
		}
		out = append(out, tok)
	}
}

func evalSrc(t *testing.T, src string, macros *macro.Table) int {
	t.Helper()
	if macros == nil {
		macros = macro.NewTable()
	}
	return New(tokenize(t, src), macros).Eval()
}

func TestEvalArithmeticPrecedence(t *testing.T) {
	assert.Equal(t, 7, evalSrc(t, "1 + 2 * 3", nil))
	assert.Equal(t, 9, evalSrc(t, "(1 + 2) * 3", nil))
	assert.Equal(t, 0, evalSrc(t, "5 / 0", nil))
}

func TestEvalComparisonsAndLogic(t *testing.T) {
	assert.Equal(t, 1, evalSrc(t, "1 < 2", nil))
	assert.Equal(t, 0, evalSrc(t, "2 <= 1", nil))
	assert.Equal(t, 1, evalSrc(t, "1 == 1 && 2 != 3", nil))
	assert.Equal(t, 1, evalSrc(t, "0 || 1 && 0 == 0", nil))
}

func TestEvalUnaryNegationIsGenuine(t *testing.T) {
	assert.Equal(t, -5, evalSrc(t, "-5", nil))
	assert.Equal(t, 5, evalSrc(t, "- -5", nil))
	assert.Equal(t, 1, evalSrc(t, "!0", nil))
	assert.Equal(t, 0, evalSrc(t, "!5", nil))
	assert.Equal(t, 0, evalSrc(t, "!-5", nil))
}

func TestEvalDefined(t *testing.T) {
	tbl := macro.NewTable()
	require.True(t, tbl.Define(macro.Descriptor{Name: "FOO"}))
	assert.Equal(t, 1, evalSrc(t, "defined(FOO)", tbl))
	assert.Equal(t, 0, evalSrc(t, "defined(BAR)", tbl))
	assert.Equal(t, 1, evalSrc(t, "defined FOO", tbl))
}

func TestEvalObjectLikeMacroRecurses(t *testing.T) {
	tbl := macro.NewTable()
	require.True(t, tbl.Define(macro.Descriptor{
		Name: "WIDTH",
		Body: []token.Token{token.New(token.Number, "4", token.Position{})},
	}))
	require.True(t, tbl.Define(macro.Descriptor{
		Name: "DOUBLE_WIDTH",
		Body: tokenize(t, "WIDTH * 2"),
	}))
	assert.Equal(t, 8, evalSrc(t, "DOUBLE_WIDTH", tbl))
}

func TestEvalFunctionLikeMacroCall(t *testing.T) {
	tbl := macro.NewTable()
	require.True(t, tbl.Define(macro.Descriptor{
		Name:   "MAX",
		Params: []string{"a", "b"},
		Body:   tokenize(t, "a > b"),
	}))
	assert.Equal(t, 1, evalSrc(t, "MAX(3, 1)", tbl))
	assert.Equal(t, 0, evalSrc(t, "MAX(1, 3)", tbl))
}

func TestEvalUndefinedIdentifierIsZero(t *testing.T) {
	assert.Equal(t, 0, evalSrc(t, "UNKNOWN", nil))
	assert.Equal(t, 1, evalSrc(t, "UNKNOWN + 1", nil))
}

func TestEvalHexLiteral(t *testing.T) {
	assert.Equal(t, 255, evalSrc(t, "0xFF", nil))
}
