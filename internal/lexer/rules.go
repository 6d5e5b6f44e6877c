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
	"regexp"

	"github.com/bnoazx005/tcpp/internal/token"
)

// identifierRegex matches a leading '_' or letter followed by letters,
// digits or underscores.
var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)

// Numeric scanning is deliberately unfused: a fractional part is never
// joined with its integer part. "1.0001" tokenizes as
// number("1") blob(".") number("0001").
var (
	hexNumberRegex = regexp.MustCompile(`^0[xX][0-9a-fA-F]+`)
	decNumberRegex = regexp.MustCompile(`^[0-9]+`)
)

// keywords is the fixed closed set of C keywords recognized as an aid to
// host tools. A macro sharing a name with one of these is indistinguishable
// from the keyword and is therefore never usable as a macro name.
var keywords = map[string]struct{}{
	"auto": {}, "break": {}, "case": {}, "char": {}, "const": {},
	"continue": {}, "default": {}, "do": {}, "double": {}, "else": {},
	"enum": {}, "extern": {}, "float": {}, "for": {}, "goto": {},
	"if": {}, "inline": {}, "int": {}, "long": {}, "register": {},
	"restrict": {}, "return": {}, "short": {}, "signed": {}, "sizeof": {},
	"static": {}, "struct": {}, "switch": {}, "typedef": {}, "union": {},
	"unsigned": {}, "void": {}, "volatile": {}, "while": {},
}

// directiveKinds is the closed directive table, consulted after a leading
// '#' and optional whitespace, before falling back to caller-registered
// custom directives.
var directiveKinds = map[string]token.Kind{
	"define":  token.Define,
	"undef":   token.Undef,
	"ifdef":   token.Ifdef,
	"ifndef":  token.Ifndef,
	"if":      token.If,
	"elif":    token.Elif,
	"else":    token.Else,
	"endif":   token.Endif,
	"include": token.Include,
}

// twoCharOperators lists every operator the scanner must recognize greedily
// before falling back to its single-character form.
var twoCharOperators = map[string]token.Kind{
	"<<": token.ShiftLeft,
	">>": token.ShiftRight,
	"<=": token.LessEqual,
	">=": token.GreaterEqual,
	"&&": token.LogicalAnd,
	"||": token.LogicalOr,
	"==": token.Equal,
	"!=": token.NotEqual,
}

// oneCharTokens lists the separator characters recognized as punctuation or
// a single-character operator, per the scanner's priority-8 rule. '=' is
// deliberately excluded: a lone '=' is emitted as a blob.
var oneCharTokens = map[byte]token.Kind{
	',': token.Comma,
	'(': token.ParenOpen,
	')': token.ParenClose,
	'[': token.BracketOpen,
	']': token.BracketClose,
	'<': token.AngleOpen,
	'>': token.AngleClose,
	'"': token.Quote,
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
	'&': token.BitAnd,
	'|': token.BitOr,
	'!': token.LogicalNot,
	';': token.Semicolon,
}

// structuralBoundary reports whether c is the first character of any rule
// above, i.e. a point where an accumulating blob token must stop.
func structuralBoundary(c byte) bool {
	switch c {
	case '\n', '#', '\\', '=':
		return true
	}
	if c == ' ' || c == '\t' || c == '\v' || c == '\f' || c == '\r' {
		return true
	}
	if _, ok := oneCharTokens[c]; ok {
		return true
	}
	if (c >= '0' && c <= '9') || c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
		return true
	}
	return false
}
