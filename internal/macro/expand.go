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

package macro

import "github.com/bnoazx005/tcpp/internal/token"

// Substitute walks body, replacing every identifier token whose text
// matches a name in params with the raw tokens of the corresponding
// argument. No rescan happens here: substituted text is returned as-is,
// it is up to the caller to push the result back through a scanner if
// further expansion is desired.
func Substitute(body []token.Token, params []string, args [][]token.Token) []token.Token {
	if len(params) == 0 {
		return body
	}
	index := make(map[string]int, len(params))
	for i, p := range params {
		index[p] = i
	}

	out := make([]token.Token, 0, len(body))
	for _, tok := range body {
		if tok.Kind == token.Identifier {
			if i, ok := index[tok.Text]; ok && i < len(args) {
				out = append(out, args[i]...)
				continue
			}
		}
		out = append(out, tok)
	}
	return out
}
