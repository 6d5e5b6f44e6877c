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

// conditionalFrame is one entry of the #if stack.
//
// Invariant: shouldSkip || !parentActive means "suppress output".
type conditionalFrame struct {
	shouldSkip     bool
	hasElse        bool
	anyBranchTaken bool
	parentActive   bool
}

func newConditionalFrame(shouldSkip, parentActive bool) conditionalFrame {
	return conditionalFrame{
		shouldSkip:     shouldSkip,
		anyBranchTaken: !shouldSkip,
		parentActive:   parentActive,
	}
}

// active reports whether tokens in this frame currently contribute to the
// output, taking the parent chain into account.
func (f conditionalFrame) active() bool {
	return f.parentActive && !f.shouldSkip
}

// conditionalStack is the expander's nested #if/#ifdef/#ifndef stack.
type conditionalStack struct {
	frames []conditionalFrame
}

func (s *conditionalStack) empty() bool { return len(s.frames) == 0 }

func (s *conditionalStack) top() *conditionalFrame {
	if s.empty() {
		return nil
	}
	return &s.frames[len(s.frames)-1]
}

// parentActive reports whether every currently open frame is active; this
// is the parentActive flag a freshly pushed frame inherits.
func (s *conditionalStack) parentActive() bool {
	if top := s.top(); top != nil {
		return top.active()
	}
	return true
}

func (s *conditionalStack) push(shouldSkip bool) {
	s.frames = append(s.frames, newConditionalFrame(shouldSkip, s.parentActive()))
}

// pop removes the current frame. Returns false if the stack was empty
// (caller reports UnbalancedEndif).
func (s *conditionalStack) pop() bool {
	if s.empty() {
		return false
	}
	s.frames = s.frames[:len(s.frames)-1]
	return true
}

// elif transitions the current frame per #elif semantics. Returns false if
// #else was already seen in this block (caller reports
// ElifBlockAfterElseFound).
func (s *conditionalStack) elif(exprTrue bool) bool {
	top := s.top()
	if top == nil || top.hasElse {
		return false
	}
	top.shouldSkip = top.anyBranchTaken || !exprTrue
	if !top.shouldSkip {
		top.anyBranchTaken = true
	}
	return true
}

// else_ transitions the current frame per #else semantics. Returns false
// if #else was already seen in this block (caller reports
// AnotherElseBlockFound).
func (s *conditionalStack) else_() bool {
	top := s.top()
	if top == nil || top.hasElse {
		return false
	}
	top.shouldSkip = top.anyBranchTaken || !top.shouldSkip
	top.hasElse = true
	if !top.shouldSkip {
		top.anyBranchTaken = true
	}
	return true
}

// shouldSkipOutput reports whether the active frame currently suppresses
// token output. An empty stack never suppresses.
func (s *conditionalStack) shouldSkipOutput() bool {
	top := s.top()
	return top != nil && !top.active()
}
