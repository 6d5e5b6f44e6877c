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

// Package macro implements the symbol table that backs #define/#undef:
// object-like and function-like macro descriptors, keyed by name, with the
// redefinition-is-an-error invariant the engine requires.
package macro

import "github.com/bnoazx005/tcpp/internal/token"

// Descriptor is one entry of the symbol table.
type Descriptor struct {
	Name string
	// Params is nil for an object-like macro. A non-nil (possibly empty)
	// slice marks a function-like macro, even with zero parameters.
	Params []string
	// Body is the macro's replacement token sequence, captured raw at
	// #define time. Identifiers in Body equal to Name have already been
	// downgraded to blob tokens by the caller (self-reference suppression).
	Body []token.Token
}

// IsFunctionLike reports whether d has an explicit (possibly empty)
// parameter list.
func (d Descriptor) IsFunctionLike() bool {
	return d.Params != nil
}

// Table is the macro symbol table. Names are unique within a Table: Define
// refuses to replace an existing entry and reports false, so the engine can
// issue a "redefined" diagnostic and keep scanning without clobbering the
// prior definition.
type Table struct {
	entries map[string]Descriptor
}

// NewTable creates an empty symbol table.
func NewTable() *Table {
	return &Table{entries: map[string]Descriptor{}}
}

// Lookup returns the macro named name, if defined.
func (t *Table) Lookup(name string) (Descriptor, bool) {
	d, ok := t.entries[name]
	return d, ok
}

// Defined reports whether name is currently defined.
func (t *Table) Defined(name string) bool {
	_, ok := t.entries[name]
	return ok
}

// Define adds d to the table. Returns false without modifying the table if
// a macro named d.Name already exists.
func (t *Table) Define(d Descriptor) bool {
	if _, exists := t.entries[d.Name]; exists {
		return false
	}
	t.entries[d.Name] = d
	return true
}

// Undef removes name from the table. Returns false if name was not defined.
func (t *Table) Undef(name string) bool {
	if _, exists := t.entries[name]; !exists {
		return false
	}
	delete(t.entries, name)
	return true
}

// Snapshot returns a read-only copy of every currently defined macro,
// keyed by name.
func (t *Table) Snapshot() map[string]Descriptor {
	out := make(map[string]Descriptor, len(t.entries))
	for k, v := range t.entries {
		out[k] = v
	}
	return out
}
