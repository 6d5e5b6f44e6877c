// Copyright 2026 EngFlow Inc. All rights reserved.
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

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnoazx005/tcpp"
)

func TestCreateDealiasesCommonNames(t *testing.T) {
	p, err := Create(OS("macos"), Arch("arm64"))
	require.NoError(t, err)
	assert.Equal(t, Platform{OS: osx, Arch: aarch64}, p)
}

func TestCreateRejectsUnknownValues(t *testing.T) {
	_, err := Create(OS("plan9"), x86_64)
	assert.Error(t, err)
}

func TestDefinesIncludesPlatformMacros(t *testing.T) {
	p, err := Create(linux, x86_64)
	require.NoError(t, err)

	defines := Defines(p)
	names := make(map[string]string, len(defines))
	for _, d := range defines {
		names[d.Name] = d.Body
	}
	assert.Equal(t, "1", names["__linux__"])
	assert.Equal(t, "1", names["unix"])
	_, hasWin32 := names["_WIN32"]
	assert.False(t, hasWin32)
}

func TestDefinesFeedsExpanderOptions(t *testing.T) {
	p, err := Create(windows, x86_64)
	require.NoError(t, err)

	e, err := tcpp.NewExpander(tcpp.NewStringStream("#ifdef _WIN32\nwin\n#else\nother\n#endif"), tcpp.Options{
		UserDefines: Defines(p),
	})
	require.NoError(t, err)
	assert.Equal(t, "win\n", e.Process())
}

func TestDefinesOnUnknownPlatformIsEmpty(t *testing.T) {
	assert.Empty(t, Defines(Platform{OS: OS("none-registered"), Arch: Arch("none-registered-arch")}))
}
