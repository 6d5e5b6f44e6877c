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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags clears the package-level flag variables cobra binds to, since
// the rootCmd is rebuilt fresh but the vars persist across test cases.
func resetFlags() {
	includePaths, systemPaths, defineFlags, undefineFlags = nil, nil, nil, nil
	skipComments, platformFlag, configPath, outPath = false, "", "", ""
}

func runCLI(t *testing.T, args []string) (string, string, int) {
	t.Helper()
	resetFlags()
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestPreprocessStdin(t *testing.T) {
	resetFlags()
	var out, errOut bytes.Buffer
	rootCmd := newRootCmd(&out, &errOut)
	rootCmd.SetArgs([]string{"-D", "VALUE=42"})
	rootCmd.SetIn(bytes.NewBufferString("VALUE\n"))
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "42\n", out.String())
}

func TestPreprocessFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.c")
	require.NoError(t, os.WriteFile(src, []byte("#define TWO 2\nTWO\n"), 0o644))

	out, errOut, code := runCLI(t, []string{src})
	assert.Equal(t, 0, code)
	assert.Empty(t, errOut)
	assert.Equal(t, "2\n", out)
}

func TestPreprocessWithDefineFlag(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.c")
	require.NoError(t, os.WriteFile(src, []byte("VALUE\n"), 0o644))

	out, _, code := runCLI(t, []string{"-D", "VALUE=7", src})
	assert.Equal(t, 0, code)
	assert.Equal(t, "7\n", out)
}

func TestPreprocessWithPlatformFlag(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.c")
	require.NoError(t, os.WriteFile(src, []byte("#ifdef __linux__\nlinux\n#else\nother\n#endif\n"), 0o644))

	out, _, code := runCLI(t, []string{"--platform", "linux/x86_64", src})
	assert.Equal(t, 0, code)
	assert.Equal(t, "linux\n", out)
}

func TestPreprocessWritesOutFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.c")
	dest := filepath.Join(dir, "out.c")
	require.NoError(t, os.WriteFile(src, []byte("#define A 1\nA\n"), 0o644))

	_, _, code := runCLI(t, []string{"-o", dest, src})
	assert.Equal(t, 0, code)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "1\n", string(got))
}

func TestPreprocessWithIncludeDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inner.h"), []byte("INNER"), 0o644))
	src := filepath.Join(dir, "sub", "main.c")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	require.NoError(t, os.WriteFile(src, []byte(`#include "inner.h"`+"\n"), 0o644))

	out, _, code := runCLI(t, []string{"-I", dir, src})
	assert.Equal(t, 0, code)
	assert.Equal(t, "INNER\n", out)
}

func TestPreprocessConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tcpp.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("defines:\n  - name: GREETING\n    body: '\"hi\"'\n"), 0o644))
	src := filepath.Join(dir, "in.c")
	require.NoError(t, os.WriteFile(src, []byte("GREETING\n"), 0o644))

	out, _, code := runCLI(t, []string{"--config", cfgPath, src})
	assert.Equal(t, 0, code)
	assert.Equal(t, "\"hi\"\n", out)
}

func TestBatchPreprocessesMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "a.h"), []byte("#define A 1\nA\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "a.txt"), []byte("ignored"), 0o644))

	outDir := filepath.Join(dir, "out")
	_, _, code := runCLI(t, []string{"batch", dir, "--out-dir", outDir})
	assert.Equal(t, 0, code)

	got, err := os.ReadFile(filepath.Join(outDir, "src", "a.h"))
	require.NoError(t, err)
	assert.Equal(t, "1\n", string(got))

	_, err = os.Stat(filepath.Join(outDir, "src", "a.txt"))
	assert.True(t, os.IsNotExist(err))
}
