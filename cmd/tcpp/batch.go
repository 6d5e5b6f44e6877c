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
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/bnoazx005/tcpp"
)

var (
	batchIncludePatterns []string
	batchExcludePatterns []string
	batchOutDir          string
)

// newBatchCmd walks a directory tree and preprocesses every file matching
// the include/exclude doublestar patterns, mirroring the directory layout
// under --out-dir.
func newBatchCmd(out, errOut io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "batch <root>",
		Short:         "Preprocess every matching file under a directory tree",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return doBatch(args[0], out, errOut)
		},
	}
	cmd.Flags().StringArrayVar(&batchIncludePatterns, "match", []string{"**/*.h", "**/*.c"}, "Doublestar glob pattern a file must match to be preprocessed")
	cmd.Flags().StringArrayVar(&batchExcludePatterns, "exclude", nil, "Doublestar glob pattern that excludes an otherwise-matched file")
	cmd.Flags().StringVar(&batchOutDir, "out-dir", "", "Directory to write preprocessed files into, mirroring root's layout")
	cmd.MarkFlagRequired("out-dir")
	return cmd
}

func doBatch(root string, out, errOut io.Writer) error {
	for _, p := range slices.Concat(batchIncludePatterns, batchExcludePatterns) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("tcpp: invalid glob pattern %q", p)
		}
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("tcpp: %w", err)
	}
	cfg = cfg.merge(flagOverrides())
	opts, err := cfg.buildOptions(errOut)
	if err != nil {
		return fmt.Errorf("tcpp: %w", err)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if !matchesBatch(rel) {
			return nil
		}

		src, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("reading %s: %w", path, readErr)
		}

		fileOpts := opts
		fileOpts.IncludeResolver = newFileResolver(filepath.Dir(path), cfg.IncludeDirs, cfg.SystemDirs)
		e, newErr := tcpp.NewExpander(tcpp.NewStringStream(string(src)), fileOpts)
		if newErr != nil {
			return fmt.Errorf("%s: %w", path, newErr)
		}
		result := e.Process()

		dest := filepath.Join(batchOutDir, rel)
		if mkErr := os.MkdirAll(filepath.Dir(dest), 0o755); mkErr != nil {
			return mkErr
		}
		if writeErr := os.WriteFile(dest, []byte(result), 0o644); writeErr != nil {
			return writeErr
		}
		fmt.Fprintln(errOut, "tcpp: wrote", dest)
		return nil
	})
}

func matchesBatch(rel string) bool {
	relSlash := filepath.ToSlash(rel)
	if !slices.ContainsFunc(batchIncludePatterns, func(p string) bool {
		return doublestar.MatchUnvalidated(p, relSlash)
	}) {
		return false
	}
	return !slices.ContainsFunc(batchExcludePatterns, func(p string) bool {
		return doublestar.MatchUnvalidated(p, relSlash)
	})
}
