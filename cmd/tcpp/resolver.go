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
	"os"
	"path/filepath"

	"github.com/bnoazx005/tcpp"
)

// newFileResolver builds an IncludeResolver following the classical cpp
// search order: a quoted include first checks the including file's own
// directory, then every -I directory, then every -isystem directory; an
// angle-bracket include skips straight to -I and -isystem.
func newFileResolver(baseDir string, includeDirs, systemDirs []string) tcpp.IncludeResolver {
	return func(path string, isSystem bool) tcpp.Stream {
		var searchDirs []string
		if !isSystem {
			searchDirs = append(searchDirs, baseDir)
		}
		searchDirs = append(searchDirs, includeDirs...)
		searchDirs = append(searchDirs, systemDirs...)

		for _, dir := range searchDirs {
			full := filepath.Join(dir, path)
			data, err := os.ReadFile(full)
			if err == nil {
				return tcpp.NewStringStream(string(data))
			}
		}
		return nil
	}
}

func dirOf(filename string) string {
	dir := filepath.Dir(filename)
	if dir == "" {
		return "."
	}
	return dir
}
