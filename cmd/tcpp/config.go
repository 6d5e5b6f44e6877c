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
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bnoazx005/tcpp"
	"github.com/bnoazx005/tcpp/internal/collections"
	"github.com/bnoazx005/tcpp/internal/presets/platform"
)

// yamlDefine is one entry of a config file's defines list, or a -D flag
// parsed into the same shape.
type yamlDefine struct {
	Name   string   `yaml:"name"`
	Params []string `yaml:"params,omitempty"`
	Body   string   `yaml:"body,omitempty"`
}

// cliConfig is the union of a --config YAML file and the command line
// flags that can override or extend it.
type cliConfig struct {
	Defines      []yamlDefine `yaml:"defines,omitempty"`
	Undefines    []string     `yaml:"undefines,omitempty"`
	IncludeDirs  []string     `yaml:"include_dirs,omitempty"`
	SystemDirs   []string     `yaml:"system_dirs,omitempty"`
	SkipComments bool         `yaml:"skip_comments,omitempty"`
	Platform     string       `yaml:"platform,omitempty"`
}

// loadConfig reads a YAML config file. An empty path returns the zero
// config, so --config is optional.
func loadConfig(path string) (cliConfig, error) {
	var cfg cliConfig
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("opening config %s: %w", path, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// merge layers flag-sourced overrides on top of the file-sourced config.
// Lists are appended, scalars from overrides win when non-empty.
func (cfg cliConfig) merge(overrides cliConfig) cliConfig {
	cfg.Defines = append(cfg.Defines, overrides.Defines...)
	cfg.Undefines = append(cfg.Undefines, overrides.Undefines...)
	cfg.IncludeDirs = append(cfg.IncludeDirs, overrides.IncludeDirs...)
	cfg.SystemDirs = append(cfg.SystemDirs, overrides.SystemDirs...)
	if overrides.SkipComments {
		cfg.SkipComments = true
	}
	if overrides.Platform != "" {
		cfg.Platform = overrides.Platform
	}
	return cfg
}

// buildOptions turns the merged config into tcpp.Options, resolving any
// --platform preset and applying --undefine as a filter over the define
// list rather than a runtime #undef.
func (cfg cliConfig) buildOptions(errOut io.Writer) (tcpp.Options, error) {
	var defines []tcpp.Define

	if cfg.Platform != "" {
		p, err := parsePlatform(cfg.Platform)
		if err != nil {
			return tcpp.Options{}, err
		}
		defines = append(defines, platform.Defines(p)...)
	}
	defines = append(defines, collections.MapSlice(cfg.Defines, func(d yamlDefine) tcpp.Define {
		return tcpp.Define{Name: d.Name, Params: d.Params, Body: d.Body}
	})...)
	if len(cfg.Undefines) > 0 {
		defines = collections.FilterSlice(defines, func(d tcpp.Define) bool {
			return !slices.Contains(cfg.Undefines, d.Name)
		})
	}

	return tcpp.Options{
		SkipComments: cfg.SkipComments,
		UserDefines:  defines,
		ErrorSink: func(r tcpp.ErrorRecord) {
			fmt.Fprintln(errOut, "tcpp:", r.String())
		},
	}, nil
}

func parsePlatform(spec string) (platform.Platform, error) {
	osName, archName, ok := strings.Cut(spec, "/")
	if !ok {
		return platform.Platform{}, fmt.Errorf("invalid --platform %q, expected OS/ARCH", spec)
	}
	return platform.Create(platform.OS(osName), platform.Arch(archName))
}
