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
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnoazx005/tcpp"
)

var version = "0.1.0"

// Preprocessor flags, mirrored after the classical cpp/cc1 command line.
var (
	includePaths  []string
	systemPaths   []string
	defineFlags   []string
	undefineFlags []string
	skipComments  bool
	platformFlag  string
	configPath    string
	outPath       string
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	rootCmd := newRootCmd(out, errOut)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tcpp [file]",
		Short:         "tcpp runs the embeddable preprocessor over a single source file",
		Long:          `tcpp expands macros, resolves conditional compilation and #include directives, and writes the result to stdout or --out.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := "-"
			if len(args) == 1 {
				filename = args[0]
			}
			return doPreprocess(filename, cmd.InOrStdin(), out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().StringArrayVarP(&includePaths, "include", "I", nil, "Add directory to the quoted-include search path")
	rootCmd.Flags().StringArrayVar(&systemPaths, "isystem", nil, "Add directory to the system (angle-bracket) include search path")
	rootCmd.Flags().StringArrayVarP(&defineFlags, "define", "D", nil, "Define macro (NAME, NAME=VALUE, or NAME(ARGS)=BODY)")
	rootCmd.Flags().StringArrayVarP(&undefineFlags, "undefine", "U", nil, "Suppress a macro that --config would otherwise define")
	rootCmd.Flags().BoolVar(&skipComments, "skip-comments", false, "Drop comment text from the output instead of passing it through")
	rootCmd.Flags().StringVar(&platformFlag, "platform", "", "Seed the predefined macro set for an os/arch pair, e.g. linux/x86_64")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Load defines and search paths from a YAML config file")
	rootCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write output to a file instead of stdout")

	rootCmd.AddCommand(newBatchCmd(out, errOut))
	return rootCmd
}

// doPreprocess preprocesses a single file (or stdin, for "-") and writes the
// result to outPath, or to out when outPath is empty.
func doPreprocess(filename string, stdin io.Reader, out, errOut io.Writer) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("tcpp: %w", err)
	}
	cfg = cfg.merge(flagOverrides())
	opts, err := cfg.buildOptions(errOut)
	if err != nil {
		return fmt.Errorf("tcpp: %w", err)
	}

	src, err := readSource(filename, stdin)
	if err != nil {
		return fmt.Errorf("tcpp: %w", err)
	}

	baseDir := "."
	if filename != "-" {
		baseDir = dirOf(filename)
	}
	opts.IncludeResolver = newFileResolver(baseDir, cfg.IncludeDirs, cfg.SystemDirs)

	e, err := tcpp.NewExpander(tcpp.NewStringStream(src), opts)
	if err != nil {
		return fmt.Errorf("tcpp: %w", err)
	}
	result := e.Process()

	if outPath == "" {
		fmt.Fprint(out, result)
		return nil
	}
	return os.WriteFile(outPath, []byte(result), 0o644)
}

// flagOverrides translates the command line into the same shape loadConfig
// produces, so both sources merge through cliConfig.merge.
func flagOverrides() cliConfig {
	cfg := cliConfig{
		IncludeDirs:  includePaths,
		SystemDirs:   systemPaths,
		SkipComments: skipComments,
		Platform:     platformFlag,
	}
	for _, d := range defineFlags {
		cfg.Defines = append(cfg.Defines, parseDefineFlag(d))
	}
	cfg.Undefines = undefineFlags
	return cfg
}

// parseDefineFlag parses a -D argument of the form NAME, NAME=VALUE, or
// NAME(PARAMS)=BODY into a yamlDefine.
func parseDefineFlag(raw string) yamlDefine {
	name, body, hasBody := strings.Cut(raw, "=")
	if paren := strings.IndexByte(name, '('); paren >= 0 && strings.HasSuffix(name, ")") {
		params := strings.Split(name[paren+1:len(name)-1], ",")
		for i := range params {
			params[i] = strings.TrimSpace(params[i])
		}
		return yamlDefine{Name: name[:paren], Params: params, Body: body}
	}
	if !hasBody {
		return yamlDefine{Name: name}
	}
	return yamlDefine{Name: name, Body: body}
}

func readSource(filename string, stdin io.Reader) (string, error) {
	if filename == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", filename, err)
	}
	return string(data), nil
}
