//go:generate go run . -output docs/run-file.md

// Command docgen writes the reference for the cfzones run file and the
// environment variables it reads.
//
// Usage:
//
//	go run ./cmd/docgen -output docs/run-file.md
//
// The structs are parsed from pkg/config with go/ast, so the field comments
// there are the documentation.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// section is one table of the generated document.
type section struct {
	path    string
	structs []string // the first is the root, the rest are nested under it
	tag     string
	title   string
	intro   string
}

var sections = []section{
	{
		path:    "pkg/config/config.go",
		structs: []string{"RunConfig", "RetryConfig"},
		tag:     "yaml",
		title:   "Run File",
		intro:   "Keys accepted in the YAML file passed with `--config`. Every key is optional and unknown keys are rejected.",
	},
	{
		path:    "pkg/config/parser.go",
		structs: []string{"environment"},
		tag:     "env",
		title:   "Environment",
		intro:   "Variables read from the process environment. A `.env` file in the working directory is loaded first.",
	},
}

func main() {
	output := flag.String("output", "docs/run-file.md", "Output file, relative to the project root")
	rootDir := flag.String("root", "", "Root directory of the project (defaults to the nearest go.mod)")
	flag.Parse()

	if *rootDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			slog.Error("Failed to get working directory", "error", err)
			os.Exit(1)
		}
		*rootDir = findProjectRoot(wd)
	}

	path, err := generate(afero.NewOsFs(), *rootDir, *output)
	if err != nil {
		slog.Error("Failed to generate documentation", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Documentation written to %s\n", path)
}

// generate renders every section and writes the document under root.
func generate(fs afero.Fs, root, output string) (string, error) {
	var buf bytes.Buffer
	writeHeader(&buf)

	for _, s := range sections {
		src, err := afero.ReadFile(fs, filepath.Join(root, s.path))
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", s.path, err)
		}

		all, err := ParseSource(s.path, src, s.tag)
		if err != nil {
			return "", fmt.Errorf("parsing %s: %w", s.path, err)
		}

		structs, err := pickStructs(all, s.structs)
		if err != nil {
			return "", fmt.Errorf("%s: %w", s.path, err)
		}

		writeSection(&buf, s, structs)
	}

	path := output
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, output)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// findProjectRoot walks up the directory tree to find go.mod.
func findProjectRoot(start string) string {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}
