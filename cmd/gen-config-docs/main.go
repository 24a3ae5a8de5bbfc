// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// gen-config-docs generates the configuration reference from the config structs.
//
// Usage:
//
//	go run ./cmd/gen-config-docs -format=markdown -output=docs/config-reference.md
//	go run ./cmd/gen-config-docs -format=yaml
//	go run ./cmd/gen-config-docs -format=example -output=sphinx.hcl.example
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"grimm.is/sphinx/internal/configdoc"
)

func main() {
	format := flag.String("format", "markdown", "Output format: markdown, yaml, example")
	output := flag.String("output", "", "Output file (default: stdout)")
	configDir := flag.String("config-dir", "internal/config", "Directory containing config Go files")
	flag.Parse()

	parser := configdoc.NewParser()
	if err := parser.ParseDir(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing config directory: %v\n", err)
		os.Exit(1)
	}
	schema := parser.BuildSchema("Config", "Sphinx Configuration")

	var content string
	switch *format {
	case "markdown":
		content = configdoc.GenerateMarkdown(schema)
	case "yaml":
		data, err := configdoc.GenerateYAML(schema)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating YAML: %v\n", err)
			os.Exit(1)
		}
		content = string(data)
	case "example":
		content = configdoc.GenerateExample(schema)
	default:
		fmt.Fprintf(os.Stderr, "Unknown format: %s\n", *format)
		os.Exit(1)
	}

	writeOutput(*output, content)
}

func writeOutput(path, content string) {
	if path == "" {
		fmt.Print(content)
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
}
