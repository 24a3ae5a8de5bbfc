// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package configdoc

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// GenerateMarkdown renders the reference as markdown tables.
func GenerateMarkdown(s *Schema) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", s.Title)
	if s.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", s.Description)
	}

	if len(s.Attributes) > 0 {
		sb.WriteString("## Top-level attributes\n\n")
		writeFieldTable(&sb, s.Attributes)
	}

	for _, b := range s.Blocks {
		fmt.Fprintf(&sb, "## `%s` block\n\n", b.HCLName)
		if b.Description != "" {
			fmt.Fprintf(&sb, "%s\n\n", b.Description)
		}
		writeFieldTable(&sb, b.Fields)
	}
	return sb.String()
}

func writeFieldTable(sb *strings.Builder, fields []*Field) {
	sb.WriteString("| Attribute | Type | Default | Description |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, f := range fields {
		desc := f.Description
		if len(f.Enum) > 0 {
			desc = strings.TrimSpace(desc + " One of: " + strings.Join(f.Enum, ", ") + ".")
		}
		if f.Min != nil && f.Max != nil {
			desc = strings.TrimSpace(fmt.Sprintf("%s Range %g-%g.", desc, *f.Min, *f.Max))
		}
		def := f.Default
		if def != "" {
			def = "`" + def + "`"
		}
		fmt.Fprintf(sb, "| `%s` | %s | %s | %s |\n", f.HCLName, f.HCLType, def, desc)
	}
	sb.WriteString("\n")
}

// GenerateYAML renders the schema as YAML.
func GenerateYAML(s *Schema) ([]byte, error) {
	return yaml.Marshal(s)
}

// GenerateExample renders an HCL file with every documented default.
func GenerateExample(s *Schema) string {
	var sb strings.Builder
	for _, a := range s.Attributes {
		if a.Default != "" {
			fmt.Fprintf(&sb, "%s = %s\n", a.HCLName, a.Default)
		}
	}
	for _, b := range s.Blocks {
		fmt.Fprintf(&sb, "\n%s {\n", b.HCLName)
		for _, f := range b.Fields {
			if f.Default == "" {
				fmt.Fprintf(&sb, "  # %s =\n", f.HCLName)
				continue
			}
			fmt.Fprintf(&sb, "  %s = %s\n", f.HCLName, f.Default)
		}
		sb.WriteString("}\n")
	}
	return strings.TrimLeft(sb.String(), "\n")
}
