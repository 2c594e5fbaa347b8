package main

import (
	"fmt"
	"io"
	"strings"
)

func writeHeader(w io.Writer) {
	fmt.Fprintf(w, "# cfzones Configuration Reference\n\n")
	fmt.Fprintf(w, "> This documentation is auto-generated from source code using `go generate ./cmd/docgen`.\n\n")
}

// writeSection writes one table. Fields whose type is another struct of the
// section are expanded in place with dotted keys.
func writeSection(w io.Writer, s section, structs []StructDoc) {
	fmt.Fprintf(w, "## %s\n\n", s.title)
	if s.intro != "" {
		fmt.Fprintf(w, "%s\n\n", s.intro)
	}
	if len(structs) == 0 {
		return
	}

	nested := make(map[string]StructDoc, len(structs))
	for _, sd := range structs[1:] {
		nested[sd.Name] = sd
	}

	heading := "Key"
	if s.tag == "env" {
		heading = "Variable"
	}
	fmt.Fprintf(w, "| %s | Type | Description |\n", heading)
	fmt.Fprintf(w, "|-----|------|-------------|\n")
	for _, f := range flatten(structs[0], nested, "") {
		fmt.Fprintf(w, "| `%s` | %s | %s |\n", f.Key, displayType(f.GoType), escapeCell(f.Doc))
	}
	fmt.Fprintf(w, "\n")
}

func flatten(sd StructDoc, nested map[string]StructDoc, prefix string) []FieldDoc {
	var out []FieldDoc
	for _, f := range sd.Fields {
		f.Key = prefix + f.Key
		if child, ok := nested[f.GoType]; ok {
			out = append(out, flatten(child, nested, f.Key+".")...)
			continue
		}
		out = append(out, f)
	}
	return out
}

// displayType names a Go type the way it is written in YAML.
func displayType(goType string) string {
	switch goType {
	case "string":
		return "string"
	case "int":
		return "integer"
	case "float64":
		return "number"
	case "bool":
		return "boolean"
	case "time.Duration":
		return "duration (e.g. `500ms`)"
	}
	if elem, ok := strings.CutPrefix(goType, "*"); ok {
		return displayType(elem)
	}
	if elem, ok := strings.CutPrefix(goType, "[]"); ok {
		return "list of " + displayType(elem)
	}
	return "`" + goType + "`"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
