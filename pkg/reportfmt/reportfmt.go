// Package reportfmt names the output formats of the tutoring report.
package reportfmt

import (
	"path/filepath"
	"strings"
)

// Supported output formats.
const (
	XLSX  = "xlsx"
	CSV   = "csv"
	YAML  = "yaml"
	Table = "table"
)

// Default is used when neither a format nor a known file extension is given.
const Default = XLSX

// All lists every supported format.
var All = []string{XLSX, CSV, YAML, Table}

var aliases = map[string]string{
	"":    Default,
	XLSX:  XLSX,
	CSV:   CSV,
	YAML:  YAML,
	"yml": YAML,
	Table: Table,
	"txt": Table,
}

// Normalize maps a user-supplied name or alias to its canonical format.
// An empty name means Default.
func Normalize(name string) (string, bool) {
	f, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// IsSupported reports whether Normalize accepts name.
func IsSupported(name string) bool {
	_, ok := Normalize(name)
	return ok
}

// FromPath infers the format from a file extension, falling back to Default.
func FromPath(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return Default
	}
	if f, ok := Normalize(ext); ok {
		return f
	}
	return Default
}
