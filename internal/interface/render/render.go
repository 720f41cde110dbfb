// Package render turns an assembled report into a file. Each format is a
// Renderer; WriteFile places the result on disk atomically.
package render

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/coderva/tutoring-reports/internal/application/report"
	"github.com/coderva/tutoring-reports/internal/domain/shared"
	"github.com/coderva/tutoring-reports/pkg/reportfmt"
)

const domain = "render"

// Renderer writes a report in one presentation format.
type Renderer interface {
	Render(w io.Writer, rep *report.Report) error
	Format() string
}

// New creates a renderer for the given format or alias (see reportfmt).
// An empty format means reportfmt.Default.
func New(format string) (Renderer, error) {
	name, _ := reportfmt.Normalize(format)
	switch name {
	case reportfmt.XLSX:
		return &XLSXRenderer{}, nil
	case reportfmt.CSV:
		return &CSVRenderer{}, nil
	case reportfmt.YAML:
		return &YAMLRenderer{}, nil
	case reportfmt.Table:
		return &TableRenderer{}, nil
	default:
		return nil, shared.NewDomainError(domain, "New", shared.ErrInvalidInput,
			"unknown output format "+format+" (want one of "+strings.Join(reportfmt.All, ", ")+")")
	}
}

// WriteFile renders rep into a temporary file next to path and renames it
// into place. On failure no file is left at path.
func WriteFile(path string, r Renderer, rep *report.Report) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return renderFailed("WriteFile", "creating temporary file", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = r.Render(tmp, rep); err != nil {
		return renderFailed("WriteFile", "rendering "+r.Format(), err)
	}
	if err = tmp.Sync(); err != nil {
		return renderFailed("WriteFile", "flushing output", err)
	}
	if err = tmp.Close(); err != nil {
		return renderFailed("WriteFile", "closing output", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return renderFailed("WriteFile", "setting permissions", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return renderFailed("WriteFile", "moving output into place", err)
	}
	return nil
}

func renderFailed(op, msg string, err error) error {
	return errors.WithStack(shared.WrapError(domain, op, shared.ErrRender, msg, err))
}
