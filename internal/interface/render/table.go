package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/coderva/tutoring-reports/internal/application/report"
	"github.com/coderva/tutoring-reports/pkg/reportfmt"
)

// TableRenderer writes aligned plain-text tables, one per block.
type TableRenderer struct{}

// Format implements Renderer.
func (r *TableRenderer) Format() string { return reportfmt.Table }

// Render implements Renderer.
func (r *TableRenderer) Render(w io.Writer, rep *report.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\n", rep.Title)
	fmt.Fprintf(tw, "Generated %s\n", rep.GeneratedOn.String())

	for _, sec := range rep.Sections {
		fmt.Fprintf(tw, "\n== %s ==\n", sec.Title)
		for i, block := range sec.Blocks {
			if i > 0 {
				fmt.Fprintln(tw)
			}
			if block.Heading != "" {
				fmt.Fprintf(tw, "%s\n", block.Heading)
			}
			if len(block.Columns) > 0 {
				fmt.Fprintf(tw, "%s\n", strings.Join(block.Columns, "\t"))
				fmt.Fprintf(tw, "%s\n", underline(block.Columns))
			}
			for _, row := range block.Rows {
				fmt.Fprintf(tw, "%s\n", strings.Join(row.Strings(), "\t"))
			}
			if len(block.Rows) == 0 {
				fmt.Fprintln(tw, "(none)")
			}
		}
	}

	return errors.Wrap(tw.Flush(), "flush table")
}

func underline(columns []string) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = strings.Repeat("-", len(c))
	}
	return strings.Join(parts, "\t")
}
