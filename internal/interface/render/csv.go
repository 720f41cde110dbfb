package render

import (
	"encoding/csv"
	"io"

	"github.com/pkg/errors"

	"github.com/coderva/tutoring-reports/internal/application/report"
	"github.com/coderva/tutoring-reports/pkg/reportfmt"
)

// CSVRenderer writes every section into a single CSV stream. Sections start
// with a one-field title record and are separated by empty lines.
type CSVRenderer struct{}

// Format implements Renderer.
func (r *CSVRenderer) Format() string { return reportfmt.CSV }

// Render implements Renderer.
func (r *CSVRenderer) Render(w io.Writer, rep *report.Report) error {
	cw := csv.NewWriter(w)

	records := [][]string{
		{rep.Title},
		{"Generated", rep.GeneratedOn.String()},
	}
	for _, sec := range rep.Sections {
		records = append(records, nil, []string{sec.Title})
		for _, block := range sec.Blocks {
			if block.Heading != "" {
				records = append(records, []string{block.Heading})
			}
			if len(block.Columns) > 0 {
				records = append(records, block.Columns)
			}
			for _, row := range block.Rows {
				records = append(records, row.Strings())
			}
		}
	}

	if err := cw.WriteAll(records); err != nil {
		return errors.Wrap(err, "write csv")
	}
	return nil
}
