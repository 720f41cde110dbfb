package render

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/coderva/tutoring-reports/internal/application/report"
	"github.com/coderva/tutoring-reports/pkg/reportfmt"
	"github.com/coderva/tutoring-reports/pkg/timeutil"
)

// YAMLRenderer writes the report as one YAML document. Counts are emitted
// as integers.
type YAMLRenderer struct{}

// Format implements Renderer.
func (r *YAMLRenderer) Format() string { return reportfmt.YAML }

type yamlReport struct {
	Title       string        `yaml:"title"`
	GeneratedAt string        `yaml:"generated_at"`
	GeneratedOn timeutil.Date `yaml:"generated_on"`
	Sections    []yamlSection `yaml:"sections"`
}

type yamlSection struct {
	Title  string      `yaml:"title"`
	Blocks []yamlBlock `yaml:"blocks"`
}

type yamlBlock struct {
	Heading string       `yaml:"heading,omitempty"`
	Columns []string     `yaml:"columns,omitempty"`
	Rows    []report.Row `yaml:"rows"`
}

// Render implements Renderer.
func (r *YAMLRenderer) Render(w io.Writer, rep *report.Report) error {
	doc := yamlReport{
		Title:       rep.Title,
		GeneratedAt: rep.GeneratedAt.Format(time.RFC3339),
		GeneratedOn: rep.GeneratedOn,
		Sections:    make([]yamlSection, 0, len(rep.Sections)),
	}
	for _, sec := range rep.Sections {
		ys := yamlSection{Title: sec.Title, Blocks: make([]yamlBlock, 0, len(sec.Blocks))}
		for _, b := range sec.Blocks {
			rows := b.Rows
			if rows == nil {
				rows = []report.Row{}
			}
			ys.Blocks = append(ys.Blocks, yamlBlock{Heading: b.Heading, Columns: b.Columns, Rows: rows})
		}
		doc.Sections = append(doc.Sections, ys)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "encode yaml")
	}
	return errors.Wrap(enc.Close(), "close yaml encoder")
}
