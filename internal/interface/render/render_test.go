package render

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/coderva/tutoring-reports/internal/application/analytics"
	"github.com/coderva/tutoring-reports/internal/application/report"
	"github.com/coderva/tutoring-reports/internal/domain/shared"
	"github.com/coderva/tutoring-reports/pkg/reportfmt"
	"github.com/coderva/tutoring-reports/pkg/timeutil"
)

func sampleReport() *report.Report {
	return &report.Report{
		Title:       report.ReportTitle,
		GeneratedAt: time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
		GeneratedOn: timeutil.NewDate(2025, time.March, 10),
		Sections: []report.Section{
			{
				Title: report.TitleOverview,
				Blocks: []report.Block{
					{Rows: []report.Row{
						{report.Text("Report Date Range"), report.Text("2025-03-02 to 2025-03-08")},
						{report.Text("Total Sessions"), report.Number(8)},
					}},
					{Heading: "Sessions by Status", Rows: []report.Row{
						{report.Text("Active"), report.Number(5), report.Text("62.5%")},
					}},
				},
			},
			{
				Title: report.TitleTeacherSummary,
				Blocks: []report.Block{{
					Columns: []string{"Teacher Name", "Sessions", "Percentile"},
					Rows: []report.Row{
						{report.Text("Marie Curie"), report.Number(4), report.Text("66%")},
						{report.Text("Ada Lovelace"), report.Number(3), report.Text("33%")},
					},
				}},
			},
			{
				Title: report.TitleStudentSummary,
				Blocks: []report.Block{{
					Columns: []string{"Student ID", "Student Name", "Sessions"},
				}},
			},
		},
	}
}

func TestNew(t *testing.T) {
	for format, want := range map[string]string{
		"":      reportfmt.XLSX,
		"XLSX":  reportfmt.XLSX,
		"csv":   reportfmt.CSV,
		"yml":   reportfmt.YAML,
		"table": reportfmt.Table,
		"txt":   reportfmt.Table,
	} {
		r, err := New(format)
		require.NoError(t, err, format)
		assert.Equal(t, want, r.Format())
	}

	_, err := New("pdf")
	assert.True(t, shared.IsInvalidInput(err))
}

// A run late in the UTC day lands on the next calendar day in Tokyo; every
// renderer must print the same date the overview does.
func TestRenderers_GeneratedDateFollowsLocation(t *testing.T) {
	opts := report.DefaultOptions()
	opts.Location = time.FixedZone("JST", 9*60*60)
	rep := report.NewAssembler(analytics.New(nil), opts).
		Assemble(time.Date(2025, 3, 3, 20, 0, 0, 0, time.UTC))

	overview, ok := rep.Section(report.TitleOverview)
	require.True(t, ok)
	require.Equal(t, "2025-03-04", overview.Blocks[0].Rows[1][1].String())

	var buf bytes.Buffer
	require.NoError(t, (&CSVRenderer{}).Render(&buf, rep))
	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Generated", "2025-03-04"}, records[1])

	buf.Reset()
	require.NoError(t, (&TableRenderer{}).Render(&buf, rep))
	assert.Contains(t, buf.String(), "Generated 2025-03-04")

	buf.Reset()
	require.NoError(t, (&YAMLRenderer{}).Render(&buf, rep))
	var doc struct {
		GeneratedAt string `yaml:"generated_at"`
		GeneratedOn string `yaml:"generated_on"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2025-03-04", doc.GeneratedOn)
	assert.Equal(t, "2025-03-04T05:00:00+09:00", doc.GeneratedAt)
}

func TestXLSXRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&XLSXRenderer{}).Render(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Overview", "Teacher Summary", "Student Summary"}, f.GetSheetList())

	title, err := f.GetCellValue("Overview", "A1")
	require.NoError(t, err)
	assert.Equal(t, "RR Tutoring Overview", title)

	total, err := f.GetCellValue("Overview", "B4")
	require.NoError(t, err)
	assert.Equal(t, "8", total)

	heading, err := f.GetCellValue("Overview", "A6")
	require.NoError(t, err)
	assert.Equal(t, "Sessions by Status", heading)

	rows, err := f.GetRows("Teacher Summary")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Teacher Summary"}, rows[0])
	assert.Equal(t, []string{"Teacher Name", "Sessions", "Percentile"}, rows[2])
	assert.Equal(t, []string{"Marie Curie", "4", "66%"}, rows[3])

	cellType, err := f.GetCellType("Teacher Summary", "B4")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
	assert.NotEqual(t, excelize.CellTypeInlineString, cellType)

	styleID, err := f.GetCellStyle("Teacher Summary", "A3")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
	assert.Equal(t, 1, style.Fill.Pattern)
	require.NotEmpty(t, style.Border)
	assert.Equal(t, "bottom", style.Border[0].Type)

	titleStyleID, err := f.GetCellStyle("Teacher Summary", "A1")
	require.NoError(t, err)
	titleStyle, err := f.GetStyle(titleStyleID)
	require.NoError(t, err)
	assert.Equal(t, float64(titleFontSize), titleStyle.Font.Size)

	width, err := f.GetColWidth("Teacher Summary", "A")
	require.NoError(t, err)
	assert.Equal(t, float64(len("Teacher Name")+2), width)
}

func TestCSVRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&CSVRenderer{}).Render(&buf, sampleReport()))

	r := csv.NewReader(strings.NewReader(buf.String()))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"RR Tutoring Overview"}, records[0])
	assert.Equal(t, []string{"Generated", "2025-03-10"}, records[1])
	assert.Contains(t, records, []string{"Active", "5", "62.5%"})
	assert.Contains(t, records, []string{"Teacher Name", "Sessions", "Percentile"})
	assert.Contains(t, records, []string{"Marie Curie", "4", "66%"})
	assert.Equal(t, []string{"Student ID", "Student Name", "Sessions"}, records[len(records)-1])
}

func TestYAMLRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLRenderer{}).Render(&buf, sampleReport()))

	var doc struct {
		Title    string `yaml:"title"`
		Sections []struct {
			Title  string `yaml:"title"`
			Blocks []struct {
				Heading string   `yaml:"heading"`
				Columns []string `yaml:"columns"`
				Rows    [][]any  `yaml:"rows"`
			} `yaml:"blocks"`
		} `yaml:"sections"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "RR Tutoring Overview", doc.Title)
	require.Len(t, doc.Sections, 3)
	teachers := doc.Sections[1].Blocks[0]
	assert.Equal(t, []any{"Marie Curie", 4, "66%"}, teachers.Rows[0])
	assert.Empty(t, doc.Sections[2].Blocks[0].Rows)
}

func TestTableRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableRenderer{}).Render(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "== Teacher Summary ==")
	assert.Contains(t, out, "Teacher Name  Sessions  Percentile")
	assert.Contains(t, out, "Marie Curie   4         66%")
	assert.Contains(t, out, "(none)")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")

	require.NoError(t, WriteFile(path, &CSVRenderer{}, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "RR Tutoring Overview\n"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

type failingRenderer struct{}

func (failingRenderer) Format() string { return "broken" }

func (failingRenderer) Render(w io.Writer, _ *report.Report) error {
	_, _ = w.Write([]byte("partial"))
	return errors.New("disk full")
}

func TestWriteFile_NoPartialOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.xlsx")

	err := WriteFile(path, failingRenderer{}, sampleReport())
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrRender)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "r.csv"), &CSVRenderer{}, sampleReport())
	assert.ErrorIs(t, err, shared.ErrRender)
}
