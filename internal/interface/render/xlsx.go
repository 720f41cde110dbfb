package render

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/coderva/tutoring-reports/internal/application/report"
	"github.com/coderva/tutoring-reports/pkg/reportfmt"
)

const (
	titleFontSize = 16
	headerFill    = "#C0C0C0" // grey 25%
	minColWidth   = 10
	maxColWidth   = 60
	defaultSheet  = "Sheet1"
)

// chartTitles names the sections that get a column chart of their first
// block (category in column A, count in column B).
var chartTitles = map[string]string{
	report.TitleTeacherSummary: "Sessions by Teacher",
	report.TitleDailyBreakdown: "Sessions by Day of Week",
}

// XLSXRenderer writes one worksheet per section.
type XLSXRenderer struct{}

// Format implements Renderer.
func (r *XLSXRenderer) Format() string { return reportfmt.XLSX }

type xlsxStyles struct {
	title   int
	heading int
	header  int
}

// Render implements Renderer.
func (r *XLSXRenderer) Render(w io.Writer, rep *report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	for i, sec := range rep.Sections {
		sheet := sheetName(sec.Title, i)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return errors.Wrap(err, "rename first sheet")
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return errors.Wrapf(err, "create sheet %q", sheet)
		}

		title := sec.Title
		if sec.Title == report.TitleOverview {
			title = rep.Title
		}
		if err := writeSheet(f, sheet, title, sec, styles); err != nil {
			return err
		}
	}

	if len(rep.Sections) > 0 {
		f.SetActiveSheet(0)
	}
	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

func newStyles(f *excelize.File) (xlsxStyles, error) {
	var s xlsxStyles
	var err error

	s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: titleFontSize},
	})
	if err != nil {
		return s, errors.Wrap(err, "title style")
	}

	s.heading, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return s, errors.Wrap(err, "heading style")
	}

	s.header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return s, errors.Wrap(err, "header style")
	}
	return s, nil
}

// writeSheet lays a section out as: title row, blank row, then each block
// (optional heading, optional header row, data rows) separated by a blank row.
func writeSheet(f *excelize.File, sheet, title string, sec report.Section, st xlsxStyles) error {
	widths := map[int]int{}
	track := func(col int, s string) {
		if n := utf8.RuneCountInString(s); n > widths[col] {
			widths[col] = n
		}
	}

	if err := setCell(f, sheet, 1, 1, title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", st.title); err != nil {
		return errors.Wrap(err, "style title")
	}

	row := 3
	firstData, lastData := 0, 0
	for bi, block := range sec.Blocks {
		if block.Heading != "" {
			if err := setCell(f, sheet, 1, row, block.Heading); err != nil {
				return err
			}
			if err := styleRange(f, sheet, 1, row, 1, st.heading); err != nil {
				return err
			}
			track(1, block.Heading)
			row++
		}
		if len(block.Columns) > 0 {
			for c, name := range block.Columns {
				if err := setCell(f, sheet, c+1, row, name); err != nil {
					return err
				}
				track(c+1, name)
			}
			if err := styleRange(f, sheet, 1, row, len(block.Columns), st.header); err != nil {
				return err
			}
			row++
		}
		if bi == 0 {
			firstData = row
		}
		for _, values := range block.Rows {
			for c, v := range values {
				var cell any = v.String()
				if v.IsNumber() {
					cell = v.Int()
				}
				if err := setCell(f, sheet, c+1, row, cell); err != nil {
					return err
				}
				track(c+1, v.String())
			}
			row++
		}
		if bi == 0 {
			lastData = row - 1
		}
		row++
	}

	for col, n := range widths {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return errors.Wrap(err, "column name")
		}
		if err := f.SetColWidth(sheet, name, name, fitWidth(n)); err != nil {
			return errors.Wrapf(err, "set width of column %s", name)
		}
	}

	if chartTitle, ok := chartTitles[sec.Title]; ok && lastData >= firstData && firstData > 0 {
		return addBarChart(f, sheet, chartTitle, firstData, lastData)
	}
	return nil
}

func addBarChart(f *excelize.File, sheet, title string, first, last int) error {
	ref := func(col string) string {
		return fmt.Sprintf("'%s'!$%s$%d:$%s$%d", sheet, col, first, col, last)
	}
	err := f.AddChart(sheet, "E3", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       "Sessions",
			Categories: ref("A"),
			Values:     ref("B"),
		}},
		Title:  []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
	if err != nil {
		return errors.Wrapf(err, "add chart to %q", sheet)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return errors.Wrap(err, "cell name")
	}
	if err := f.SetCellValue(sheet, cell, v); err != nil {
		return errors.Wrapf(err, "set %s!%s", sheet, cell)
	}
	return nil
}

func styleRange(f *excelize.File, sheet string, fromCol, row, toCol, style int) error {
	from, err := excelize.CoordinatesToCellName(fromCol, row)
	if err != nil {
		return errors.Wrap(err, "cell name")
	}
	to, err := excelize.CoordinatesToCellName(toCol, row)
	if err != nil {
		return errors.Wrap(err, "cell name")
	}
	if err := f.SetCellStyle(sheet, from, to, style); err != nil {
		return errors.Wrapf(err, "style %s!%s:%s", sheet, from, to)
	}
	return nil
}

func fitWidth(chars int) float64 {
	w := chars + 2
	if w < minColWidth {
		w = minColWidth
	}
	if w > maxColWidth {
		w = maxColWidth
	}
	return float64(w)
}

// sheetName makes a section title usable as a worksheet name: at most 31
// characters, none of []:*?/\.
func sheetName(title string, index int) string {
	out := make([]rune, 0, len(title))
	for _, r := range title {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			r = '_'
		}
		out = append(out, r)
	}
	if len(out) > 31 {
		out = out[:31]
	}
	if len(out) == 0 {
		return fmt.Sprintf("Section %d", index+1)
	}
	return string(out)
}
