package export

import (
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	rsvpdomain "wedding-rsvp/internal/domain/rsvp"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin       = 14.0
	pdfTableTop     = 55.0
	pdfCellPadding  = 3.0
	pdfBodyFontSize = 9.0
	pdfLineSpacing  = 1.15
	pdfTitle        = "RSVP Submissions"
	pdfFontFamily   = "DejaVu"

	// The embedded font's width table stops at the Basic Multilingual Plane.
	pdfMaxRune = 0xFFFF
)

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	pdfFontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	pdfFontBold []byte
)

type pdfColumn struct {
	title string
	width float64
}

var pdfColumns = []pdfColumn{
	{title: "Name", width: 30},
	{title: "Email", width: 40},
	{title: "Dietary", width: 25},
	{title: "Additional Guests", width: 40},
	{title: "Total", width: 15},
	{title: "Submitted", width: 30},
}

var pdfHeaderFill = [3]int{137, 142, 108}

// WritePDF renders an A4 report: title, summary counts and a table that
// continues onto new pages, repeating the header row on each.
func WritePDF(w io.Writer, records []rsvpdomain.RSVP, opts Options) error {
	doc, err := renderPDF(records, opts)
	if err != nil {
		return err
	}
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("export: write pdf: %w", err)
	}
	return nil
}

func renderPDF(records []rsvpdomain.RSVP, opts Options) (*fpdf.Fpdf, error) {
	now := opts.now()
	loc := opts.location()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	doc.SetAutoPageBreak(false, pdfMargin)
	doc.SetCreationDate(now)
	doc.SetModificationDate(now)
	doc.SetTitle(pdfTitle, true)
	doc.AddUTF8FontFromBytes(pdfFontFamily, "", pdfFontRegular)
	doc.AddUTF8FontFromBytes(pdfFontFamily, "B", pdfFontBold)

	doc.AddPage()

	doc.SetFont(pdfFontFamily, "", 20)
	doc.Text(pdfMargin, 22, pdfTitle)

	summary := rsvpdomain.Summarize(records)
	doc.SetFont(pdfFontFamily, "", 12)
	doc.Text(pdfMargin, 32, "Total RSVPs: "+strconv.Itoa(summary.Submissions))
	doc.Text(pdfMargin, 40, "Total Guests: "+strconv.Itoa(summary.Guests))
	doc.Text(pdfMargin, 48, "Generated: "+FormatSubmitted(now, loc))

	table := pdfTable{doc: doc}
	table.header(pdfTableTop)
	for _, record := range records {
		table.row([]string{
			record.Name,
			record.Email,
			dietary(record),
			strings.Join(guestLabels(record), "\n"),
			strconv.Itoa(record.HeadCount()),
			FormatSubmitted(record.CreatedAt, loc),
		})
	}

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("export: render pdf: %w", err)
	}
	return doc, nil
}

type pdfTable struct {
	doc *fpdf.Fpdf
	y   float64
}

func (t *pdfTable) lineHeight() float64 {
	_, size := t.doc.GetFontSize()
	return size * pdfLineSpacing
}

func (t *pdfTable) header(y float64) {
	t.y = y
	t.doc.SetFont(pdfFontFamily, "B", pdfBodyFontSize)
	t.doc.SetFillColor(pdfHeaderFill[0], pdfHeaderFill[1], pdfHeaderFill[2])
	t.doc.SetTextColor(255, 255, 255)
	titles := make([]string, len(pdfColumns))
	for i, column := range pdfColumns {
		titles[i] = column.title
	}
	t.draw(titles, true)

	t.doc.SetFont(pdfFontFamily, "", pdfBodyFontSize)
	t.doc.SetTextColor(0, 0, 0)
}

func (t *pdfTable) row(cells []string) {
	lines := t.wrap(cells)
	height := t.rowHeight(lines)

	_, pageHeight := t.doc.GetPageSize()
	if t.y+height > pageHeight-pdfMargin {
		t.doc.AddPage()
		t.header(pdfMargin)
	}
	t.drawLines(lines, false)
}

func (t *pdfTable) draw(cells []string, fill bool) {
	t.drawLines(t.wrap(cells), fill)
}

func (t *pdfTable) wrap(cells []string) [][]string {
	wrapped := make([][]string, len(cells))
	for i, cell := range cells {
		if strings.TrimSpace(cell) == "" {
			cell = "-"
		}
		width := pdfColumns[i].width - 2*pdfCellPadding
		for _, part := range strings.Split(cell, "\n") {
			split := t.doc.SplitText(pdfText(part), width)
			if len(split) == 0 {
				split = []string{""}
			}
			wrapped[i] = append(wrapped[i], split...)
		}
	}
	return wrapped
}

func (t *pdfTable) rowHeight(lines [][]string) float64 {
	maxLines := 1
	for _, cell := range lines {
		if len(cell) > maxLines {
			maxLines = len(cell)
		}
	}
	return float64(maxLines)*t.lineHeight() + 2*pdfCellPadding
}

func (t *pdfTable) drawLines(lines [][]string, fill bool) {
	height := t.rowHeight(lines)
	lineHeight := t.lineHeight()
	style := "D"
	if fill {
		style = "FD"
	}

	x := pdfMargin
	for i, cell := range lines {
		width := pdfColumns[i].width
		t.doc.Rect(x, t.y, width, height, style)
		for j, line := range cell {
			t.doc.SetXY(x+pdfCellPadding, t.y+pdfCellPadding+float64(j)*lineHeight)
			t.doc.CellFormat(width-2*pdfCellPadding, lineHeight, line, "", 0, "L", false, 0, "")
		}
		x += width
	}
	t.y += height
}

// pdfText replaces what the table font cannot measure: control characters
// become spaces and runes above the BMP become U+FFFD.
func pdfText(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r > pdfMaxRune:
			return unicode.ReplacementChar
		case unicode.IsControl(r):
			return ' '
		default:
			return r
		}
	}, value)
}
