package report

import (
	"strings"
	"unicode/utf8"
)

// PadLeft pads s on the left with padChar up to length runes.
func PadLeft(s string, length int, padChar rune) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-n) + s
}

// PadRight pads s on the right with padChar up to length runes.
func PadRight(s string, length int, padChar rune) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return s + strings.Repeat(string(padChar), length-n)
}

// table is a fixed-width, left-aligned text table.
type table struct {
	widths []int
	header []string
	rows   [][]string
}

func newTable(header []string, widths ...int) *table {
	return &table{widths: widths, header: header}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

// write renders the header, a dashed rule and every row. A table with no
// rows renders a single N/A line.
func (t *table) write(b *strings.Builder) {
	t.writeRow(b, t.header)

	total := 0
	for _, w := range t.widths {
		total += w
	}
	b.WriteString(strings.Repeat("-", total))
	b.WriteString("\n")

	if len(t.rows) == 0 {
		b.WriteString(notAvailable)
		b.WriteString("\n")
		return
	}

	for _, row := range t.rows {
		t.writeRow(b, row)
	}
}

func (t *table) writeRow(b *strings.Builder, cells []string) {
	line := ""
	for i, cell := range cells {
		if i < len(t.widths) {
			cell = PadRight(cell, t.widths[i], ' ')
		}
		line += cell
	}
	b.WriteString(strings.TrimRight(line, " "))
	b.WriteString("\n")
}
