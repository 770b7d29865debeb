package panels

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	columnGap      = 2
	minColumnWidth = 3
	ellipsis       = "…"
)

// RenderDefault draws the summary, then fields, then the table.
func RenderDefault(c Content, width, height int) []string {
	var lines []string
	if c.Summary != "" {
		lines = append(lines, c.Summary)
	}
	lines = append(lines, RenderFields(c.Fields, width)...)
	if len(c.Columns) > 0 {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, RenderTable(c.Columns, c.Rows, width)...)
	}
	if len(lines) == 0 {
		lines = append(lines, "(no data)")
	}
	return lines
}

// RenderFields draws "name  value" lines with aligned values.
func RenderFields(fields []Field, width int) []string {
	if len(fields) == 0 {
		return nil
	}
	nameW := 0
	for _, f := range fields {
		if w := lipgloss.Width(f.Name); w > nameW {
			nameW = w
		}
	}
	lines := make([]string, len(fields))
	for i, f := range fields {
		line := pad(f.Name, nameW) + strings.Repeat(" ", columnGap) + f.Value
		lines[i] = ansi.Truncate(line, width, ellipsis)
	}
	return lines
}

// RenderTable draws a header row and data rows with columns shrunk to fit width.
func RenderTable(columns []string, rows [][]string, width int) []string {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = lipgloss.Width(c)
	}
	for _, r := range rows {
		for i := 0; i < len(columns) && i < len(r); i++ {
			if w := lipgloss.Width(r[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	fitWidths(widths, width)

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, joinCells(columns, widths))
	for _, r := range rows {
		lines = append(lines, joinCells(r, widths))
	}
	return lines
}

// fitWidths shrinks the widest columns until the row fits in width.
func fitWidths(widths []int, width int) {
	total := func() int {
		t := columnGap * (len(widths) - 1)
		for _, w := range widths {
			t += w
		}
		return t
	}
	for total() > width {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumnWidth {
			return
		}
		widths[widest]--
	}
}

func joinCells(cells []string, widths []int) string {
	var b strings.Builder
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if lipgloss.Width(cell) > w {
			cell = ansi.Truncate(cell, w, ellipsis)
		}
		if i == len(widths)-1 {
			b.WriteString(cell)
			break
		}
		b.WriteString(pad(cell, w))
		b.WriteString(strings.Repeat(" ", columnGap))
	}
	return strings.TrimRight(b.String(), " ")
}

func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
