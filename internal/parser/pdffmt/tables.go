package pdffmt

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// rowTolerance is the Y-coordinate distance within which two spans are
// considered to be on the same table row.
const rowTolerance = 2.0

// extractTables groups text spans into rows by Y-coordinate proximity and
// columns by X-coordinate clustering, per page, emitting a Markdown pipe
// table per page that has at least two rows, at least one of them holding
// two or more spans.
// pdfcpu is a page/content manipulation library, not a layout analyzer,
// so this is a geometry heuristic built directly on the font-metadata
// spans already extracted for heading detection.
func extractTables(spans []span) []string {
	byPage := make(map[int][]span)
	var pages []int
	for _, s := range spans {
		if _, ok := byPage[s.page]; !ok {
			pages = append(pages, s.page)
		}
		byPage[s.page] = append(byPage[s.page], s)
	}
	sort.Ints(pages)

	var tables []string
	for _, page := range pages {
		rows := groupRows(byPage[page])
		if len(rows) < 2 {
			continue
		}
		cols := maxCols(rows)
		if cols < 2 {
			continue
		}
		tables = append(tables, renderTable(page, rows))
	}
	return tables
}

func groupRows(spans []span) [][]span {
	sort.Slice(spans, func(i, j int) bool {
		if math.Abs(spans[i].y-spans[j].y) > rowTolerance {
			return spans[i].y > spans[j].y
		}
		return spans[i].x < spans[j].x
	})

	var rows [][]span
	var current []span
	var lastY float64
	first := true
	for _, s := range spans {
		if first {
			current = append(current, s)
			lastY = s.y
			first = false
			continue
		}
		if math.Abs(s.y-lastY) > rowTolerance {
			rows = append(rows, current)
			current = []span{s}
			lastY = s.y
			continue
		}
		current = append(current, s)
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}
	return rows
}

func maxCols(rows [][]span) int {
	max := 0
	for _, r := range rows {
		if len(r) > max {
			max = len(r)
		}
	}
	return max
}

func renderTable(page int, rows [][]span) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Table from page %d**\n\n", page)

	cells := make([][]string, len(rows))
	width := maxCols(rows)
	for i, row := range rows {
		rowCells := make([]string, 0, len(row))
		for _, s := range row {
			text := strings.ReplaceAll(strings.TrimSpace(s.text), "\n", " ")
			text = strings.ReplaceAll(text, "|", "\\|")
			rowCells = append(rowCells, text)
		}
		for len(rowCells) < width {
			rowCells = append(rowCells, "")
		}
		cells[i] = rowCells
	}

	sb.WriteString(renderRow(cells[0]))
	sep := make([]string, width)
	for i := range sep {
		sep[i] = "---"
	}
	sb.WriteString(renderRow(sep))
	for _, row := range cells[1:] {
		sb.WriteString(renderRow(row))
	}
	return sb.String()
}

func renderRow(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |\n"
}
