package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type table struct {
	title   string
	headers []string
	rows    [][]string
}

func (t *table) add(row ...string) { t.rows = append(t.rows, row) }

func (t *table) render(st Styles, empty string) string {
	var sb strings.Builder
	if t.title != "" {
		sb.WriteString(st.Title.Render(t.title))
		sb.WriteString("\n")
	}
	if len(t.rows) == 0 {
		sb.WriteString(st.Muted.Render(empty))
		return sb.String()
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(widths))
		for i := range widths {
			v := ""
			if i < len(cells) {
				v = cells[i]
			}
			parts[i] = style.Width(widths[i] + 2).Render(v)
		}
		return strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, parts...), " ")
	}
	sb.WriteString(line(t.headers, st.Header))
	for _, row := range t.rows {
		sb.WriteString("\n")
		sb.WriteString(line(row, st.Cell))
	}
	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
