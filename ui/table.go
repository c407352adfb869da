package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	runewidth "github.com/mattn/go-runewidth"
)

var borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

// visibleWidth is the number of terminal cells s takes once colour codes
// are stripped.
func visibleWidth(s string) int {
	return runewidth.StringWidth(ansi.Strip(s))
}

// tableLayout holds the column widths of one table. Groups of rows are
// separated by a ├─┼─┤ divider.
type tableLayout struct {
	headers []string
	groups  [][][]string
	widths  []int
	colored bool
}

func newTableLayout(headers []string, groups [][][]string, colored bool) *tableLayout {
	ncols := len(headers)
	for _, g := range groups {
		for _, row := range g {
			ncols = max(ncols, len(row))
		}
	}
	t := &tableLayout{
		headers: headers,
		groups:  groups,
		widths:  make([]int, ncols),
		colored: colored,
	}
	t.fit(headers)
	for _, g := range groups {
		for _, row := range g {
			t.fit(row)
		}
	}
	return t
}

func (t *tableLayout) fit(row []string) {
	for i, cell := range row {
		t.widths[i] = max(t.widths[i], visibleWidth(cell))
	}
}

func (t *tableLayout) border(s string) string {
	if !t.colored {
		return s
	}
	return borderStyle.Render(s)
}

func (t *tableLayout) rule(left, mid, right string) string {
	parts := make([]string, len(t.widths))
	for i, w := range t.widths {
		parts[i] = strings.Repeat("─", w+2)
	}
	return t.border(left + strings.Join(parts, mid) + right)
}

func (t *tableLayout) row(cells []string) string {
	parts := make([]string, len(t.widths))
	for i, w := range t.widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = " " + cell + strings.Repeat(" ", w-visibleWidth(cell)) + " "
	}
	bar := t.border("│")
	return bar + strings.Join(parts, bar) + bar
}

// lines renders the whole table, one string per output line.
func (t *tableLayout) lines() []string {
	out := []string{t.rule("┌", "┬", "┐")}
	if len(t.headers) > 0 {
		out = append(out, t.row(t.headers), t.rule("├", "┼", "┤"))
	}
	for i, g := range t.groups {
		if i > 0 {
			out = append(out, t.rule("├", "┼", "┤"))
		}
		for _, row := range g {
			out = append(out, t.row(row))
		}
	}
	return append(out, t.rule("└", "┴", "┘"))
}
