package report

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const Title = "Benchmark Comparison"

var Headers = []string{"Test Case", "Avg Turns Δ", "Avg Turns %", "Turn Time Δ (ms)", "Turn Time %"}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Italic(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	caseStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	mismatchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	betterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	worseStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Render draws rows as a bordered table under the title. Case names are
// purple when only one run has them; deltas are green when they went down
// and red otherwise.
func Render(rows []Row) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		BorderRow(true).
		Headers(Headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := cellStyle
			if row == table.HeaderRow {
				s = headerStyle
			}
			if col > 0 {
				s = s.Align(lipgloss.Right)
			}
			return s
		})

	for _, r := range rows {
		cells := r.Cells()
		name := caseStyle
		if r.Mismatch {
			name = mismatchStyle
		}
		turns, speed := worseStyle, worseStyle
		if r.FewerTurns() {
			turns = betterStyle
		}
		if r.Faster() {
			speed = betterStyle
		}
		t.Row(
			name.Render(cells[0]),
			turns.Render(cells[1]),
			turns.Render(cells[2]),
			speed.Render(cells[3]),
			speed.Render(cells[4]),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Center, titleStyle.Render(Title), t.String())
}
