package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/floodsnek/arena"
)

const recentGames = 8

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

type tickMsg time.Time

type runDoneMsg struct{}

type caseProgress struct {
	games int
	turns int
}

type model struct {
	cfg       arena.Config
	total     int
	played    int
	byCase    map[string]*caseProgress
	recent    []string
	startTime time.Time
	done      bool
	updates   <-chan arena.GameResult
}

func newModel(cfg arena.Config, updates <-chan arena.GameResult) model {
	return model{
		cfg:       cfg,
		total:     cfg.Total(),
		byCase:    map[string]*caseProgress{},
		startTime: time.Now(),
		updates:   updates,
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForUpdate(updates <-chan arena.GameResult) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-updates
		if !ok {
			return runDoneMsg{}
		}
		return r
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tickMsg:
		return m, tickCmd()
	case arena.GameResult:
		m.played++
		key := arena.Case{Strategy: msg.Strategy, Board: arena.BoardSize{Width: msg.Width, Height: msg.Height}}.Key()
		cp := m.byCase[key]
		if cp == nil {
			cp = &caseProgress{}
			m.byCase[key] = cp
		}
		cp.games++
		cp.turns += msg.Turns

		line := fmt.Sprintf("%-16s #%-4d %5d turns  %8s/turn", key, msg.GameNumber, msg.Turns, msg.AvgTurnTime().Round(time.Microsecond))
		if len(msg.Players) > 0 && msg.Players[0].Cause != "" {
			line += "  " + msg.Players[0].Cause
		}
		m.recent = append([]string{line}, m.recent...)
		if len(m.recent) > recentGames {
			m.recent = m.recent[:recentGames]
		}
		return m, waitForUpdate(m.updates)
	case runDoneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Benchmark") + "\n\n")

	elapsed := time.Since(m.startTime).Round(time.Second)
	fmt.Fprintf(&b, "%s %d/%d games  %s\n\n", progressBar(m.played, m.total, 30), m.played, m.total, elapsed)

	for _, c := range m.cfg.Cases() {
		cp := m.byCase[c.Key()]
		if cp == nil {
			fmt.Fprintf(&b, "  %-16s %s\n", c.Key(), dimStyle.Render("waiting"))
			continue
		}
		fmt.Fprintf(&b, "  %-16s %4d/%-4d avg %.1f turns\n", c.Key(), cp.games, m.cfg.Games, float64(cp.turns)/float64(cp.games))
	}

	if len(m.recent) > 0 {
		b.WriteString("\nRecent games:\n")
		for _, line := range m.recent {
			b.WriteString("  " + line + "\n")
		}
	}
	if m.done {
		b.WriteString("\nDone.\n")
	} else {
		b.WriteString(dimStyle.Render("\nPress q to stop early.") + "\n")
	}
	return b.String()
}

func progressBar(done, total, width int) string {
	if total <= 0 {
		return strings.Repeat("░", width)
	}
	filled := min(width, done*width/total)
	return barStyle.Render(strings.Repeat("█", filled)) + strings.Repeat("░", width-filled)
}
