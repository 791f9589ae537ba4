package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/AgileSoftDev-2025/storycanvas/internal/output"
	"github.com/AgileSoftDev-2025/storycanvas/internal/store"
	scsync "github.com/AgileSoftDev-2025/storycanvas/internal/sync"
)

// colDoneMsg reports one finished collection sync.
type colDoneMsg struct {
	label  string
	result scsync.TwoWayResult
	err    error
}

type syncWatchModel struct {
	spinner spinner.Model
	coord   *scsync.Coordinator
	ctx     context.Context
	project string

	// next indexes store.EntityCollections; collections sync one at a
	// time because the coordinator holds a per-project guard.
	next   int
	lines  []string
	failed bool
}

func newSyncWatchModel(ctx context.Context, coord *scsync.Coordinator, projectID string) syncWatchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	return syncWatchModel{
		spinner: sp,
		coord:   coord,
		ctx:     ctx,
		project: projectID,
	}
}

func (m syncWatchModel) syncCollection(col store.Collection) tea.Cmd {
	return func() tea.Msg {
		res, err := m.coord.TwoWaySync(m.ctx, m.project, col)
		return colDoneMsg{label: collectionLabels[col], result: res, err: err}
	}
}

func (m syncWatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.syncCollection(store.EntityCollections[0]))
}

func (m syncWatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil

	case colDoneMsg:
		if msg.err != nil {
			m.failed = true
			m.lines = append(m.lines, fmt.Sprintf("✗ %-11s %v", msg.label, msg.err))
		} else {
			line := fmt.Sprintf("✓ %-11s pulled %d, pushed %d", msg.label, msg.result.Pulled, msg.result.Pushed)
			if msg.result.Conflicts > 0 {
				line += fmt.Sprintf(", %d conflicts", msg.result.Conflicts)
			}
			m.lines = append(m.lines, line)
		}
		m.next++
		if m.next >= len(store.EntityCollections) {
			return m, tea.Quit
		}
		return m, m.syncCollection(store.EntityCollections[m.next])

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m syncWatchModel) View() string {
	s := ""
	for _, line := range m.lines {
		s += line + "\n"
	}
	if remaining := len(store.EntityCollections) - m.next; remaining > 0 {
		s += fmt.Sprintf("%s syncing %s (%d collections left)\n", m.spinner.View(), m.project, remaining)
	}
	return s
}

// runSyncWatch drives the full two-way sync behind a live spinner view.
func runSyncWatch(cmd *cobra.Command, coord *scsync.Coordinator, projectID string) error {
	if err := coord.EnsureRemoteProject(cmd.Context(), projectID); err != nil {
		output.Error("upload project: %v", err)
		return err
	}

	model := newSyncWatchModel(cmd.Context(), coord, projectID)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(syncWatchModel); ok && fm.failed {
		return fmt.Errorf("sync finished with errors")
	}
	return nil
}
