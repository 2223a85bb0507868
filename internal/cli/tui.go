package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ganttsync/pkg/analysis"
	"github.com/matzehuels/ganttsync/pkg/gantt"
	gsio "github.com/matzehuels/ganttsync/pkg/io"
	"github.com/matzehuels/ganttsync/pkg/mutate"
	"github.com/matzehuels/ganttsync/pkg/pipeline"
	"github.com/matzehuels/ganttsync/pkg/schedule"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listCriticalStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// tuiHelp lists the key bindings shown under the title.
const tuiHelp = "↑/↓ navigate  d done  a active  c crit  x clear  m milestone  D delete  q quit"

// =============================================================================
// ChartModel - Interactive task list
// =============================================================================

// ApplyFunc performs one edit on a source.
type ApplyFunc func(src string, e pipeline.Edit) (mutate.Result, error)

// ChartModel is the bubbletea model for browsing and editing a chart.
// Every change is saved immediately.
type ChartModel struct {
	Source   string
	Tasks    []schedule.ResolvedTask
	Critical analysis.Set
	Cursor   int
	Offset   int
	Height   int

	// Message is the outcome of the last edit.
	Message string
	// Saves counts successful writes.
	Saves int

	apply ApplyFunc
	save  func(src string) error
}

// NewChartModel creates a chart model over src.
func NewChartModel(src string, apply ApplyFunc, save func(string) error) ChartModel {
	m := ChartModel{Height: 15, apply: apply, save: save}
	m.load(src)
	return m
}

// load re-derives tasks and the critical set from src.
func (m *ChartModel) load(src string) {
	p := pipeline.Parse(src)
	m.Source = src
	m.Tasks = p.Resolution.Tasks
	m.Critical = analysis.ComputeCriticalPath(m.Tasks).CriticalSet
	if m.Cursor >= len(m.Tasks) {
		m.Cursor = max(len(m.Tasks)-1, 0)
	}
	if m.Offset > m.Cursor {
		m.Offset = m.Cursor
	}
}

func (m ChartModel) Init() tea.Cmd {
	return nil
}

func (m ChartModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Tasks)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "d":
			m.edit(pipeline.Edit{Op: pipeline.OpToggleStatus, Status: gantt.StatusDone})
		case "a":
			m.edit(pipeline.Edit{Op: pipeline.OpToggleStatus, Status: gantt.StatusActive})
		case "c":
			m.edit(pipeline.Edit{Op: pipeline.OpToggleStatus, Status: gantt.StatusCrit})
		case "x":
			m.edit(pipeline.Edit{Op: pipeline.OpClearStatus})
		case "m":
			if t, ok := m.current(); ok {
				m.edit(pipeline.Edit{Op: pipeline.OpToggleMilestone, Milestone: !t.IsMilestone})
			}
		case "D":
			m.edit(pipeline.Edit{Op: pipeline.OpDelete, Cascade: true})
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 7
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ChartModel) current() (schedule.ResolvedTask, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Tasks) {
		return schedule.ResolvedTask{}, false
	}
	return m.Tasks[m.Cursor], true
}

// edit applies e to the task under the cursor, pinned to its line, and
// saves the result.
func (m *ChartModel) edit(e pipeline.Edit) {
	t, ok := m.current()
	if !ok {
		return
	}
	line := t.LineIndex
	e.Task = t.Label
	e.LineIndex = &line

	var detached int
	if e.Op == pipeline.OpDelete && e.Cascade {
		plain := schedule.Resolution{Tasks: m.Tasks}.Plain()
		detached = len(mutate.FindDependentTasks(plain, t.Task))
	}

	r, err := m.apply(m.Source, e)
	if err != nil {
		m.Message = StyleCritical.Render(iconError + " " + err.Error())
		return
	}
	if !r.Changed {
		m.Message = listDimStyle.Render("no change")
		return
	}
	if err := m.save(r.Source); err != nil {
		m.Message = StyleCritical.Render(iconError + " save: " + err.Error())
		return
	}
	m.Saves++
	m.load(r.Source)
	m.Message = StyleSuccess.Render(iconSuccess+" "+describeEdit(e))
	if detached > 0 {
		m.Message += listDimStyle.Render(fmt.Sprintf(" (detached %d)", detached))
	}
	if msg := r.Notice.Message(); msg != "" {
		m.Message += "  " + StyleWarning.Render(msg)
	}
}

func (m ChartModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Tasks"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(tuiHelp))
	b.WriteString("\n\n")

	if len(m.Tasks) == 0 {
		b.WriteString(listDimStyle.Render("  no tasks"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Tasks))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		t := m.Tasks[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			t.Label,
			orDash(t.Section),
			orDash(t.ResolvedStartDate),
			orDash(t.ResolvedEndDate),
			formatStatus(t.Task),
			orDash(t.Assignee),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Task", "Section", "Start", "End", "Status", "Assignee").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Tasks) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case col == 1 && m.Critical.Has(m.Tasks[idx].Key()):
				return listCriticalStyle
			case col == 2:
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(tbl.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Tasks))))
	if m.Message != "" {
		b.WriteString("  ")
		b.WriteString(m.Message)
	}
	return b.String()
}

// tuiCommand creates the interactive task list command.
func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui FILE",
		Short: "Browse tasks and toggle their status interactively",
		Long: `Tui lists the tasks of FILE with their resolved dates. Keys toggle status
tags and milestones or delete the selected task; every change is written to
FILE immediately. Critical tasks are highlighted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			src, err := gsio.ReadSource(path)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			ctx := cmd.Context()
			model := NewChartModel(src,
				func(src string, e pipeline.Edit) (mutate.Result, error) {
					return runner.Apply(ctx, src, e)
				},
				func(src string) error { return gsio.WriteSource(path, src) },
			)

			final, err := runTUI(ctx, model)
			if err != nil {
				return err
			}
			if n := final.Saves; n > 0 {
				printSuccess(cmd.OutOrStdout(), "Saved %d changes", n)
				printFile(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
}

// runTUI runs the model on the alternate screen until it quits or ctx is
// done.
func runTUI(ctx context.Context, model ChartModel) (ChartModel, error) {
	p := tea.NewProgram(model, tea.WithAltScreen())
	stop := context.AfterFunc(ctx, p.Quit)
	defer stop()

	final, err := p.Run()
	if err != nil {
		return model, err
	}
	if m, ok := final.(ChartModel); ok {
		return m, nil
	}
	return model, nil
}
