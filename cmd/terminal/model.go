package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sevigo/repo-warden/internal/app"
	"github.com/sevigo/repo-warden/internal/core"
)

const refreshInterval = 2 * time.Second

type model struct {
	styles styles
	app    *app.App

	cleanup func()

	spinner   spinner.Model
	taskTable table.Model
	isLoading bool

	repos   []*core.Repository
	counts  map[core.TaskStatus]int
	lastErr error

	width  int
	height int
}

func initialModel(theme ThemeName) *model {
	styles := GetTheme(theme)

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))

	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "EXECUTOR", Width: 22},
		{Title: "COMMIT", Width: 8},
		{Title: "STATUS", Width: 8},
		{Title: "ATTEMPTS", Width: 8},
		{Title: "LAST ERROR", Width: 40},
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	return &model{
		styles:    styles,
		spinner:   sp,
		taskTable: tbl,
		isLoading: true,
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(initializeAppCmd(), m.spinner.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tblCmd tea.Cmd
		spCmd  tea.Cmd
	)

	m.taskTable, tblCmd = m.taskTable.Update(msg)
	m.spinner, spCmd = m.spinner.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.cleanup != nil {
				m.cleanup()
			}
			return m, tea.Quit
		case "r":
			if m.app != nil {
				return m, loadStatusCmd(m.app)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.taskTable.SetHeight(max(5, msg.Height-12))

	case appInitializedMsg:
		if msg.err != nil {
			m.isLoading = false
			m.lastErr = msg.err
			return m, nil
		}
		m.app = msg.app
		m.cleanup = msg.cleanup
		return m, loadStatusCmd(m.app)

	case statusLoadedMsg:
		m.isLoading = false
		if msg.err != nil {
			m.lastErr = msg.err
		} else {
			m.lastErr = nil
			m.repos = msg.repos
			m.counts = msg.counts
			m.taskTable.SetRows(taskRows(msg.tasks))
		}
		return m, tickCmd(refreshInterval)

	case tickMsg:
		if m.app != nil {
			return m, loadStatusCmd(m.app)
		}
	}

	return m, tea.Batch(tblCmd, spCmd)
}

func (m *model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.header.Render("REPO-WARDEN QUEUE MONITOR"))
	b.WriteString("\n")

	if m.isLoading {
		b.WriteString(fmt.Sprintf("\n %s initializing...\n", m.spinner.View()))
		return m.styles.app.Render(b.String())
	}
	if m.lastErr != nil {
		b.WriteString("\n" + m.styles.error.Render("ERROR: "+m.lastErr.Error()) + "\n")
	}

	b.WriteString(m.reposSummary())
	b.WriteString("\n")
	b.WriteString(m.queueSummary())
	b.WriteString("\n\n")
	b.WriteString(m.styles.pane.Render(m.taskTable.View()))
	b.WriteString("\n")
	b.WriteString(m.styles.footer.Render(m.styles.inactive.Render("r: refresh • q: quit")))

	return m.styles.app.Render(b.String())
}

func (m *model) reposSummary() string {
	if len(m.repos) == 0 {
		return m.styles.inactive.Render("no repositories tracked")
	}
	parts := make([]string, 0, len(m.repos))
	for _, repo := range m.repos {
		parts = append(parts, fmt.Sprintf("%s (%s)", repo.Callsign, repo.VCS))
	}
	return m.styles.label.Render("repositories: ") + strings.Join(parts, ", ")
}

func (m *model) queueSummary() string {
	pending := m.styles.warning.Render(fmt.Sprintf("pending=%d", m.counts[core.TaskPending]))
	leased := m.styles.label.Render(fmt.Sprintf("leased=%d", m.counts[core.TaskLeased]))
	done := m.styles.success.Render(fmt.Sprintf("done=%d", m.counts[core.TaskDone]))
	failed := m.styles.error.Render(fmt.Sprintf("failed=%d", m.counts[core.TaskFailed]))
	return m.styles.label.Render("queue: ") + strings.Join([]string{pending, leased, done, failed}, " ")
}

func taskRows(tasks []*core.Task) []table.Row {
	rows := make([]table.Row, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, table.Row{
			strconv.FormatInt(task.ID, 10),
			task.Executor,
			strconv.FormatInt(task.Payload.CommitID, 10),
			string(task.Status),
			strconv.Itoa(task.Attempts),
			task.LastError,
		})
	}
	return rows
}
