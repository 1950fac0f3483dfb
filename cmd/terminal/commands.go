package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/repo-warden/internal/app"
	"github.com/sevigo/repo-warden/internal/wire"
)

const recentTaskLimit = 50

func initializeAppCmd() tea.Cmd {
	return func() tea.Msg {
		app, cleanup, err := wire.InitializeApp(context.Background())
		if err != nil {
			return appInitializedMsg{err: err}
		}
		return appInitializedMsg{app: app, cleanup: cleanup}
	}
}

func loadStatusCmd(app *app.App) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		repos, err := app.Store.GetAllRepositories(ctx)
		if err != nil {
			return statusLoadedMsg{err: err}
		}
		counts, err := app.Store.CountTasks(ctx)
		if err != nil {
			return statusLoadedMsg{err: err}
		}
		tasks, err := app.Store.ListRecentTasks(ctx, recentTaskLimit)
		if err != nil {
			return statusLoadedMsg{err: err}
		}
		return statusLoadedMsg{repos: repos, counts: counts, tasks: tasks}
	}
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
