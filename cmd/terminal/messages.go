package main

import (
	"time"

	"github.com/sevigo/repo-warden/internal/app"
	"github.com/sevigo/repo-warden/internal/core"
)

// Indicates that the core application services have been initialized.
type appInitializedMsg struct {
	app     *app.App
	cleanup func()
	err     error
}

// One refreshed snapshot of the repositories and the task queue.
type statusLoadedMsg struct {
	repos  []*core.Repository
	counts map[core.TaskStatus]int
	tasks  []*core.Task
	err    error
}

// Fires when the next refresh is due.
type tickMsg time.Time
