// Package handler provides HTTP handlers for the webhook intake API.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/repo-warden/internal/config"
	"github.com/sevigo/repo-warden/internal/core"
	"github.com/sevigo/repo-warden/internal/storage"
)

// WebhookHandler records pushed commits and enqueues their parse tasks.
type WebhookHandler struct {
	cfg      *config.Config
	store    storage.Store
	queue    core.TaskQueue
	registry core.ExecutorRegistry
	logger   *slog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(cfg *config.Config, store storage.Store, queue core.TaskQueue, registry core.ExecutorRegistry, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		cfg:      cfg,
		store:    store,
		queue:    queue,
		registry: registry,
		logger:   logger,
	}
}

// Handle processes GitHub webhook requests.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := github.ValidatePayload(r, []byte(h.cfg.GitHub.WebhookSecret))
	if err != nil {
		h.logger.Error("invalid webhook payload signature", "error", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := github.ParseWebHook(github.WebHookType(r), payload)
	if err != nil {
		h.logger.Error("could not parse webhook", "error", err)
		http.Error(w, "Could not parse webhook", http.StatusBadRequest)
		return
	}

	switch e := event.(type) {
	case *github.PushEvent:
		h.handlePush(r.Context(), w, e)
	default:
		h.logger.Debug("ignoring unhandled webhook event type", "type", github.WebHookType(r))
		_, _ = fmt.Fprint(w, "Event type not handled")
	}
}

// handlePush records the pushed commits and queues message, change and
// herald processing for each of them.
func (h *WebhookHandler) handlePush(ctx context.Context, w http.ResponseWriter, event *github.PushEvent) {
	push, err := core.EventFromPush(event)
	if err != nil {
		h.logger.Debug("ignoring push event", "reason", err.Error())
		_, _ = fmt.Fprint(w, "Push ignored")
		return
	}

	repo, err := h.store.GetRepositoryByName(ctx, push.RepoFullName)
	if err != nil {
		h.logger.Error("failed to look up repository", "error", err, "repo", push.RepoFullName)
		http.Error(w, "Failed to process push", http.StatusInternalServerError)
		return
	}
	if repo == nil {
		h.logger.Debug("push for untracked repository", "repo", push.RepoFullName)
		_, _ = fmt.Fprint(w, "Repository not tracked")
		return
	}

	queued := 0
	for _, pc := range push.Commits {
		commit := &core.Commit{
			RepositoryID: repo.ID,
			Identifier:   pc.Identifier,
			Epoch:        pc.Epoch,
			AuthorName:   pc.AuthorName,
			AuthorEmail:  pc.AuthorEmail,
			Summary:      pc.Summary,
		}
		if err := h.store.CreateCommit(ctx, commit); err != nil {
			h.logger.Error("failed to record commit", "error", err, "identifier", pc.Identifier)
			http.Error(w, "Failed to record commits", http.StatusInternalServerError)
			return
		}

		for _, op := range []core.Operation{core.OpMessage, core.OpChange, core.OpHerald} {
			name, ok := h.registry.Resolve(repo.VCS, op)
			if !ok {
				continue
			}
			payload := core.TaskPayload{CommitID: commit.ID, Only: true}
			if err := h.queue.Enqueue(ctx, name, payload); err != nil {
				h.logger.Error("failed to enqueue task", "error", err, "executor", name)
				http.Error(w, "Failed to queue processing", http.StatusInternalServerError)
				return
			}
			queued++
		}
	}

	h.logger.Info("push processed", "repo", repo.Callsign,
		"commits", len(push.Commits), "tasks_queued", queued)
	w.WriteHeader(http.StatusAccepted)
	_, _ = fmt.Fprintf(w, "Recorded %d commits", len(push.Commits))
}
