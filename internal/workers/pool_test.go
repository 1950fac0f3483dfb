package workers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/repo-warden/internal/config"
	"github.com/sevigo/repo-warden/internal/core"
	"github.com/sevigo/repo-warden/internal/storage"
	"github.com/sevigo/repo-warden/mocks"
)

type poolStore struct {
	storage.Store

	commit *core.Commit
	repo   *core.Repository

	completed []int64
	failures  []string
}

func (s *poolStore) GetCommit(_ context.Context, id int64) (*core.Commit, error) {
	if s.commit != nil && s.commit.ID == id {
		return s.commit, nil
	}
	return nil, nil
}

func (s *poolStore) GetRepositoryByID(_ context.Context, id int64) (*core.Repository, error) {
	if s.repo != nil && s.repo.ID == id {
		return s.repo, nil
	}
	return nil, nil
}

func (s *poolStore) CompleteTask(_ context.Context, taskID int64) error {
	s.completed = append(s.completed, taskID)
	return nil
}

func (s *poolStore) FailTask(_ context.Context, _ int64, reason string, _ int) error {
	s.failures = append(s.failures, reason)
	return nil
}

func TestPoolProcessTask(t *testing.T) {
	repo := &core.Repository{ID: 1, Callsign: "WARDEN", VCS: core.VCSGit}
	commit := &core.Commit{ID: 10, RepositoryID: 1, Identifier: "abc123"}
	task := &core.Task{ID: 99, Executor: ExecHerald, Payload: core.TaskPayload{CommitID: 10, Only: true}}

	newExec := func(t *testing.T, runErr error) core.Executor {
		ctrl := gomock.NewController(t)
		exec := mocks.NewMockExecutor(ctrl)
		exec.EXPECT().Name().Return(ExecHerald).AnyTimes()
		exec.EXPECT().Run(gomock.Any(), repo, commit).Return(runErr)
		return exec
	}

	t.Run("successful task is completed", func(t *testing.T) {
		store := &poolStore{commit: commit, repo: repo}
		registry := NewRegistry()
		registry.RegisterAgnostic(core.OpHerald, newExec(t, nil))

		pool := NewPool(store, registry, config.WorkerConfig{}, testLogger())
		pool.processTask(context.Background(), 0, task)

		assert.Equal(t, []int64{99}, store.completed)
		assert.Empty(t, store.failures)
	})

	t.Run("failing task is recorded", func(t *testing.T) {
		store := &poolStore{commit: commit, repo: repo}
		registry := NewRegistry()
		registry.RegisterAgnostic(core.OpHerald, newExec(t, errors.New("mirror unreachable")))

		pool := NewPool(store, registry, config.WorkerConfig{}, testLogger())
		pool.processTask(context.Background(), 0, task)

		assert.Empty(t, store.completed)
		assert.Equal(t, []string{"mirror unreachable"}, store.failures)
	})

	t.Run("unknown executor fails the task", func(t *testing.T) {
		store := &poolStore{commit: commit, repo: repo}
		pool := NewPool(store, NewRegistry(), config.WorkerConfig{}, testLogger())

		pool.processTask(context.Background(), 0, &core.Task{ID: 5, Executor: "gone"})
		assert.Len(t, store.failures, 1)
	})

	t.Run("missing commit fails the task", func(t *testing.T) {
		store := &poolStore{repo: repo}
		registry := NewRegistry()
		ctrl := gomock.NewController(t)
		exec := mocks.NewMockExecutor(ctrl)
		exec.EXPECT().Name().Return(ExecHerald).AnyTimes()
		registry.RegisterAgnostic(core.OpHerald, exec)

		pool := NewPool(store, registry, config.WorkerConfig{}, testLogger())
		pool.processTask(context.Background(), 0, task)
		assert.Len(t, store.failures, 1)
	})
}
