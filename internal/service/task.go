package service

import (
	"context"

	"github.com/deppfellow/go-productivity/internal/model"
	"github.com/deppfellow/go-productivity/internal/model/note"
	"github.com/deppfellow/go-productivity/internal/model/task"
	"github.com/rs/zerolog"
)

type taskStore interface {
	CreateTask(ctx context.Context, userID string, payload *task.CreateTaskPayload) (*task.PopulatedTask, error)
	UpdateTask(ctx context.Context, userID string, payload *task.UpdateTaskPayload) (*task.Task, error)
	DeleteTask(ctx context.Context, userID string, id int64) (int64, error)
}

type TaskService struct {
	repo   taskStore
	logger *zerolog.Logger
}

func NewTaskService(repo taskStore, logger *zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger}
}

func (s *TaskService) Create(ctx context.Context, userID string, payload *task.CreateTaskPayload) (*task.PopulatedTask, error) {
	t, err := s.repo.CreateTask(ctx, userID, payload)
	if err != nil {
		return nil, err
	}
	if t.Notes == nil {
		t.Notes = []note.Note{}
	}

	logFrom(ctx, s.logger).Info().
		Int64("task_id", t.ID).
		Int64("flow_id", t.FlowID).
		Int("sub_items", len(t.SubItems)).
		Msg("task created")
	return t, nil
}

func (s *TaskService) Update(ctx context.Context, userID string, payload *task.UpdateTaskPayload) (*task.Task, error) {
	return s.repo.UpdateTask(ctx, userID, payload)
}

func (s *TaskService) Delete(ctx context.Context, userID string, id int64) (*model.AffectedResult, error) {
	affected, err := s.repo.DeleteTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &model.AffectedResult{Affected: affected}, nil
}
