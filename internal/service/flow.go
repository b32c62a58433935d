package service

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/deppfellow/go-productivity/internal/errs"
	"github.com/deppfellow/go-productivity/internal/model"
	"github.com/deppfellow/go-productivity/internal/model/flow"
	"github.com/deppfellow/go-productivity/internal/model/note"
	"github.com/deppfellow/go-productivity/internal/model/task"
	"github.com/deppfellow/go-productivity/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type flowStore interface {
	ListFlows(ctx context.Context, userID string) ([]flow.Flow, error)
	GetFlowByID(ctx context.Context, userID string, id int64) (*flow.Flow, error)
	CreateFlow(ctx context.Context, userID string, payload *flow.CreateFlowPayload) (*flow.Flow, error)
	UpdateFlow(ctx context.Context, userID string, payload *flow.UpdateFlowPayload) (*flow.Flow, error)
	DeleteFlow(ctx context.Context, userID string, id int64) (int64, error)
}

// taskReader loads the children of flows.
type taskReader interface {
	TasksByFlows(ctx context.Context, flowIDs []int64, keywords string) ([]task.Task, error)
	SubItemsByTasks(ctx context.Context, taskIDs []int64) ([]task.SubItem, error)
	PicturesByTasks(ctx context.Context, taskIDs []int64) ([]task.Picture, error)
}

type noteReader interface {
	NotesByTasks(ctx context.Context, taskIDs []int64) ([]note.Note, error)
}

type FlowService struct {
	repo     flowStore
	tasks    taskReader
	notes    noteReader
	notifier notifier
	logger   *zerolog.Logger
}

func NewFlowService(repo flowStore, tasks taskReader, notes noteReader, n notifier, logger *zerolog.Logger) *FlowService {
	return &FlowService{repo: repo, tasks: tasks, notes: notes, notifier: n, logger: logger}
}

// List returns every flow of the user with its tasks. Keywords filter the
// tasks by name; flows without a matching task are still listed.
func (s *FlowService) List(ctx context.Context, userID string, query *flow.ListFlowsQuery) ([]flow.PopulatedFlow, error) {
	flows, err := s.repo.ListFlows(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, flows, query.Keywords)
}

// All returns the flows without their tasks.
func (s *FlowService) All(ctx context.Context, userID string) ([]flow.Flow, error) {
	flows, err := s.repo.ListFlows(ctx, userID)
	if err != nil {
		return nil, err
	}
	if flows == nil {
		flows = []flow.Flow{}
	}
	return flows, nil
}

func (s *FlowService) Get(ctx context.Context, userID string, id int64) (*flow.PopulatedFlow, error) {
	f, err := s.repo.GetFlowByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.populateOne(ctx, f)
}

func (s *FlowService) Create(ctx context.Context, userID string, payload *flow.CreateFlowPayload) (*flow.Flow, error) {
	f, err := s.repo.CreateFlow(ctx, userID, payload)
	if err != nil {
		return nil, err
	}

	content := fmt.Sprintf(`Created a new flow: <b style="color:black;">%s</b>`, html.EscapeString(f.Name))
	s.notifier.AddMessage(ctx, userID, "New flow", content)

	logFrom(ctx, s.logger).Info().Int64("flow_id", f.ID).Msg("flow created")
	return f, nil
}

// Update applies payload and returns the flow with its tasks.
func (s *FlowService) Update(ctx context.Context, userID string, payload *flow.UpdateFlowPayload) (*flow.PopulatedFlow, error) {
	f, err := s.repo.UpdateFlow(ctx, userID, payload)
	if err != nil {
		return nil, err
	}
	return s.populateOne(ctx, f)
}

// Delete refuses flows that still hold tasks.
func (s *FlowService) Delete(ctx context.Context, userID string, id int64) (*model.AffectedResult, error) {
	affected, err := s.repo.DeleteFlow(ctx, userID, id)
	if errors.Is(err, repository.ErrFlowNotEmpty) {
		return nil, errs.NewConflictError("Flow still has tasks, move or delete them first", true, errs.Code("FLOW_NOT_EMPTY"))
	}
	if err != nil {
		return nil, err
	}
	return &model.AffectedResult{Affected: affected}, nil
}

func (s *FlowService) populateOne(ctx context.Context, f *flow.Flow) (*flow.PopulatedFlow, error) {
	populated, err := s.populate(ctx, []flow.Flow{*f}, "")
	if err != nil {
		return nil, err
	}
	return &populated[0], nil
}

// populate attaches tasks to flows, and sub items, pictures and notes to
// tasks, keeping the order the repositories return.
func (s *FlowService) populate(ctx context.Context, flows []flow.Flow, keywords string) ([]flow.PopulatedFlow, error) {
	result := make([]flow.PopulatedFlow, len(flows))
	if len(flows) == 0 {
		return result, nil
	}

	flowIDs := make([]int64, len(flows))
	for i, f := range flows {
		flowIDs[i] = f.ID
	}

	tasks, err := s.tasks.TasksByFlows(ctx, flowIDs, keywords)
	if err != nil {
		return nil, err
	}

	taskIDs := make([]int64, len(tasks))
	for i, t := range tasks {
		taskIDs[i] = t.ID
	}

	var (
		subItems []task.SubItem
		pictures []task.Picture
		notes    []note.Note
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		subItems, err = s.tasks.SubItemsByTasks(gctx, taskIDs)
		return err
	})
	g.Go(func() error {
		var err error
		pictures, err = s.tasks.PicturesByTasks(gctx, taskIDs)
		return err
	})
	g.Go(func() error {
		var err error
		notes, err = s.notes.NotesByTasks(gctx, taskIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	subItemsByTask := groupBy(subItems, func(v task.SubItem) int64 { return v.TaskID })
	picturesByTask := groupBy(pictures, func(v task.Picture) int64 { return v.TaskID })
	notesByTask := map[int64][]note.Note{}
	for _, n := range notes {
		if n.TaskID != nil {
			notesByTask[*n.TaskID] = append(notesByTask[*n.TaskID], n)
		}
	}

	tasksByFlow := map[int64][]task.PopulatedTask{}
	for _, t := range tasks {
		tasksByFlow[t.FlowID] = append(tasksByFlow[t.FlowID], task.PopulatedTask{
			Task:     t,
			SubItems: orEmpty(subItemsByTask[t.ID]),
			Pictures: orEmpty(picturesByTask[t.ID]),
			Notes:    orEmpty(notesByTask[t.ID]),
		})
	}

	for i, f := range flows {
		result[i] = flow.PopulatedFlow{Flow: f, Tasks: orEmpty(tasksByFlow[f.ID])}
	}
	return result, nil
}

func groupBy[T any](items []T, key func(T) int64) map[int64][]T {
	out := make(map[int64][]T)
	for _, item := range items {
		k := key(item)
		out[k] = append(out[k], item)
	}
	return out
}

// orEmpty keeps JSON lists as [] instead of null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
