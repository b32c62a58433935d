package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/go-productivity/internal/errs"
	"github.com/deppfellow/go-productivity/internal/lib/job"
	"github.com/deppfellow/go-productivity/internal/lib/upstream"
	"github.com/deppfellow/go-productivity/internal/model"
	"github.com/deppfellow/go-productivity/internal/model/flow"
	"github.com/deppfellow/go-productivity/internal/model/note"
	"github.com/deppfellow/go-productivity/internal/model/notification"
	"github.com/deppfellow/go-productivity/internal/model/proxy"
	"github.com/deppfellow/go-productivity/internal/model/task"
	"github.com/deppfellow/go-productivity/internal/model/user"
	"github.com/deppfellow/go-productivity/internal/repository"
	"github.com/deppfellow/go-productivity/internal/sqlerr"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobs struct {
	enqueued []*asynq.Task
	handlers map[string]asynq.HandlerFunc
	err      error
}

func (f *fakeJobs) Enqueue(_ context.Context, t *asynq.Task, _ ...asynq.Option) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, t)
	return nil
}

func (f *fakeJobs) Handle(taskType string, h asynq.HandlerFunc) {
	if f.handlers == nil {
		f.handlers = map[string]asynq.HandlerFunc{}
	}
	f.handlers[taskType] = h
}

type fakeUsers struct {
	users   map[string]*user.User
	created []user.Profile
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*user.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, sqlerr.WithTable("users", pgx.ErrNoRows)
}

func (f *fakeUsers) CreateUser(_ context.Context, p user.Profile) (*user.User, bool, error) {
	if u, ok := f.users[p.ID]; ok {
		return u, false, nil
	}
	f.created = append(f.created, p)
	u := &user.User{ID: p.ID, Nickname: p.Nickname, Avatar: p.Avatar, Email: p.Email}
	if f.users == nil {
		f.users = map[string]*user.User{}
	}
	f.users[p.ID] = u
	return u, true, nil
}

type recordedMessage struct{ userID, title, content string }

type fakeNotifier struct{ messages []recordedMessage }

func (f *fakeNotifier) AddMessage(_ context.Context, userID, title, content string) {
	f.messages = append(f.messages, recordedMessage{userID, title, content})
}

func strPtr(s string) *string { return &s }

func TestUserService_EnsureCreatesAndWelcomes(t *testing.T) {
	users := &fakeUsers{}
	jobs := &fakeJobs{}
	fetch := func(_ context.Context, id string) (user.Profile, error) {
		return user.Profile{ID: id, Nickname: "ada", Avatar: "https://img/a.png", Email: strPtr("ada@example.com")}, nil
	}
	s := NewUserService(users, jobs, fetch, nil)

	u, err := s.Ensure(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Nickname)
	require.Len(t, jobs.enqueued, 1)
	assert.Equal(t, job.TaskWelcome, jobs.enqueued[0].Type())

	// A second call finds the stored row and sends nothing.
	_, err = s.Ensure(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Len(t, users.created, 1)
	assert.Len(t, jobs.enqueued, 1)
}

func TestUserService_EnsureFallsBackWhenProfileFails(t *testing.T) {
	users := &fakeUsers{}
	jobs := &fakeJobs{}
	fetch := func(context.Context, string) (user.Profile, error) { return user.Profile{}, errors.New("clerk down") }
	s := NewUserService(users, jobs, fetch, nil)

	u, err := s.Ensure(context.Background(), "user_2")

	require.NoError(t, err)
	assert.Equal(t, "user_2", u.Nickname)
	assert.Empty(t, jobs.enqueued)
}

func TestUserService_EnsureIgnoresEnqueueFailure(t *testing.T) {
	jobs := &fakeJobs{err: errors.New("redis down")}
	fetch := func(_ context.Context, id string) (user.Profile, error) {
		return user.Profile{ID: id, Email: strPtr("x@example.com")}, nil
	}
	s := NewUserService(&fakeUsers{}, jobs, fetch, nil)

	_, err := s.Ensure(context.Background(), "user_3")
	assert.NoError(t, err)
}

func TestProfileFromClerk(t *testing.T) {
	cu := &clerk.User{
		ID:                    "user_1",
		FirstName:             strPtr("Ada"),
		ImageURL:              strPtr("https://img/ada.png"),
		PrimaryEmailAddressID: strPtr("idn_2"),
		EmailAddresses: []*clerk.EmailAddress{
			{ID: "idn_1", EmailAddress: "old@example.com"},
			{ID: "idn_2", EmailAddress: "ada@example.com"},
		},
	}

	p := profileFromClerk(cu)

	assert.Equal(t, "Ada", p.Nickname)
	assert.Equal(t, "https://img/ada.png", p.Avatar)
	require.NotNil(t, p.Email)
	assert.Equal(t, "ada@example.com", *p.Email)
}

type fakeNotifications struct {
	created []*notification.CreatePayload
	avatars []string
}

func (f *fakeNotifications) CreateNotification(_ context.Context, p *notification.CreatePayload, avatar string) (*notification.PopulatedNotification, error) {
	f.created = append(f.created, p)
	f.avatars = append(f.avatars, avatar)
	return &notification.PopulatedNotification{Notification: notification.Notification{ID: int64(len(f.created)), UserID: p.UserID}}, nil
}

func (f *fakeNotifications) ListNotifications(context.Context, string, *notification.ListNotificationsQuery) (*model.PaginatedResponse[notification.PopulatedNotification], error) {
	return &model.PaginatedResponse[notification.PopulatedNotification]{}, nil
}

func (f *fakeNotifications) UnreadCount(context.Context, string) (int64, error) { return 3, nil }

func (f *fakeNotifications) MarkRead(context.Context, string, int64) error { return nil }

func (f *fakeNotifications) MarkAllRead(context.Context, string) (int64, error) { return 2, nil }

func TestNotificationService_AddMessageRunsThroughWorker(t *testing.T) {
	repo := &fakeNotifications{}
	users := &fakeUsers{users: map[string]*user.User{"u1": {ID: "u1", Avatar: "https://img/u1.png"}}}
	jobs := &fakeJobs{}
	s := NewNotificationService(repo, users, jobs, nil)

	s.AddMessage(context.Background(), "u1", "New flow", "Created a new flow")

	require.Len(t, jobs.enqueued, 1)
	handler, ok := jobs.handlers[job.TaskNotificationCreate]
	require.True(t, ok)
	require.NoError(t, handler(context.Background(), jobs.enqueued[0]))

	require.Len(t, repo.created, 1)
	assert.Equal(t, "u1", repo.created[0].UserID)
	assert.Equal(t, "New flow", repo.created[0].Title)
	assert.Equal(t, "https://img/u1.png", repo.avatars[0])
}

func TestNotificationService_UnknownUserIsNotRetried(t *testing.T) {
	jobs := &fakeJobs{}
	s := NewNotificationService(&fakeNotifications{}, &fakeUsers{}, jobs, nil)
	s.AddMessage(context.Background(), "ghost", "t", "c")

	err := jobs.handlers[job.TaskNotificationCreate](context.Background(), jobs.enqueued[0])

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestNotificationService_Counts(t *testing.T) {
	s := NewNotificationService(&fakeNotifications{}, &fakeUsers{}, &fakeJobs{}, nil)

	count, err := s.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count.Count)

	res, err := s.MarkAllRead(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Affected)
}

type fakeNotes struct{ notes []note.Note }

func (f *fakeNotes) CreateNote(_ context.Context, userID string, p *note.CreateNotePayload) (*note.Note, error) {
	n := note.Note{Base: model.Base{ID: 11}, OwnerID: userID, Title: p.Title, Content: p.Content}
	return &n, nil
}

func (f *fakeNotes) ListNotes(context.Context, string, *note.ListNotesQuery) (*model.PaginatedResponse[note.PopulatedNote], error) {
	return nil, nil
}

func (f *fakeNotes) GetNoteByID(context.Context, string, int64) (*note.PopulatedNote, error) {
	return nil, sqlerr.WithTable("notes", pgx.ErrNoRows)
}

func (f *fakeNotes) DeleteNote(context.Context, string, int64) (int64, error) { return 1, nil }

func (f *fakeNotes) NotesByTasks(_ context.Context, taskIDs []int64) ([]note.Note, error) {
	return f.notes, nil
}

func TestNoteService_CreateNotifiesOwner(t *testing.T) {
	n := &fakeNotifier{}
	users := &fakeUsers{users: map[string]*user.User{"u1": {ID: "u1", Nickname: "Ada"}}}
	s := NewNoteService(&fakeNotes{}, users, n, nil)

	created, err := s.Create(context.Background(), "u1", &note.CreateNotePayload{Title: "<Groceries>", Content: "milk"})

	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
	require.Len(t, n.messages, 1)
	assert.Equal(t, "New note", n.messages[0].title)
	assert.Contains(t, n.messages[0].content, "Ada")
	assert.Contains(t, n.messages[0].content, "&lt;Groceries&gt;")
}

func TestNoteService_GetMissingIsNotFound(t *testing.T) {
	s := NewNoteService(&fakeNotes{}, &fakeUsers{}, &fakeNotifier{}, nil)

	_, err := s.Get(context.Background(), "u1", 9)

	var httpErr *errs.HTTPError
	require.True(t, errors.As(sqlerr.HandleError(err), &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "NOTE_NOT_FOUND", httpErr.Code)
}

type fakeFlows struct {
	flows     []flow.Flow
	deleteErr error
}

func (f *fakeFlows) ListFlows(context.Context, string) ([]flow.Flow, error) { return f.flows, nil }

func (f *fakeFlows) GetFlowByID(_ context.Context, _ string, id int64) (*flow.Flow, error) {
	for _, fl := range f.flows {
		if fl.ID == id {
			return &fl, nil
		}
	}
	return nil, sqlerr.WithTable("flows", pgx.ErrNoRows)
}

func (f *fakeFlows) CreateFlow(_ context.Context, userID string, p *flow.CreateFlowPayload) (*flow.Flow, error) {
	return &flow.Flow{Base: model.Base{ID: 5}, UserID: userID, Name: p.Name}, nil
}

func (f *fakeFlows) UpdateFlow(_ context.Context, userID string, p *flow.UpdateFlowPayload) (*flow.Flow, error) {
	return f.GetFlowByID(context.Background(), userID, p.ID)
}

func (f *fakeFlows) DeleteFlow(context.Context, string, int64) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	return 1, nil
}

type fakeTasks struct {
	tasks    []task.Task
	subItems []task.SubItem
	pictures []task.Picture
	keywords string
}

func (f *fakeTasks) TasksByFlows(_ context.Context, _ []int64, keywords string) ([]task.Task, error) {
	f.keywords = keywords
	return f.tasks, nil
}

func (f *fakeTasks) SubItemsByTasks(context.Context, []int64) ([]task.SubItem, error) {
	return f.subItems, nil
}

func (f *fakeTasks) PicturesByTasks(context.Context, []int64) ([]task.Picture, error) {
	return f.pictures, nil
}

func TestFlowService_ListNestsChildren(t *testing.T) {
	taskID := int64(100)
	flows := &fakeFlows{flows: []flow.Flow{
		{Base: model.Base{ID: 1}, Name: "Todo"},
		{Base: model.Base{ID: 2}, Name: "Done"},
	}}
	tasks := &fakeTasks{
		tasks:    []task.Task{{Base: model.Base{ID: taskID}, FlowID: 1, Name: "Write"}},
		subItems: []task.SubItem{{ID: 1, TaskID: taskID, Content: "outline"}, {ID: 2, TaskID: taskID, Content: "draft"}},
		pictures: []task.Picture{{ID: 1, TaskID: taskID, URL: "https://img/p.png"}},
	}
	notes := &fakeNotes{notes: []note.Note{{Base: model.Base{ID: 7}, TaskID: &taskID, Title: "ref"}}}
	s := NewFlowService(flows, tasks, notes, &fakeNotifier{}, nil)

	got, err := s.List(context.Background(), "u1", &flow.ListFlowsQuery{Keywords: "Wr"})

	require.NoError(t, err)
	assert.Equal(t, "Wr", tasks.keywords)
	require.Len(t, got, 2)
	require.Len(t, got[0].Tasks, 1)
	assert.Len(t, got[0].Tasks[0].SubItems, 2)
	assert.Len(t, got[0].Tasks[0].Pictures, 1)
	assert.Len(t, got[0].Tasks[0].Notes, 1)
	assert.NotNil(t, got[1].Tasks)
	assert.Empty(t, got[1].Tasks)
}

func TestFlowService_DeleteNonEmptyIsConflict(t *testing.T) {
	s := NewFlowService(&fakeFlows{deleteErr: repository.ErrFlowNotEmpty}, &fakeTasks{}, &fakeNotes{}, &fakeNotifier{}, nil)

	_, err := s.Delete(context.Background(), "u1", 1)

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusConflict, httpErr.Status)
	assert.Equal(t, "FLOW_NOT_EMPTY", httpErr.Code)
}

func TestFlowService_CreateNotifies(t *testing.T) {
	n := &fakeNotifier{}
	s := NewFlowService(&fakeFlows{}, &fakeTasks{}, &fakeNotes{}, n, nil)

	f, err := s.Create(context.Background(), "u1", &flow.CreateFlowPayload{Name: "Backlog"})

	require.NoError(t, err)
	assert.Equal(t, int64(5), f.ID)
	require.Len(t, n.messages, 1)
	assert.Equal(t, "New flow", n.messages[0].title)
	assert.Contains(t, n.messages[0].content, "Backlog")
}

type fakeUpstream struct {
	calls int
	err   error
}

func (f *fakeUpstream) RandomQuote(context.Context) (*proxy.Quote, error) {
	f.calls++
	return &proxy.Quote{Content: "q"}, f.err
}

func (f *fakeUpstream) Weather(_ context.Context, location string) (*proxy.Weather, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &proxy.Weather{Location: location}, nil
}

func (f *fakeUpstream) CityInfo(_ context.Context, location string) (*proxy.CityInfo, error) {
	f.calls++
	return &proxy.CityInfo{Location: location}, f.err
}

func (f *fakeUpstream) Picture(context.Context) (*proxy.Picture, error) {
	f.calls++
	return &proxy.Picture{URL: "https://img/p.png"}, f.err
}

func TestProxyService_WithoutCacheCallsUpstream(t *testing.T) {
	up := &fakeUpstream{}
	s := NewProxyService(up, nil, nil)

	w, err := s.Weather(context.Background(), "Berlin")
	require.NoError(t, err)
	assert.Equal(t, "Berlin", w.Location)

	_, err = s.Weather(context.Background(), "Berlin")
	require.NoError(t, err)
	assert.Equal(t, 2, up.calls)
}

func TestProxyService_UpstreamFailureIsBadGateway(t *testing.T) {
	s := NewProxyService(&fakeUpstream{err: fmt.Errorf("%w: timeout", upstream.ErrUpstream)}, nil, nil)

	_, err := s.Weather(context.Background(), "Berlin")

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.Status)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", httpErr.Code)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "berlin", cacheKey("  Berlin "))
}
