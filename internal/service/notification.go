package service

import (
	"context"
	"errors"

	"github.com/deppfellow/go-productivity/internal/lib/job"
	"github.com/deppfellow/go-productivity/internal/model"
	"github.com/deppfellow/go-productivity/internal/model/notification"
	"github.com/deppfellow/go-productivity/internal/model/user"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type notificationStore interface {
	CreateNotification(ctx context.Context, payload *notification.CreatePayload, avatar string) (*notification.PopulatedNotification, error)
	ListNotifications(ctx context.Context, userID string, query *notification.ListNotificationsQuery) (*model.PaginatedResponse[notification.PopulatedNotification], error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID string, id int64) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type userLookup interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

type NotificationService struct {
	repo   notificationStore
	users  userLookup
	jobs   enqueuer
	logger *zerolog.Logger
}

// NewNotificationService registers the notification worker on jobs.
func NewNotificationService(repo notificationStore, users userLookup, jobs jobRegistry, logger *zerolog.Logger) *NotificationService {
	s := &NotificationService{repo: repo, users: users, jobs: jobs, logger: logger}
	jobs.Handle(job.TaskNotificationCreate, s.handleCreate)
	return s
}

// AddMessage queues a notification for userID. Storage happens on a worker,
// so a failure here never fails the caller's request; it is only logged.
func (s *NotificationService) AddMessage(ctx context.Context, userID, title, content string) {
	log := logFrom(ctx, s.logger)

	t, err := job.NewNotificationTask(job.NotificationPayload{UserID: userID, Title: title, Content: content})
	if err == nil {
		err = s.jobs.Enqueue(ctx, t)
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("title", title).Msg("failed to enqueue notification")
	}
}

func (s *NotificationService) handleCreate(ctx context.Context, t *asynq.Task) error {
	p, err := job.DecodePayload[job.NotificationPayload](t)
	if err != nil {
		return err
	}

	avatar := ""
	u, err := s.users.GetUser(ctx, p.UserID)
	switch {
	case err == nil:
		avatar = u.Avatar
	case errors.Is(err, pgx.ErrNoRows):
		return errors.Join(err, asynq.SkipRetry)
	default:
		return err
	}

	n, err := s.repo.CreateNotification(ctx, &notification.CreatePayload{
		UserID:  p.UserID,
		Title:   p.Title,
		Content: p.Content,
	}, avatar)
	if err != nil {
		return err
	}

	logFrom(ctx, s.logger).Debug().Int64("notification_id", n.ID).Str("user_id", p.UserID).Msg("notification stored")
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID string, query *notification.ListNotificationsQuery) (*model.PaginatedResponse[notification.PopulatedNotification], error) {
	return s.repo.ListNotifications(ctx, userID, query)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (*notification.UnreadCount, error) {
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &notification.UnreadCount{Count: count}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID string, id int64) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (*model.AffectedResult, error) {
	affected, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.AffectedResult{Affected: affected}, nil
}
