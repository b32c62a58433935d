package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/go-productivity/internal/model"
	"github.com/deppfellow/go-productivity/internal/model/notification"
	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/deppfellow/go-productivity/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

type NotificationRepository struct {
	server *server.Server
}

func NewNotificationRepository(s *server.Server) *NotificationRepository {
	return &NotificationRepository{server: s}
}

// CreateNotification stores the shared detail and the user's unread copy.
func (r *NotificationRepository) CreateNotification(ctx context.Context, payload *notification.CreatePayload, avatar string) (*notification.PopulatedNotification, error) {
	var created notification.PopulatedNotification

	err := inTx(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			INSERT INTO notification_details (title, avatar, content)
			VALUES (@title, @avatar, @content)
			RETURNING *
		`, pgx.NamedArgs{"title": payload.Title, "avatar": avatar, "content": payload.Content})
		if err != nil {
			return fmt.Errorf("failed to execute create notification detail query: %w", err)
		}
		detail, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[notification.Detail])
		if err != nil {
			return fmt.Errorf("failed to collect row from table:notification_details: %w", err)
		}

		rows, err = tx.Query(ctx, `
			INSERT INTO notifications (user_id, detail_id)
			VALUES (@user_id, @detail_id)
			RETURNING *
		`, pgx.NamedArgs{"user_id": payload.UserID, "detail_id": detail.ID})
		if err != nil {
			return fmt.Errorf("failed to execute create notification query for user_id=%s: %w", payload.UserID, err)
		}
		n, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[notification.Notification])
		if err != nil {
			return fmt.Errorf("failed to collect row from table:notifications: %w", err)
		}

		created = notification.PopulatedNotification{
			Notification: n,
			Title:        detail.Title,
			Avatar:       detail.Avatar,
			Content:      detail.Content,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *NotificationRepository) ListNotifications(ctx context.Context, userID string, query *notification.ListNotificationsQuery) (*model.PaginatedResponse[notification.PopulatedNotification], error) {
	query.Normalize()

	args := pgx.NamedArgs{
		"user_id": userID,
		"read":    query.Read,
		"limit":   query.Size,
		"offset":  query.Offset(),
	}
	filter := `n.user_id = @user_id AND (@read::boolean IS NULL OR n.read = @read::boolean)`

	rows, err := r.server.DB.Pool.Query(ctx, `
		SELECT n.*, d.title, d.avatar, d.content
		FROM notifications n
		JOIN notification_details d ON d.id = n.detail_id
		WHERE `+filter+`
		ORDER BY n.send_date DESC, n.id DESC
		LIMIT @limit OFFSET @offset
	`, args)
	if err != nil {
		return nil, fmt.Errorf("failed to execute list notifications query for user_id=%s: %w", userID, err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[notification.PopulatedNotification])
	if err != nil {
		return nil, fmt.Errorf("failed to collect rows from table:notifications for user_id=%s: %w", userID, err)
	}

	var total int64
	if err := r.server.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications n WHERE `+filter, args).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count notifications for user_id=%s: %w", userID, err)
	}

	return &model.PaginatedResponse[notification.PopulatedNotification]{
		List:  list,
		Total: total,
		Page:  query.Page,
		Size:  query.Size,
	}, nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.server.DB.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = @user_id AND NOT read`,
		pgx.NamedArgs{"user_id": userID},
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications for user_id=%s: %w", userID, err)
	}
	return count, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID string, id int64) error {
	tag, err := r.server.DB.Pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = @id AND user_id = @user_id`,
		pgx.NamedArgs{"id": id, "user_id": userID},
	)
	if err != nil {
		return fmt.Errorf("failed to execute mark read query for id=%d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return sqlerr.WithTable("notifications", pgx.ErrNoRows)
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	tag, err := r.server.DB.Pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = @user_id AND NOT read`,
		pgx.NamedArgs{"user_id": userID},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to execute mark all read query for user_id=%s: %w", userID, err)
	}
	return tag.RowsAffected(), nil
}
