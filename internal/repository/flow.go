package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/go-productivity/internal/model/flow"
	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/deppfellow/go-productivity/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

type FlowRepository struct {
	server *server.Server
}

func NewFlowRepository(s *server.Server) *FlowRepository {
	return &FlowRepository{server: s}
}

func (r *FlowRepository) ListFlows(ctx context.Context, userID string) ([]flow.Flow, error) {
	stmt := `SELECT * FROM flows WHERE user_id = @user_id ORDER BY sort ASC, id ASC`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to execute list flows query for user_id=%s: %w", userID, err)
	}

	flows, err := pgx.CollectRows(rows, pgx.RowToStructByName[flow.Flow])
	if err != nil {
		return nil, fmt.Errorf("failed to collect rows from table:flows for user_id=%s: %w", userID, err)
	}
	return flows, nil
}

func (r *FlowRepository) GetFlowByID(ctx context.Context, userID string, id int64) (*flow.Flow, error) {
	stmt := `SELECT * FROM flows WHERE id = @id AND user_id = @user_id`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{"id": id, "user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to execute get flow query for id=%d: %w", id, err)
	}

	f, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[flow.Flow])
	if err != nil {
		return nil, sqlerr.WithTable("flows", err)
	}
	return &f, nil
}

func (r *FlowRepository) CreateFlow(ctx context.Context, userID string, payload *flow.CreateFlowPayload) (*flow.Flow, error) {
	stmt := `
		INSERT INTO flows (user_id, name, sort, time_range, complete)
		VALUES (@user_id, @name, @sort, @time_range, @complete)
		RETURNING *
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{
		"user_id":    userID,
		"name":       payload.Name,
		"sort":       payload.Sort,
		"time_range": payload.Range,
		"complete":   payload.Complete,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute create flow query for user_id=%s: %w", userID, err)
	}

	f, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[flow.Flow])
	if err != nil {
		return nil, fmt.Errorf("failed to collect row from table:flows for user_id=%s: %w", userID, err)
	}
	return &f, nil
}

// UpdateFlow changes the non-nil fields of payload.
func (r *FlowRepository) UpdateFlow(ctx context.Context, userID string, payload *flow.UpdateFlowPayload) (*flow.Flow, error) {
	stmt := `
		UPDATE flows SET
			name = COALESCE(@name, name),
			sort = COALESCE(@sort, sort),
			time_range = COALESCE(@time_range, time_range),
			can_new = COALESCE(@can_new, can_new),
			complete = COALESCE(@complete, complete),
			updated_at = NOW()
		WHERE id = @id AND user_id = @user_id
		RETURNING *
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{
		"id":         payload.ID,
		"user_id":    userID,
		"name":       payload.Name,
		"sort":       payload.Sort,
		"time_range": payload.Range,
		"can_new":    payload.CanNew,
		"complete":   payload.Complete,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute update flow query for id=%d: %w", payload.ID, err)
	}

	f, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[flow.Flow])
	if err != nil {
		return nil, sqlerr.WithTable("flows", err)
	}
	return &f, nil
}

// DeleteFlow removes an empty flow. The flow row is locked while its tasks
// are counted so a concurrent insert cannot slip in between.
func (r *FlowRepository) DeleteFlow(ctx context.Context, userID string, id int64) (int64, error) {
	var affected int64

	err := inTx(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx,
			`SELECT id FROM flows WHERE id = @id AND user_id = @user_id FOR UPDATE`,
			pgx.NamedArgs{"id": id, "user_id": userID},
		).Scan(&locked)
		if err != nil {
			return sqlerr.WithTable("flows", err)
		}

		var tasks int64
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM tasks WHERE flow_id = @id`,
			pgx.NamedArgs{"id": id},
		).Scan(&tasks); err != nil {
			return fmt.Errorf("failed to count tasks of flow id=%d: %w", id, err)
		}
		if tasks > 0 {
			return ErrFlowNotEmpty
		}

		tag, err := tx.Exec(ctx, `DELETE FROM flows WHERE id = @id`, pgx.NamedArgs{"id": id})
		if err != nil {
			return fmt.Errorf("failed to execute delete flow query for id=%d: %w", id, err)
		}
		affected = tag.RowsAffected()
		return nil
	})

	return affected, err
}
