package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/go-productivity/internal/model/user"
	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/deppfellow/go-productivity/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	server *server.Server
}

func NewUserRepository(s *server.Server) *UserRepository {
	return &UserRepository{server: s}
}

func (r *UserRepository) GetUser(ctx context.Context, id string) (*user.User, error) {
	stmt := `SELECT * FROM users WHERE id = @id`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to execute get user query for id=%s: %w", id, err)
	}

	u, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[user.User])
	if err != nil {
		return nil, sqlerr.WithTable("users", err)
	}
	return &u, nil
}

// CreateUser inserts the profile unless a row with the same id exists. The
// flag reports whether this call created it.
func (r *UserRepository) CreateUser(ctx context.Context, p user.Profile) (*user.User, bool, error) {
	stmt := `
		INSERT INTO users (id, nickname, avatar, email)
		VALUES (@id, @nickname, @avatar, @email)
		ON CONFLICT (id) DO NOTHING
		RETURNING *
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{
		"id":       p.ID,
		"nickname": p.Nickname,
		"avatar":   p.Avatar,
		"email":    p.Email,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to execute create user query for id=%s: %w", p.ID, err)
	}

	u, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[user.User])
	if errors.Is(err, pgx.ErrNoRows) {
		existing, err := r.GetUser(ctx, p.ID)
		return existing, false, err
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to collect row from table:users: %w", err)
	}
	return &u, true, nil
}
