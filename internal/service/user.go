package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkuser "github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/deppfellow/go-productivity/internal/lib/job"
	"github.com/deppfellow/go-productivity/internal/model/user"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type userStore interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
	CreateUser(ctx context.Context, p user.Profile) (*user.User, bool, error)
}

// ProfileFetcher loads the identity provider's view of a user.
type ProfileFetcher func(ctx context.Context, userID string) (user.Profile, error)

type UserService struct {
	repo   userStore
	jobs   enqueuer
	fetch  ProfileFetcher
	logger *zerolog.Logger
}

func NewUserService(repo userStore, jobs enqueuer, fetch ProfileFetcher, logger *zerolog.Logger) *UserService {
	if fetch == nil {
		fetch = ClerkProfile
	}
	return &UserService{repo: repo, jobs: jobs, fetch: fetch, logger: logger}
}

// Ensure returns the local profile of userID, creating it on first sight.
//
// A failed profile lookup does not block the request: the user is stored
// with its id as nickname. A welcome email is queued only for the call that
// created the row and only when an address is known.
func (s *UserService) Ensure(ctx context.Context, userID string) (*user.User, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	log := logFrom(ctx, s.logger)

	profile, err := s.fetch(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to fetch user profile, using defaults")
		profile = user.Profile{ID: userID}
	}
	profile.ID = userID
	if profile.Nickname == "" {
		profile.Nickname = userID
	}

	u, created, err := s.repo.CreateUser(ctx, profile)
	if err != nil {
		return nil, err
	}
	if !created {
		return u, nil
	}

	log.Info().Str("user_id", userID).Msg("user created")

	if u.Email != nil && *u.Email != "" {
		task, err := job.NewWelcomeEmailTask(*u.Email, u.Nickname)
		if err == nil {
			err = s.jobs.Enqueue(ctx, task)
		}
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("failed to enqueue welcome email")
		}
	}

	return u, nil
}

// ClerkProfile reads nickname, avatar and primary email from Clerk.
func ClerkProfile(ctx context.Context, userID string) (user.Profile, error) {
	cu, err := clerkuser.Get(ctx, userID)
	if err != nil {
		return user.Profile{}, fmt.Errorf("failed to get clerk user %s: %w", userID, err)
	}
	return profileFromClerk(cu), nil
}

func profileFromClerk(cu *clerk.User) user.Profile {
	p := user.Profile{ID: cu.ID}

	switch {
	case cu.Username != nil && *cu.Username != "":
		p.Nickname = *cu.Username
	case cu.FirstName != nil && *cu.FirstName != "":
		p.Nickname = *cu.FirstName
	}

	if cu.ImageURL != nil {
		p.Avatar = *cu.ImageURL
	}

	for _, addr := range cu.EmailAddresses {
		if addr == nil {
			continue
		}
		if cu.PrimaryEmailAddressID != nil && addr.ID == *cu.PrimaryEmailAddressID {
			email := addr.EmailAddress
			p.Email = &email
			break
		}
		if p.Email == nil {
			email := addr.EmailAddress
			p.Email = &email
		}
	}

	return p
}
