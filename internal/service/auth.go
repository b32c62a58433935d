package service

import (
	"context"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/go-productivity/internal/model/user"
	"github.com/deppfellow/go-productivity/internal/server"
)

// AuthService configures the Clerk SDK with the server's secret key and
// resolves authenticated subjects to local users.
type AuthService struct {
	server *server.Server
	users  *UserService
}

func NewAuthService(s *server.Server, users *UserService) *AuthService {
	clerk.SetKey(s.Config.Auth.SecretKey)
	return &AuthService{
		server: s,
		users:  users,
	}
}

// Authenticate returns the local profile of a verified Clerk subject,
// creating it on first sight.
func (a *AuthService) Authenticate(ctx context.Context, subject string) (*user.User, error) {
	return a.users.Ensure(ctx, subject)
}
