package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/deppfellow/go-productivity/internal/errs"
	"github.com/deppfellow/go-productivity/internal/model/user"
	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/labstack/echo/v4"
)

// Authenticator resolves a verified Clerk subject to the local user,
// creating it on first sight.
type Authenticator interface {
	Authenticate(ctx context.Context, subject string) (*user.User, error)
}

type AuthMiddleware struct {
	server *server.Server
	auth   Authenticator
}

func NewAuthMiddleware(s *server.Server, auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
		auth:   auth,
	}
}

// RequireAuth verifies the bearer token with Clerk, makes sure the user has
// a local profile and stores user_id and user in the Echo context.
//
// Tokens Clerk rejects are answered with a 401 in the HTTPError shape
// before the Echo chain continues; requests without a token reach the inner
// handler with no claims and are rejected there.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return echo.WrapMiddleware(
		clerkhttp.WithHeaderAuthorization(
			clerkhttp.AuthorizationFailureHandler(http.HandlerFunc(auth.writeUnauthorized)),
		))(
		func(c echo.Context) error {
			start := time.Now()
			log := GetLogger(c)

			claims, ok := clerk.SessionClaimsFromContext(c.Request().Context())
			if !ok {
				log.Warn().
					Str("function", "RequireAuth").
					Dur("duration", time.Since(start)).
					Msg("could not get session claims from context")

				return errs.NewUnauthorizedError("Unauthorized", false)
			}

			u, err := auth.auth.Authenticate(c.Request().Context(), claims.Subject)
			if err != nil {
				return err
			}

			c.Set(UserIDKey, claims.Subject)
			c.Set(UserKey, u)

			userLogger := log.With().Str("user_id", claims.Subject).Logger()
			setLogger(c, userLogger)

			userLogger.Debug().
				Str("function", "RequireAuth").
				Dur("duration", time.Since(start)).
				Msg("user authenticated successfully")

			return next(c)
		})
}

func (auth *AuthMiddleware) writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	if err := json.NewEncoder(w).Encode(errs.NewUnauthorizedError("Unauthorized", false)); err != nil {
		auth.server.Logger.Error().
			Err(err).
			Str("function", "RequireAuth").
			Msg("failed to write JSON response")
		return
	}

	auth.server.Logger.Warn().
		Str("function", "RequireAuth").
		Str("request_id", r.Header.Get(RequestIDHeader)).
		Msg("invalid session token")
}
