package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/isdelr/taskflow-be/internal/apperr"
	"github.com/isdelr/taskflow-be/internal/models"
	"github.com/rs/zerolog/log"
)

const bearerPrefix = "Bearer "

// Client-facing messages.
const (
	msgMissingToken = "Akses tidak diizinkan, token tidak ditemukan"
	msgInvalidToken = "Akses tidak diizinkan, token tidak valid"
)

type contextKey string

const userKey = contextKey("user")

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated user attached by the middleware.
func UserFromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}

// UserResolver loads the user named by a token.
type UserResolver interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// ErrorWriter renders an error response and terminates the request.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Verifier turns bearer tokens into users.
type Verifier struct {
	issuer *TokenIssuer
	users  UserResolver
	fail   ErrorWriter
}

// NewVerifier creates a Verifier.
func NewVerifier(issuer *TokenIssuer, users UserResolver, fail ErrorWriter) *Verifier {
	return &Verifier{issuer: issuer, users: users, fail: fail}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", apperr.Unauthenticated(msgMissingToken)
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", apperr.Unauthenticated(msgMissingToken)
	}
	return token, nil
}

// Authenticate verifies token and resolves its user.
func (v *Verifier) Authenticate(ctx context.Context, token string) (models.User, error) {
	claims, err := v.issuer.Validate(token)
	if err != nil {
		log.Debug().Err(err).Msg("Rejected auth token")
		return models.User{}, apperr.InvalidToken(msgInvalidToken)
	}

	user, err := v.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to resolve token subject")
		}
		return models.User{}, apperr.InvalidToken(msgInvalidToken)
	}
	return user, nil
}

// Protect requires a valid "Authorization: Bearer <token>" header.
func (v *Verifier) Protect(next http.Handler) http.Handler {
	return v.protect(next, false)
}

// ProtectWebSocket is Protect that also accepts a ?token= query parameter,
// since browsers cannot set headers on websocket upgrades.
func (v *Verifier) ProtectWebSocket(next http.Handler) http.Handler {
	return v.protect(next, true)
}

func (v *Verifier) protect(next http.Handler, allowQuery bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := BearerToken(r.Header.Get("Authorization"))
		if err != nil && allowQuery {
			if q := r.URL.Query().Get("token"); q != "" {
				token, err = q, nil
			}
		}
		if err != nil {
			v.fail(w, r, err)
			return
		}

		user, err := v.Authenticate(r.Context(), token)
		if err != nil {
			v.fail(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireRole admits only users holding one of roles. It must run after Protect.
func (v *Verifier) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				v.fail(w, r, apperr.Unauthenticated(msgMissingToken))
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			v.fail(w, r, apperr.Forbidden(fmt.Sprintf("Role %s tidak diizinkan untuk akses ini", user.Role)))
		})
	}
}
