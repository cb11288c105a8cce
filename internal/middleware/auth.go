package middleware

import (
	"context"
	"net/http"
	"strings"

	"design-pro/internal/config"
	"design-pro/internal/models"
	"design-pro/internal/utils"

	"github.com/rs/zerolog"
)

type ctxKey string

const ctxIdentity ctxKey = "identity"

const SessionCookie = "session"

// IdentityFrom returns the caller placed in ctx by WithAuth.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(ctxIdentity).(models.Identity)
	return id, ok && id.UserID != ""
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, ctxIdentity, id)
}

func WithAuth(log zerolog.Logger, cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Read JWT from cookie "session" or Authorization: Bearer
			var tok string
			if c, err := r.Cookie(SessionCookie); err == nil {
				tok = c.Value
			} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tok = strings.TrimPrefix(h, "Bearer ")
			}

			if tok == "" {
				next.ServeHTTP(w, r) // unauthenticated; handlers can decide
				return
			}

			claims, err := utils.ParseJWT(cfg.SessionSecret, tok)
			if err != nil {
				log.Debug().Err(err).Msg("rejected session token")
				// clear broken/expired cookie so it stops being sent
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    "",
					Path:     "/",
					HttpOnly: true,
					MaxAge:   -1,
				})
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), models.Identity{
				UserID: claims.UserID,
				Role:   models.Role(claims.Role),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
