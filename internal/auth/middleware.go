package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sessionlite/sessionlite/internal/httpx"
	"github.com/sessionlite/sessionlite/internal/person"
	"github.com/sessionlite/sessionlite/internal/session"
	"github.com/sessionlite/sessionlite/internal/token"
	"go.uber.org/zap"
)

// RequireAuth validates the bearer token, loads the person behind it and
// binds both the principal and the current session id to the request
// context. It also bumps the session row's last_activity, which is the
// host-framework side of session bookkeeping.
func RequireAuth(
	tokens token.TokenService,
	persons person.PersonRepo,
	sessions session.SessionRepo,
	logger *zap.Logger,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}

			claims, err := tokens.ValidateAccess(r.Context(), raw)
			if err != nil {
				logger.Debug("access token rejected", zap.Error(err))
				unauthorized(w, "invalid token")
				return
			}

			p, err := persons.GetByPublicID(r.Context(), claims.Sub)
			if err != nil {
				if errors.Is(err, person.ErrNotFound) {
					unauthorized(w, "invalid token")
					return
				}
				logger.Error("failed to resolve principal", zap.Error(err))
				httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
					Code:    httpx.ErrInternal,
					Message: "internal server error",
				})
				return
			}
			if !p.IsActive || p.IsDeleted {
				unauthorized(w, "account disabled")
				return
			}

			ctx := WithPrincipal(r.Context(), p)
			ctx = session.ContextWithID(ctx, claims.SID)

			meta := httpx.ClientMetaFromRequest(r)
			if err := sessions.Touch(ctx, claims.SID, meta.IP, time.Now().Unix()); err != nil {
				// activity tracking must not fail the request
				logger.Warn("failed to touch session", zap.String("session_id", string(claims.SID)), zap.Error(err))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, tok, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || tok == "" {
		return "", false
	}
	return tok, true
}

func unauthorized(w http.ResponseWriter, msg string) {
	httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
		Code:    httpx.ErrUnauthorized,
		Message: msg,
	})
}
