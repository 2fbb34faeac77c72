package middleware

import (
	"context"
	"net/http"
	"strings"

	"medportal/internal/common"
	"medportal/internal/domain/model"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/sirupsen/logrus"
)

type contextKey string

const UserCtxKey contextKey = "user"

// TokenResolver maps an opaque bearer token to the user that owns it.
type TokenResolver interface {
	ResolveToken(ctx context.Context, key string) (*model.User, error)
}

// tokenFromRequest accepts "Bearer <key>" and the "Token <key>" scheme older clients send.
func tokenFromRequest(r *http.Request) string {
	if key := jwtauth.TokenFromHeader(r); key != "" {
		return key
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 6 && strings.EqualFold(header[:6], "token ") {
		return strings.TrimSpace(header[6:])
	}
	return ""
}

// Authenticator rejects requests without a valid token and stores the resolved user in the context.
func Authenticator(resolver TokenResolver, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := tokenFromRequest(r)
			if key == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				common.RespondWithDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
				return
			}

			user, err := resolver.ResolveToken(r.Context(), key)
			if err != nil {
				if code := common.RespondWithServiceError(w, err); code >= http.StatusInternalServerError {
					log.WithError(err).WithField("request_id", chiMiddleware.GetReqID(r.Context())).Error("token resolution failed")
				}
				return
			}

			ctx := context.WithValue(r.Context(), UserCtxKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user set by Authenticator.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserCtxKey).(*model.User)
	return user, ok && user != nil
}
