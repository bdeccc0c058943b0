package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"chronary-tracker/internal/service"

	"go.uber.org/zap"
)

// AuthMiddleware 从Authorization: Bearer <token>解析user_id
// token校验交给外部身份服务（Authenticator）；handler只拿user_id
type AuthMiddleware struct {
	auth   service.Authenticator
	logger *zap.Logger
}

func NewAuthMiddleware(auth service.Authenticator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, logger: logger}
}

// UserHandlerFunc 带user_id的handler
type UserHandlerFunc func(w http.ResponseWriter, r *http.Request, userID string)

func (m *AuthMiddleware) Wrap(next UserHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, Fail("missing bearer token"))
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		userID, err := m.auth.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				writeJSON(w, http.StatusUnauthorized, Fail("invalid token"))
				return
			}
			m.logger.Error("auth service unavailable", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, Fail("auth service unavailable"))
			return
		}
		next(w, r, userID)
	}
}
