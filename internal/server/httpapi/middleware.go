package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/sealbox/internal/common"
	"github.com/dmitrijs2005/sealbox/internal/server/auth"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// withAuth validates the bearer access token and stashes the user ID in the
// request context.
func (s *HTTPServer) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AccessTokenHeaderName)
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		if token == "" {
			s.writeError(r.Context(), w, fmt.Errorf("%w: missing access token", common.ErrorUnauthorized))
			return
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			s.writeError(r.Context(), w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}

func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
