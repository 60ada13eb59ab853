package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vendorhub/ledger-backend/pkg/logger"
)

const actorIDHeader = "X-Actor-Id"

type contextKey string

const ctxActorID contextKey = "actor_id"

// ActorContext captures the caller identity header. Authentication lives at
// the gateway; the ledger only records who asked.
func ActorContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorID := strings.TrimSpace(r.Header.Get(actorIDHeader))
			if actorID == "" {
				actorID = "anonymous"
			}

			ctx := context.WithValue(r.Context(), ctxActorID, actorID)
			if logg != nil {
				ctx = logg.WithActorID(ctx, actorID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActorID).(string); ok {
		return v
	}
	return ""
}
