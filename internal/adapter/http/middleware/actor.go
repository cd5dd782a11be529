package middleware

import (
	"net/http"
	"strings"

	"github.com/iho/coreledger/internal/domain"
)

const (
	// ActorHeader names the caller recorded on postings.
	ActorHeader = "X-Actor"
	// DefaultActor is used when a request carries no actor header.
	DefaultActor = "api"

	maxActorLength = 64
)

// Actor stores the calling identity in the request context.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := strings.TrimSpace(r.Header.Get(ActorHeader))
		if actor == "" {
			actor = DefaultActor
		}
		if len(actor) > maxActorLength {
			actor = actor[:maxActorLength]
		}
		next.ServeHTTP(w, r.WithContext(domain.WithActor(r.Context(), actor)))
	})
}
