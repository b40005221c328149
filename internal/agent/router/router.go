// Package router собирает маршруты локального API агента.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iudanet/marketsync/internal/agent/handlers"
)

// New creates the agent's local HTTP router
func New(syncHandler *handlers.SyncHandler) http.Handler {
	r := chi.NewRouter()

	r.Post("/sync/initiate", syncHandler.HandleInitiate)
	r.Get("/sync/status", syncHandler.HandleStatus)

	return r
}
