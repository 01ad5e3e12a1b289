package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-relay-bot/internal/application/authz"
)

// StatsProvider is the slice of the authorization service the ops surface
// reads from.
type StatsProvider interface {
	Stats(ctx context.Context) (authz.Stats, error)
}

// OpsHandler serves the operational endpoints.
type OpsHandler struct {
	stats StatsProvider
}

func NewOpsHandler(stats StatsProvider) *OpsHandler {
	return &OpsHandler{stats: stats}
}

func (h *OpsHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "ok"})
}

func (h *OpsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, StatsEnvelope{
		AuthorizedUsers: stats.AuthorizedUsers,
		Uptime:          stats.Uptime.Truncate(time.Second).String(),
	})
}
