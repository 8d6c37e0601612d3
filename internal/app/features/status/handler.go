// internal/app/features/status/handler.go
package status

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/scribeworks/scribehub/internal/app/system/syncmetrics"
	"github.com/scribeworks/scribehub/internal/app/system/timeouts"
	"github.com/scribeworks/scribehub/internal/app/system/viewdata"
)

// Handler serves the admin sync-status page: document sync counters per
// (workspace, data source) plus database connectivity.
type Handler struct {
	Client  *mongo.Client
	Metrics *syncmetrics.Registry
	Log     *zap.Logger
}

func NewHandler(client *mongo.Client, metrics *syncmetrics.Registry, logger *zap.Logger) *Handler {
	return &Handler{
		Client:  client,
		Metrics: metrics,
		Log:     logger,
	}
}

type statusPageData struct {
	viewdata.BaseVM
	DatabaseOK bool
	Stats      []syncmetrics.Stat
}

// Serve handles GET /admin/status.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Ping(), h.Log, "status ping")
	defer cancel()

	dbOK := true
	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		dbOK = false
		h.Log.Warn("status: database ping failed", zap.Error(err))
	}

	templates.Render(w, r, "status", statusPageData{
		BaseVM:     viewdata.NewBaseVM(r, "Sync status", "/"),
		DatabaseOK: dbOK,
		Stats:      h.snapshot(),
	})
}

// ServeJSON handles GET /admin/status.json for dashboards and scripts.
func (h *Handler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Ping(), h.Log, "status ping")
	defer cancel()

	dbOK := h.Client.Ping(ctx, readpref.Primary()) == nil

	writeJSON(w, map[string]any{
		"database_ok": dbOK,
		"sync":        h.snapshot(),
	})
}

func (h *Handler) snapshot() []syncmetrics.Stat {
	if h.Metrics == nil {
		return nil
	}
	return h.Metrics.Snapshot()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode failed", http.StatusInternalServerError)
	}
}
