package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rhurkes/rofka/internal/ingest"
	"github.com/rhurkes/rofka/internal/runtime"
)

// GeneralController serves health and counters.
type GeneralController struct {
	rt    *runtime.Runtime
	stats func() ingest.Stats
}

// NewGeneralController creates a new general controller.
func NewGeneralController(rt *runtime.Runtime, stats func() ingest.Stats) *GeneralController {
	return &GeneralController{rt: rt, stats: stats}
}

// RegisterRoutes registers /healthz and /stats.
func (c *GeneralController) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", c.handleHealth)
	r.Get("/stats", c.handleStats)
}

// handleHealth returns 200 {"status":"ok"} when the store is readable and 503 otherwise.
func (c *GeneralController) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := c.rt.CheckHealth(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_serving")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

type statsResp struct {
	Ingest   *ingest.Stats        `json:"ingest,omitempty"`
	Storage  runtime.StorageStats `json:"storage"`
	FaultSeq uint64               `json:"fault_seq"`
}

func (c *GeneralController) handleStats(w http.ResponseWriter, _ *http.Request) {
	resp := statsResp{Storage: c.rt.Metrics(), FaultSeq: c.rt.Faults().LastSeq()}
	if c.stats != nil {
		s := c.stats()
		resp.Ingest = &s
	}
	writeJSON(w, resp)
}
