package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rhurkes/rofka/internal/faultlog"
	"github.com/rhurkes/rofka/internal/query"
	"github.com/rhurkes/rofka/internal/runtime"
)

const defaultFaultLimit = 100

// FaultsController pages through the fault log.
type FaultsController struct {
	rt *runtime.Runtime
}

// NewFaultsController creates a new faults controller.
func NewFaultsController(rt *runtime.Runtime) *FaultsController {
	return &FaultsController{rt: rt}
}

// RegisterRoutes registers /faults.
func (c *FaultsController) RegisterRoutes(r chi.Router) {
	r.Get("/faults", c.handleList)
}

type faultItem struct {
	Seq      uint64        `json:"seq"`
	Kind     faultlog.Kind `json:"kind"`
	ID       string        `json:"id"`
	Reason   string        `json:"reason"`
	AtMs     int64         `json:"at_ms"`
	Attempts int           `json:"attempts,omitempty"`
	Payload  []byte        `json:"payload,omitempty"`
}

type faultsResp struct {
	Items []faultItem `json:"items"`
	Next  uint64      `json:"next,omitempty"`
}

// handleList returns up to limit entries starting at seq start.
func (c *FaultsController) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := parseIntDefault(q.Get("limit"), defaultFaultLimit)
	if limit <= 0 || limit > 10*defaultFaultLimit {
		limit = defaultFaultLimit
	}
	start := parseUint64Default(q.Get("start"), 0)

	entries, next, err := c.rt.Faults().Read(faultlog.ReadOptions{Start: start, Limit: limit})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := faultsResp{Items: make([]faultItem, 0, len(entries)), Next: next}
	for _, e := range entries {
		resp.Items = append(resp.Items, faultItem{
			Seq:      e.Seq,
			Kind:     e.Fault.Kind,
			ID:       query.KeyText(e.Fault.Key),
			Reason:   e.Fault.Reason,
			AtMs:     e.Fault.AtMs,
			Attempts: e.Fault.Attempts,
			Payload:  e.Payload,
		})
	}
	writeJSON(w, resp)
}
