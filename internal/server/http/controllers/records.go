package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rhurkes/rofka/internal/query"
	"github.com/rhurkes/rofka/internal/record"
	"github.com/rhurkes/rofka/internal/runtime"
	"github.com/rhurkes/rofka/internal/store"
	logpkg "github.com/rhurkes/rofka/pkg/log"
)

// RecordsController serves point reads and the status audit.
type RecordsController struct {
	rt  *runtime.Runtime
	log logpkg.Logger
}

// NewRecordsController creates a new records controller.
func NewRecordsController(rt *runtime.Runtime, logger logpkg.Logger) *RecordsController {
	return &RecordsController{rt: rt, log: logger}
}

// RegisterRoutes registers /records/{key} and /audit.
func (c *RecordsController) RegisterRoutes(r chi.Router) {
	r.Get("/records/{key}", c.handleGet)
	r.Get("/audit", c.handleAudit)
}

type recordResp struct {
	ID              string                   `json:"id"`
	Raw             []byte                   `json:"raw"`
	Projection      *record.StatusProjection `json:"projection,omitempty"`
	ProjectionError string                   `json:"projection_error,omitempty"`
}

// handleGet returns the raw bytes (base64) and the stored projection for a
// key. Keys rendered as "hex:..." are accepted.
func (c *RecordsController) handleGet(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid key")
		return
	}
	st := c.rt.Store()
	raw, err := st.ReadRaw(key)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := recordResp{ID: query.KeyText(key), Raw: raw}
	pb, err := st.ReadProjection(key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if _, derr := record.DecodeProjection(raw); derr != nil {
			resp.ProjectionError = derr.Error()
		}
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	default:
		p, derr := record.DecodeProjection(pb)
		if derr != nil {
			resp.ProjectionError = derr.Error()
		} else {
			resp.Projection = &p
		}
	}
	writeJSON(w, resp)
}

type auditError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type auditResp struct {
	Matches []query.Match `json:"matches"`
	Errors  []auditError  `json:"errors,omitempty"`
	Scanned int           `json:"scanned"`
}

// handleAudit scans the projection family. status may repeat or be a comma
// list (default UNPUBLISHED); filter is an optional CEL expression.
func (c *RecordsController) handleAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var statuses []record.Status
	for _, v := range q["status"] {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name == "" {
				continue
			}
			s, err := record.ParseStatus(name)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			statuses = append(statuses, s)
		}
	}
	pred := query.Default()
	if len(statuses) > 0 {
		pred = query.StatusIn(statuses...)
	}
	if f := q.Get("filter"); f != "" {
		cel, err := query.CEL(f)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		pred = query.All(pred, cel)
	}

	res, err := query.NewScanner(c.rt.Store(), pred, c.log).Collect(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := auditResp{Matches: res.Matches, Scanned: res.Scanned}
	if resp.Matches == nil {
		resp.Matches = []query.Match{}
	}
	for _, e := range res.Errors {
		resp.Errors = append(resp.Errors, auditError{ID: query.KeyText(e.Key), Error: e.Err.Error()})
	}
	writeJSON(w, resp)
}
