package controllers

import (
	"github.com/go-chi/chi/v5"
	"github.com/rhurkes/rofka/internal/ingest"
	"github.com/rhurkes/rofka/internal/runtime"
	logpkg "github.com/rhurkes/rofka/pkg/log"
)

// ControllerRegistry manages all HTTP controllers.
type ControllerRegistry struct {
	general *GeneralController
	records *RecordsController
	faults  *FaultsController
}

// NewControllerRegistry creates a new controller registry. stats may be nil
// when no consumer runs in this process.
func NewControllerRegistry(rt *runtime.Runtime, logger logpkg.Logger, stats func() ingest.Stats) *ControllerRegistry {
	return &ControllerRegistry{
		general: NewGeneralController(rt, stats),
		records: NewRecordsController(rt, logger),
		faults:  NewFaultsController(rt),
	}
}

// RegisterAllRoutes registers all controller routes on r.
func (reg *ControllerRegistry) RegisterAllRoutes(r chi.Router) {
	reg.general.RegisterRoutes(r)
	reg.records.RegisterRoutes(r)
	reg.faults.RegisterRoutes(r)
}
