// Package controllers implements the HTTP handlers behind the /v1 API.
package controllers

import (
	"net/http"

	"github.com/ivan23kor/logpiper/internal/runtime"
)

// ControllerRegistry manages all HTTP controllers.
//
// It provides a centralized way to register all controller routes.
type ControllerRegistry struct {
	general  *GeneralController
	sessions *SessionsController
	logs     *LogsController
}

// NewControllerRegistry creates a new controller registry over rt.
func NewControllerRegistry(rt *runtime.Runtime) *ControllerRegistry {
	return &ControllerRegistry{
		general:  NewGeneralController(rt),
		sessions: NewSessionsController(rt),
		logs:     NewLogsController(rt),
	}
}

// RegisterAllRoutes registers every controller's routes with mux.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.sessions.RegisterRoutes(mux)
	r.logs.RegisterRoutes(mux)
}
