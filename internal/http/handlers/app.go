// Package handlers implements the HTTP API surface consumed by the
// extension.
package handlers

import (
	"encoding/json"
	"net/http"

	"promoclip/internal/domain"
	"promoclip/internal/infra"
	"promoclip/internal/session"
)

// App is the handler container: one shared session, one repository, one
// logger. A nil repository disables persistence, nothing else.
type App struct {
	Logger  *infra.Logger
	Session *session.Session
	Repo    domain.GenerationRepository
	Backend string
}

// NewApp wires the handler container.
func NewApp(logger *infra.Logger, sess *session.Session, repo domain.GenerationRepository, backend string) *App {
	return &App{Logger: logger, Session: sess, Repo: repo, Backend: backend}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": kind, "message": message},
	})
}
