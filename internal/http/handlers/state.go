package handlers

import "net/http"

// State returns the session snapshot so a reloaded popup can restore what it
// was showing.
func (a *App) State(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Session.Snapshot())
}

// StateClear drops the stored answer and video result.
func (a *App) StateClear(w http.ResponseWriter, r *http.Request) {
	a.Session.ClearResult()
	w.WriteHeader(http.StatusNoContent)
}
