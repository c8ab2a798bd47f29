package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"promoclip/internal/providers/chat"
	"promoclip/internal/session"
)

type aiRequest struct {
	Content      string `json:"content"`
	SystemPrompt string `json:"system_prompt"`
	ImageURL     string `json:"image_url"`
	Effort       string `json:"effort"`
	WebSearch    bool   `json:"web_search"`
}

// AIRequest relays page content to the configured chat model.
func (a *App) AIRequest(w http.ResponseWriter, r *http.Request) {
	var req aiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "content required")
		return
	}

	content, err := a.Session.SendPrompt(r.Context(), session.RelayRequest{
		System:    req.SystemPrompt,
		Content:   req.Content,
		ImageURL:  req.ImageURL,
		Effort:    req.Effort,
		WebSearch: req.WebSearch,
	})
	if err != nil {
		if errors.Is(err, chat.ErrMissingAPIKey) {
			a.error(w, http.StatusUnprocessableEntity, "not_configured", err.Error())
			return
		}
		var apiErr *chat.APIError
		if errors.As(err, &apiErr) {
			a.error(w, http.StatusBadGateway, "upstream_error", apiErr.Error())
			return
		}
		a.error(w, http.StatusBadGateway, "upstream_error", err.Error())
		return
	}
	a.json(w, http.StatusOK, map[string]string{"content": content})
}
