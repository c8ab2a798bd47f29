package infra

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// HTTPServer runs the extension-facing API. The write timeout comes from
// config because the chat-relayed video flow answers within the request and
// can legitimately take two minutes; the header timeout stays short since
// every caller is a browser extension sending tiny JSON bodies.
type HTTPServer struct {
	server *http.Server
}

// NewHTTPServer builds the server around the router.
func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	return &HTTPServer{server: &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}}
}

// Addr returns the listen address.
func (s *HTTPServer) Addr() string {
	return s.server.Addr
}

// Start blocks serving requests until the listener closes. A graceful
// Shutdown is reported as a clean exit, not an error.
func (s *HTTPServer) Start() error {
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
