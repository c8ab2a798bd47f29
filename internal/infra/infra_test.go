package infra

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewLoggerLevels(t *testing.T) {
	t.Parallel()
	if got := NewLogger("development").GetLevel(); got != zerolog.DebugLevel {
		t.Fatalf("development level = %s", got)
	}
	if got := NewLogger("production").GetLevel(); got != zerolog.InfoLevel {
		t.Fatalf("production level = %s", got)
	}
}

func TestNewHTTPServerConfiguration(t *testing.T) {
	t.Parallel()
	cfg := &Config{
		Port:             "9180",
		HTTPReadTimeout:  15 * time.Second,
		HTTPWriteTimeout: 120 * time.Second,
		HTTPIdleTimeout:  60 * time.Second,
	}
	srv := NewHTTPServer(cfg, http.NewServeMux())
	if srv.Addr() != ":9180" {
		t.Fatalf("addr = %q", srv.Addr())
	}
	if srv.server.ReadTimeout != cfg.HTTPReadTimeout {
		t.Fatalf("read timeout = %s", srv.server.ReadTimeout)
	}
	if srv.server.WriteTimeout != cfg.HTTPWriteTimeout {
		t.Fatalf("write timeout = %s", srv.server.WriteTimeout)
	}
	if srv.server.ReadHeaderTimeout == 0 {
		t.Fatal("header timeout must be bounded")
	}
}

func TestHTTPServerStartAfterShutdownIsClean(t *testing.T) {
	t.Parallel()
	cfg := &Config{Port: "0"}
	srv := NewHTTPServer(cfg, http.NewServeMux())
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("start after shutdown must exit cleanly, got %v", err)
	}
}

func TestNewDBPoolRejectsBadConfig(t *testing.T) {
	t.Parallel()
	if _, err := NewDBPool(context.Background(), nil); err == nil {
		t.Fatal("nil config must be rejected")
	}
	cfg := &Config{DatabaseURL: "://not-a-url"}
	if _, err := NewDBPool(context.Background(), cfg); err == nil {
		t.Fatal("unparseable database url must be rejected")
	}
}
