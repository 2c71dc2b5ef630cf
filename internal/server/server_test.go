package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"dcfassist/internal/api"
	"dcfassist/internal/config"
)

func newTestServer(t *testing.T, mutate func(*config.AppConfig)) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultConfig()
	cfg.Server.DevMode = true
	cfg.Server.AllowedOrigins = []string{"https://localhost:3000"}
	if mutate != nil {
		mutate(cfg)
	}
	return NewServer(cfg, api.NewHandler(api.Deps{}), nil)
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.AppConfig) { cfg.Server.DevMode = false })

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://localhost:3000")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status want=204 got=%d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://localhost:3000" {
		t.Fatalf("allow origin got=%q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, DELETE, OPTIONS" {
		t.Fatalf("allow methods got=%q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unlisted origin should not be allowed, got %q", got)
	}
}

func TestCORS_DevModeAllowsAll(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://127.0.0.1:5173")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://127.0.0.1:5173" {
		t.Fatalf("allow origin got=%q", got)
	}
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/unknown", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown session status=%d", w.Code)
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("no route status=%d", w.Code)
	}
}

func TestTLSEnabled(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.AppConfig) { cfg.Server.TLSCertFile = "cert.pem" })
	if srv.TLSEnabled() {
		t.Fatalf("TLS requires both cert and key")
	}
	srv = newTestServer(t, func(cfg *config.AppConfig) {
		cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile = "cert.pem", "key.pem"
	})
	if !srv.TLSEnabled() {
		t.Fatalf("TLS should be enabled")
	}
}
