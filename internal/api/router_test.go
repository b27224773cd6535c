package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"profilingpoll/internal/config"
)

func TestSetupRouter_BasicRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	r := SetupRouter(cfg, nil)

	// Health route should exist and return 200
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("GET /health should return 200, got %d", w.Code)
	}

	// Config route should exist and return 200
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest("GET", "/config", nil)
	r.ServeHTTP(w2, req2)
	if w2.Code != http.StatusOK {
		t.Errorf("GET /config should return 200, got %d", w2.Code)
	}
}

func TestSetupRouter_Subpath(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.Subpath = "/poll"
	r := SetupRouter(cfg, nil)

	// Should correctly prefix routes with subpath
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/poll/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("GET /poll/health should return 200, got %d", w.Code)
	}
}

func TestSetupRouter_PollRoutes(t *testing.T) {
	setupPollDB(t)
	resetPollTables(t)
	seedScenario(t)
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.SigningSecret = "test-secret"
	r := SetupRouter(cfg, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/polls/p", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("GET /polls/p should return 200, got %d: %s", w.Code, w.Body.String())
	}
}
