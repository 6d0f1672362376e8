package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/evacsim/internal/agents"
	"github.com/talgya/evacsim/internal/engine"
	"github.com/talgya/evacsim/internal/world"
)

const testKey = "secret"

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	pop := agents.NewSpawner(5).Spawn(agents.DefaultProfiles(), 12, world.Square(20))
	d := engine.NewDirector(engine.DefaultConfig(), world.DefaultBuilding(), pop, engine.Deps{Seed: 5})
	s := &Server{
		Dir:      d,
		Eng:      engine.NewEngine(60, 2),
		AdminKey: testKey,
	}
	return s, s.Handler()
}

func do(h http.Handler, method, path, body string, auth bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if auth {
		req.Header.Set("Authorization", "Bearer "+testKey)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStatusIdle(t *testing.T) {
	_, h := newTestServer(t)
	rec := do(h, http.MethodGet, "/api/v1/status", "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "idle", status["state"])
	assert.Equal(t, float64(12), status["total"])
	assert.Equal(t, float64(1), status["speed"])
	assert.NotContains(t, status, "scenario")
}

func TestStartEvacuationRequiresToken(t *testing.T) {
	_, h := newTestServer(t)
	rec := do(h, http.MethodPost, "/api/v1/evacuation", `{"scenario":"fire"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminDisabledWithoutKey(t *testing.T) {
	s, _ := newTestServer(t)
	s.AdminKey = ""
	rec := do(s.Handler(), http.MethodPost, "/api/v1/reset", "", true)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStartEvacuation(t *testing.T) {
	s, h := newTestServer(t)

	rec := do(h, http.MethodPost, "/api/v1/evacuation", `{"scenario":"fire"}`, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, engine.StateActive, s.Dir.State())

	var sc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sc))
	assert.Equal(t, "fire", sc["kind"])

	rec = do(h, http.MethodPost, "/api/v1/evacuation", `{"scenario":"earthquake"}`, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(h, http.MethodPost, "/api/v1/reset", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, engine.StateIdle, s.Dir.State())
	assert.Empty(t, s.Dir.Hazards())
}

func TestStartEvacuationUnknownScenario(t *testing.T) {
	_, h := newTestServer(t)
	rec := do(h, http.MethodPost, "/api/v1/evacuation", `{"scenario":"flood"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/api/v1/evacuation", `not json`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAgents(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/api/v1/agents", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 12)
	assert.Equal(t, "dancing", list[0]["mode"])

	rec = do(h, http.MethodGet, "/api/v1/agents?mode=fleeing", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(h, http.MethodGet, "/api/v1/agents/1", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/api/v1/agents/9999", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodGet, "/api/v1/agents/abc", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddHazard(t *testing.T) {
	s, h := newTestServer(t)

	rec := do(h, http.MethodPost, "/api/v1/hazards", `{"x":3,"z":-4}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Len(t, s.Dir.Hazards(), 1)
	assert.Equal(t, world.V(3, -4), s.Dir.Hazards()[0].Position)

	rec = do(h, http.MethodGet, "/api/v1/hazards", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestAddHazardRateLimited(t *testing.T) {
	s, _ := newTestServer(t)
	s.HazardLimiter = NewRateLimiter(2, time.Minute)
	h := s.Handler()

	for i := 0; i < 2; i++ {
		rec := do(h, http.MethodPost, "/api/v1/hazards", `{"x":0,"z":0}`, true)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := do(h, http.MethodPost, "/api/v1/hazards", `{"x":0,"z":0}`, true)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestToggleDoor(t *testing.T) {
	s, h := newTestServer(t)

	rec := do(h, http.MethodPost, "/api/v1/doors/0/toggle", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"door":0,"open":true}`, rec.Body.String())
	assert.True(t, s.Dir.Building().Doors[0].Open)

	rec = do(h, http.MethodPost, "/api/v1/doors/99/toggle", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSpeed(t *testing.T) {
	s, h := newTestServer(t)

	rec := do(h, http.MethodPost, "/api/v1/speed", `{"speed":4}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4.0, s.Eng.Speed())

	rec = do(h, http.MethodPost, "/api/v1/speed", `{"speed":-1}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodGet, "/api/v1/speed", "", false)
	assert.JSONEq(t, `{"speed":4}`, rec.Body.String())
}

func TestEventsLimit(t *testing.T) {
	_, h := newTestServer(t)
	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/v1/evacuation", `{"scenario":"fire"}`, true).Code)

	rec := do(h, http.MethodGet, "/api/v1/events?limit=1", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var events []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	assert.Len(t, events, 1)

	rec = do(h, http.MethodGet, "/api/v1/events?limit=zero", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBuilding(t *testing.T) {
	_, h := newTestServer(t)
	rec := do(h, http.MethodGet, "/api/v1/building", "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Building world.Building `json:"building"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "hall", body.Building.Name)
	assert.Len(t, body.Building.Exits(), 4)
}

func TestCORS(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://evac.example")
	_, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil)
	req.Header.Set("Origin", "https://evac.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://evac.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set("Origin", "https://other.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	assert.Equal(t, "10.0.0.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
	assert.Equal(t, 61, rl.RetryAfter("a"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("a"))
}
