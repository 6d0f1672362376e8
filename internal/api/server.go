// Package api provides the HTTP control and observation surface.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/talgya/evacsim/internal/agents"
	"github.com/talgya/evacsim/internal/engine"
	"github.com/talgya/evacsim/internal/hazard"
	"github.com/talgya/evacsim/internal/render"
	"github.com/talgya/evacsim/internal/world"
)

// Server serves the simulation over HTTP. Every read and command runs
// through Eng.Do so it never overlaps a tick.
type Server struct {
	Dir      *engine.Director
	Eng      *engine.Engine
	Hub      *render.Hub // Optional frame stream at /ws
	Addr     string
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// HazardLimiter bounds interactive hazard placement per client.
	HazardLimiter *RateLimiter
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	if s.HazardLimiter == nil {
		s.HazardLimiter = NewRateLimiter(20, time.Minute)
	}

	r := mux.NewRouter()
	v1 := r.PathPrefix("/api/v1").Subrouter()

	// Public endpoints.
	v1.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	v1.HandleFunc("/agents", s.handleAgents).Methods(http.MethodGet)
	v1.HandleFunc("/agents/{id}", s.handleAgent).Methods(http.MethodGet)
	v1.HandleFunc("/hazards", s.handleHazards).Methods(http.MethodGet)
	v1.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	v1.HandleFunc("/building", s.handleBuilding).Methods(http.MethodGet)
	v1.HandleFunc("/speed", s.handleSpeed).Methods(http.MethodGet)

	// Admin endpoints.
	v1.HandleFunc("/evacuation", s.adminOnly(s.handleStartEvacuation)).Methods(http.MethodPost)
	v1.HandleFunc("/reset", s.adminOnly(s.handleReset)).Methods(http.MethodPost)
	v1.HandleFunc("/hazards", s.adminOnly(RateLimitMiddleware(s.HazardLimiter, s.handleAddHazard))).Methods(http.MethodPost)
	v1.HandleFunc("/doors/{index}/toggle", s.adminOnly(s.handleToggleDoor)).Methods(http.MethodPost)
	v1.HandleFunc("/speed", s.adminOnly(s.handleSpeed)).Methods(http.MethodPost)

	if s.Hub != nil {
		r.Handle("/ws", s.Hub).Methods(http.MethodGet)
	}
	return corsMiddleware(r)
}

// Start begins serving in a goroutine and returns the server for shutdown.
func (s *Server) Start() *http.Server {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "", "observers", s.Hub != nil)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

func corsOrigins() map[string]bool {
	allowed := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowed[origin] = true
			}
		}
	}
	return allowed
}

// OriginAllowed reports whether a browser origin may use the API and the
// observer stream. Set CORS_ORIGINS to a comma-separated list to extend the
// localhost dev defaults.
func OriginAllowed() func(origin string) bool {
	allowed := corsOrigins()
	return func(origin string) bool { return allowed[origin] }
}

// corsMiddleware adds CORS headers for allowed frontend origins.
func corsMiddleware(next http.Handler) http.Handler {
	allowed := OriginAllowed()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no EVACSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var status map[string]any
	s.Eng.Do(func() {
		status = map[string]any{
			"state":     s.Dir.State(),
			"tick":      s.Dir.TickCount(),
			"elapsed":   s.Dir.Elapsed(),
			"evacuated": s.Dir.EvacuatedCount(),
			"total":     s.Dir.TotalCount(),
			"hazards":   len(s.Dir.Hazards()),
			"building":  s.Dir.Building().Name,
		}
		if sc, ok := s.Dir.Scenario(); ok {
			status["scenario"] = sc
		}
	})
	status["speed"] = s.Eng.Speed()
	writeJSON(w, status)
}

type agentSummary struct {
	ID       agents.AgentID `json:"id"`
	Name     string         `json:"name"`
	Role     string         `json:"role"`
	Position world.Vec3     `json:"position"`
	Yaw      float64        `json:"yaw"`
	Mode     agents.Mode    `json:"mode"`
	Panic    float64        `json:"panic"`
	Headless bool           `json:"headless,omitempty"`
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	modeFilter := r.URL.Query().Get("mode")

	var out []agentSummary
	s.Eng.Do(func() {
		for _, a := range s.Dir.Agents() {
			if modeFilter != "" && a.Mode.String() != modeFilter {
				continue
			}
			out = append(out, agentSummary{
				ID:       a.ID,
				Name:     a.Name,
				Role:     a.Profile.Role,
				Position: a.Position,
				Yaw:      a.Yaw,
				Mode:     a.Mode,
				Panic:    a.Panic,
				Headless: a.Headless,
			})
		}
	})
	if out == nil {
		out = []agentSummary{}
	}
	writeJSON(w, out)
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid agent id", http.StatusBadRequest)
		return
	}

	// Encode under the lock; the agent keeps moving afterwards.
	var body []byte
	s.Eng.Do(func() {
		if a, ok := s.Dir.Agent(agents.AgentID(id)); ok {
			body, err = json.Marshal(a)
		}
	})
	if err != nil {
		http.Error(w, "encode agent", http.StatusInternalServerError)
		return
	}
	if body == nil {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (s *Server) handleHazards(w http.ResponseWriter, r *http.Request) {
	var hz []hazard.Hazard
	s.Eng.Do(func() { hz = s.Dir.Hazards() })
	writeJSON(w, hz)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	var events []engine.Event
	s.Eng.Do(func() { events = s.Dir.Events() })
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	writeJSON(w, events)
}

func (s *Server) handleBuilding(w http.ResponseWriter, r *http.Request) {
	var body []byte
	var err error
	s.Eng.Do(func() {
		body, err = json.Marshal(map[string]any{
			"building": s.Dir.Building(),
			"props":    s.Dir.Props(),
		})
	})
	if err != nil {
		http.Error(w, "encode building", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (s *Server) handleStartEvacuation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scenario string `json:"scenario"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	kind, err := engine.ParseScenario(req.Scenario)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var sc engine.Scenario
	s.Eng.Do(func() {
		if err = s.Dir.StartEvacuation(kind); err == nil {
			sc, _ = s.Dir.Scenario()
		}
	})
	switch {
	case errors.Is(err, engine.ErrScenarioActive):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	slog.Info("evacuation started via api", "scenario", kind, "run_id", sc.RunID)
	writeJSON(w, sc)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.Eng.Do(s.Dir.Reset)
	writeJSON(w, map[string]string{"state": engine.StateIdle.String()})
}

func (s *Server) handleAddHazard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X float64 `json:"x"`
		Z float64 `json:"z"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	var h hazard.Hazard
	s.Eng.Do(func() { h = s.Dir.AddHazard(world.V(req.X, req.Z)) })
	writeJSONStatus(w, http.StatusCreated, h)
}

func (s *Server) handleToggleDoor(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, "invalid door index", http.StatusBadRequest)
		return
	}
	var open bool
	s.Eng.Do(func() { open, err = s.Dir.ToggleDoor(i) })
	if errors.Is(err, world.ErrNoDoor) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"door": i, "open": open})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 100 {
			http.Error(w, "speed must be 0-100", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}
	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
