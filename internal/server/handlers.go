package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/maxhemmerich/dominion/internal/ai"
	"github.com/maxhemmerich/dominion/internal/game"
)

// Server wires the HTTP/websocket surface around the match registry.
type Server struct {
	registry *Registry
	settings MatchSettings
	router   *mux.Router
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// New builds the routed server surface.
func New(registry *Registry, settings MatchSettings, logger zerolog.Logger) *Server {
	s := &Server{
		registry: registry,
		settings: settings,
		router:   mux.NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With().Str("component", "http").Logger(),
	}

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/matches", s.handleCreateMatch).Methods(http.MethodPost)
	s.router.HandleFunc("/api/matches/{id}", s.handleGetMatch).Methods(http.MethodGet)
	s.router.HandleFunc("/api/matches/{id}/join", s.handleJoin).Methods(http.MethodPost)
	s.router.HandleFunc("/api/matches/{id}/start", s.handleStart).Methods(http.MethodPost)
	s.router.HandleFunc("/ws/{id}", s.handleWebsocket).Methods(http.MethodGet)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"matches": s.registry.Count(),
	})
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, _ *http.Request) {
	m, err := s.registry.CreateMatch(s.settings)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"matchId": m.ID})
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	m, ok := s.registry.Get(mux.Vars(r)["id"])
	if !ok {
		s.writeError(w, http.StatusNotFound, "match not found")
		return
	}
	s.writeJSON(w, http.StatusOK, m.Snapshot())
}

type joinRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsAI       bool   `json:"isAI"`
	Difficulty string `json:"difficulty"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	m, ok := s.registry.Get(mux.Vars(r)["id"])
	if !ok {
		s.writeError(w, http.StatusNotFound, "match not found")
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed join request")
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	info := game.PlayerInfo{ID: req.ID, Name: req.Name, IsAI: req.IsAI}
	var difficulty ai.Difficulty
	if req.IsAI && req.Difficulty != "" {
		difficulty = ai.ParseDifficulty(req.Difficulty)
	}
	if err := m.Join(info, difficulty); err != nil {
		s.writeError(w, http.StatusConflict, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"playerId": req.ID})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	m, ok := s.registry.Get(mux.Vars(r)["id"])
	if !ok {
		s.writeError(w, http.StatusNotFound, "match not found")
		return
	}
	if err := m.Start(); err != nil {
		s.writeError(w, http.StatusConflict, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, m.Snapshot())
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	m, ok := s.registry.Get(mux.Vars(r)["id"])
	if !ok {
		s.writeError(w, http.StatusNotFound, "match not found")
		return
	}
	playerID := r.URL.Query().Get("player")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	NewClient(m, playerID, conn, s.logger).Start()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, reason string) {
	s.writeJSON(w, status, map[string]string{"error": reason})
}
