// Package server exposes a strategy over the Battlesnake HTTP API.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/brensch/floodsnek/config"
	"github.com/brensch/floodsnek/game"
	"github.com/brensch/floodsnek/strategy"
)

// evaluator is implemented by strategies that can explain their move.
type evaluator interface {
	Evaluate(state *game.GameState) *strategy.Decision
}

// Server answers the engine's requests with one shared strategy. The
// strategy must be safe for concurrent use.
type Server struct {
	strategy strategy.Strategy
	info     InfoResponse
	log      *slog.Logger
	router   *mux.Router
}

func New(s strategy.Strategy, appearance config.Appearance, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{
		strategy: s,
		info: InfoResponse{
			APIVersion: "1",
			Author:     appearance.Author,
			Color:      appearance.Color,
			Head:       appearance.Head,
			Tail:       appearance.Tail,
			Version:    appearance.Version,
		},
		log:    logger.With("strategy", s.Name()),
		router: mux.NewRouter(),
	}

	srv.router.HandleFunc("/", srv.handleIndex).Methods(http.MethodGet)
	srv.router.HandleFunc("/start", srv.handleStart).Methods(http.MethodPost)
	srv.router.HandleFunc("/move", srv.handleMove).Methods(http.MethodPost)
	srv.router.HandleFunc("/end", srv.handleEnd).Methods(http.MethodPost)
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*GameRequest, bool) {
	var req GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Warn("bad request", "path", r.URL.Path, "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.info)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	s.log.Info("game started",
		"game", req.Game.ID,
		"ruleset", req.Game.Ruleset.Name,
		"width", req.Board.Width,
		"height", req.Board.Height,
		"snakes", len(req.Board.Snakes),
	)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	state := req.ToGameState()

	var resp MoveResponse
	attrs := []any{"game", req.Game.ID, "turn", req.Turn}
	if ev, ok := s.strategy.(evaluator); ok {
		d := ev.Evaluate(state)
		resp.Move = d.Move
		attrs = append(attrs, "reason", d.Reason, "candidates", len(d.Candidates), "max_space", d.MaxSpace)
	} else {
		resp.Move = s.strategy.Decide(state)
	}
	attrs = append(attrs, "move", resp.Move, "took", time.Since(started))

	s.log.Info("move", attrs...)
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	result := "lost"
	for _, snake := range req.Board.Snakes {
		if snake.ID == req.You.ID {
			result = "won"
			break
		}
	}
	if result == "lost" && len(req.Board.Snakes) == 0 {
		result = "draw"
	}

	s.log.Info("game ended", "game", req.Game.ID, "turn", req.Turn, "result", result)
	w.WriteHeader(http.StatusOK)
}
