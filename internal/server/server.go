// Package server exposes a running board over HTTP and websockets.
//
// A single Loop goroutine owns the control.Controller. REST handlers submit
// commands to it and every change is pushed to websocket subscribers by the
// Hub.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"gridlife/internal/control"
	"gridlife/pkg/life"
)

// Server routes REST and websocket requests to a Loop.
type Server struct {
	loop   *Loop
	hub    *Hub
	router *mux.Router
	log    *slog.Logger
}

// BoardResponse is returned by every board endpoint.
type BoardResponse struct {
	Status control.Status `json:"status"`
	Board  life.Snapshot  `json:"board"`
}

// CellRequest turns on a single cell.
type CellRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

// RateRequest changes the generation rate.
type RateRequest struct {
	Rate int `json:"rate"`
}

// New creates a server backed by loop and hub.
func New(loop *Loop, hub *Hub, logger *slog.Logger) *Server {
	s := &Server{
		loop:   loop,
		hub:    hub,
		router: mux.NewRouter(),
		log:    logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/board", s.handleGetBoard).Methods("GET")
	api.HandleFunc("/cells", s.handleToggleOn).Methods("POST")
	api.HandleFunc("/clear", s.handleClear).Methods("POST")
	api.HandleFunc("/randomize", s.handleRandomize).Methods("POST")

	api.HandleFunc("/presets", s.handleListPresets).Methods("GET")
	api.HandleFunc("/presets/{name}", s.handleLoadPreset).Methods("POST")

	api.HandleFunc("/pause", s.handlePause).Methods("POST")
	api.HandleFunc("/resume", s.handleResume).Methods("POST")
	api.HandleFunc("/step", s.handleStep).Methods("POST")
	api.HandleFunc("/rate", s.handleSetRate).Methods("POST")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps engine and loop errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, life.ErrOutOfBounds):
		return http.StatusBadRequest
	case errors.Is(err, life.ErrUnknownPreset):
		return http.StatusNotFound
	case errors.Is(err, ErrStopped), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// mutate runs fn on the loop and answers with the resulting board.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(*control.Controller) error) {
	var resp BoardResponse
	err := s.loop.Do(r.Context(), func(c *control.Controller) error {
		if err := fn(c); err != nil {
			return err
		}
		resp = BoardResponse{Status: c.Status(), Board: c.Snapshot()}
		return nil
	})
	if err != nil {
		code := statusFor(err)
		if code >= http.StatusInternalServerError {
			s.log.Error("request failed", "path", r.URL.Path, "error", err)
		}
		respondError(w, code, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	var resp BoardResponse
	if err := s.loop.View(r.Context(), func(c *control.Controller) error {
		resp = BoardResponse{Status: c.Status(), Board: c.Snapshot()}
		return nil
	}); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleToggleOn(w http.ResponseWriter, r *http.Request) {
	var req CellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.X == nil || req.Y == nil {
		respondError(w, http.StatusBadRequest, "x and y are required")
		return
	}
	x, y := *req.X, *req.Y
	s.mutate(w, r, func(c *control.Controller) error {
		return c.ToggleOn(x, y)
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(c *control.Controller) error {
		c.Clear()
		return nil
	})
}

func (s *Server) handleRandomize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seed *int64 `json:"seed"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	s.log.Debug("randomizing board", "seed", seed)
	s.mutate(w, r, func(c *control.Controller) error {
		c.Randomize(seed)
		return nil
	})
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	var names []string
	if err := s.loop.View(r.Context(), func(c *control.Controller) error {
		names = c.PresetNames()
		return nil
	}); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"presets": names})
}

func (s *Server) handleLoadPreset(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	s.mutate(w, r, func(c *control.Controller) error {
		return c.LoadPreset(name)
	})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(c *control.Controller) error {
		c.SetPaused(true)
		return nil
	})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(c *control.Controller) error {
		c.SetPaused(false)
		return nil
	})
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(c *control.Controller) error {
		c.Step()
		return nil
	})
}

func (s *Server) handleSetRate(w http.ResponseWriter, r *http.Request) {
	var req RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mutate(w, r, func(c *control.Controller) error {
		c.SetRate(req.Rate)
		return nil
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r, s.loop)
}
