package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/video-system/go-replay-loop/pkg/loop"
)

// Engine is the control surface the server exposes over HTTP
type Engine interface {
	Status() loop.Status
	Toggle() error
	Clear()
	Config() loop.BufferConfig
	SetConfig(cfg loop.BufferConfig)
}

// ServerConfig holds API server configuration
type ServerConfig struct {
	Host   string
	Port   int
	Engine Engine
}

// Server is the HTTP API server
type Server struct {
	cfg    ServerConfig
	server *http.Server
}

// NewServer creates a new API server
func NewServer(cfg ServerConfig) *Server {
	s := &Server{cfg: cfg}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/toggle", s.handleToggle)
	mux.HandleFunc("/api/v1/clear", s.handleClear)
	mux.HandleFunc("/api/v1/config", s.handleConfig)

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: mux,
	}

	return s
}

// Start starts the API server
func (s *Server) Start() error {
	log.Printf("[api] server starting on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the API server
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.server.Shutdown(ctx)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "go-replay-loop",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	json.NewEncoder(w).Encode(s.cfg.Engine.Status())
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.cfg.Engine.Toggle(); err != nil {
		// Toggling into playback before anything is buffered is a
		// user-visible warning, not a server failure.
		if errors.Is(err, loop.ErrEmptyBuffer) {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{
				"status":  "warning",
				"message": err.Error(),
			})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"mode":   s.cfg.Engine.Status().Mode,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.cfg.Engine.Clear()
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		json.NewEncoder(w).Encode(s.cfg.Engine.Config())
	case http.MethodPost:
		var req struct {
			BufferSeconds *int     `json:"buffer_seconds"`
			PingPong      *bool    `json:"ping_pong"`
			PlaybackSpeed *float64 `json:"playback_speed"`
			SampleDivisor *int     `json:"sample_divisor"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		cfg := s.cfg.Engine.Config()
		if req.BufferSeconds != nil {
			cfg.Seconds = *req.BufferSeconds
		}
		if req.PingPong != nil {
			cfg.PingPong = *req.PingPong
		}
		if req.PlaybackSpeed != nil {
			cfg.PlaybackSpeed = *req.PlaybackSpeed
		}
		if req.SampleDivisor != nil {
			cfg.SampleDivisor = *req.SampleDivisor
		}
		s.cfg.Engine.SetConfig(cfg)

		json.NewEncoder(w).Encode(s.cfg.Engine.Config())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
