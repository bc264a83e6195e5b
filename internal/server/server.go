// Package server wires the HTTP surface: login, verify, logout, save,
// health, and metrics.
package server

import (
	"log/slog"
	"net/http"

	"github.com/dashpilot/s3-universal-backend/internal/auth"
	"github.com/dashpilot/s3-universal-backend/internal/config"
	"github.com/dashpilot/s3-universal-backend/internal/storage"
)

// Server represents the HTTP server.
type Server struct {
	Handler *Handler
	Server  *http.Server
}

// NewServer builds the mux and the shared handler. The storage gateway and
// token codec are constructed once by the caller and handed in; handlers
// hold no other state.
func NewServer(cfg *config.Config, store storage.ObjectStore) *Server {
	codec := auth.NewTokenCodec(cfg.JWTSecret, nil)
	backups := storage.NewBackupManager(store, nil)
	h := NewHandler(cfg, codec, store, backups, NewMetrics())

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	if port[0] != ':' {
		port = ":" + port
	}

	return &Server{
		Handler: h,
		Server:  &http.Server{Addr: port, Handler: NewMux(h)},
	}
}

// NewMux registers the routes. Wrong verbs short-circuit to 405 before any
// handler logic runs.
func NewMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			h.HandleLogin(w, r)
		} else {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/verify", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodPost:
			h.HandleVerify(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/logout", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodPost:
			h.HandleLogout(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/save", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			h.HandleSave(w, r)
		} else {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		} else {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.Handle("/metrics", h.Metrics.Handler())

	return mux
}

// Start starts the server.
func (s *Server) Start() error {
	slog.Info("server starting", "addr", s.Server.Addr)
	return s.Server.ListenAndServe()
}
