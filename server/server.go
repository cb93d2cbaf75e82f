// Package server exposes the chat engine and the identity, person, and
// memory stores over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/engine"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/identity"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/memory"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/person"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/session"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/speech"
)

// Config holds server settings.
type Config struct {
	// Addr is the listen address, e.g. ":3000".
	Addr string
}

// DefaultAddr matches the original backend's port.
const DefaultAddr = ":3000"

// Server routes HTTP requests to the engine and stores.
type Server struct {
	cfg      Config
	engine   *engine.Engine
	catalog  *identity.Catalog
	composer *identity.Composer
	persons  *person.Store
	sessions *session.Manager
	memory   *memory.Store
	piper    *speech.Piper

	http *http.Server
}

// Option configures the server.
type Option func(*Server)

// WithPiper enables the /voices endpoint.
func WithPiper(p *speech.Piper) Option {
	return func(s *Server) {
		s.piper = p
	}
}

// New creates a server.
func New(cfg Config, eng *engine.Engine, catalog *identity.Catalog, composer *identity.Composer, persons *person.Store, sessions *session.Manager, mem *memory.Store, opts ...Option) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	s := &Server{
		cfg:      cfg,
		engine:   eng,
		catalog:  catalog,
		composer: composer,
		persons:  persons,
		sessions: sessions,
		memory:   mem,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /clear-session", s.handleClearSession)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /voices", s.handleVoices)
	mux.HandleFunc("GET /ws/chat", s.handleWS)

	mux.HandleFunc("GET /api/roles", s.handleListRoles)
	mux.HandleFunc("GET /api/personalities", s.handleListPersonalities)

	mux.HandleFunc("GET /api/persons", s.handleListPersons)
	mux.HandleFunc("POST /api/persons", s.handleCreatePerson)
	mux.HandleFunc("GET /api/persons/{id}", s.handleGetPerson)
	mux.HandleFunc("PUT /api/persons/{id}", s.handleUpdatePerson)
	mux.HandleFunc("DELETE /api/persons/{id}", s.handleDeletePerson)

	mux.HandleFunc("GET /api/persons/{id}/facts", s.handleSearchFacts)
	mux.HandleFunc("POST /api/persons/{id}/facts", s.handleAddFact)
	mux.HandleFunc("GET /api/persons/{id}/memory", s.handleMemoryContext)
	mux.HandleFunc("DELETE /api/persons/{id}/memory", s.handleDeleteMemory)

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // speech synthesis can be slow
	}
	return s
}

// Handler returns the route table, for serving through a custom
// listener or in tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks serving requests until Shutdown.
func (s *Server) ListenAndServe() error {
	log.Printf("[SERVER] Listening on %s", s.cfg.Addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[SERVER] Response encoding failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
