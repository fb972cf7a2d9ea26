package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// stats is the demo server's /api/stats payload, the teacher's Stats struct
// minus the LanguageBreakdown field it never filled in either.
type stats struct {
	StartTime      int64 `json:"start_time"`
	NumDocuments   int   `json:"num_documents"`
	StoredDocument int   `json:"stored_documents"`
}

// server is the demo HTTP server: one registry, three routes, the same
// shape as the teacher's Server/ServerState pair.
type server struct {
	reg       *registry
	mux       *http.ServeMux
	startTime time.Time
}

func newServer(reg *registry) *server {
	s := &server{reg: reg, mux: http.NewServeMux(), startTime: time.Now()}
	s.mux.HandleFunc("/api/socket/", s.handleSocket)
	s.mux.HandleFunc("/api/text/", s.handleText)
	s.mux.HandleFunc("/api/stats", s.handleStats)
	return s
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleSocket upgrades /api/socket/{id} to a WebSocket and hands it off
// to that document's transport.
func (s *server) handleSocket(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/socket/")
	if id == "" {
		http.Error(w, "document id required", http.StatusBadRequest)
		return
	}

	doc, err := s.reg.getOrCreate(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to open document", http.StatusInternalServerError)
		return
	}
	doc.transport.ServeHTTP(w, r)
}

// handleText returns /api/text/{id}'s current plain text.
func (s *server) handleText(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/text/")
	if id == "" {
		http.Error(w, "document id required", http.StatusBadRequest)
		return
	}

	text, err := s.reg.text(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load document", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

// handleStats returns /api/stats as JSON.
func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	st := stats{StartTime: s.startTime.Unix(), NumDocuments: s.reg.count()}
	if s.reg.store != nil {
		if n, err := s.reg.store.Count(r.Context()); err == nil {
			st.StoredDocument = n
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(st)
}
