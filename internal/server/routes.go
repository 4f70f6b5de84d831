package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aetheroos/aethero/internal/asl"
	"github.com/aetheroos/aethero/internal/coordinator"
)

type processRequest struct {
	SessionID string `json:"session_id"`
	Input     string `json:"input"`
}

func (s *Server) registerRoutes(r chi.Router) {
	r.Route("/aethero", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/asl/process", s.handleProcess)
		r.Post("/asl/validate", s.handleValidate)
		r.Post("/minister/{minister}", s.handleMinisterDirect)
		r.Get("/ws/{session_id}", s.handleWebSocket)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"initialized":     s.processor.Initialized(),
		"bridges":         s.processor.Health(),
		"active_sessions": s.processor.ActiveSessions(),
		"connections":     s.hub.ConnectionCount(),
		"sessions":        s.hub.Sessions(),
		"uptime_seconds":  int(time.Since(s.startedAt).Seconds()),
	})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Input == "" {
		writeError(w, http.StatusBadRequest, "input is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	resp, err := s.processor.ProcessRequest(r.Context(), req.SessionID, req.Input)
	if err != nil {
		if errors.Is(err, coordinator.ErrNotInitialized) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Input == "" {
		writeError(w, http.StatusBadRequest, "input is required")
		return
	}

	ok, errs := asl.ValidateSyntax(req.Input)
	if errs == nil {
		errs = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":  ok,
		"errors": errs,
	})
}

func (s *Server) handleMinisterDirect(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "minister")
	if !asl.IsMinister(name) {
		writeError(w, http.StatusNotFound, "unknown minister: "+name)
		return
	}

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Input == "" {
		writeError(w, http.StatusBadRequest, "input is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	out, err := s.processor.MinisterDirect(r.Context(), asl.Minister(name), req.SessionID, req.Input)
	if err != nil {
		switch {
		case errors.Is(err, coordinator.ErrNotInitialized):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, coordinator.ErrNoHandler):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"minister":   name,
		"session_id": req.SessionID,
		"output":     out,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
