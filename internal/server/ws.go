package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/aetheroos/aethero/internal/asl"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message envelope.
type wsRequest struct {
	Type     string `json:"type"` // "asl_process", "subscribe_minister", "minister_direct"
	Input    string `json:"input,omitempty"`
	Minister string `json:"minister,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	s.hub.Add(sessionID, conn)
	defer func() {
		s.hub.Remove(sessionID, conn)
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		s.hub.Touch(sessionID)

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendWSError(conn, sessionID, "invalid message format")
			continue
		}

		switch req.Type {
		case "asl_process":
			s.wsProcess(conn, r, sessionID, req)
		case "subscribe_minister":
			s.wsSubscribe(conn, sessionID, req)
		case "minister_direct":
			s.wsMinisterDirect(conn, r, sessionID, req)
		default:
			s.sendWSError(conn, sessionID, "unknown message type: "+req.Type)
		}
	}
}

func (s *Server) wsProcess(conn *websocket.Conn, r *http.Request, sessionID string, req wsRequest) {
	if req.Input == "" {
		s.sendWSError(conn, sessionID, "input is required")
		return
	}
	resp, err := s.processor.ProcessRequest(r.Context(), sessionID, req.Input)
	if err != nil {
		s.sendWSError(conn, sessionID, err.Error())
		return
	}
	s.sendWS(conn, map[string]any{
		"type":       "asl_result",
		"session_id": sessionID,
		"result":     resp,
	})
}

func (s *Server) wsSubscribe(conn *websocket.Conn, sessionID string, req wsRequest) {
	if !asl.IsMinister(req.Minister) {
		s.sendWSError(conn, sessionID, "unknown minister: "+req.Minister)
		return
	}
	s.hub.Subscribe(sessionID, asl.Minister(req.Minister))
	s.sendWS(conn, map[string]any{
		"type":       "subscription_confirmed",
		"session_id": sessionID,
		"minister":   req.Minister,
	})
}

func (s *Server) wsMinisterDirect(conn *websocket.Conn, r *http.Request, sessionID string, req wsRequest) {
	if !asl.IsMinister(req.Minister) {
		s.sendWSError(conn, sessionID, "unknown minister: "+req.Minister)
		return
	}
	if req.Input == "" {
		s.sendWSError(conn, sessionID, "input is required")
		return
	}
	out, err := s.processor.MinisterDirect(r.Context(), asl.Minister(req.Minister), sessionID, req.Input)
	if err != nil {
		s.sendWSError(conn, sessionID, err.Error())
		return
	}
	s.sendWS(conn, map[string]any{
		"type":       "minister_response",
		"session_id": sessionID,
		"minister":   req.Minister,
		"output":     out,
	})
}

func (s *Server) sendWS(conn *websocket.Conn, v any) {
	if err := conn.WriteJSON(v); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}

func (s *Server) sendWSError(conn *websocket.Conn, sessionID, msg string) {
	s.sendWS(conn, map[string]any{
		"type":       "error",
		"session_id": sessionID,
		"message":    msg,
	})
}
