package server

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/core"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The frontend is served from a different origin in development
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsFrame is one server-to-client message. Utterances stream one frame
// each so the avatar can start speaking before the full turn finishes.
type wsFrame struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	PersonID  string          `json:"aiPersonId,omitempty"`
	Utterance *core.Utterance `json:"utterance,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// handleWS serves a persistent chat connection. Each inbound frame is a
// chatRequest; each turn streams utterance frames followed by a done
// frame.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	log.Printf("[WS] Client connected from %s", r.RemoteAddr)

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error: %v", err)
			}
			return
		}

		out, err := s.engine.Turn(r.Context(), engine.TurnInput{
			SessionID: req.SessionID,
			PersonID:  req.PersonID,
			Message:   req.Message,
		})
		if err != nil {
			log.Printf("[WS] Chat turn failed: %v", err)
			if werr := conn.WriteJSON(wsFrame{Type: "error", Error: "failed to process message"}); werr != nil {
				return
			}
			continue
		}

		for i := range out.Utterances {
			frame := wsFrame{
				Type:      "utterance",
				SessionID: out.SessionID,
				PersonID:  out.PersonID,
				Utterance: &out.Utterances[i],
			}
			if err := conn.WriteJSON(frame); err != nil {
				log.Printf("[WS] Write error: %v", err)
				return
			}
		}
		if err := conn.WriteJSON(wsFrame{Type: "done", SessionID: out.SessionID, PersonID: out.PersonID}); err != nil {
			return
		}
	}
}
