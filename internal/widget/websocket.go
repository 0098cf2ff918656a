package widget

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/lojasmm/shopchat/internal/entry"
)

const (
	frameConnected = "connected"
	frameEntry     = "entry"
	frameAddToCart = "addtocart"
	frameView      = "view"
	frameAccepted  = "accepted"
	frameError     = "error"
)

// WSIncoming is a frame sent by the widget: an entry to render, or an
// add-to-cart activation on the current recommendation list.
type WSIncoming struct {
	Type  string                   `json:"type"`
	Entry *entry.ConversationEntry `json:"entry,omitempty"`
	Index string                   `json:"index,omitempty"`
}

type WSResponse struct {
	Type           string        `json:"type"`
	ConversationID string        `json:"conversationId,omitempty"`
	View           *ViewResponse `json:"view,omitempty"`
	Text           string        `json:"text,omitempty"`
}

type WSHandler struct {
	handler        *Handler
	allowedOrigins map[string]bool
	upgrader       websocket.Upgrader
	log            *logrus.Entry
}

func NewWSHandler(h *Handler, allowedOrigins []string, log *logrus.Entry) *WSHandler {
	origins := make(map[string]bool)
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	ws := &WSHandler{handler: h, allowedOrigins: origins, log: log}
	ws.upgrader = websocket.Upgrader{CheckOrigin: ws.checkOrigin}
	return ws
}

func (ws *WSHandler) checkOrigin(r *http.Request) bool {
	if len(ws.allowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // allow non-browser clients
	}
	return ws.allowedOrigins[origin]
}

func (ws *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	conversationID := r.URL.Query().Get("conversation_id")
	if conversationID == "" {
		conversationID = uuid.New().String()
	}
	log := ws.log.WithField("conversation_id", conversationID)

	if err := conn.WriteJSON(WSResponse{Type: frameConnected, ConversationID: conversationID}); err != nil {
		log.WithError(err).Warn("Failed to send connected frame")
		return
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("WebSocket closed unexpectedly")
			}
			return
		}

		resp := ws.handleFrame(conversationID, message, log)
		if err := conn.WriteJSON(resp); err != nil {
			log.WithError(err).Warn("Failed to write to WebSocket")
			return
		}
	}
}

func (ws *WSHandler) handleFrame(conversationID string, message []byte, log *logrus.Entry) WSResponse {
	var in WSIncoming
	if err := json.Unmarshal(message, &in); err != nil {
		return WSResponse{Type: frameError, Text: "Invalid frame. Send JSON with a 'type' field."}
	}

	switch in.Type {
	case frameEntry:
		if in.Entry == nil {
			return WSResponse{Type: frameError, Text: "Entry frame without an entry."}
		}
		view, err := ws.handler.HandleEntry(conversationID, in.Entry)
		if err != nil {
			log.WithError(err).Error("Failed to handle entry")
			return WSResponse{Type: frameError, Text: "Sorry, this message could not be processed."}
		}
		return WSResponse{Type: frameView, ConversationID: conversationID, View: &view}

	case frameAddToCart:
		err := ws.handler.AddToCart(conversationID, in.Index)
		if err == nil {
			return WSResponse{Type: frameAccepted, ConversationID: conversationID}
		}
		if !errors.Is(err, ErrNoProduct) {
			log.WithError(err).Warn("Add to cart failed")
		}
		return WSResponse{Type: frameError, Text: err.Error()}

	default:
		return WSResponse{Type: frameError, Text: "Unknown frame type: " + in.Type}
	}
}
