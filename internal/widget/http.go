package widget

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/lojasmm/shopchat/internal/entry"
	"github.com/lojasmm/shopchat/internal/session"
)

type addToCartRequest struct {
	Index string `json:"index"`
}

// NewRouter mounts the widget API. ws may be nil to disable the WebSocket endpoint.
func NewRouter(h *Handler, ws http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/conversations/{conversationID}", func(r chi.Router) {
		r.Post("/entries", h.handlePostEntry)
		r.Get("/entries", h.handleGetEntries)
		r.Delete("/entries", h.handleDeleteEntries)
		r.Post("/cart", h.handleAddToCart)
	})

	if ws != nil {
		r.Handle("/ws", ws)
	}
	return r
}

func (h *Handler) handlePostEntry(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var e entry.ConversationEntry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		http.Error(w, "invalid conversation entry", http.StatusBadRequest)
		return
	}

	resp, err := h.HandleEntry(conversationID, &e)
	if err != nil {
		h.log.WithError(err).WithField("conversation_id", conversationID).Error("Failed to handle entry")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetEntries(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	views, err := h.History(conversationID)
	if err != nil {
		h.log.WithError(err).WithField("conversation_id", conversationID).Error("Failed to load history")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) handleDeleteEntries(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	if err := h.Clear(conversationID); err != nil {
		h.log.WithError(err).WithField("conversation_id", conversationID).Error("Failed to clear history")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	err := h.AddToCart(conversationID, req.Index)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusAccepted)
	case errors.Is(err, session.ErrUnknownConversation):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNoProduct):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.log.WithError(err).WithFields(logrus.Fields{
			"conversation_id": conversationID,
			"index":           req.Index,
		}).Error("Failed to add to cart")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
