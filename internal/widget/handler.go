package widget

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lojasmm/shopchat/internal/entry"
	"github.com/lojasmm/shopchat/internal/renderer"
	"github.com/lojasmm/shopchat/internal/session"
	"github.com/lojasmm/shopchat/internal/store"
	"github.com/lojasmm/shopchat/internal/styling"
)

var ErrNoProduct = errors.New("no product at index")

// Handler feeds conversation entries into per-conversation renderers and
// keeps their history. HTTP and WebSocket transports share it.
type Handler struct {
	store    store.Store
	sessions *session.Manager
	button   styling.ButtonProps
	log      *logrus.Entry
}

func NewHandler(s store.Store, sessions *session.Manager, button styling.ButtonProps, log *logrus.Entry) *Handler {
	return &Handler{store: s, sessions: sessions, button: button, log: log}
}

// HandleEntry stores e and makes it the conversation's current entry.
func (h *Handler) HandleEntry(conversationID string, e *entry.ConversationEntry) (ViewResponse, error) {
	id := e.EnsureIdentifier()

	var resp ViewResponse
	err := h.sessions.WithRenderer(conversationID, func(r *renderer.Renderer) error {
		if err := h.store.SaveEntry(conversationID, *e); err != nil {
			return fmt.Errorf("saving entry: %w", err)
		}
		r.SetConversationEntry(e)
		resp = NewViewResponse(conversationID, id, r.View(), h.button)
		return nil
	})
	if err != nil {
		return ViewResponse{}, err
	}

	h.log.WithFields(logrus.Fields{
		"conversation_id": conversationID,
		"identifier":      id,
		"content_type":    resp.ContentType,
		"products":        len(resp.ProductData),
	}).Debug("Rendered entry")
	return resp, nil
}

// AddToCart activates the add-to-cart control of the product at index in the
// conversation's current recommendation list.
func (h *Handler) AddToCart(conversationID, index string) error {
	return h.sessions.WithExisting(conversationID, func(r *renderer.Renderer) error {
		if !r.ProductList().HandleAddToCart(index) {
			return fmt.Errorf("%w %q", ErrNoProduct, index)
		}
		return nil
	})
}

// History re-interprets every stored entry of the conversation.
func (h *Handler) History(conversationID string) ([]ViewResponse, error) {
	entries, err := h.store.GetEntries(conversationID)
	if err != nil {
		return nil, fmt.Errorf("loading entries: %w", err)
	}

	views := make([]ViewResponse, 0, len(entries))
	for i := range entries {
		v := renderer.Interpret(&entries[i], h.log)
		views = append(views, NewViewResponse(conversationID, entries[i].Identifier, v, h.button))
	}
	return views, nil
}

// Clear deletes the conversation's history and its renderer.
func (h *Handler) Clear(conversationID string) error {
	if err := h.store.ClearEntries(conversationID); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}
	h.sessions.Drop(conversationID)
	return nil
}
