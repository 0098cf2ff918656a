// Package renderer interprets conversation entries for the commerce messaging
// widget and handles the interactions available on the rendered message.
package renderer

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lojasmm/shopchat/internal/entry"
	"github.com/lojasmm/shopchat/internal/recommendations"
)

const (
	messageContentClass = "embedded-messaging-message-content"
	addToCartTemplate   = "Can you help me add %s with Color Option 'White' and Size Option '6'"
)

// TextSender posts a text message into the conversation on behalf of the end
// user. Calls are fire-and-forget: implementations report their own failures.
type TextSender interface {
	SendTextMessage(text string)
}

// Renderer holds the entry currently shown by one message bubble and the view
// derived from it. It is not safe for concurrent use.
type Renderer struct {
	sender TextSender
	log    *logrus.Entry

	entry *entry.ConversationEntry
	view  View
}

func New(sender TextSender, log *logrus.Entry) *Renderer {
	return &Renderer{
		sender: sender,
		log:    log,
		view:   defaultView(nil),
	}
}

// SetConversationEntry replaces the current entry and recomputes the view.
func (r *Renderer) SetConversationEntry(e *entry.ConversationEntry) {
	r.entry = e
	r.view = Interpret(e, r.log)
}

func (r *Renderer) ConversationEntry() *entry.ConversationEntry {
	return r.entry
}

func (r *Renderer) View() View {
	return r.view
}

// Sender returns the current entry's sender role, "" when absent.
func (r *Renderer) Sender() string {
	return r.entry.SenderRole()
}

func (r *Renderer) ContentType() string {
	return r.view.ContentType
}

func (r *Renderer) ProductData() []entry.ProductRecommendation {
	return r.view.ProductData
}

func (r *Renderer) IsProductRecommendations() bool {
	return r.view.IsProductRecommendations()
}

func (r *Renderer) IsRichTextContent() bool {
	return r.view.IsRichTextContent()
}

func (r *Renderer) TextContent() string {
	return r.view.TextContent()
}

// MessageBubbleClass returns the bubble class list for the current sender.
func (r *Renderer) MessageBubbleClass() (string, error) {
	return MessageBubbleClass(r.Sender())
}

// MessageBubbleClass returns the bubble class list for a sender role, or an
// *entry.UnsupportedSenderError when the role is not a known participant.
func MessageBubbleClass(sender string) (string, error) {
	role, err := entry.ParseRole(sender)
	if err != nil {
		return "", err
	}
	return messageContentClass + " " + string(role), nil
}

// ProductList builds the recommendation list for the current view, wired so
// that its add-to-cart events reach HandleAddToCart.
func (r *Renderer) ProductList() *recommendations.List {
	return recommendations.NewList(r.view.ProductData, r.HandleAddToCart)
}

// HandleAddToCart asks the conversation to add the event's product to the cart.
// Events without a product name are ignored.
func (r *Renderer) HandleAddToCart(ev recommendations.AddToCartEvent) {
	if ev.Product == nil || ev.Product.Name == "" {
		return
	}
	if r.sender == nil {
		r.log.WithField("product", ev.Product.Name).Error("Add to cart without a message sender")
		return
	}
	r.sender.SendTextMessage(fmt.Sprintf(addToCartTemplate, ev.Product.Name))
}
