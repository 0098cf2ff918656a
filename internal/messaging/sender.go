// Package messaging delivers text messages into a conversation on behalf of
// the end user.
package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultSendTimeout = 10 * time.Second

// Publisher delivers one text message to a conversation.
type Publisher interface {
	Publish(ctx context.Context, msg OutboundMessage) error
}

// NewTextMessage stamps a text message for conversationID.
func NewTextMessage(conversationID, text string) OutboundMessage {
	return OutboundMessage{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Type:           "text",
		Text:           text,
		Timestamp:      time.Now().UTC(),
	}
}

// ConversationSender binds a Publisher to one conversation. SendTextMessage
// is fire-and-forget: delivery failures are logged, never returned.
type ConversationSender struct {
	pub            Publisher
	conversationID string
	timeout        time.Duration
	log            *logrus.Entry
}

func Bind(pub Publisher, conversationID string, log *logrus.Entry) *ConversationSender {
	return &ConversationSender{
		pub:            pub,
		conversationID: conversationID,
		timeout:        defaultSendTimeout,
		log:            log.WithField("conversation_id", conversationID),
	}
}

func (s *ConversationSender) SendTextMessage(text string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	msg := NewTextMessage(s.conversationID, text)
	if err := s.pub.Publish(ctx, msg); err != nil {
		s.log.WithError(err).WithField("message_id", msg.ID).Error("Failed to send text message")
		return
	}
	s.log.WithField("message_id", msg.ID).Debug("Sent text message")
}

// LogPublisher only logs messages. It stands in when no transport is configured.
type LogPublisher struct {
	log *logrus.Entry
}

func NewLogPublisher(log *logrus.Entry) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, msg OutboundMessage) error {
	p.log.WithFields(logrus.Fields{
		"conversation_id": msg.ConversationID,
		"message_id":      msg.ID,
	}).Infof("outbound text: %s", msg.Text)
	return nil
}
