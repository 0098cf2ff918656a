package messaging

import "time"

// OutboundMessage is the wire form of a text message sent into a conversation.
type OutboundMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Type           string    `json:"type"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
}
