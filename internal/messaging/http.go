package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPPublisher posts messages to the conversation backend's REST API.
type HTTPPublisher struct {
	baseURL     string
	accessToken string
	http        *http.Client
}

func NewHTTPPublisher(baseURL, accessToken string) *HTTPPublisher {
	return &HTTPPublisher{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		http:        &http.Client{Timeout: 15 * time.Second},
	}
}

type sendMessageRequest struct {
	ID          string `json:"id"`
	MessageType string `json:"messageType"`
	Text        string `json:"text"`
}

func (p *HTTPPublisher) Publish(ctx context.Context, msg OutboundMessage) error {
	payload, err := json.Marshal(sendMessageRequest{
		ID:          msg.ID,
		MessageType: msg.Type,
		Text:        msg.Text,
	})
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/conversations/%s/messages", p.baseURL, url.PathEscape(msg.ConversationID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	if p.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.accessToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("messaging API status %d: %s", resp.StatusCode, respBody)
	}
	return nil
}
