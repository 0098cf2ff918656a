package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	sent []OutboundMessage
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, msg OutboundMessage) error {
	f.sent = append(f.sent, msg)
	return f.err
}

func TestConversationSender_SendTextMessage(t *testing.T) {
	logger, hook := test.NewNullLogger()
	pub := &fakePublisher{}

	Bind(pub, "conv-1", logrus.NewEntry(logger)).SendTextMessage("Can you help me add Widget")

	require.Len(t, pub.sent, 1)
	assert.Equal(t, "conv-1", pub.sent[0].ConversationID)
	assert.Equal(t, "text", pub.sent[0].Type)
	assert.Equal(t, "Can you help me add Widget", pub.sent[0].Text)
	assert.NotEmpty(t, pub.sent[0].ID)
	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, logrus.ErrorLevel, e.Level)
	}
}

func TestConversationSender_LogsFailures(t *testing.T) {
	logger, hook := test.NewNullLogger()
	pub := &fakePublisher{err: errors.New("backend down")}

	Bind(pub, "conv-1", logrus.NewEntry(logger)).SendTextMessage("hello")

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "conv-1", hook.LastEntry().Data["conversation_id"])
}

func TestHTTPPublisher_Publish(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody sendMessageRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p := NewHTTPPublisher(srv.URL+"/", "secret")
	msg := NewTextMessage("conv-1", "hello")
	require.NoError(t, p.Publish(context.Background(), msg))

	assert.Equal(t, "/conversations/conv-1/messages", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "hello", gotBody.Text)
	assert.Equal(t, "text", gotBody.MessageType)
	assert.Equal(t, msg.ID, gotBody.ID)
}

func TestHTTPPublisher_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewHTTPPublisher(srv.URL, "").Publish(context.Background(), NewTextMessage("c", "hi"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

type fakeRedis struct {
	channel string
	message interface{}
	err     error
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.message = message
	return redis.NewIntResult(1, f.err)
}

func TestRedisPublisher_Publish(t *testing.T) {
	rdb := &fakeRedis{}
	p := NewRedisPublisher(rdb, "")

	require.NoError(t, p.Publish(context.Background(), NewTextMessage("conv-9", "hello")))
	assert.Equal(t, "outbound:conv-9", rdb.channel)

	var got OutboundMessage
	require.NoError(t, json.Unmarshal([]byte(rdb.message.(string)), &got))
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, "conv-9", got.ConversationID)

	rdb.err = errors.New("connection refused")
	err := p.Publish(context.Background(), NewTextMessage("conv-9", "again"))
	assert.ErrorContains(t, err, "outbound:conv-9")
}
