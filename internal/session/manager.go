package session

import (
	"errors"
	"sync"
	"time"

	"github.com/lojasmm/shopchat/internal/renderer"
)

var ErrUnknownConversation = errors.New("unknown conversation")

// Factory builds the renderer for a conversation seen for the first time.
type Factory func(conversationID string) *renderer.Renderer

// Manager owns one renderer per conversation and serializes access to it.
// Different conversations run in parallel.
type Manager struct {
	mu            sync.Mutex
	conversations map[string]*conversation
	newRenderer   Factory
}

type conversation struct {
	mu       sync.Mutex
	lastUsed time.Time
	evicted  bool
	renderer *renderer.Renderer
}

func NewManager(newRenderer Factory) *Manager {
	return &Manager{
		conversations: make(map[string]*conversation),
		newRenderer:   newRenderer,
	}
}

// WithRenderer executes fn while holding the conversation's lock, creating
// the renderer on first use.
func (m *Manager) WithRenderer(conversationID string, fn func(r *renderer.Renderer) error) error {
	for {
		c := m.lookup(conversationID, true)
		if ran, err := c.run(fn); ran {
			return err
		}
	}
}

// WithExisting is WithRenderer for conversations that already have a
// renderer; it returns ErrUnknownConversation otherwise.
func (m *Manager) WithExisting(conversationID string, fn func(r *renderer.Renderer) error) error {
	for {
		c := m.lookup(conversationID, false)
		if c == nil {
			return ErrUnknownConversation
		}
		if ran, err := c.run(fn); ran {
			return err
		}
	}
}

func (m *Manager) lookup(conversationID string, create bool) *conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.conversations[conversationID]
	if !ok && create {
		c = &conversation{lastUsed: time.Now(), renderer: m.newRenderer(conversationID)}
		m.conversations[conversationID] = c
	}
	return c
}

// run reports ran=false when Cleanup evicted the conversation while the
// caller was waiting for it.
func (c *conversation) run(fn func(r *renderer.Renderer) error) (ran bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.evicted {
		return false, nil
	}
	c.lastUsed = time.Now()
	return true, fn(c.renderer)
}

// Drop forgets the conversation's renderer.
func (m *Manager) Drop(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conversations, conversationID)
}

// Len returns the number of live conversations.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conversations)
}

// Cleanup removes renderers not used within maxAge to prevent memory leaks.
// Conversations busy in a callback are left for the next pass.
func (m *Manager) Cleanup(maxAge time.Duration) {
	m.mu.Lock()
	candidates := make(map[string]*conversation, len(m.conversations))
	for id, c := range m.conversations {
		candidates[id] = c
	}
	m.mu.Unlock()

	now := time.Now()
	for id, c := range candidates {
		if !c.mu.TryLock() {
			continue
		}
		if now.Sub(c.lastUsed) > maxAge {
			m.mu.Lock()
			if m.conversations[id] == c {
				delete(m.conversations, id)
			}
			m.mu.Unlock()
			c.evicted = true
		}
		c.mu.Unlock()
	}
}
