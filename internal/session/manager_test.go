package session

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojasmm/shopchat/internal/entry"
	"github.com/lojasmm/shopchat/internal/renderer"
)

func newTestManager() (*Manager, *int) {
	logger, _ := test.NewNullLogger()
	created := 0
	m := NewManager(func(string) *renderer.Renderer {
		created++
		return renderer.New(nil, logrus.NewEntry(logger))
	})
	return m, &created
}

func TestManager_ReusesRenderer(t *testing.T) {
	m, created := newTestManager()

	require.NoError(t, m.WithRenderer("conv", func(r *renderer.Renderer) error {
		r.SetConversationEntry(entry.NewTextEntry("Hello there", "EndUser"))
		return nil
	}))

	var text string
	require.NoError(t, m.WithRenderer("conv", func(r *renderer.Renderer) error {
		text = r.TextContent()
		return nil
	}))

	assert.Equal(t, "Hello there", text)
	assert.Equal(t, 1, *created)
	assert.Equal(t, 1, m.Len())
}

func TestManager_WithExisting(t *testing.T) {
	m, _ := newTestManager()

	err := m.WithExisting("missing", func(*renderer.Renderer) error { return nil })
	assert.ErrorIs(t, err, ErrUnknownConversation)

	require.NoError(t, m.WithRenderer("conv", func(*renderer.Renderer) error { return nil }))
	assert.NoError(t, m.WithExisting("conv", func(*renderer.Renderer) error { return nil }))

	m.Drop("conv")
	assert.ErrorIs(t, m.WithExisting("conv", func(*renderer.Renderer) error { return nil }), ErrUnknownConversation)
}

func TestManager_SerializesPerConversation(t *testing.T) {
	m, _ := newTestManager()

	var wg sync.WaitGroup
	active, maxActive := 0, 0
	var mu sync.Mutex
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.WithRenderer("conv", func(*renderer.Renderer) error {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive)
}

func TestManager_Cleanup(t *testing.T) {
	m, _ := newTestManager()
	require.NoError(t, m.WithRenderer("old", func(*renderer.Renderer) error { return nil }))

	m.Cleanup(time.Hour)
	assert.Equal(t, 1, m.Len())

	time.Sleep(5 * time.Millisecond)
	m.Cleanup(time.Millisecond)
	assert.Equal(t, 0, m.Len())
}

func TestManager_CleanupKeepsNewConversation(t *testing.T) {
	m, _ := newTestManager()
	m.lookup("fresh", true)

	m.Cleanup(time.Hour)
	assert.Equal(t, 1, m.Len())
}

func TestManager_CleanupSkipsBusyConversation(t *testing.T) {
	m, _ := newTestManager()
	require.NoError(t, m.WithRenderer("idle", func(*renderer.Renderer) error { return nil }))

	entered := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan error, 1)
	go func() {
		finished <- m.WithRenderer("busy", func(*renderer.Renderer) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered
	time.Sleep(5 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		m.Cleanup(time.Millisecond)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Cleanup blocked on a busy conversation")
	}

	assert.Equal(t, 1, m.Len())
	close(release)
	require.NoError(t, <-finished)
	assert.ErrorIs(t, m.WithExisting("idle", func(*renderer.Renderer) error { return nil }), ErrUnknownConversation)
}

func TestManager_EvictedConversationIsRecreated(t *testing.T) {
	m, created := newTestManager()
	stale := m.lookup("conv", true)

	time.Sleep(5 * time.Millisecond)
	m.Cleanup(time.Millisecond)
	require.Equal(t, 0, m.Len())

	ran, err := stale.run(func(*renderer.Renderer) error { return nil })
	require.NoError(t, err)
	assert.False(t, ran)

	require.NoError(t, m.WithRenderer("conv", func(*renderer.Renderer) error { return nil }))
	assert.Equal(t, 2, *created)
	assert.Equal(t, 1, m.Len())
}
