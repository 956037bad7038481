package realtime

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"nomorebugs-admin/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

func (f *fakeClient) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, data)
	return nil
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeClient) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.messages...)
}

func TestHub_PublishReachesClients(t *testing.T) {
	hub := NewHub(logger.NewTestLogger(t))
	done := make(chan struct{})
	go hub.Run(done)
	defer close(done)

	client := &fakeClient{}
	hub.Register(client)
	hub.Publish("job.created", map[string]string{"id": "10001"})

	require.Eventually(t, func() bool { return len(client.received()) == 1 }, time.Second, 10*time.Millisecond)

	var ev Event
	require.NoError(t, json.Unmarshal(client.received()[0], &ev))
	assert.Equal(t, "job.created", ev.Type)

	hub.Unregister(client)
	require.Eventually(t, func() bool {
		client.mu.Lock()
		defer client.mu.Unlock()
		return client.closed
	}, time.Second, 10*time.Millisecond)
}

func TestHub_PublishWithoutRunDoesNotBlock(t *testing.T) {
	hub := NewHub(logger.NewNoOpLogger())
	for i := 0; i < 100; i++ {
		hub.Publish("job.updated", i)
	}
}

func TestHub_UnregisterAfterStopReturns(t *testing.T) {
	hub := NewHub(logger.NewTestLogger(t))
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		hub.Run(done)
		close(exited)
	}()

	client := &fakeClient{}
	hub.Register(client)
	close(done)

	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	returned := make(chan struct{})
	go func() {
		hub.Unregister(client)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Unregister blocked after the hub stopped")
	}

	client.mu.Lock()
	assert.True(t, client.closed)
	client.mu.Unlock()

	late := &fakeClient{}
	hub.Register(late)
	late.mu.Lock()
	assert.True(t, late.closed)
	late.mu.Unlock()
}
