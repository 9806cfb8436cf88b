package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testClient builds a client wired to the hub without a real connection.
// The send channel is read directly by the test.
func testClient(hub *Hub) *Client {
	return &Client{
		hub:         hub,
		send:        make(chan []byte, 16),
		id:          "test-client",
		connectedAt: time.Now(),
		logger:      testLogger(),
	}
}

func receiveEvent(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case raw := <-c.send:
		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for hub message")
		return nil
	}
}

func TestHubRegisterSendsConnectionEvent(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	client := testClient(hub)
	hub.Register(client)

	msg := receiveEvent(t, client)
	assert.Equal(t, TypeConnection, msg["type"])

	data, ok := msg["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "connected", data["status"])
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHubBroadcastDatasetReplaced(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	client := testClient(hub)
	hub.Register(client)
	receiveEvent(t, client) // connection handshake

	hub.BroadcastDatasetReplaced("medicoes.xlsx", 120, 3)

	msg := receiveEvent(t, client)
	assert.Equal(t, TypeDatasetReplaced, msg["type"])
	assert.NotEmpty(t, msg["timestamp"])

	data, ok := msg["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "medicoes.xlsx", data["source"])
	assert.Equal(t, float64(120), data["rows_loaded"])
	assert.Equal(t, float64(3), data["rows_skipped"])
}

func TestHubBroadcastLoadProgress(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	client := testClient(hub)
	hub.Register(client)
	receiveEvent(t, client)

	hub.BroadcastLoadProgress("medicoes.xlsx", 500)

	msg := receiveEvent(t, client)
	assert.Equal(t, TypeLoadProgress, msg["type"])

	data, ok := msg["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "medicoes.xlsx", data["source"])
	assert.Equal(t, float64(500), data["rows_read"])
}

func TestHubBroadcastDatasetCleared(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	client := testClient(hub)
	hub.Register(client)
	receiveEvent(t, client)

	hub.BroadcastDatasetCleared()

	msg := receiveEvent(t, client)
	assert.Equal(t, TypeDatasetCleared, msg["type"])
	_, hasData := msg["data"]
	assert.False(t, hasData)
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	first := testClient(hub)
	second := testClient(hub)
	hub.Register(first)
	hub.Register(second)
	receiveEvent(t, first)
	receiveEvent(t, second)

	hub.BroadcastError("LOAD_FAILED", "workbook could not be read")

	for _, client := range []*Client{first, second} {
		msg := receiveEvent(t, client)
		assert.Equal(t, TypeError, msg["type"])
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	client := testClient(hub)
	hub.Register(client)
	receiveEvent(t, client)

	hub.unregister <- client

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)

	// The channel must be closed so the write pump exits.
	select {
	case _, open := <-client.send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
}

func TestHubStopIsIdempotent(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	hub.Stop()
	hub.Stop()
	assert.Equal(t, 0, hub.ClientCount())
}
