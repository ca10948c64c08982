package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/makeasinger/scales/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Close)
	return hub
}

func receive(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		require.True(t, ok, "channel closed")
		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHubBroadcastsToJobSubscribers(t *testing.T) {
	hub := startHub(t)

	a := hub.Subscribe("job-a")
	other := hub.Subscribe("job-b")

	hub.BroadcastProgress("job-a", 40, model.JobStatusRunning, "Spelling from F")
	msg := receive(t, a)
	assert.Equal(t, model.WSMessageTypeProgress, msg["type"])
	assert.Equal(t, "job-a", msg["jobId"])
	assert.Equal(t, float64(40), msg["progress"])

	hub.BroadcastComplete("job-a", map[string]string{"name": "Dorian"})
	msg = receive(t, a)
	assert.Equal(t, model.WSMessageTypeComplete, msg["type"])

	hub.BroadcastError("job-a", "PITCH_TABLE_FAILED", "boom")
	msg = receive(t, a)
	assert.Equal(t, model.WSMessageTypeError, msg["type"])

	select {
	case <-other.Send:
		t.Fatal("job-b subscriber received job-a message")
	default:
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := startHub(t)

	c := hub.Subscribe("job-x")
	assert.Eventually(t, func() bool { return hub.Subscribers("job-x") == 1 }, time.Second, 10*time.Millisecond)

	hub.Unsubscribe(c)
	assert.Eventually(t, func() bool { return hub.Subscribers("job-x") == 0 }, time.Second, 10*time.Millisecond)

	_, ok := <-c.Send
	assert.False(t, ok)
}
