package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastsToSubscribers(t *testing.T) {
	hub := NewHub()
	c := &Client{UserID: 1, Send: make(chan []byte, 4)}
	hub.Register(c)
	require.Equal(t, 1, hub.ClientCount())

	hub.BayChanged(7, 3, false)

	var update BayUpdate
	require.NoError(t, json.Unmarshal(<-c.Send, &update))
	assert.Equal(t, uint(7), update.BayID)
	assert.Equal(t, uint(3), update.CarParkID)
	assert.False(t, update.IsAvailable)
}

func TestHubSnapshotKeepsLatestPerBay(t *testing.T) {
	hub := NewHub()
	hub.BayChanged(7, 3, false)
	hub.BayChanged(7, 3, true)
	hub.BayChanged(8, 3, false)

	snap := hub.Snapshot()
	require.Len(t, snap, 2)
	byBay := map[uint]bool{}
	for _, u := range snap {
		byBay[u.BayID] = u.IsAvailable
	}
	assert.True(t, byBay[7])
	assert.False(t, byBay[8])
}

func TestHubSkipsSlowSubscribers(t *testing.T) {
	hub := NewHub()
	full := &Client{UserID: 1, Send: make(chan []byte)} // no buffer, never drained
	hub.Register(full)

	done := make(chan struct{})
	go func() {
		hub.BayChanged(7, 3, true)
		close(done)
	}()
	<-done // must not block
}

func TestClientCloseUnregisters(t *testing.T) {
	hub := NewHub()
	c := &Client{UserID: 1, Send: make(chan []byte, 1)}
	hub.Register(c)
	c.Close()
	c.Close() // idempotent
	assert.Equal(t, 0, hub.ClientCount())
}
