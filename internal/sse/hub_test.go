package sse

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/aew-track-map/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(
		clockwork.NewFakeClockAt(time.Date(2012, time.August, 21, 6, 0, 0, 0, time.UTC)),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting(),
	)
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	h := newTestHub()
	a := h.AddClient("a")
	b := h.AddClient("b")
	assert.Equal(t, 2, h.ClientCount())
	assert.InDelta(t, 2, testutil.ToFloat64(h.metrics.SSEClients), 0)

	h.Broadcast(Message{Type: "view", Data: map[string]string{"status": "Loading"}})

	msgA := <-a
	msgB := <-b
	assert.Equal(t, "view", msgA.Type)
	assert.Equal(t, msgA, msgB)
	assert.NotZero(t, msgA.ID)
}

func TestHub_IDsIncrease(t *testing.T) {
	h := newTestHub()
	ch := h.AddClient("a")

	h.Broadcast(Message{Type: "view"})
	h.Broadcast(Message{Type: "view"})

	first, second := <-ch, <-ch
	assert.Greater(t, second.ID, first.ID)
}

func TestHub_NewClientGetsLastMessage(t *testing.T) {
	h := newTestHub()
	h.Broadcast(Message{Type: "view", Data: "latest"})

	ch := h.AddClient("late")

	select {
	case msg := <-ch:
		assert.Equal(t, "latest", msg.Data)
	default:
		t.Fatal("expected replay of last message")
	}
}

func TestHub_FullQueueDrops(t *testing.T) {
	h := newTestHub()
	ch := h.AddClient("slow")

	for range clientBuffer + 5 {
		h.Broadcast(Message{Type: "view"})
	}

	assert.Len(t, ch, clientBuffer)
}

func TestHub_RemoveClientClosesChannel(t *testing.T) {
	h := newTestHub()
	ch := h.AddClient("a")

	h.RemoveClient("a")
	h.RemoveClient("a")

	_, ok := <-ch
	assert.False(t, ok)
	assert.Zero(t, h.ClientCount())
}

func TestWriteMessage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, Message{ID: 7, Type: "view", Data: map[string]int{"shown": 3}}))
	assert.Equal(t, "id: 7\nevent: view\ndata: {\"shown\":3}\n\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteMessage(&buf, Message{ID: 8}))
	assert.Equal(t, "id: 8\ndata: {}\n\n", buf.String())
}

func TestHandler_StreamsMessages(t *testing.T) {
	h := newTestHub()
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	h.Broadcast(Message{Type: "view", Data: map[string]string{"status": "Year 1999 not found"}})

	var event []string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "id:") || len(event) > 0 {
			event = append(event, line)
		}
		if line == "\n" && len(event) > 0 {
			break
		}
	}
	require.Len(t, event, 4)
	assert.Equal(t, "event: view\n", event[1])
	assert.Equal(t, "data: {\"status\":\"Year 1999 not found\"}\n", event[2])
}
