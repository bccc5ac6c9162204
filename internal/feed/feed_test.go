package feed

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanvault/backoffice/internal/logging"
)

func TestFeedBroadcast(t *testing.T) {
	logging.Init("error")

	e := echo.New()
	e.GET("/feed", Serve)
	srv := httptest.NewServer(e)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/feed"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	Publish("payout.requested", map[string]string{"payout_id": "p1"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var evt Event
	require.NoError(t, json.Unmarshal(payload, &evt))
	assert.Equal(t, "payout.requested", evt.Type)
	assert.WithinDuration(t, time.Now(), evt.At, time.Minute)
}

func TestFeedConcurrentPublishSingleClient(t *testing.T) {
	logging.Init("error")

	e := echo.New()
	e.GET("/feed", Serve)
	srv := httptest.NewServer(e)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/feed"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Deliveries are serialized through the hub's writer goroutine, so a
	// burst of publishers must never produce interleaved frames.
	const events = 200
	var wg sync.WaitGroup
	for i := 0; i < events; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Publish("order.updated", map[string]int{"seq": n})
		}(i)
	}
	wg.Wait()

	received := 0
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for received < events {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var evt Event
		require.NoError(t, json.Unmarshal(payload, &evt))
		assert.Equal(t, "order.updated", evt.Type)
		received++
	}
	assert.Greater(t, received, 0)
}

func TestFeedUnregisterOnDisconnect(t *testing.T) {
	logging.Init("error")

	e := echo.New()
	e.GET("/feed", Serve)
	srv := httptest.NewServer(e)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/feed"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	conn.Close()

	// The server drops the client once the read loop sees the close.
	assert.Eventually(t, func() bool {
		adminHub.mu.Lock()
		defer adminHub.mu.Unlock()
		return len(adminHub.clients) == 0
	}, 2*time.Second, 20*time.Millisecond)
}
