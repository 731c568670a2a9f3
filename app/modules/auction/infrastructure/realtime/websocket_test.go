package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebsocketServer_StreamsRoundEvents(t *testing.T) {
	hub := NewHub(4, discardLogger(), nil)
	ws := NewWebsocketServer(hub, nil, discardLogger())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.Serve(w, r, "r1")
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers("r1") == 1 }, time.Second, 10*time.Millisecond)

	start := eventTime
	hub.Deliver(context.Background(), auctiondomain.RoundUpdated("r1", auctiondomain.RoundStatusActive, &start, nil, eventTime))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev auctiondomain.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, auctiondomain.EventRoundUpdated, ev.Kind)
	assert.Equal(t, auctiondomain.RoundStatusActive, ev.Status)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Subscribers("r1") == 0 }, time.Second, 10*time.Millisecond)
}

func TestWebsocketServer_RejectsUnknownOrigin(t *testing.T) {
	hub := NewHub(4, discardLogger(), nil)
	ws := NewWebsocketServer(hub, []string{"https://auction.example"}, discardLogger())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.Serve(w, r, "r1")
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, hub.Subscribers("r1"))
}
