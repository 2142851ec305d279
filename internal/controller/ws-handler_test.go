package controller

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reeltube/server/internal/service/feed"
)

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func dialFeed(t *testing.T, srvURL string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srvURL, "http") + "/api/v1/ws/feed"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()

	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))

	return msg
}

func TestFeedWS(t *testing.T) {
	srv := newTestServer(t)
	addTestReel(t, srv, "A")
	addTestReel(t, srv, "B")

	conn := dialFeed(t, srv.URL)

	synced := readMessage(t, conn)
	require.Equal(t, "FEED_SYNCED", synced.Type)

	var syncedPayload struct {
		Reels []reelOut         `json:"reels"`
		State feed.SessionState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(synced.Payload, &syncedPayload))
	assert.Len(t, syncedPayload.Reels, 2)
	assert.Equal(t, -1, syncedPayload.State.ActiveIndex, "nothing plays before the first scroll event")

	// first scroll event activates index 0
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "SCROLL",
		"payload": map[string]any{"scroll_offset": 0, "viewport_height": 800},
	}))

	commands := readMessage(t, conn)
	require.Equal(t, "PLAYER_COMMANDS", commands.Type)

	var payload []feed.PlayerCommand
	require.NoError(t, json.Unmarshal(commands.Payload, &payload))
	assert.Equal(t, []feed.PlayerCommand{{Index: 0, Action: feed.ActionPlay}}, payload)

	// scrolling one viewport down pauses and resets the first item
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "SCROLL",
		"payload": map[string]any{"scroll_offset": 800, "viewport_height": 800},
	}))

	commands = readMessage(t, conn)
	require.Equal(t, "PLAYER_COMMANDS", commands.Type)
	require.NoError(t, json.Unmarshal(commands.Payload, &payload))
	assert.Equal(t, []feed.PlayerCommand{
		{Index: 0, Action: feed.ActionPause},
		{Index: 0, Action: feed.ActionReset},
		{Index: 1, Action: feed.ActionPlay},
	}, payload)
}

func TestFeedWSSync(t *testing.T) {
	srv := newTestServer(t)
	addTestReel(t, srv, "A")
	addTestReel(t, srv, "B")
	addTestReel(t, srv, "C")

	conn := dialFeed(t, srv.URL)
	readMessage(t, conn) // initial FEED_SYNCED

	// another client deletes a reel; this session re-syncs
	reels := listTestReels(t, srv)
	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/reels/"+reels[2].Id, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "SYNC",
		"payload": map[string]any{"scroll_offset": 1600, "viewport_height": 800},
	}))

	synced := readMessage(t, conn)
	require.Equal(t, "FEED_SYNCED", synced.Type)

	var syncedPayload struct {
		Reels []reelOut         `json:"reels"`
		State feed.SessionState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(synced.Payload, &syncedPayload))
	assert.Len(t, syncedPayload.Reels, 2)
	assert.Equal(t, 1, syncedPayload.State.ActiveIndex, "active index re-derived from offset, clamped to the new length")
}

func TestFeedWSToggleErrors(t *testing.T) {
	srv := newTestServer(t)
	addTestReel(t, srv, "A")

	conn := dialFeed(t, srv.URL)
	readMessage(t, conn) // initial FEED_SYNCED

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "TOGGLE_PLAY",
		"payload": map[string]any{"index": 5},
	}))

	var errMsg map[string]string
	require.NoError(t, conn.ReadJSON(&errMsg))
	assert.Contains(t, errMsg["error"], "no such feed item")
}
