package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/reeltube/server/internal/service/feed"
	"github.com/reeltube/server/pkg/wsrouter"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// handler adapts a typed handler to the wsrouter signature.
func handler[T any](fn func(ctx context.Context, conn *websocket.Conn, input T) error) wsrouter.HandlerFunc {
	return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		var input T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &input); err != nil {
				return fmt.Errorf("invalid payload: %w", err)
			}
		}

		return fn(ctx, conn, input)
	}
}

type EmptyInput struct{}

type ScrollInput struct {
	ScrollOffset   float64 `json:"scroll_offset"`
	ViewportHeight float64 `json:"viewport_height"`
}

type ToggleInput struct {
	Index int `json:"index"`
}

type SyncInput struct {
	ScrollOffset   float64 `json:"scroll_offset"`
	ViewportHeight float64 `json:"viewport_height"`
}

// feedWS owns one viewer's feed session for the lifetime of the
// connection. The session is only ever touched from this connection's read
// loop, so it needs no locking.
func (c controller) feedWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to upgrade connection", "err", err)
		return
	}

	visible, err := c.feedService.GetFeed(r.Context())
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to get feed", "err", err)
		conn.Close()
		return
	}

	session := feed.NewSession(visible)
	if err := c.sendFeedSynced(conn, visible, session); err != nil {
		c.logger.InfoContext(r.Context(), "failed to send feed synced", "err", err)
		conn.Close()
		return
	}

	mux := wsrouter.New()
	mux.Handle("ALIVE", handler(func(context.Context, *websocket.Conn, EmptyInput) error {
		return nil
	}))
	mux.Handle("SCROLL", handler(func(ctx context.Context, conn *websocket.Conn, input ScrollInput) error {
		commands := session.OnScroll(input.ScrollOffset, input.ViewportHeight)
		return c.sendPlayerCommands(conn, commands)
	}))
	mux.Handle("TOGGLE_PLAY", handler(func(ctx context.Context, conn *websocket.Conn, input ToggleInput) error {
		commands, err := session.TogglePlay(input.Index)
		if err != nil {
			return fmt.Errorf("failed to toggle play: %w", err)
		}

		return c.sendPlayerCommands(conn, commands)
	}))
	mux.Handle("TOGGLE_MUTE", handler(func(ctx context.Context, conn *websocket.Conn, input ToggleInput) error {
		commands, err := session.ToggleMute(input.Index)
		if err != nil {
			return fmt.Errorf("failed to toggle mute: %w", err)
		}

		return c.sendPlayerCommands(conn, commands)
	}))
	mux.Handle("SYNC", handler(func(ctx context.Context, conn *websocket.Conn, input SyncInput) error {
		visible, err := c.feedService.GetFeed(ctx)
		if err != nil {
			return fmt.Errorf("failed to get feed: %w", err)
		}

		commands := session.Sync(visible, input.ScrollOffset, input.ViewportHeight)
		if err := c.sendFeedSynced(conn, visible, session); err != nil {
			return err
		}

		return c.sendPlayerCommands(conn, commands)
	}))

	if err := mux.ServeConn(r.Context(), conn); err != nil &&
		!errors.Is(err, websocket.ErrCloseSent) &&
		!websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		c.logger.InfoContext(r.Context(), "feed connection closed", "err", err)
	}
}

func (c controller) sendPlayerCommands(conn *websocket.Conn, commands []feed.PlayerCommand) error {
	if len(commands) == 0 {
		return nil
	}

	if err := conn.WriteJSON(&Output{
		Type:    "PLAYER_COMMANDS",
		Payload: commands,
	}); err != nil {
		return fmt.Errorf("failed to send player commands: %w", err)
	}

	return nil
}

type feedSyncedPayload struct {
	Reels []feed.Reel       `json:"reels"`
	State feed.SessionState `json:"state"`
}

func (c controller) sendFeedSynced(conn *websocket.Conn, visible []feed.Reel, session *feed.Session) error {
	if err := conn.WriteJSON(&Output{
		Type: "FEED_SYNCED",
		Payload: feedSyncedPayload{
			Reels: visible,
			State: session.State(),
		},
	}); err != nil {
		return fmt.Errorf("failed to send feed synced: %w", err)
	}

	return nil
}
