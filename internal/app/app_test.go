package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/reeltube/server/internal/repository/media/cloudinary"
	reelRedis "github.com/reeltube/server/internal/repository/reel/redis"
	"github.com/reeltube/server/internal/service/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedLifecycle(t *testing.T) {
	slog.SetLogLoggerLevel(slog.LevelDebug)
	s := miniredis.RunT(t)
	r := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"secure_url": "https://cdn.example/" + r.FormValue("upload_preset"),
			"public_id":  "media-id",
		})
	}))
	defer media.Close()

	reelRepo := reelRedis.NewRepo(r)
	uploader := cloudinary.NewUploader(&cloudinary.Config{
		CloudName:    "test-cloud",
		UploadPreset: "test-preset",
		BaseURL:      media.URL,
	})
	service := feed.NewService(reelRepo, uploader, 25, slog.Default())

	ctx := context.Background()

	// add two reels
	addResp1, err := service.AddReel(ctx, &feed.AddReelParams{
		File:     []byte("first-video"),
		Filename: "first.mp4",
		MimeType: "video/mp4",
		Name:     "first",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, addResp1.AddedReel.Id, "reel id is empty")
	assert.Equal(t, 1, addResp1.AddedReel.Position, "first reel must take position 1")

	addResp2, err := service.AddReel(ctx, &feed.AddReelParams{
		File:     []byte("second-video"),
		Filename: "second.mp4",
		MimeType: "video/mp4",
		Name:     "second",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, addResp2.AddedReel.Position, "second reel must take position 2")
	assert.Equal(t, 2, len(addResp2.Reels), "feed must contain 2 reels")
	t.Log("reels added")

	// move the first reel down
	moveResp, err := service.AdjacentMove(ctx, &feed.AdjacentMoveParams{
		ReelId:    addResp1.AddedReel.Id,
		Direction: feed.DirectionDown,
	})
	require.NoError(t, err)
	assert.Equal(t, addResp2.AddedReel.Id, moveResp.Reels[0].Id, "second reel must come first")
	assert.Equal(t, addResp1.AddedReel.Id, moveResp.Reels[1].Id, "first reel must come last")
	t.Log("reel moved")

	// hide the second reel
	visResp, err := service.ToggleVisibility(ctx, &feed.ToggleVisibilityParams{
		ReelId:  addResp2.AddedReel.Id,
		Visible: false,
	})
	require.NoError(t, err)
	assert.Equal(t, false, visResp.Reels[0].Visible, "second reel must be hidden")

	visibleFeed, err := service.GetFeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, len(visibleFeed), "feed must contain 1 visible reel")
	assert.Equal(t, addResp1.AddedReel.Id, visibleFeed[0].Id, "feed must contain the first reel")
	t.Log("reel hidden")

	// playback session over the visible feed
	session := feed.NewSession(visibleFeed)
	commands := session.OnScroll(0, 800)
	require.Equal(t, 1, len(commands), "scroll must activate the first item")
	assert.Equal(t, 0, commands[0].Index, "active index is not equal")
	t.Log("session activated")

	// delete the remaining visible reel
	deleteResp, err := service.DeleteReel(ctx, addResp1.AddedReel.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, len(deleteResp.Reels), "feed must contain 1 reel after delete")
	assert.Equal(t, addResp2.AddedReel.Id, deleteResp.Reels[0].Id, "hidden reel must survive delete")
	t.Log("reel deleted")

	t.Log(r.Keys(ctx, "*").Val())
}
