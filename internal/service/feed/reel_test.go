package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reeltube/server/internal/repository/media"
	reelRedis "github.com/reeltube/server/internal/repository/reel/redis"
)

type fakeUploader struct {
	uploads int
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, params *media.UploadParams) (media.UploadedMedia, error) {
	if f.err != nil {
		return media.UploadedMedia{}, f.err
	}
	if len(params.File) == 0 {
		return media.UploadedMedia{}, media.ErrEmptyFile
	}

	f.uploads++
	return media.UploadedMedia{
		Url:     fmt.Sprintf("https://cdn.example/v/%d.mp4", f.uploads),
		MediaId: fmt.Sprintf("v/%d", f.uploads),
	}, nil
}

func newTestService(t *testing.T) (*service, *fakeUploader) {
	t.Helper()

	s := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{
		Addr: s.Addr(),
	})
	t.Cleanup(func() { rc.Close() })

	uploader := &fakeUploader{}
	svc := NewService(reelRedis.NewRepo(rc), uploader, 25, slog.Default())

	return svc, uploader
}

func addReels(t *testing.T, svc *service, names ...string) []Reel {
	t.Helper()

	ctx := context.Background()
	var reels []Reel
	for _, name := range names {
		resp, err := svc.AddReel(ctx, &AddReelParams{
			File:     []byte("video bytes"),
			Filename: name + ".mp4",
			MimeType: "video/mp4",
			Name:     name,
		})
		require.NoError(t, err)
		reels = resp.Reels
	}

	return reels
}

// assertUniquePositions checks invariant I1: no two reels share a position.
func assertUniquePositions(t *testing.T, reels []Reel) {
	t.Helper()

	seen := make(map[int]string, len(reels))
	for _, r := range reels {
		if other, ok := seen[r.Position]; ok {
			t.Fatalf("position %d shared by %s and %s", r.Position, other, r.Id)
		}
		seen[r.Position] = r.Id
	}
}

func TestAddReel(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.AddReel(ctx, &AddReelParams{
		File:     []byte("video bytes"),
		Filename: "morning.mp4",
		MimeType: "video/mp4",
		Name:     "Morning",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AddedReel.Id)
	assert.Equal(t, 1, resp.AddedReel.Position)
	assert.True(t, resp.AddedReel.Visible, "new reels start visible")
	assert.Equal(t, "Morning", resp.AddedReel.Name)
	assert.Len(t, resp.Reels, 1)

	resp, err = svc.AddReel(ctx, &AddReelParams{
		File:     []byte("more video bytes"),
		Filename: "evening.mp4",
		MimeType: "video/mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.AddedReel.Position)
	assertUniquePositions(t, resp.Reels)
}

func TestAddReelUploadFailure(t *testing.T) {
	svc, uploader := newTestService(t)
	uploader.err = media.ErrUploadRejected

	_, err := svc.AddReel(context.Background(), &AddReelParams{
		File:     []byte("video bytes"),
		MimeType: "video/mp4",
	})
	assert.ErrorIs(t, err, media.ErrUploadRejected)

	// the failed upload must not have inserted a record
	reels, err := svc.GetReels(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reels)
}

func TestAddReelLimit(t *testing.T) {
	s := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rc.Close() })

	svc := NewService(reelRedis.NewRepo(rc), &fakeUploader{}, 2, slog.Default())
	addReels(t, svc, "one", "two")

	_, err := svc.AddReel(context.Background(), &AddReelParams{
		File:     []byte("video bytes"),
		MimeType: "video/mp4",
	})
	assert.ErrorIs(t, err, ErrReelLimitReached)
}

func TestDeleteReelKeepsPositions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reels := addReels(t, svc, "a", "b", "c")

	resp, err := svc.DeleteReel(ctx, reels[1].Id)
	require.NoError(t, err)
	require.Len(t, resp.Reels, 2)
	assert.Equal(t, 1, resp.Reels[0].Position)
	assert.Equal(t, 3, resp.Reels[1].Position, "delete must not renumber survivors")

	_, err = svc.DeleteReel(ctx, "missing")
	assert.ErrorIs(t, err, ErrReelNotFound)
}

func TestToggleVisibilityIdempotence(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reels := addReels(t, svc, "a", "b")
	target := reels[0]

	resp, err := svc.ToggleVisibility(ctx, &ToggleVisibilityParams{ReelId: target.Id, Visible: false})
	require.NoError(t, err)
	assert.False(t, resp.Reels[0].Visible)

	feed, err := svc.GetFeed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, reels[1].Id, feed[0].Id)

	// toggling back restores the original value and never touches position
	resp, err = svc.ToggleVisibility(ctx, &ToggleVisibilityParams{ReelId: target.Id, Visible: true})
	require.NoError(t, err)
	assert.True(t, resp.Reels[0].Visible)
	assert.Equal(t, target.Position, resp.Reels[0].Position)

	_, err = svc.ToggleVisibility(ctx, &ToggleVisibilityParams{ReelId: "missing", Visible: true})
	assert.ErrorIs(t, err, ErrReelNotFound)
}

func TestGetFeedPreservesOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reels := addReels(t, svc, "a", "b", "c", "d")
	_, err := svc.ToggleVisibility(ctx, &ToggleVisibilityParams{ReelId: reels[1].Id, Visible: false})
	require.NoError(t, err)

	feed, err := svc.GetFeed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, []string{reels[0].Id, reels[2].Id, reels[3].Id}, []string{feed[0].Id, feed[1].Id, feed[2].Id})
}

// TestLifecycleScenario walks the full add/move/delete flow end to end.
func TestLifecycleScenario(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.AddReel(ctx, &AddReelParams{
		File:     []byte("video bytes"),
		Filename: "morning.mp4",
		MimeType: "video/mp4",
		Name:     "Morning",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.AddedReel.Position)
	assert.True(t, first.AddedReel.Visible)

	second, err := svc.AddReel(ctx, &AddReelParams{
		File:     []byte("more video bytes"),
		Filename: "untitled.mp4",
		MimeType: "video/mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.AddedReel.Position)

	moved, err := svc.AdjacentMove(ctx, &AdjacentMoveParams{ReelId: first.AddedReel.Id, Direction: DirectionDown})
	require.NoError(t, err)
	require.Len(t, moved.Reels, 2)
	assert.Equal(t, second.AddedReel.Id, moved.Reels[0].Id)
	assert.Equal(t, first.AddedReel.Id, moved.Reels[1].Id)
	assert.Equal(t, []int{1, 2}, []int{moved.Reels[0].Position, moved.Reels[1].Position})

	deleted, err := svc.DeleteReel(ctx, second.AddedReel.Id)
	require.NoError(t, err)
	require.Len(t, deleted.Reels, 1)
	assert.Equal(t, first.AddedReel.Id, deleted.Reels[0].Id)
	assert.Equal(t, 2, deleted.Reels[0].Position, "no renumbering on delete")
}

func TestMutationsReturnFreshSnapshot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reels := addReels(t, svc, "a", "b", "c")

	resp, err := svc.AdjacentMove(ctx, &AdjacentMoveParams{ReelId: reels[2].Id, Direction: DirectionUp})
	require.NoError(t, err)

	fresh, err := svc.GetReels(ctx)
	require.NoError(t, err)
	assert.Equal(t, fresh, resp.Reels, "mutation responses must reflect the store, not the local computation")
}

func TestDeleteReelStoreFailureLeavesListIntact(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reels := addReels(t, svc, "a", "b")

	_, err := svc.DeleteReel(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReelNotFound))

	fresh, err := svc.GetReels(ctx)
	require.NoError(t, err)
	assert.Equal(t, reels, fresh)
}
