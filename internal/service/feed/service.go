package feed

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"

	"github.com/reeltube/server/internal/repository/media"
	"github.com/reeltube/server/internal/repository/reel"
)

var (
	ErrReelNotFound     = errors.New("reel not found")
	ErrBoundaryReached  = errors.New("cannot move boundary reel")
	ErrSameReel         = errors.New("drag endpoints are the same reel")
	ErrNotEnoughReels   = errors.New("not enough reels to shuffle")
	ErrReelLimitReached = errors.New("reel limit reached")
)

type iReelRepo interface {
	SetReel(context.Context, *reel.SetReelParams) (int, error)
	GetReel(context.Context, string) (reel.Reel, error)
	GetReelEntries(context.Context) ([]reel.Entry, error)
	GetReelsLength(context.Context) (int, error)
	RemoveReel(context.Context, string) error
	UpdateReelPosition(context.Context, *reel.UpdateReelPositionParams) error
	UpdateReelVisible(context.Context, *reel.UpdateReelVisibleParams) error
}

type iUploader interface {
	Upload(context.Context, *media.UploadParams) (media.UploadedMedia, error)
}

// service is the only component that talks to the reel store and the media
// host. Mutating methods are not safe for concurrent use by the same client:
// a second mutation issued before the first settles operates on a stale
// snapshot. Callers are expected to serialize their own mutations.
type service struct {
	reelRepo   iReelRepo
	uploader   iUploader
	reelsLimit int
	intn       func(n int) int
	logger     *slog.Logger
}

func NewService(reelRepo iReelRepo, uploader iUploader, reelsLimit int, logger *slog.Logger) *service {
	return &service{
		reelRepo:   reelRepo,
		uploader:   uploader,
		reelsLimit: reelsLimit,
		intn:       rand.IntN,
		logger:     logger,
	}
}
