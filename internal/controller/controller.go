package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/reeltube/server/internal/service/feed"
	"github.com/reeltube/server/pkg/validator"
)

type iFeedService interface {
	GetReels(context.Context) ([]feed.Reel, error)
	GetFeed(context.Context) ([]feed.Reel, error)
	AddReel(context.Context, *feed.AddReelParams) (feed.AddReelResponse, error)
	DeleteReel(context.Context, string) (feed.DeleteReelResponse, error)
	ToggleVisibility(context.Context, *feed.ToggleVisibilityParams) (feed.ToggleVisibilityResponse, error)
	AdjacentMove(context.Context, *feed.AdjacentMoveParams) (feed.AdjacentMoveResponse, error)
	DragMove(context.Context, *feed.DragMoveParams) (feed.DragMoveResponse, error)
	Shuffle(context.Context) (feed.ShuffleResponse, error)
}

// maxUploadBytes caps the multipart body of an add-reel request.
const maxUploadBytes = 100 << 20

type controller struct {
	feedService iFeedService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	logger      *slog.Logger
}

func NewController(feedService iFeedService, logger *slog.Logger) *controller {
	return &controller{
		feedService: feedService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		logger:   logger,
	}
}
