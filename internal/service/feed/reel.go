package feed

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/reeltube/server/internal/repository/media"
	"github.com/reeltube/server/internal/repository/reel"
)

// getReels fetches the authoritative snapshot: the order zset first, then
// each record. Every mutating operation ends with this re-fetch instead of
// trusting its locally computed order.
func (s service) getReels(ctx context.Context) ([]Reel, error) {
	entries, err := s.reelRepo.GetReelEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get reel entries: %w", err)
	}

	reels := make([]Reel, 0, len(entries))
	for _, entry := range entries {
		stored, err := s.reelRepo.GetReel(ctx, entry.ReelId)
		if err != nil {
			return nil, fmt.Errorf("failed to get reel: %w", err)
		}

		reels = append(reels, Reel{
			Id:       entry.ReelId,
			MediaUrl: stored.MediaUrl,
			MediaId:  stored.MediaId,
			Name:     stored.Name,
			Visible:  stored.Visible,
			Position: entry.Position,
		})
	}

	return reels, nil
}

// GetReels returns the full snapshot ordered by position ascending.
func (s service) GetReels(ctx context.Context) ([]Reel, error) {
	return s.getReels(ctx)
}

// GetFeed returns the visible subsequence in position order.
func (s service) GetFeed(ctx context.Context) ([]Reel, error) {
	reels, err := s.getReels(ctx)
	if err != nil {
		return nil, err
	}

	return visibleOf(reels), nil
}

type AddReelParams struct {
	File     []byte
	Filename string
	MimeType string
	Name     string
}

type AddReelResponse struct {
	AddedReel Reel
	Reels     []Reel
}

func (s service) AddReel(ctx context.Context, params *AddReelParams) (AddReelResponse, error) {
	length, err := s.reelRepo.GetReelsLength(ctx)
	if err != nil {
		return AddReelResponse{}, fmt.Errorf("failed to get reels length: %w", err)
	}

	if length >= s.reelsLimit {
		return AddReelResponse{}, ErrReelLimitReached
	}

	uploaded, err := s.uploader.Upload(ctx, &media.UploadParams{
		File:     params.File,
		Filename: params.Filename,
		MimeType: params.MimeType,
	})
	if err != nil {
		return AddReelResponse{}, fmt.Errorf("failed to upload media: %w", err)
	}

	reelId := uuid.NewString()
	position, err := s.reelRepo.SetReel(ctx, &reel.SetReelParams{
		ReelId:   reelId,
		MediaUrl: uploaded.Url,
		MediaId:  uploaded.MediaId,
		Name:     params.Name,
		Visible:  true,
	})
	if err != nil {
		return AddReelResponse{}, fmt.Errorf("failed to set reel: %w", err)
	}

	s.logger.InfoContext(ctx, "reel added", "reel_id", reelId, "position", position)

	reels, err := s.getReels(ctx)
	if err != nil {
		return AddReelResponse{}, err
	}

	return AddReelResponse{
		AddedReel: Reel{
			Id:       reelId,
			MediaUrl: uploaded.Url,
			MediaId:  uploaded.MediaId,
			Name:     params.Name,
			Visible:  true,
			Position: position,
		},
		Reels: reels,
	}, nil
}

type DeleteReelResponse struct {
	Reels []Reel
}

// DeleteReel removes the record. Positions of the remaining reels are not
// renumbered; gaps are legal.
func (s service) DeleteReel(ctx context.Context, reelId string) (DeleteReelResponse, error) {
	if err := s.reelRepo.RemoveReel(ctx, reelId); err != nil {
		if err == reel.ErrReelNotFound {
			return DeleteReelResponse{}, ErrReelNotFound
		}

		return DeleteReelResponse{}, fmt.Errorf("failed to remove reel: %w", err)
	}

	s.logger.InfoContext(ctx, "reel deleted", "reel_id", reelId)

	reels, err := s.getReels(ctx)
	if err != nil {
		return DeleteReelResponse{}, err
	}

	return DeleteReelResponse{Reels: reels}, nil
}

type ToggleVisibilityParams struct {
	ReelId  string
	Visible bool
}

type ToggleVisibilityResponse struct {
	Reels []Reel
}

func (s service) ToggleVisibility(ctx context.Context, params *ToggleVisibilityParams) (ToggleVisibilityResponse, error) {
	if err := s.reelRepo.UpdateReelVisible(ctx, &reel.UpdateReelVisibleParams{
		ReelId:  params.ReelId,
		Visible: params.Visible,
	}); err != nil {
		if err == reel.ErrReelNotFound {
			return ToggleVisibilityResponse{}, ErrReelNotFound
		}

		return ToggleVisibilityResponse{}, fmt.Errorf("failed to update reel visible: %w", err)
	}

	reels, err := s.getReels(ctx)
	if err != nil {
		return ToggleVisibilityResponse{}, err
	}

	return ToggleVisibilityResponse{Reels: reels}, nil
}
