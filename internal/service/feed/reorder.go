package feed

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/reeltube/server/internal/repository/reel"
)

const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

type AdjacentMoveParams struct {
	ReelId    string
	Direction string
}

type AdjacentMoveResponse struct {
	Reels []Reel
}

// AdjacentMove swaps the position values of the reel and its up/down
// neighbor. Only those two records change; the rest of the order is
// untouched, so any position gaps survive the swap.
func (s service) AdjacentMove(ctx context.Context, params *AdjacentMoveParams) (AdjacentMoveResponse, error) {
	reels, err := s.getReels(ctx)
	if err != nil {
		return AdjacentMoveResponse{}, err
	}

	currentIndex := indexOf(reels, params.ReelId)
	if currentIndex == -1 {
		return AdjacentMoveResponse{}, ErrReelNotFound
	}

	targetIndex := currentIndex + 1
	if params.Direction == DirectionUp {
		targetIndex = currentIndex - 1
	}
	if targetIndex < 0 || targetIndex >= len(reels) {
		return AdjacentMoveResponse{}, ErrBoundaryReached
	}

	current, target := reels[currentIndex], reels[targetIndex]

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return s.reelRepo.UpdateReelPosition(egCtx, &reel.UpdateReelPositionParams{
			ReelId:   current.Id,
			Position: target.Position,
		})
	})
	eg.Go(func() error {
		return s.reelRepo.UpdateReelPosition(egCtx, &reel.UpdateReelPositionParams{
			ReelId:   target.Id,
			Position: current.Position,
		})
	})
	if err := eg.Wait(); err != nil {
		return AdjacentMoveResponse{}, fmt.Errorf("failed to swap positions: %w", err)
	}

	s.logger.InfoContext(ctx, "reel moved", "reel_id", params.ReelId, "direction", params.Direction)

	refreshed, err := s.getReels(ctx)
	if err != nil {
		return AdjacentMoveResponse{}, err
	}

	return AdjacentMoveResponse{Reels: refreshed}, nil
}

type DragMoveParams struct {
	ActiveId string
	OverId   string
}

type DragMoveResponse struct {
	Reels []Reel
}

// DragMove splices the active reel out of the order and reinserts it at the
// index the over reel occupied, then renumbers every reel to its 1-based
// rank. The full renumber is required: an arbitrary-distance move shifts the
// relative order of everything between source and destination.
func (s service) DragMove(ctx context.Context, params *DragMoveParams) (DragMoveResponse, error) {
	reels, err := s.getReels(ctx)
	if err != nil {
		return DragMoveResponse{}, err
	}

	oldIndex := indexOf(reels, params.ActiveId)
	newIndex := indexOf(reels, params.OverId)
	if oldIndex == -1 || newIndex == -1 {
		return DragMoveResponse{}, ErrReelNotFound
	}
	if oldIndex == newIndex {
		return DragMoveResponse{}, ErrSameReel
	}

	reordered := make([]Reel, 0, len(reels))
	reordered = append(reordered, reels[:oldIndex]...)
	reordered = append(reordered, reels[oldIndex+1:]...)
	reordered = append(reordered[:newIndex], append([]Reel{reels[oldIndex]}, reordered[newIndex:]...)...)

	if err := s.renumber(ctx, reordered); err != nil {
		return DragMoveResponse{}, err
	}

	s.logger.InfoContext(ctx, "reel dragged", "active_id", params.ActiveId, "over_id", params.OverId)

	refreshed, err := s.getReels(ctx)
	if err != nil {
		return DragMoveResponse{}, err
	}

	return DragMoveResponse{Reels: refreshed}, nil
}

type ShuffleResponse struct {
	Reels []Reel
}

// Shuffle applies a uniform random permutation to the whole list and
// renumbers it to 1-based rank.
func (s service) Shuffle(ctx context.Context) (ShuffleResponse, error) {
	reels, err := s.getReels(ctx)
	if err != nil {
		return ShuffleResponse{}, err
	}

	if len(reels) < 2 {
		return ShuffleResponse{}, ErrNotEnoughReels
	}

	shuffled := make([]Reel, len(reels))
	for i, j := range shuffledOrder(len(reels), s.intn) {
		shuffled[i] = reels[j]
	}

	if err := s.renumber(ctx, shuffled); err != nil {
		return ShuffleResponse{}, err
	}

	s.logger.InfoContext(ctx, "reels shuffled", "count", len(shuffled))

	refreshed, err := s.getReels(ctx)
	if err != nil {
		return ShuffleResponse{}, err
	}

	return ShuffleResponse{Reels: refreshed}, nil
}

// renumber persists position = 1-based rank for every reel in the given
// order. The writes are independent and fired concurrently; if any one
// fails, the batch fails as a whole with no rollback, and the caller's
// re-fetch surfaces whatever state the store is actually in.
func (s service) renumber(ctx context.Context, reels []Reel) error {
	eg, egCtx := errgroup.WithContext(ctx)
	for i, r := range reels {
		eg.Go(func() error {
			return s.reelRepo.UpdateReelPosition(egCtx, &reel.UpdateReelPositionParams{
				ReelId:   r.Id,
				Position: i + 1,
			})
		})
	}

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("failed to renumber reels: %w", err)
	}

	return nil
}

// shuffledOrder returns a uniformly random permutation of [0, n) built with
// a reverse Fisher-Yates walk.
func shuffledOrder(n int, intn func(n int) int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	for i := n - 1; i > 0; i-- {
		j := intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}

	return order
}

func indexOf(reels []Reel, reelId string) int {
	for i, r := range reels {
		if r.Id == reelId {
			return i
		}
	}

	return -1
}
