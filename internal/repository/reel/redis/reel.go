package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/reeltube/server/internal/repository/reel"
)

func (r repo) getReelKey(reelId string) string {
	return "reel:" + reelId
}

func (r repo) getOrderKey() string {
	return "reels:order"
}

// SetReel stores the reel hash and appends the id to the order zset,
// returning the assigned position.
func (r repo) SetReel(ctx context.Context, params *reel.SetReelParams) (int, error) {
	stored := reel.Reel{
		MediaUrl: params.MediaUrl,
		MediaId:  params.MediaId,
		Name:     params.Name,
		Visible:  params.Visible,
	}
	if err := r.hSetStruct(ctx, r.getReelKey(params.ReelId), stored); err != nil {
		return 0, fmt.Errorf("failed to set reel: %w", err)
	}

	position, err := r.rc.EvalSha(ctx, r.nextPositionScript, []string{r.getOrderKey()}, params.ReelId).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to assign position: %w", err)
	}

	return position, nil
}

func (r repo) GetReel(ctx context.Context, reelId string) (reel.Reel, error) {
	var stored reel.Reel
	if err := r.rc.HGetAll(ctx, r.getReelKey(reelId)).Scan(&stored); err != nil {
		return reel.Reel{}, fmt.Errorf("failed to get reel: %w", err)
	}

	if stored.MediaUrl == "" {
		return reel.Reel{}, reel.ErrReelNotFound
	}

	return stored, nil
}

// GetReelEntries returns every reel id with its position, ordered by
// position ascending.
func (r repo) GetReelEntries(ctx context.Context) ([]reel.Entry, error) {
	members, err := r.rc.ZRangeWithScores(ctx, r.getOrderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get reel entries: %w", err)
	}

	entries := make([]reel.Entry, 0, len(members))
	for _, member := range members {
		entries = append(entries, reel.Entry{
			ReelId:   member.Member.(string),
			Position: int(member.Score),
		})
	}

	return entries, nil
}

func (r repo) GetReelsLength(ctx context.Context) (int, error) {
	length, err := r.rc.ZCard(ctx, r.getOrderKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get reels length: %w", err)
	}

	return int(length), nil
}

// RemoveReel deletes both the order entry and the reel hash. Positions of
// the remaining reels are left untouched.
func (r repo) RemoveReel(ctx context.Context, reelId string) error {
	res, err := r.rc.ZRem(ctx, r.getOrderKey(), reelId).Result()
	if err != nil {
		return fmt.Errorf("failed to remove reel from order: %w", err)
	}

	if res == 0 {
		return reel.ErrReelNotFound
	}

	if err := r.rc.Del(ctx, r.getReelKey(reelId)).Err(); err != nil {
		return fmt.Errorf("failed to remove reel: %w", err)
	}

	return nil
}

func (r repo) UpdateReelPosition(ctx context.Context, params *reel.UpdateReelPositionParams) error {
	if err := r.rc.ZScore(ctx, r.getOrderKey(), params.ReelId).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return reel.ErrReelNotFound
		}

		return fmt.Errorf("failed to check reel position: %w", err)
	}

	if err := r.rc.ZAdd(ctx, r.getOrderKey(), redis.Z{
		Score:  float64(params.Position),
		Member: params.ReelId,
	}).Err(); err != nil {
		return fmt.Errorf("failed to update reel position: %w", err)
	}

	return nil
}

func (r repo) UpdateReelVisible(ctx context.Context, params *reel.UpdateReelVisibleParams) error {
	reelKey := r.getReelKey(params.ReelId)
	res, err := r.rc.Exists(ctx, reelKey).Result()
	if err != nil {
		return fmt.Errorf("failed to check reel exists: %w", err)
	}

	if res == 0 {
		return reel.ErrReelNotFound
	}

	if err := r.rc.HSet(ctx, reelKey, "visible", params.Visible).Err(); err != nil {
		return fmt.Errorf("failed to update reel visible: %w", err)
	}

	return nil
}
