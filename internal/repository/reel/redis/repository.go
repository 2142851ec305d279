package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

type repo struct {
	rc *redis.Client
	// nextPositionScript appends a member to the order zset with score
	// max(existing scores)+1, or 1 when the zset is empty, and returns the
	// assigned score. Existing members are never renumbered.
	nextPositionScript string
}

func NewRepo(rc *redis.Client) *repo {
	return &repo{
		rc: rc,
		nextPositionScript: rc.ScriptLoad(context.Background(), `
			local maxScore = redis.call('ZREVRANGE', KEYS[1], 0, 0, 'WITHSCORES')
			local nextScore = 1
			if #maxScore > 0 then
				nextScore = tonumber(maxScore[2]) + 1
			end
			redis.call('ZADD', KEYS[1], nextScore, ARGV[1])
			return nextScore
		`).Val(),
	}
}
