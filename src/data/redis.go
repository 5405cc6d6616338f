package data

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stake-plus/dao-govern/src/engine/proposal"
)

const (
	noncePrefix = "nonce:"
	nonceTTL    = 5 * time.Minute
	streamVotes = "daogov.votes"
)

// AirgapConfirmed is the nonce value marking an air-gap challenge whose
// remark has been verified out of band.
const AirgapConfirmed = "CONFIRMED"

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// RedisNonces stores one-time login challenges with a short TTL.
type RedisNonces struct {
	rdb *redis.Client
}

func NewRedisNonces(rdb *redis.Client) RedisNonces {
	return RedisNonces{rdb: rdb}
}

func (n RedisNonces) Set(ctx context.Context, addr, nonce string) error {
	return n.rdb.Set(ctx, noncePrefix+addr, nonce, nonceTTL).Err()
}

func (n RedisNonces) Get(ctx context.Context, addr string) (string, error) {
	return n.rdb.Get(ctx, noncePrefix+addr).Result()
}

func (n RedisNonces) Del(ctx context.Context, addr string) {
	n.rdb.Del(ctx, noncePrefix+addr)
}

// Confirm flips a pending challenge to the confirmed marker. Only an existing
// challenge can be confirmed; the TTL restarts from now.
func (n RedisNonces) Confirm(ctx context.Context, addr string) error {
	ok, err := n.rdb.SetXX(ctx, noncePrefix+addr, AirgapConfirmed, nonceTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return redis.Nil
	}
	return nil
}

// PublishVoteEvent appends a voting-record event to the vote stream.
func PublishVoteEvent(ctx context.Context, rdb *redis.Client, event proposal.VoteEvent) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamVotes,
		Values: map[string]interface{}{
			"id":       uuid.NewString(),
			"proposal": event.ProposalID,
			"voter":    event.Voter,
			"castBy":   event.CastBy,
			"for":      event.VotedFor,
			"power":    event.Power,
			"height":   event.Height,
		},
	}).Result()
	return err
}

// RedisEvents adapts the vote stream to the lifecycle engine's event sink.
type RedisEvents struct {
	rdb *redis.Client
}

func NewRedisEvents(rdb *redis.Client) RedisEvents {
	return RedisEvents{rdb: rdb}
}

func (e RedisEvents) VoteRecorded(event proposal.VoteEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := PublishVoteEvent(ctx, e.rdb, event); err != nil {
		log.Printf("vote event publish failed: %v", err)
	}
}
