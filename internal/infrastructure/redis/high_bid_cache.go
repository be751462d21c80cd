package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"vehicle-auctions/internal/domain"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

// RedisHighBidCache keeps the current high bid per lot for the read path.
// The ledger remains the authority; the cache only ever moves upward, so a
// stale writer cannot clobber a higher committed bid.
type RedisHighBidCache struct {
	client *redis.Client
}

func NewRedisHighBidCache(client *redis.Client) *RedisHighBidCache {
	return &RedisHighBidCache{client: client}
}

func highBidKey(lotID int64) string {
	return fmt.Sprintf("lot:%d:high_bid", lotID)
}

func (r *RedisHighBidCache) UpdateHighBid(ctx context.Context, lotID int64, amount decimal.Decimal, bidderID int64) (bool, error) {
	luaScript := `
        local current = redis.call('HGET', KEYS[1], 'amount')

        if current == false or tonumber(ARGV[1]) > tonumber(current) then
            redis.call('HSET', KEYS[1],
                'amount', ARGV[1],
                'bidder_id', ARGV[2],
                'updated_at', ARGV[3])
            return 1
        end

        return 0
    `

	result, err := r.client.Eval(ctx, luaScript, []string{highBidKey(lotID)},
		amount.StringFixed(2),
		strconv.FormatInt(bidderID, 10),
		strconv.FormatInt(time.Now().Unix(), 10)).Result()
	if err != nil {
		return false, err
	}

	return result.(int64) == 1, nil
}

// GetHighBid returns the cached high bid, or (nil, nil) when nothing has
// been cached for the lot yet.
func (r *RedisHighBidCache) GetHighBid(ctx context.Context, lotID int64) (*domain.LotHighBid, error) {
	result, err := r.client.HMGet(ctx, highBidKey(lotID), "amount", "bidder_id", "updated_at").Result()
	if err != nil {
		return nil, err
	}

	if result[0] == nil {
		return nil, nil
	}

	amount, err := decimal.NewFromString(result[0].(string))
	if err != nil {
		return nil, err
	}

	high := &domain.LotHighBid{
		LotID:  lotID,
		Amount: amount,
	}

	if result[1] != nil {
		high.BidderID, _ = strconv.ParseInt(result[1].(string), 10, 64)
	}
	if result[2] != nil {
		unix, _ := strconv.ParseInt(result[2].(string), 10, 64)
		high.UpdatedAt = time.Unix(unix, 0).UTC()
	}

	return high, nil
}
