package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "availability:"

// ResultCache keeps recent availability responses in redis. Search results
// go stale the moment anyone books, so the TTL stays short and confirm and
// cancel both invalidate the whole keyspace.
type ResultCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewResultCache(rdb *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{rdb: rdb, ttl: ttl}
}

func (c *ResultCache) key(params *Params) string {
	ratePlan := uint(0)
	if params.RatePlanID != nil {
		ratePlan = *params.RatePlanID
	}
	raw := fmt.Sprintf("%d|%d|%d|%s|%s|%d|%v|%v|%v",
		params.HotelID, params.RoomTypeID, ratePlan,
		params.CheckIn.Format("2006-01-02"), params.CheckOut.Format("2006-01-02"),
		params.Guests, params.Amenities, params.MinPriceCents, params.MaxPriceCents,
	)
	sum := sha256.Sum256([]byte(raw))
	return cacheKeyPrefix + hex.EncodeToString(sum[:16])
}

func (c *ResultCache) Get(ctx context.Context, params *Params) ([]RoomTypeResult, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, c.key(params)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[cache] Error reading availability cache: %s\n", err.Error())
		}
		return nil, false
	}
	var results []RoomTypeResult
	if err := json.Unmarshal([]byte(val), &results); err != nil {
		log.Printf("[cache] Error decoding cached availability: %s\n", err.Error())
		return nil, false
	}
	return results, true
}

func (c *ResultCache) Set(ctx context.Context, params *Params, results []RoomTypeResult) {
	if c == nil || c.rdb == nil {
		return
	}
	body, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(params), body, c.ttl).Err(); err != nil {
		log.Printf("[cache] Error writing availability cache: %s\n", err.Error())
	}
}

// Invalidate drops every cached availability response. Called after any
// write to the room-night ledger.
func (c *ResultCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("[cache] Error deleting key %s: %s\n", iter.Val(), err.Error())
		}
	}
	if err := iter.Err(); err != nil {
		log.Printf("[cache] Error scanning availability keys: %s\n", err.Error())
	}
}
