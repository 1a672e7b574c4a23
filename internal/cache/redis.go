package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/voyagent/voyagent/config"
	"github.com/voyagent/voyagent/internal/domain"
)

const (
	lookupPrefix = "lookup:"
	offerPrefix  = "flight_offer:"
)

// RedisCache memoizes provider lookups and stores full flight-offer
// payloads. It is advisory only: callers must be able to satisfy every miss
// by calling the provider directly, and the system stays correct with a nil
// cache. Expiry is native redis TTL; offers keep a longer TTL than generic
// lookups because a search session can span several conversation turns.
type RedisCache struct {
	client    *redis.Client
	lookupTTL time.Duration
	offerTTL  time.Duration
}

func NewRedisCache(cfg config.RedisConfig, lookupTTL, offerTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		lookupTTL: lookupTTL,
		offerTTL:  offerTTL,
	}
}

// Lookup returns the memoized payload for (endpoint, params), if any.
func (c *RedisCache) Lookup(ctx context.Context, endpoint string, params map[string]string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, lookupKey(endpoint, params)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (c *RedisCache) Store(ctx context.Context, endpoint string, params map[string]string, payload []byte) error {
	return c.client.Set(ctx, lookupKey(endpoint, params), payload, c.lookupTTL).Err()
}

// OfferByID resolves a full flight offer from the offer store.
func (c *RedisCache) OfferByID(ctx context.Context, offerID string) (*domain.FlightOffer, bool, error) {
	data, err := c.client.Get(ctx, offerPrefix+offerID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}

	var offer domain.FlightOffer
	if err := json.Unmarshal(data, &offer); err != nil {
		return nil, false, fmt.Errorf("decode cached offer %s: %w", offerID, err)
	}
	offer.Raw = data
	return &offer, true, nil
}

func (c *RedisCache) StoreOffer(ctx context.Context, offer domain.FlightOffer) error {
	if offer.ID == "" || len(offer.Raw) == 0 {
		return nil
	}
	return c.client.Set(ctx, offerPrefix+offer.ID, []byte(offer.Raw), c.offerTTL).Err()
}

// StoreOffers pipelines the whole result set of a search.
func (c *RedisCache) StoreOffers(ctx context.Context, offers []domain.FlightOffer) error {
	pipe := c.client.Pipeline()
	for _, offer := range offers {
		if offer.ID == "" || len(offer.Raw) == 0 {
			continue
		}
		pipe.Set(ctx, offerPrefix+offer.ID, []byte(offer.Raw), c.offerTTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Clear drops both namespaces. Test and support surface, never called on
// the request path.
func (c *RedisCache) Clear(ctx context.Context) error {
	for _, pattern := range []string{lookupPrefix + "*", offerPrefix + "*"} {
		keys, err := c.client.Keys(ctx, pattern).Result()
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			continue
		}
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return nil
}

// lookupKey derives a deterministic key from the endpoint name and the
// parameter set. Parameter order never affects the key.
func lookupKey(endpoint string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
		b.WriteByte('&')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return lookupPrefix + endpoint + ":" + hex.EncodeToString(sum[:])
}
