package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/expertbooking/config"
	"github.com/Domenick1991/expertbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisCache caches expert reads. Every key carries a generation number so
// one INCR drops all cached pages and details at once.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:    time.Duration(cfg.ExpertsCacheTTL) * time.Second,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Generation returns the current cache generation. Readers fetch it before
// reading the store and write back under the same value, so an entry built
// from data that was invalidated meanwhile lands under a retired generation
// and is never served.
func (c *RedisCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisCache) GetExpertPage(ctx context.Context, gen int64, filter domain.ExpertFilter) (*domain.ExpertPage, error) {
	var page domain.ExpertPage
	found, err := c.getJSON(ctx, pageKey(gen, filter), &page)
	if err != nil || !found {
		return nil, err
	}
	return &page, nil
}

func (c *RedisCache) SetExpertPage(ctx context.Context, gen int64, filter domain.ExpertFilter, page *domain.ExpertPage) error {
	return c.setJSON(ctx, pageKey(gen, filter), page)
}

func (c *RedisCache) GetExpert(ctx context.Context, gen int64, id uuid.UUID) (*domain.Expert, error) {
	var expert domain.Expert
	found, err := c.getJSON(ctx, expertKey(gen, id), &expert)
	if err != nil || !found {
		return nil, err
	}
	return &expert, nil
}

func (c *RedisCache) SetExpert(ctx context.Context, gen int64, expert *domain.Expert) error {
	return c.setJSON(ctx, expertKey(gen, expert.ID), expert)
}

// InvalidateExpert retires the current generation. A removed slot changes
// the expert's detail and any listing page showing the expert, so every
// entry goes; old keys expire with their TTL.
func (c *RedisCache) InvalidateExpert(ctx context.Context, _ uuid.UUID) error {
	return c.client.Incr(ctx, generationKey()).Err()
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.ttl).Err()
}

func generationKey() string {
	return "cache:experts:gen"
}

func expertKey(gen int64, id uuid.UUID) string {
	return fmt.Sprintf("cache:expert:%d:%s", gen, id)
}

func pageKey(gen int64, f domain.ExpertFilter) string {
	return fmt.Sprintf("cache:experts:%d:p%d:l%d:s=%s:c=%s", gen, f.Page, f.Limit,
		strings.ToLower(f.Search), strings.ToLower(f.Category))
}
