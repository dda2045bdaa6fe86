package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"coupon-command/internal/metrics"
	"coupon-command/internal/model"
	"coupon-command/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	cacheName        = "command_config"
	commandKeyPrefix = "command_config:command:"
)

var _ repository.CommandConfigRepository = (*commandConfigCache)(nil)

// commandConfigCache serves GetByCommand from Redis and passes everything
// else through to the wrapped repository. Writes evict the affected keys.
type commandConfigCache struct {
	inner  repository.CommandConfigRepository
	client Client
	ttl    time.Duration
	group  singleflight.Group
	logger zerolog.Logger
}

// NewCommandConfigCache wraps inner with a read-through command lookup cache.
func NewCommandConfigCache(inner repository.CommandConfigRepository, client Client, ttl time.Duration, logger zerolog.Logger) repository.CommandConfigRepository {
	return &commandConfigCache{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("cache", cacheName).Logger(),
	}
}

func commandKey(command string) string {
	return commandKeyPrefix + command
}

func (c *commandConfigCache) GetByCommand(ctx context.Context, command string) (*model.CommandConfig, error) {
	key := commandKey(command)

	val, err := c.client.Get(ctx, key)
	switch {
	case err == nil:
		var cfg model.CommandConfig
		if jsonErr := json.Unmarshal([]byte(val), &cfg); jsonErr == nil {
			metrics.IncCacheRequest(cacheName, "hit")
			return &cfg, nil
		}
		c.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
		metrics.IncCacheRequest(cacheName, "miss")
	case errors.Is(err, ErrCacheMiss):
		metrics.IncCacheRequest(cacheName, "miss")
	default:
		metrics.IncCacheRequest(cacheName, "error")
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		cfg, err := c.inner.GetByCommand(ctx, command)
		if err != nil || cfg == nil {
			return cfg, err
		}
		data, err := json.Marshal(cfg)
		if err == nil {
			if setErr := c.client.Set(ctx, key, data, c.ttl); setErr != nil {
				c.logger.Warn().Err(setErr).Str("key", key).Msg("cache write failed")
			}
		}
		return cfg, nil
	})
	if err != nil {
		return nil, err
	}

	cfg, _ := v.(*model.CommandConfig)
	if cfg == nil {
		return nil, nil
	}
	// Callers sharing a flight must not share a pointer.
	copied := *cfg
	return &copied, nil
}

func (c *commandConfigCache) Create(ctx context.Context, cfg *model.CommandConfig) error {
	if err := c.inner.Create(ctx, cfg); err != nil {
		return err
	}
	c.evict(ctx, cfg.Command)
	return nil
}

func (c *commandConfigCache) Update(ctx context.Context, cfg *model.CommandConfig) error {
	old, err := c.inner.GetByID(ctx, cfg.ID)
	if err != nil {
		return err
	}
	if err := c.inner.Update(ctx, cfg); err != nil {
		return err
	}
	if old != nil {
		c.evict(ctx, old.Command, cfg.Command)
	} else {
		c.evict(ctx, cfg.Command)
	}
	return nil
}

func (c *commandConfigCache) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	old, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	deleted, err := c.inner.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if old != nil {
		c.evict(ctx, old.Command)
	}
	return deleted, nil
}

func (c *commandConfigCache) GetByID(ctx context.Context, id uuid.UUID) (*model.CommandConfig, error) {
	return c.inner.GetByID(ctx, id)
}

func (c *commandConfigCache) ExistsByCommand(ctx context.Context, command string, excludeID *uuid.UUID) (bool, error) {
	return c.inner.ExistsByCommand(ctx, command, excludeID)
}

func (c *commandConfigCache) List(ctx context.Context) ([]model.CommandConfig, error) {
	return c.inner.List(ctx)
}

func (c *commandConfigCache) evict(ctx context.Context, commands ...string) {
	keys := make([]string, 0, len(commands))
	for _, command := range commands {
		keys = append(keys, commandKey(command))
	}
	if err := c.client.Del(ctx, keys...); err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("cache eviction failed")
	}
}
