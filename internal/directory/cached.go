package directory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"medical-booking/internal/model"
)

// Cache is where the last good directory answer is kept.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Cached serves the last successful answer when the remote directory fails.
type Cached struct {
	remote Directory
	cache  Cache
	key    string
	logger zerolog.Logger
}

func NewCached(remote Directory, cache Cache, key string, logger zerolog.Logger) *Cached {
	if remote == nil || cache == nil {
		panic("directory: remote and cache required")
	}
	return &Cached{remote: remote, cache: cache, key: key, logger: logger}
}

func (c *Cached) GetAllDoctors(ctx context.Context) ([]model.Account, error) {
	accounts, err := c.remote.GetAllDoctors(ctx)
	if err == nil {
		c.store(ctx, accounts)
		return accounts, nil
	}

	cached, cerr := c.load(ctx)
	if cerr != nil {
		c.logger.Warn().Err(cerr).Str("key", c.key).Msg("directory cache unreadable")
	}
	return cached, fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func (c *Cached) store(ctx context.Context, accounts []model.Account) {
	b, err := json.Marshal(accounts)
	if err != nil {
		c.logger.Warn().Err(err).Msg("directory cache encode failed")
		return
	}
	if err := c.cache.Set(ctx, c.key, string(b)); err != nil {
		c.logger.Warn().Err(err).Str("key", c.key).Msg("directory cache write failed")
	}
}

func (c *Cached) load(ctx context.Context) ([]model.Account, error) {
	raw, ok, err := c.cache.Get(ctx, c.key)
	if err != nil || !ok {
		return []model.Account{}, err
	}
	var out []model.Account
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []model.Account{}, err
	}
	return nonNil(out), nil
}
