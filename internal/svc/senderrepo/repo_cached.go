package senderrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/yusufsyaifudin/ngirim/pkg/cache"
	"github.com/yusufsyaifudin/ngirim/pkg/logger"
	"github.com/yusufsyaifudin/ngirim/pkg/validator"
)

type CachedConfig struct {
	Persistent     Repo          `validate:"required"`
	CacheExpiry    time.Duration `validate:"required"`
	CachePrefixKey string        `validate:"required,alphanumeric"`
	Cache          cache.Cache   `validate:"required"`
}

type CachedRepo struct {
	Config CachedConfig
}

var _ Repo = (*CachedRepo)(nil)

func NewCached(cfg CachedConfig) (*CachedRepo, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}

	return &CachedRepo{
		Config: cfg,
	}, nil
}

func (c *CachedRepo) Save(ctx context.Context, in InputSave) (out OutSave, err error) {
	out, err = c.Config.Persistent.Save(ctx, in)
	if err != nil {
		err = fmt.Errorf("save via cache error on persistent store: %w", err)
		return
	}

	// if ok, save to cache
	c.setByID(ctx, out.SenderConfig)
	return
}

func (c *CachedRepo) GetByID(ctx context.Context, in InputGetByID) (out OutGetByID, err error) {
	// Get from cache first
	cfg, err := c.getByID(ctx, in.ID)
	if err == nil && cfg.ID == in.ID {
		out = OutGetByID{
			SenderConfig: cfg,
		}
		return
	}

	// If error occurred, then try get from persistent storage
	if err != nil {
		logger.Debug(ctx, fmt.Sprintf("sender config id %s not served from cache", in.ID), logger.KV("error", err))
		err = nil
	}

	out, err = c.Config.Persistent.GetByID(ctx, in)
	if err != nil {
		return
	}

	c.setByID(ctx, out.SenderConfig)
	return
}

// List will not use cache. It is hard to maintain list in cache.
func (c *CachedRepo) List(ctx context.Context, in InputList) (out OutList, err error) {
	return c.Config.Persistent.List(ctx, in)
}

func (c *CachedRepo) DelByID(ctx context.Context, in InputDelByID) (out OutDelByID, err error) {
	out, err = c.Config.Persistent.DelByID(ctx, in)
	if err != nil {
		return
	}

	err = c.delByID(ctx, in.ID)
	return
}

func (c *CachedRepo) SeedPresets(ctx context.Context, in InputSeedPresets) (out OutSeedPresets, err error) {
	return c.Config.Persistent.SeedPresets(ctx, in)
}

// -- cache

func (c *CachedRepo) genCacheKeyByID(id string) string {
	return fmt.Sprintf("%s:%s", c.Config.CachePrefixKey, id)
}

func (c *CachedRepo) getByID(ctx context.Context, id string) (SenderConfig, error) {
	var cfg SenderConfig
	err := c.Config.Cache.GetAs(ctx, c.genCacheKeyByID(id), &cfg)
	if err != nil {
		return SenderConfig{}, err
	}

	logger.Debug(ctx, fmt.Sprintf("get sender config id %s from cache", id))
	return cfg, nil
}

func (c *CachedRepo) setByID(ctx context.Context, cfg SenderConfig) {
	err := c.Config.Cache.SetExp(ctx, c.genCacheKeyByID(cfg.ID), cfg, c.Config.CacheExpiry)
	if err != nil {
		logger.Error(ctx, fmt.Sprintf("cannot save cache sender config id %s", cfg.ID), logger.KV("error", err))
		return
	}

	logger.Debug(ctx, fmt.Sprintf("caching sender config id %s", cfg.ID))
}

func (c *CachedRepo) delByID(ctx context.Context, id string) error {
	return c.Config.Cache.Delete(ctx, c.genCacheKeyByID(id))
}
