package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rushteam/shoprec/config"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/history"
	"github.com/rushteam/shoprec/rating"
	"github.com/rushteam/shoprec/store"
)

// backend 决定评分日志与推荐历史的落地位置。
type backend struct {
	ratings  rating.Log
	history  history.Recorder
	snapshot string // list 为空时从该 CSV 导入
	list     core.ListStore
	logger   zerolog.Logger
}

func openBackend(cfg *config.Config, logger zerolog.Logger) (*backend, error) {
	b := &backend{snapshot: cfg.Data.Ratings, logger: logger}
	switch cfg.Storage.Backend {
	case config.BackendFile:
		b.ratings = rating.NewCSVLog(cfg.Data.Ratings)
		b.history = history.NewFileRecorder(cfg.Data.History, logger)
		return b, nil
	case config.BackendMemory:
		b.list = store.NewMemoryStore()
	case config.BackendRedis:
		rs, err := store.NewRedisStore(cfg.Storage.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Storage.Redis.Addr, err)
		}
		b.list = rs
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	b.ratings = rating.NewStoreLog(b.list, cfg.Storage.RatingsKey)
	if cfg.Storage.BreakerFailures > 0 {
		b.ratings = rating.NewBreakerLog(b.ratings, uint32(cfg.Storage.BreakerFailures), cfg.Storage.BreakerTimeout, logger)
	}
	b.history = history.NewStoreRecorder(b.list, cfg.Storage.HistoryKey)
	return b, nil
}

// loadRatings 读取评分快照。list 后端为空时先从 CSV 快照导入。
func (b *backend) loadRatings(ctx context.Context) ([]core.Rating, error) {
	rs, err := b.ratings.Load(ctx)
	if err != nil || b.list == nil || len(rs) > 0 {
		return rs, err
	}
	rs, err = rating.NewCSVLog(b.snapshot).Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range rs {
		if err := b.ratings.Append(ctx, r); err != nil {
			return nil, fmt.Errorf("import ratings into %s: %w", b.list.Name(), err)
		}
	}
	b.logger.Info().Int("ratings", len(rs)).Str("store", b.list.Name()).Msg("ratings imported from snapshot")
	return rs, nil
}

func (b *backend) Close() error {
	if b.list != nil {
		return b.list.Close()
	}
	return nil
}
