package main

import (
	"context"
	"fmt"

	"github.com/coremem/coremem/config"
	"github.com/coremem/coremem/pkg/llm"
	"github.com/coremem/coremem/pkg/llm/anthropic"
	"github.com/coremem/coremem/pkg/llm/llmtest"
	"github.com/coremem/coremem/pkg/llm/openai"
	"github.com/coremem/coremem/pkg/logger"
	"github.com/coremem/coremem/pkg/metrics"
	"github.com/coremem/coremem/pkg/storage"
	"github.com/coremem/coremem/pkg/storage/badger"
	"github.com/coremem/coremem/pkg/storage/cache"
	"github.com/coremem/coremem/pkg/storage/memory"
	"github.com/coremem/coremem/pkg/storage/redis"
)

func openStorage(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (storage.KV, error) {
	var (
		kv  storage.KV
		err error
	)

	switch cfg.Type {
	case "badger":
		kv, err = badger.NewBadgerStorage(&badger.Config{
			Path:              cfg.Badger.Path,
			SyncWrites:        cfg.Badger.SyncWrites,
			ValueLogFileSize:  cfg.Badger.ValueLogFileSize,
			NumVersionsToKeep: cfg.Badger.NumVersionsToKeep,
		})
		if err != nil {
			return nil, fmt.Errorf("open badger storage: %w", err)
		}
		log.Info("Initialized Badger storage", "path", cfg.Badger.Path)
	case "redis":
		kv, err = redis.NewRedisStorage(ctx, &redis.Config{
			Address:      cfg.Redis.Address,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis storage: %w", err)
		}
		log.Info("Initialized Redis storage", "address", cfg.Redis.Address, "db", cfg.Redis.DB)
	default:
		kv = memory.NewMemoryStorage()
		log.Info("Initialized memory storage")
	}

	if !cfg.Cache.Enabled {
		return kv, nil
	}

	cacheCfg := cache.DefaultConfig()
	if cfg.Cache.NumCounters > 0 {
		cacheCfg.NumCounters = cfg.Cache.NumCounters
	}
	if cfg.Cache.MaxCost > 0 {
		cacheCfg.MaxCost = cfg.Cache.MaxCost
	}
	if cfg.Cache.BufferItems > 0 {
		cacheCfg.BufferItems = cfg.Cache.BufferItems
	}
	cached, err := cache.New(kv, cacheCfg)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("create storage cache: %w", err)
	}
	log.Info("Enabled storage cache", "max_cost", cacheCfg.MaxCost)
	return cached, nil
}

// modelStack is the decorated provider plus the layers main reconfigures or reports on.
type modelStack struct {
	provider llm.Provider
	limiter  *llm.RateLimitedProvider
	breaker  *llm.BreakerProvider
}

func newModel(cfg config.ModelConfig, m *metrics.Manager, log logger.Logger) (*modelStack, error) {
	var (
		base llm.Provider
		err  error
	)

	switch cfg.Provider {
	case "anthropic":
		base, err = anthropic.New(cfg.APIKey,
			anthropic.WithModel(cfg.Model),
			anthropic.WithBaseURL(cfg.BaseURL),
			anthropic.WithMaxTokens(cfg.MaxTokens),
		)
	case "openai":
		base, err = openai.NewProvider(cfg.APIKey,
			openai.WithModel(cfg.Model),
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithMaxTokens(cfg.MaxTokens),
		)
	case "fake":
		base = llmtest.NewDemo()
		log.Warn("Using the built-in demo model; annotations and answers are synthetic")
	default:
		err = fmt.Errorf("unsupported model provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create model provider: %w", err)
	}

	stack := &modelStack{}
	p := llm.Provider(llm.Timeout(base, cfg.Timeout))

	if cfg.RateLimit.Enabled {
		stack.limiter = llm.RateLimited(p, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		p = stack.limiter
	}
	if cfg.Breaker.Enabled {
		stack.breaker = llm.Breaker(p, llm.BreakerSettings{
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureThreshold,
			OnStateChange: func(provider, from, to string) {
				log.Warn("Model circuit breaker changed state", "provider", provider, "from", from, "to", to)
				m.RecordBreakerState(provider, from, to)
			},
		})
		p = stack.breaker
	}
	stack.provider = llm.Instrumented(p, m)

	log.Info("Initialized model provider", "provider", base.Name(), "model", base.Model())
	return stack, nil
}
