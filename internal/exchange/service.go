package exchange

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iwvelando/loan-schedule/internal/metrics"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "loan-schedule:rates:"

// Service serves rates from a cache and falls back to the upstream Fetcher. Concurrent
// requests for the same base currency share one upstream call.
type Service struct {
	logger  *zap.Logger
	fetcher Fetcher
	cache   Cache
	ttl     time.Duration
	timeout time.Duration
	group   singleflight.Group
}

// NewService wires a fetcher and a cache. A nil cache uses a MemoryCache, and a
// non-positive ttl or timeout uses the default. The timeout bounds each shared upstream fetch.
func NewService(logger *zap.Logger, fetcher Fetcher, cache Cache, ttl, timeout time.Duration) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	if ttl <= 0 {
		ttl = constants.DefaultExchangeCacheTTL
	}
	if timeout <= 0 {
		timeout = constants.DefaultExchangeTimeout
	}
	return &Service{logger: logger, fetcher: fetcher, cache: cache, ttl: ttl, timeout: timeout}
}

// Latest returns the rates for base, from cache when fresh.
func (s *Service) Latest(ctx context.Context, base string) (Rates, error) {
	key := cacheKeyPrefix + base

	if cached, ok := s.cache.Get(ctx, key); ok {
		var rates Rates
		err := json.Unmarshal([]byte(cached), &rates)
		if err == nil {
			metrics.ExchangeFetches.WithLabelValues("cache", "success").Inc()
			return rates, nil
		}
		s.logger.Warn("discarding undecodable cached rates",
			zap.String("op", "exchange.Latest"),
			zap.String("base", base),
			zap.Error(err),
		)
	}

	value, err, shared := s.group.Do(base, func() (interface{}, error) {
		// The fetch outlives the first caller; only the timeout ends it.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		rates, err := s.fetcher.Latest(fetchCtx, base)
		if err != nil {
			return Rates{}, err
		}

		encoded, err := json.Marshal(rates)
		if err == nil {
			err = s.cache.Set(fetchCtx, key, string(encoded), s.ttl)
		}
		if err != nil {
			s.logger.Warn("failed to cache exchange rates",
				zap.String("op", "exchange.Latest"),
				zap.String("base", base),
				zap.Error(err),
			)
		}
		return rates, nil
	})
	if err != nil {
		metrics.ExchangeFetches.WithLabelValues("upstream", "error").Inc()
		s.logger.Error("failed to fetch exchange rates",
			zap.String("op", "exchange.Latest"),
			zap.String("base", base),
			zap.Error(err),
		)
		return Rates{}, err
	}

	metrics.ExchangeFetches.WithLabelValues("upstream", "success").Inc()
	s.logger.Debug("fetched exchange rates",
		zap.String("op", "exchange.Latest"),
		zap.String("base", base),
		zap.Bool("shared", shared),
	)
	return value.(Rates), nil
}
