package exchange

import (
	"github.com/iwvelando/loan-schedule/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewServiceFromConfig builds a Service backed by Redis when an address is configured
// and by an in-process cache otherwise. The returned close function releases the cache.
func NewServiceFromConfig(logger *zap.Logger, conf config.ExchangeConfig) (*Service, func() error) {
	client := NewClient(conf.BaseURL, conf.APIKey, conf.Timeout)

	if conf.RedisAddress == "" {
		return NewService(logger, client, NewMemoryCache(), conf.CacheTTL, conf.Timeout), func() error { return nil }
	}

	cache := NewRedisCache(&redis.Options{
		Addr:     conf.RedisAddress,
		Password: conf.RedisPassword,
		DB:       conf.RedisDB,
	})
	if logger != nil {
		logger.Info("caching exchange rates in redis",
			zap.String("op", "exchange.NewServiceFromConfig"),
			zap.String("address", conf.RedisAddress),
		)
	}
	return NewService(logger, client, cache, conf.CacheTTL, conf.Timeout), cache.Close
}
