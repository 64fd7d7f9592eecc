package exchange

import (
	"testing"

	"github.com/iwvelando/loan-schedule/internal/config"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"go.uber.org/zap"
)

func TestNewServiceFromConfig(t *testing.T) {
	t.Run("Memory cache", func(t *testing.T) {
		svc, closeFn := NewServiceFromConfig(zap.NewNop(), config.ExchangeConfig{APIKey: "key"})
		defer func() { _ = closeFn() }()

		if _, ok := svc.cache.(*MemoryCache); !ok {
			t.Fatalf("expected memory cache, got %T", svc.cache)
		}
		if svc.ttl != constants.DefaultExchangeCacheTTL {
			t.Fatalf("expected default ttl, got %s", svc.ttl)
		}
		if svc.timeout != constants.DefaultExchangeTimeout {
			t.Fatalf("expected default fetch timeout, got %s", svc.timeout)
		}
	})

	t.Run("Redis cache", func(t *testing.T) {
		svc, closeFn := NewServiceFromConfig(nil, config.ExchangeConfig{RedisAddress: "127.0.0.1:1"})
		if _, ok := svc.cache.(*RedisCache); !ok {
			t.Fatalf("expected redis cache, got %T", svc.cache)
		}
		if err := closeFn(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
}
