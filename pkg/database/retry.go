package database

import (
	"time"

	"media_delivery_service/pkg/logger"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

// withRetry runs connect up to attempts times, sleeping interval between tries
func withRetry(target string, attempts int, interval time.Duration, connect func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	return retry.Do(
		connect,
		retry.Attempts(uint(attempts)),
		retry.Delay(interval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Log.Warn("connection failed, retrying...",
				zap.String("target", target),
				zap.Uint("attempt", n+1),
				zap.Int("max", attempts),
				zap.Error(err),
			)
		}),
	)
}
