package rating

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/shoprec/core"
)

// BreakerLog 用熔断器包装一个 Log 的追加操作。
// 后端（例如 Redis）持续不可用时快速失败，避免每次评分都耗尽重试。
// Load 不经过熔断器。
type BreakerLog struct {
	Log
	cb *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerLog 在连续 failures 次追加失败后打开熔断器，timeout 后进入半开状态。
func NewBreakerLog(log Log, failures uint32, timeout time.Duration, logger zerolog.Logger) *BreakerLog {
	settings := gobreaker.Settings{
		Name:        "rating-log",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("rating log breaker state changed")
		},
	}
	return &BreakerLog{Log: log, cb: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

func (l *BreakerLog) Append(ctx context.Context, r core.Rating) error {
	_, err := l.cb.Execute(func() (struct{}, error) {
		return struct{}{}, l.Log.Append(ctx, r)
	})
	return err
}

// State 返回熔断器当前状态：closed / half-open / open。
func (l *BreakerLog) State() string {
	return l.cb.State().String()
}

var _ Log = (*BreakerLog)(nil)
