package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for quota tracking.
var (
	gaQuotaRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ga_quota_remaining",
		Help: "Requests remaining in the current daily quota window",
	})

	gaQuotaBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ga_quota_blocks_total",
		Help: "Total number of requests blocked due to exhausted daily quota",
	})
)

// counterTTL keeps yesterday's counter around briefly for inspection before
// Redis expires it.
const counterTTL = 48 * time.Hour

// Tracker counts issued requests against the daily budget and gates new
// requests when the budget is spent. State lives in Redis and is shared
// across all client instances of the same project.
type Tracker struct {
	redis      *redis.Client
	dailyLimit int
	logger     zerolog.Logger
}

// NewTracker creates a quota tracker. A dailyLimit of 0 selects
// DefaultDailyLimit.
func NewTracker(redisClient *redis.Client, dailyLimit int, logger zerolog.Logger) *Tracker {
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyLimit
	}
	return &Tracker{
		redis:      redisClient,
		dailyLimit: dailyLimit,
		logger:     logger,
	}
}

// key returns the Redis counter key for the given instant's UTC day.
func key(now time.Time) string {
	return redisKeyPrefix + now.UTC().Format("2006-01-02")
}

// nextMidnight returns the start of the next UTC day.
func nextMidnight(now time.Time) time.Time {
	year, month, day := now.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}

// GetState retrieves today's quota consumption from Redis.
// A missing counter means nothing has been recorded yet today.
func (t *Tracker) GetState(ctx context.Context) (*State, error) {
	now := time.Now()

	used, err := t.redis.Get(ctx, key(now)).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get quota counter: %w", err)
	}

	state := &State{
		Used:    used,
		Limit:   t.dailyLimit,
		ResetAt: nextMidnight(now),
	}

	gaQuotaRemaining.Set(float64(state.Remaining()))
	return state, nil
}

// Record counts one issued request against today's budget.
func (t *Tracker) Record(ctx context.Context) error {
	now := time.Now()
	counterKey := key(now)

	pipe := t.redis.Pipeline()
	incr := pipe.Incr(ctx, counterKey)
	pipe.Expire(ctx, counterKey, counterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record quota usage: %w", err)
	}

	used := int(incr.Val())
	gaQuotaRemaining.Set(float64(t.dailyLimit - used))

	if used == t.dailyLimit {
		t.logger.Error().
			Int("used", used).
			Int("limit", t.dailyLimit).
			Msg("Daily request quota exhausted")
	}

	return nil
}

// ShouldAllowRequest checks whether a request fits in today's budget.
// Returns false when the budget is spent; near the limit the request is
// still allowed but logged.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return false, fmt.Errorf("get quota state: %w", err)
	}

	if state.Exhausted() {
		t.logger.Error().
			Int("used", state.Used).
			Int("limit", state.Limit).
			Dur("until_reset", state.TimeUntilReset()).
			Msg("Daily quota exhausted - blocking request")

		gaQuotaBlocksTotal.Inc()
		return false, nil
	}

	if state.NearLimit() {
		t.logger.Warn().
			Int("used", state.Used).
			Int("limit", state.Limit).
			Int("remaining", state.Remaining()).
			Msg("Approaching daily request quota")
	}

	return true, nil
}
