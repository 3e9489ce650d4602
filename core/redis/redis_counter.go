package redis

import (
	"context"
	"strconv"
)

// Live operational counters, keyed per concern. These are running totals
// for dashboards, not a history of opportunities.
const (
	KeyCycles    = "arb:counter:cycles"
	KeySkips     = "arb:counter:skips"
	KeyFailures  = "arb:counter:failures"
	KeySubmitted = "arb:counter:submitted"
)

func IncrCounter(key string) error {
	ctx := context.Background()
	return GetRedisInst().Incr(ctx, key).Err()
}

func GetCounterValue(key string) (int64, error) {
	ctx := context.Background()
	value, err := GetRedisInst().Get(ctx, key).Result()
	if err == Nil {
		return 0, nil
	} else if err != nil {
		return 0, err
	}

	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}

	return intValue, nil
}

func DelCounter(key string) error {
	ctx := context.Background()
	err := GetRedisInst().Del(ctx, key).Err()
	return err
}
