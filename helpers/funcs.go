package helpers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	mrand "math/rand"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
)

// GUID returns a random 32 character hex identifier.
func GUID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// NowTS is the current time as a millisecond timestamp.
func NowTS() int64 {
	return time.Now().UnixMilli()
}

// BucketMillis converts a timeframe string like "1m", "4h" or "1d" into the
// bucket size in milliseconds.
func BucketMillis(timeframe string) (int64, error) {
	d, err := str2duration.ParseDuration(timeframe)
	if err != nil {
		return 0, fmt.Errorf("invalid timeframe %q: %w", timeframe, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid timeframe %q: non-positive duration", timeframe)
	}
	return d.Milliseconds(), nil
}

// BackoffDelay computes an exponential backoff delay for the given attempt
// (starting at 1), doubling from base up to max, with a random multiplier in
// [0.5, 1.0) so many retries don't synchronize.
func BackoffDelay(attempt int, base time.Duration, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(base) * math.Pow(2, float64(attempt-1))
	delay = delay * (0.5 + mrand.Float64()/2)
	if delay > float64(max) {
		return max
	}
	return time.Duration(delay)
}

func PositiveNegativeRatio(list []float64) float64 {
	countPositive := 0
	countNegative := 0
	for _, item := range list {
		if item > 0 {
			countPositive++
		} else {
			countNegative++
		}
	}

	if countNegative == 0 {
		return 0
	}
	return float64(countPositive) / float64(countNegative)
}

func StdDev(numbers []float64, mean float64) float64 {
	total := 0.0
	for _, number := range numbers {
		total += math.Pow(number-mean, 2)
	}
	variance := total / float64(len(numbers)-1)
	return math.Sqrt(variance)
}

func Sum(numbers []float64) (total float64) {
	for _, x := range numbers {
		total += x
	}
	return total
}

func AllValuesPositive(list []float64) bool {
	for _, item := range list {
		if item < 0.0 {
			return false
		}
	}
	return true
}
