package helpers

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGUIDShapeAndUniqueness(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		guid := GUID()
		assert.Len(t, guid, 32)
		assert.False(t, seen[guid])
		seen[guid] = true
	}
}

func TestBucketMillis(t *testing.T) {
	millis, err := BucketMillis("1m")
	assert.Nil(t, err)
	assert.Equal(t, int64(60_000), millis)

	millis, err = BucketMillis("1h")
	assert.Nil(t, err)
	assert.Equal(t, int64(3_600_000), millis)

	millis, err = BucketMillis("1d")
	assert.Nil(t, err)
	assert.Equal(t, int64(86_400_000), millis)

	_, err = BucketMillis("nonsense")
	assert.NotNil(t, err)

	_, err = BucketMillis("0s")
	assert.NotNil(t, err)
}

func TestBackoffDelayBounds(t *testing.T) {
	base := time.Second
	max := time.Minute

	for attempt := 1; attempt <= 5; attempt++ {
		expected := float64(base) * float64(int(1)<<(attempt-1))
		for i := 0; i < 20; i++ {
			delay := BackoffDelay(attempt, base, max)
			assert.GreaterOrEqual(t, float64(delay), expected*0.5)
			assert.LessOrEqual(t, float64(delay), expected)
			assert.LessOrEqual(t, delay, max)
		}
	}

	// deep attempts cap at max
	assert.Equal(t, max, BackoffDelay(30, base, max))

	// attempts below 1 behave like the first attempt
	delay := BackoffDelay(0, base, max)
	assert.GreaterOrEqual(t, float64(delay), float64(base)*0.5)
	assert.LessOrEqual(t, delay, base)
}

func TestPositiveNegativeRatio(t *testing.T) {
	assert.Equal(t, 3.0, PositiveNegativeRatio([]float64{1, 2, 3, -4}))
	assert.Equal(t, 0.0, PositiveNegativeRatio([]float64{-1, -2}))
}

func TestSumAndStdDev(t *testing.T) {
	numbers := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.Equal(t, 40.0, Sum(numbers))
	assert.InDelta(t, math.Sqrt(32.0/7.0), StdDev(numbers, 5), 1e-9)
}

func TestAllValuesPositive(t *testing.T) {
	assert.True(t, AllValuesPositive([]float64{1, 2, 3}))
	assert.False(t, AllValuesPositive([]float64{1, -2, 3}))
}
