package weather

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cropcompass/crop-recommendation-service/internal/domain"
	"github.com/cropcompass/crop-recommendation-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls int
	err   error
}

func (s *countingSource) FetchProfile(_ context.Context, lat, _ float64) (domain.WeatherProfile, error) {
	s.calls++
	if s.err != nil {
		return domain.WeatherProfile{}, s.err
	}
	return domain.WeatherProfile{
		Current: domain.CurrentWeather{Temperature: lat},
	}, nil
}

func TestCachedSource_HitAvoidsSecondFetch(t *testing.T) {
	inner := &countingSource{}
	c := NewCachedSource(inner, 10, 15*time.Minute, observability.NewMetricsForTesting())

	first, err := c.FetchProfile(context.Background(), 26.85, 80.94)
	require.NoError(t, err)
	second, err := c.FetchProfile(context.Background(), 26.85, 80.94)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first, second)
}

func TestCachedSource_NearbyCoordinatesShareASlot(t *testing.T) {
	inner := &countingSource{}
	c := NewCachedSource(inner, 10, 15*time.Minute, observability.NewMetricsForTesting())

	_, err := c.FetchProfile(context.Background(), 26.85001, 80.94001)
	require.NoError(t, err)
	_, err = c.FetchProfile(context.Background(), 26.85004, 80.94004)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls, "coordinates rounding to the same key share an entry")
}

func TestCachedSource_StaleEntryRefetches(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC))
	domain.SetClock(clock)
	t.Cleanup(func() { domain.SetClock(nil) })

	inner := &countingSource{}
	c := NewCachedSource(inner, 10, 15*time.Minute, observability.NewMetricsForTesting())

	_, err := c.FetchProfile(context.Background(), 26.85, 80.94)
	require.NoError(t, err)

	clock.Advance(16 * time.Minute)
	_, err = c.FetchProfile(context.Background(), 26.85, 80.94)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls, "entry past max age is refetched")
}

func TestCachedSource_ErrorIsNotCached(t *testing.T) {
	inner := &countingSource{err: errors.New("collaborator down")}
	c := NewCachedSource(inner, 10, 15*time.Minute, observability.NewMetricsForTesting())

	_, err := c.FetchProfile(context.Background(), 26.85, 80.94)
	require.Error(t, err)

	inner.err = nil
	_, err = c.FetchProfile(context.Background(), 26.85, 80.94)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	inner := &countingSource{}
	c := NewCachedSource(inner, 2, 15*time.Minute, observability.NewMetricsForTesting())

	coords := [][2]float64{{10, 10}, {20, 20}, {10, 10}, {30, 30}}
	for _, co := range coords {
		_, err := c.FetchProfile(context.Background(), co[0], co[1])
		require.NoError(t, err, fmt.Sprintf("coord %v", co))
	}
	assert.Equal(t, 3, inner.calls)

	// {10,10} was touched before {30,30} arrived, so it survived.
	_, err := c.FetchProfile(context.Background(), 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)

	// {20,20} was least recently used and was evicted.
	_, err = c.FetchProfile(context.Background(), 20, 20)
	require.NoError(t, err)
	assert.Equal(t, 4, inner.calls)
}
