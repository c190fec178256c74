package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/ListeDeNoel/internal/ledger"
)

func sampleSummary() ledger.Summary {
	return ledger.Summary{
		Total:      decimal.RequireFromString("30"),
		Remaining:  decimal.RequireFromString("70"),
		Percentage: decimal.RequireFromString("30"),
		Count:      2,
	}
}

func TestSummaryCache_GetMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisSummaryCache(client, time.Minute)

	mock.ExpectGet("ledger:summary:gen:4").RedisNil()
	mock.ExpectGet("ledger:summary:4:0").RedisNil()

	summary, generation, ok, err := c.Get(context.Background(), 4)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, summary)
	assert.Equal(t, int64(0), generation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryCache_GetHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisSummaryCache(client, time.Minute)

	data, err := json.Marshal(sampleSummary())
	require.NoError(t, err)
	mock.ExpectGet("ledger:summary:gen:4").SetVal("3")
	mock.ExpectGet("ledger:summary:4:3").SetVal(string(data))

	summary, generation, ok, err := c.Get(context.Background(), 4)

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(3), generation)
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(30)))
	assert.True(t, summary.Remaining.Equal(decimal.NewFromInt(70)))
	assert.Equal(t, 2, summary.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryCache_GetError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisSummaryCache(client, time.Minute)

	mock.ExpectGet("ledger:summary:gen:4").SetErr(errors.New("connection refused"))

	_, _, ok, err := c.Get(context.Background(), 4)

	assert.Error(t, err)
	assert.False(t, ok)
}

func TestSummaryCache_Set(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisSummaryCache(client, 5*time.Minute)

	data, err := json.Marshal(sampleSummary())
	require.NoError(t, err)
	mock.ExpectSet("ledger:summary:9:2", data, 5*time.Minute).SetVal("OK")

	require.NoError(t, c.Set(context.Background(), 9, 2, sampleSummary()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryCache_Invalidate(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisSummaryCache(client, time.Minute)

	mock.ExpectIncr("ledger:summary:gen:1").SetVal(1)
	mock.ExpectIncr("ledger:summary:gen:2").SetVal(5)

	require.NoError(t, c.Invalidate(context.Background(), 1, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryCache_InvalidateError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisSummaryCache(client, time.Minute)

	mock.ExpectIncr("ledger:summary:gen:1").SetErr(errors.New("connection refused"))

	assert.Error(t, c.Invalidate(context.Background(), 1, 2))
}

func TestSummaryCache_InvalidateNothing(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisSummaryCache(client, time.Minute)

	require.NoError(t, c.Invalidate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A summary computed before an invalidation is written under the generation
// it observed and never served afterwards.
func TestSummaryCache_StaleWriteAfterInvalidate(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisSummaryCache(client, time.Minute)
	ctx := context.Background()

	data, err := json.Marshal(sampleSummary())
	require.NoError(t, err)

	mock.ExpectGet("ledger:summary:gen:7").SetVal("1")
	mock.ExpectGet("ledger:summary:7:1").RedisNil()
	mock.ExpectIncr("ledger:summary:gen:7").SetVal(2)
	mock.ExpectSet("ledger:summary:7:1", data, time.Minute).SetVal("OK")
	mock.ExpectGet("ledger:summary:gen:7").SetVal("2")
	mock.ExpectGet("ledger:summary:7:2").RedisNil()

	_, generation, ok, err := c.Get(ctx, 7)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Invalidate(ctx, 7))
	require.NoError(t, c.Set(ctx, 7, generation, sampleSummary()))

	summary, _, ok, err := c.Get(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, summary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoopSummaryCache(t *testing.T) {
	c := NewNoopSummaryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 1, 0, sampleSummary()))
	summary, _, ok, err := c.Get(ctx, 1)

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, summary)
	assert.NoError(t, c.Invalidate(ctx, 1))
}
