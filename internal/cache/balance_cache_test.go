package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NomadCrew/nomad-crew-ledger/pkg/valueobjects"
	"github.com/NomadCrew/nomad-crew-ledger/types"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBalances() *types.TripBalances {
	return &types.TripBalances{
		TripID:        "trip-1",
		Currency:      valueobjects.PHP,
		LedgerVersion: 4,
		TotalSpent:    valueobjects.New(30000, valueobjects.PHP),
		Balances: []types.MemberBalance{
			{MemberID: "alice", Balance: valueobjects.New(20000, valueobjects.PHP)},
			{MemberID: "bob", Balance: valueobjects.New(-20000, valueobjects.PHP)},
		},
	}
}

func TestRedisBalanceCache_GetSet(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewRedisBalanceCache(rdb, 5*time.Minute)
	ctx := context.Background()
	balances := testBalances()
	raw, err := json.Marshal(balances)
	require.NoError(t, err)

	mock.ExpectSet("ledger:balances:trip-1:4", raw, 5*time.Minute).SetVal("OK")
	c.Set(ctx, balances)

	mock.ExpectGet("ledger:balances:trip-1:4").SetVal(string(raw))
	got, ok := c.Get(ctx, "trip-1", 4)
	require.True(t, ok)
	assert.Equal(t, balances.Balances, got.Balances)
	assert.Equal(t, valueobjects.PHP, got.TotalSpent.Currency())

	mock.ExpectGet("ledger:balances:trip-1:5").RedisNil()
	_, ok = c.Get(ctx, "trip-1", 5)
	assert.False(t, ok)

	mock.ExpectGet("ledger:balances:trip-1:6").SetErr(errors.New("timeout"))
	_, ok = c.Get(ctx, "trip-1", 6)
	assert.False(t, ok)

	mock.ExpectGet("ledger:balances:trip-1:7").SetVal("{not json")
	_, ok = c.Get(ctx, "trip-1", 7)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisBalanceCache_Invalidate(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewRedisBalanceCache(rdb, time.Minute)

	mock.ExpectScan(0, "ledger:balances:trip-1:*", 100).SetVal([]string{"ledger:balances:trip-1:3"}, 12)
	mock.ExpectDel("ledger:balances:trip-1:3").SetVal(1)
	mock.ExpectScan(12, "ledger:balances:trip-1:*", 100).SetVal([]string{"ledger:balances:trip-1:4"}, 0)
	mock.ExpectDel("ledger:balances:trip-1:4").SetVal(1)

	c.Invalidate(context.Background(), "trip-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader(t *testing.T) {
	ctx := context.Background()

	t.Run("serves cache hits without computing", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		loader := NewLoader(NewRedisBalanceCache(rdb, time.Minute))
		raw, err := json.Marshal(testBalances())
		require.NoError(t, err)

		mock.ExpectGet("ledger:balances:trip-1:4").SetVal(string(raw))
		got, hit, err := loader.Load(ctx, "trip-1", 4, func() (*types.TripBalances, error) {
			t.Fatal("compute must not run on a hit")
			return nil, nil
		})
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, int64(4), got.LedgerVersion)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("does not cache errors", func(t *testing.T) {
		loader := NewLoader(nil)
		boom := errors.New("inconsistent")
		_, _, err := loader.Load(ctx, "trip-1", 1, func() (*types.TripBalances, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)

		got, hit, err := loader.Load(ctx, "trip-1", 1, func() (*types.TripBalances, error) { return testBalances(), nil })
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, "trip-1", got.TripID)
	})

	t.Run("collapses concurrent computations", func(t *testing.T) {
		loader := NewLoader(NoopCache{})
		release := make(chan struct{})
		var calls int32

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := loader.Load(ctx, "trip-1", 9, func() (*types.TripBalances, error) {
					atomic.AddInt32(&calls, 1)
					<-release
					return testBalances(), nil
				})
				assert.NoError(t, err)
			}()
		}
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}
