package lock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akaza138/sktexcot-accounting-test/internal/lock"
)

func TestRedis_Acquire(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l := lock.NewRedis(client, time.Minute, 5*time.Millisecond)

	key := lock.SaleKey(1)

	release, err := l.Acquire(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, mr.Exists(key))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(ctx, key)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	assert.False(t, mr.Exists(key))

	release, err = l.Acquire(context.Background(), key)
	require.NoError(t, err)
	release()
}

func TestRedis_ReleaseKeepsForeignLease(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l := lock.NewRedis(client, time.Second, 5*time.Millisecond)

	key := lock.BillKey(9)

	release, err := l.Acquire(context.Background(), key)
	require.NoError(t, err)

	// Our lease expires and another holder takes the key.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set(key, "someone-else"))

	release()

	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestLocal_SerializesSameKey(t *testing.T) {
	l := lock.NewLocal()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)

	for range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			release, err := l.Acquire(context.Background(), lock.PaymentKey(1))
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}

	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestLocal_ContextCancelled(t *testing.T) {
	l := lock.NewLocal()

	release, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = l.Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocal_DistinctKeysIndependent(t *testing.T) {
	l := lock.NewLocal()

	r1, err := l.Acquire(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	r2, err := l.Acquire(ctx, "b")
	require.NoError(t, err)

	r1()
	r2()
}
