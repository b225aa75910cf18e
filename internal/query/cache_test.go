package query_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timetrak/client/internal/notify"
	"github.com/timetrak/client/internal/query"
)

func newCache(opts ...query.CacheOption) *query.Cache {
	base := []query.CacheOption{
		query.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		query.WithDefaults(query.RetryDelay(time.Millisecond)),
	}
	return query.NewCache(append(base, opts...)...)
}

func TestKey(t *testing.T) {
	k := query.NewKey("shifts", "ALL", int64(3), 0)

	assert.Equal(t, "shifts", k.Family())
	assert.True(t, k.HasPrefix(query.NewKey("shifts")))
	assert.True(t, k.HasPrefix(query.Key{}))
	assert.False(t, k.HasPrefix(query.NewKey("shifts", "ACTIVE")))
	assert.False(t, query.NewKey("shifts").HasPrefix(k))

	// 数值类型不同但值相同视为同一个 Key
	assert.True(t, k.Equal(query.NewKey("shifts", "ALL", 3, int64(0))))
	assert.Equal(t, k.String(), query.NewKey("shifts", "ALL", 3, int64(0)).String())
}

func TestFetch_CachesFreshData(t *testing.T) {
	c := newCache()
	var calls atomic.Int32
	q := query.Query[string]{
		Key: query.NewKey("company"),
		Fn: func(context.Context) (string, error) {
			calls.Add(1)
			return "Acme", nil
		},
	}

	for range 3 {
		got, err := query.Fetch(context.Background(), c, q)
		require.NoError(t, err)
		assert.Equal(t, "Acme", got)
	}
	assert.Equal(t, int32(1), calls.Load())

	st, ok := c.State(q.Key)
	require.True(t, ok)
	assert.True(t, st.HasData)
	assert.False(t, st.Stale)
}

func TestFetch_StaleAfterStaleTime(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	c := newCache(query.WithClock(clock), query.WithDefaults(query.StaleTime(time.Minute)))

	var calls atomic.Int32
	q := query.Query[int]{
		Key: query.NewKey("counts"),
		Fn: func(context.Context) (int, error) {
			return int(calls.Add(1)), nil
		},
	}

	got, err := query.Fetch(context.Background(), c, q)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	got, err = query.Fetch(context.Background(), c, q)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestFetch_DeduplicatesConcurrentCalls(t *testing.T) {
	c := newCache()
	release := make(chan struct{})
	var calls atomic.Int32
	q := query.Query[int]{
		Key: query.NewKey("employees", "ALL", 0),
		Fn: func(context.Context) (int, error) {
			calls.Add(1)
			<-release
			return 42, nil
		},
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]int, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := query.Fetch(context.Background(), c, q)
			assert.NoError(t, err)
			results[i] = v
		}()
	}

	// 等所有调用者都挂在同一个请求上
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestFetch_RetriesReadOnce(t *testing.T) {
	c := newCache()
	var calls atomic.Int32
	q := query.Query[string]{
		Key: query.NewKey("periods"),
		Fn: func(context.Context) (string, error) {
			if calls.Add(1) == 1 {
				return "", errors.New("connection reset")
			}
			return "ok", nil
		},
	}

	got, err := query.Fetch(context.Background(), c, q)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetch_GivesUpAfterRetry(t *testing.T) {
	c := newCache()
	boom := errors.New("boom")
	var calls atomic.Int32
	q := query.Query[string]{
		Key: query.NewKey("periods"),
		Fn: func(context.Context) (string, error) {
			calls.Add(1)
			return "", boom
		},
	}

	_, err := query.Fetch(context.Background(), c, q)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), calls.Load())

	st, ok := c.State(q.Key)
	require.True(t, ok)
	assert.False(t, st.HasData)
	assert.ErrorIs(t, st.Err, boom)
}

func TestInvalidate_ByPrefix(t *testing.T) {
	c := newCache()
	var calls atomic.Int32
	fetch := func(k query.Key) {
		_, err := query.Fetch(context.Background(), c, query.Query[int]{
			Key: k,
			Fn: func(context.Context) (int, error) {
				return int(calls.Add(1)), nil
			},
		})
		require.NoError(t, err)
	}

	shiftsActive := query.NewKey("shifts", "ACTIVE", 0)
	shiftsAll := query.NewKey("shifts", "ALL", 0)
	payments := query.NewKey("payments", "ALL", 0)
	fetch(shiftsActive)
	fetch(shiftsAll)
	fetch(payments)
	require.Equal(t, int32(3), calls.Load())

	n := c.Invalidate(query.NewKey("shifts"))
	assert.Equal(t, 2, n)

	st, _ := c.State(shiftsActive)
	assert.True(t, st.Stale)
	st, _ = c.State(payments)
	assert.False(t, st.Stale)

	fetch(shiftsActive)
	fetch(payments)
	assert.Equal(t, int32(4), calls.Load())
}

func TestInvalidate_DuringFetchKeepsEntryStale(t *testing.T) {
	c := newCache()
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	q := query.Query[int]{
		Key: query.NewKey("payments"),
		Fn: func(context.Context) (int, error) {
			if calls.Add(1) == 1 {
				close(started)
				<-release
			}
			return int(calls.Load()), nil
		},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = query.Fetch(context.Background(), c, q)
	}()

	<-started
	c.Invalidate(query.NewKey("payments"))
	close(release)
	<-done

	// 旧请求的结果早于这次失效，不能把条目标记为新鲜
	st, ok := c.State(q.Key)
	require.True(t, ok)
	assert.True(t, st.HasData)
	assert.True(t, st.Stale)

	got, err := query.Fetch(context.Background(), c, q)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestInvalidate_LateOldFetchDoesNotOverwriteNewerData(t *testing.T) {
	c := newCache()
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	q := query.Query[string]{
		Key: query.NewKey("employees"),
		Fn: func(context.Context) (string, error) {
			if calls.Add(1) == 1 {
				close(started)
				<-release
				return "pre-mutation", nil
			}
			return "post-mutation", nil
		},
	}

	slow := make(chan string)
	go func() {
		v, _ := query.Fetch(context.Background(), c, q)
		slow <- v
	}()

	<-started
	c.Invalidate(query.NewKey("employees"))
	got, err := query.Fetch(context.Background(), c, q)
	require.NoError(t, err)
	assert.Equal(t, "post-mutation", got)

	close(release)
	// 等待旧请求的调用者仍然拿到它自己的结果
	assert.Equal(t, "pre-mutation", <-slow)

	st, ok := c.State(q.Key)
	require.True(t, ok)
	assert.False(t, st.Stale)

	got, err = query.Fetch(context.Background(), c, q)
	require.NoError(t, err)
	assert.Equal(t, "post-mutation", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetch_CallerCancelDoesNotAbortSharedFetch(t *testing.T) {
	c := newCache()
	release := make(chan struct{})
	q := query.Query[int]{
		Key: query.NewKey("counts"),
		Fn: func(ctx context.Context) (int, error) {
			select {
			case <-release:
				return 7, nil
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := query.Fetch(ctx, c, q)
		errc <- err
	}()
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	close(release)
	require.Eventually(t, func() bool {
		v, ok := query.Peek[int](c, q.Key)
		return ok && v == 7
	}, time.Second, time.Millisecond)
}

func TestFocus_RefetchesOnlyStaleEntries(t *testing.T) {
	c := newCache()
	var fresh, stale, optedOut atomic.Int32
	ctx := context.Background()

	mk := func(name string, counter *atomic.Int32, opts ...query.Option) query.Query[int] {
		return query.Query[int]{
			Key:     query.NewKey(name),
			Options: opts,
			Fn: func(context.Context) (int, error) {
				return int(counter.Add(1)), nil
			},
		}
	}
	qFresh := mk("company", &fresh)
	qStale := mk("shifts", &stale)
	qOptedOut := mk("periods", &optedOut, query.RefetchOnFocus(false))
	for _, q := range []query.Query[int]{qFresh, qStale, qOptedOut} {
		_, err := query.Fetch(ctx, c, q)
		require.NoError(t, err)
	}

	c.Invalidate(query.NewKey("shifts"), query.NewKey("periods"))
	require.NoError(t, c.Focus(ctx))

	assert.Equal(t, int32(1), fresh.Load())
	assert.Equal(t, int32(2), stale.Load())
	assert.Equal(t, int32(1), optedOut.Load())

	v, ok := query.Peek[int](c, qStale.Key)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestClear(t *testing.T) {
	c := newCache()
	k := query.NewKey("me")
	_, err := query.Fetch(context.Background(), c, query.Query[string]{
		Key: k,
		Fn:  func(context.Context) (string, error) { return "admin", nil },
	})
	require.NoError(t, err)

	c.Clear()
	_, ok := c.State(k)
	assert.False(t, ok)
	_, ok = query.Peek[string](c, k)
	assert.False(t, ok)
}

func TestMutate_NeverRetriesAndNotifies(t *testing.T) {
	rec := &notify.Recorder{}
	c := newCache(query.WithNotifier(rec))
	var calls atomic.Int32

	_, err := query.Mutate(context.Background(), c, query.Mutation[struct{}]{
		Name: "deleteShift",
		Fn: func(context.Context) (struct{}, error) {
			calls.Add(1)
			return struct{}{}, errors.New("boom")
		},
		ErrorMessage: "Failed to delete shift",
	})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []string{"Failed to delete shift"}, rec.Errors())
	assert.Empty(t, rec.Successes())
}

func TestMutate_InvalidatesOnSuccess(t *testing.T) {
	rec := &notify.Recorder{}
	c := newCache(query.WithNotifier(rec))
	k := query.NewKey("shifts", "ALL")
	_, err := query.Fetch(context.Background(), c, query.Query[int]{
		Key: k,
		Fn:  func(context.Context) (int, error) { return 1, nil },
	})
	require.NoError(t, err)

	got, err := query.Mutate(context.Background(), c, query.Mutation[int]{
		Name:           "createShift",
		Fn:             func(context.Context) (int, error) { return 9, nil },
		Invalidates:    []query.Key{query.NewKey("shifts")},
		SuccessMessage: "Shift created",
	})
	require.NoError(t, err)
	assert.Equal(t, 9, got)
	assert.Equal(t, []string{"Shift created"}, rec.Successes())

	st, _ := c.State(k)
	assert.True(t, st.Stale)
}

func TestMutate_SuccessMessageFromResult(t *testing.T) {
	rec := &notify.Recorder{}
	c := newCache(query.WithNotifier(rec))

	_, err := query.Mutate(context.Background(), c, query.Mutation[[]int]{
		Name:           "bulkClockIn",
		Fn:             func(context.Context) ([]int, error) { return []int{5, 9}, nil },
		SuccessMessage: "ignored",
		Success:        func(ids []int) string { return "done " + strconv.Itoa(len(ids)) },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"done 2"}, rec.Successes())
}

func TestMutate_FailureLeavesCacheUntouched(t *testing.T) {
	c := newCache()
	k := query.NewKey("payments")
	_, err := query.Fetch(context.Background(), c, query.Query[int]{
		Key: k,
		Fn:  func(context.Context) (int, error) { return 1, nil },
	})
	require.NoError(t, err)

	_, err = query.Mutate(context.Background(), c, query.Mutation[int]{
		Name:        "updatePaymentStatus",
		Fn:          func(context.Context) (int, error) { return 0, errors.New("conflict") },
		Invalidates: []query.Key{query.NewKey("payments")},
	})
	require.Error(t, err)

	st, _ := c.State(k)
	assert.False(t, st.Stale)
}

func TestMutate_ExclusiveRejectsConcurrentSubmit(t *testing.T) {
	rec := &notify.Recorder{}
	c := newCache(query.WithNotifier(rec))
	started := make(chan struct{})
	release := make(chan struct{})

	m := query.Mutation[int]{
		Name: "calculatePayments",
		Fn: func(context.Context) (int, error) {
			close(started)
			<-release
			return 3, nil
		},
		Exclusive: true,
	}

	errc := make(chan error, 1)
	go func() {
		_, err := query.Mutate(context.Background(), c, m)
		errc <- err
	}()
	<-started

	_, err := query.Mutate(context.Background(), c, m)
	assert.ErrorIs(t, err, query.ErrMutationInFlight)
	assert.Equal(t, []string{query.ErrMutationInFlight.Error()}, rec.Errors())

	close(release)
	require.NoError(t, <-errc)

	// 完成后可以再次提交
	m.Fn = func(context.Context) (int, error) { return 4, nil }
	got, err := query.Mutate(context.Background(), c, m)
	require.NoError(t, err)
	assert.Equal(t, 4, got)
}
