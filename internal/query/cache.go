package query

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/timetrak/client/internal/notify"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultStaleTime  = 5 * time.Minute
	DefaultRetry      = 1
	DefaultRetryDelay = 500 * time.Millisecond
)

type Options struct {
	StaleTime      time.Duration
	Retry          int
	RetryDelay     time.Duration
	RefetchOnFocus bool
}

type Option func(*Options)

func StaleTime(d time.Duration) Option {
	return func(o *Options) { o.StaleTime = d }
}

func Retry(n int) Option {
	return func(o *Options) { o.Retry = n }
}

func RetryDelay(d time.Duration) Option {
	return func(o *Options) { o.RetryDelay = d }
}

func RefetchOnFocus(enabled bool) Option {
	return func(o *Options) { o.RefetchOnFocus = enabled }
}

// Cache 是进程级的查询缓存。Fetcher 在锁外执行，锁只保护 entries
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*entry
	group    singleflight.Group
	defaults Options
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time

	mutating map[string]bool
}

type entry struct {
	key            Key
	data           any
	hasData        bool
	err            error
	updatedAt      time.Time
	invalidated    bool
	generation     int
	dataGeneration int // data 对应请求开始时的 generation
	fetches        int
	opts           Options
	fetch          func(context.Context) (any, error)
}

func (e *entry) fresh(now time.Time) bool {
	return e.hasData && !e.invalidated && now.Sub(e.updatedAt) < e.opts.StaleTime
}

type CacheOption func(*Cache)

func WithDefaults(opts ...Option) CacheOption {
	return func(c *Cache) {
		for _, opt := range opts {
			opt(&c.defaults)
		}
	}
}

func WithNotifier(n notify.Notifier) CacheOption {
	return func(c *Cache) { c.notifier = n }
}

func WithLogger(l *slog.Logger) CacheOption {
	return func(c *Cache) { c.logger = l }
}

func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		defaults: Options{
			StaleTime:      DefaultStaleTime,
			Retry:          DefaultRetry,
			RetryDelay:     DefaultRetryDelay,
			RefetchOnFocus: true,
		},
		notifier: notify.Discard,
		logger:   slog.Default(),
		now:      time.Now,
		mutating: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Notifier() notify.Notifier {
	return c.notifier
}

func (c *Cache) resolve(opts []Option) Options {
	o := c.defaults
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type Query[T any] struct {
	Key     Key
	Fn      func(ctx context.Context) (T, error)
	Options []Option
}

// Fetch 在数据新鲜时直接返回缓存，否则发起请求；同一个 Key 的并发调用共享一次请求。
// ctx 取消只会让当前调用者放弃等待，共享的请求会继续完成并写入自己的 Key
func Fetch[T any](ctx context.Context, c *Cache, q Query[T]) (T, error) {
	var zero T
	k := q.Key.String()
	opts := c.resolve(q.Options)
	fetch := func(ctx context.Context) (any, error) { return q.Fn(ctx) }

	c.mu.Lock()
	e, ok := c.entries[k]
	if !ok {
		e = &entry{key: q.Key}
		c.entries[k] = e
	}
	e.opts = opts
	e.fetch = fetch
	if e.fresh(c.now()) {
		data := e.data
		c.mu.Unlock()
		return as[T](data), nil
	}
	c.mu.Unlock()

	ch := c.group.DoChan(k, func() (any, error) {
		return c.run(context.WithoutCancel(ctx), k, fetch, opts)
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return as[T](res.Val), nil
	}
}

func as[T any](v any) T {
	t, _ := v.(T)
	return t
}

func (c *Cache) run(ctx context.Context, k string, fetch func(context.Context) (any, error), opts Options) (any, error) {
	c.mu.Lock()
	generation := 0
	if e, ok := c.entries[k]; ok {
		generation = e.generation
	}
	c.mu.Unlock()

	var (
		data any
		err  error
	)
	for attempt := 0; attempt <= opts.Retry; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying query", "key", k, "attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(opts.RetryDelay):
			}
		}
		data, err = fetch(ctx)
		if err == nil {
			break
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok {
		// 在请求期间被 Clear 掉了，结果只返回给等待者
		return data, err
	}
	e.fetches++
	if err != nil {
		e.err = err
		c.logger.Debug("query failed", "key", k, "error", err)
		return nil, err
	}

	// 失效之后开始的请求已经写入了更新的数据，旧结果只返回给等待者
	if e.hasData && generation < e.dataGeneration {
		return data, nil
	}
	e.data = data
	e.hasData = true
	e.dataGeneration = generation
	e.err = nil
	e.updatedAt = c.now()
	// 请求期间发生过失效，这份数据可能早于那次变更，保持失效状态
	if e.generation == generation {
		e.invalidated = false
	}
	return data, nil
}

// Invalidate 把所有以任一前缀开头的条目标记为过期，返回受影响的条目数
func (c *Cache) Invalidate(prefixes ...Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, e := range c.entries {
		for _, p := range prefixes {
			if e.key.HasPrefix(p) {
				e.invalidated = true
				e.generation++
				c.group.Forget(k)
				n++
				break
			}
		}
	}
	c.logger.Debug("invalidated queries", "prefixes", len(prefixes), "entries", n)
	return n
}

// Focus 对应窗口重新获得焦点：重新请求所有允许的过期条目
func (c *Cache) Focus(ctx context.Context) error {
	type target struct {
		key   string
		fetch func(context.Context) (any, error)
		opts  Options
	}

	c.mu.Lock()
	now := c.now()
	var targets []target
	for k, e := range c.entries {
		if e.fetch == nil || !e.opts.RefetchOnFocus || e.fresh(now) {
			continue
		}
		targets = append(targets, target{key: k, fetch: e.fetch, opts: e.opts})
	}
	c.mu.Unlock()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, t := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err, _ := c.group.Do(t.key, func() (any, error) {
				return c.run(ctx, t.key, t.fetch, t.opts)
			})
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Clear 丢弃全部缓存，登出时使用
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		c.group.Forget(k)
	}
	c.entries = make(map[string]*entry)
}

type State struct {
	HasData   bool
	Stale     bool
	Err       error
	UpdatedAt time.Time
	Fetches   int
}

func (c *Cache) State(key Key) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok {
		return State{}, false
	}
	return State{
		HasData:   e.hasData,
		Stale:     !e.fresh(c.now()),
		Err:       e.err,
		UpdatedAt: e.updatedAt,
		Fetches:   e.fetches,
	}, true
}

// Peek 返回缓存中的数据而不触发请求
func Peek[T any](c *Cache, key Key) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key.String()]
	if !ok || !e.hasData {
		return zero, false
	}
	return as[T](e.data), true
}
