// Package store 把 api 包的接口绑定到缓存 Key 上：每个读操作声明自己的 Key，
// 每个写操作声明成功后要失效的资源族
package store

import (
	"log/slog"
	"time"

	"github.com/timetrak/client/internal/api"
	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/query"
)

const (
	DefaultCountsStaleTime = 30 * time.Second
	dashboardListSize      = 5
	lookupPageSize         = 100
)

type Store struct {
	api         *api.Client
	cache       *query.Cache
	countsStale time.Duration
	logger      *slog.Logger
}

type Option func(*Store)

func WithCountsStaleTime(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.countsStale = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func New(client *api.Client, cache *query.Cache, opts ...Option) *Store {
	s := &Store{
		api:         client,
		cache:       cache,
		countsStale: DefaultCountsStaleTime,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Cache() *query.Cache {
	return s.cache
}

func (s *Store) API() *api.Client {
	return s.api
}

func pageOf(page, size int) api.PageRequest {
	return api.PageRequest{Page: page, Size: size}
}

// filterPage 只过滤当前页，总数保持服务端返回的值
func filterPage[T any](page domain.Page[T], keep func(T) bool) domain.Page[T] {
	out := make([]T, 0, len(page.Content))
	for _, v := range page.Content {
		if keep(v) {
			out = append(out, v)
		}
	}
	page.Content = out
	return page
}
