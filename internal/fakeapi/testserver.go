package fakeapi

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
)

// Start 启动一个 httptest 服务器，测试结束时自动关闭。返回的 URL 已包含 /api 前缀
func Start(t testing.TB, opts Options) (*Server, string) {
	t.Helper()

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s, err := NewServer(opts)
	if err != nil {
		t.Fatalf("create fake api: %v", err)
	}
	s.RegisterRoutes()

	ts := httptest.NewServer(s.Mux)
	t.Cleanup(ts.Close)
	return s, ts.URL + "/api"
}
