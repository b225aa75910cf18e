package api_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timetrak/client/internal/api"
	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/fakeapi"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// tokenSession 从一个过期的令牌开始，刷新时重新登录
type tokenSession struct {
	auth      *api.AuthService
	token     atomic.Value
	refreshes atomic.Int32
	fail      bool
}

func (s *tokenSession) AccessToken(context.Context) (string, error) {
	return s.token.Load().(string), nil
}

func (s *tokenSession) Refresh(ctx context.Context) (string, error) {
	s.refreshes.Add(1)
	if s.fail {
		return "", errors.New("refresh rejected")
	}
	tokens, err := s.auth.Login(ctx, api.LoginRequest{Username: "admin", Password: "admin123"})
	if err != nil {
		return "", err
	}
	s.token.Store(tokens.AccessToken)
	return tokens.AccessToken, nil
}

func newSessionClient(t *testing.T, opts fakeapi.Options) (*fakeapi.Server, *api.Client, *tokenSession) {
	t.Helper()
	srv, base := fakeapi.Start(t, opts)
	bare := api.NewClient(base, 5*time.Second, api.WithLogger(discard))
	sess := &tokenSession{auth: bare.Auth()}
	sess.token.Store("expired")
	c := api.NewClient(base, 5*time.Second, api.WithSession(sess), api.WithLogger(discard))
	return srv, c, sess
}

func TestClient_RefreshesOnceAndReplays(t *testing.T) {
	srv, c, sess := newSessionClient(t, fakeapi.Options{})
	ctx := context.Background()

	page, err := c.Admin().ListEmployees(ctx, api.PageRequest{})
	require.NoError(t, err)
	assert.NotNil(t, page.Content)
	assert.Equal(t, int32(1), sess.refreshes.Load())
	assert.Equal(t, 2, srv.Hits(http.MethodGet, "/admin/employees"))

	// 令牌已更新，后续请求不再刷新
	_, err = c.Company().GetCompany(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), sess.refreshes.Load())
}

func TestClient_RefreshFailureSurfaces(t *testing.T) {
	srv, c, sess := newSessionClient(t, fakeapi.Options{})
	sess.fail = true

	_, err := c.Admin().ListDepartments(context.Background(), api.PageRequest{})
	require.Error(t, err)
	assert.EqualError(t, err, "refresh rejected")
	assert.Equal(t, int32(1), sess.refreshes.Load())
	assert.Equal(t, 1, srv.Hits(http.MethodGet, "/admin/organization/departments"))
}

func TestClient_SecondUnauthorizedIsNotRetried(t *testing.T) {
	srv, c, sess := newSessionClient(t, fakeapi.Options{})
	srv.FailNext(http.MethodGet, "/admin/jobs", http.StatusUnauthorized, "Invalid or expired token")
	srv.FailNext(http.MethodGet, "/admin/jobs", http.StatusUnauthorized, "Invalid or expired token")

	_, err := c.Admin().ListJobs(context.Background(), api.PageRequest{})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, api.StatusOf(err))
	assert.Equal(t, int32(1), sess.refreshes.Load())
	assert.Equal(t, 2, srv.Hits(http.MethodGet, "/admin/jobs"))
}

func TestClient_ServerMessage(t *testing.T) {
	srv, c, _ := newSessionClient(t, fakeapi.Options{})
	srv.FailNext(http.MethodPost, "/admin/shifts", http.StatusConflict, "Employee already has an active shift")

	_, err := c.Admin().CreateShift(context.Background(), api.ShiftRequest{EmployeeJobID: 1, ClockIn: "2024-01-02T09:00"})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Employee already has an active shift", apiErr.Message)
}

func TestClient_BareArraysAndEnvelopes(t *testing.T) {
	for _, bare := range []bool{false, true} {
		t.Run(map[bool]string{false: "envelope", true: "bare"}[bare], func(t *testing.T) {
			_, c, _ := newSessionClient(t, fakeapi.Options{BareArrays: bare})
			ctx := context.Background()

			for _, name := range []string{"Kitchen", "Front desk", "Warehouse"} {
				_, err := c.Admin().CreateDepartment(ctx, api.DepartmentRequest{Name: name})
				require.NoError(t, err)
			}

			page, err := c.Admin().ListDepartments(ctx, api.PageRequest{Size: 2})
			require.NoError(t, err)
			if bare {
				assert.Len(t, page.Content, 3)
				assert.Equal(t, int64(3), page.TotalElements)
				assert.Equal(t, 1, page.TotalPages)
			} else {
				assert.Len(t, page.Content, 2)
				assert.Equal(t, int64(3), page.TotalElements)
				assert.Equal(t, 2, page.TotalPages)
			}
		})
	}
}

func TestClient_RequestHeaders(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"name":"Acme","email":"hr@acme.test"}`))
	}))
	t.Cleanup(ts.Close)

	sess := &tokenSession{}
	sess.token.Store("abc")
	c := api.NewClient(ts.URL+"/api/", time.Second, api.WithSession(sess), api.WithLogger(discard))

	company, err := c.Company().GetCompany(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Acme", company.Name)
	assert.Equal(t, "Bearer abc", got.Get("Authorization"))
	assert.NotEmpty(t, got.Get(api.RequestIDHeader))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, ts.URL+"/api", c.BaseURL())
}

func TestClient_ExportFilename(t *testing.T) {
	_, c, _ := newSessionClient(t, fakeapi.Options{})

	dl, err := c.Admin().ExportPayments(context.Background(), api.ExportRequest{Format: "csv", Status: domain.PaymentStatusIssued})
	require.NoError(t, err)
	defer dl.Body.Close()

	assert.Equal(t, "payments.csv", dl.Filename)
	data, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestClient_PublicInviteEndpointsNeedNoToken(t *testing.T) {
	_, base := fakeapi.Start(t, fakeapi.Options{})
	c := api.NewClient(base, time.Second, api.WithLogger(discard))

	v, err := c.Invites().ValidateInvite(context.Background(), "NOPE1234")
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.NotEmpty(t, v.Message)

	_, err = c.Admin().ListEmployees(context.Background(), api.PageRequest{})
	assert.Equal(t, http.StatusUnauthorized, api.StatusOf(err))
}
