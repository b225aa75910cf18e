package seed_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timetrak/client/internal/api"
	"github.com/timetrak/client/internal/fakeapi"
	"github.com/timetrak/client/internal/form"
	"github.com/timetrak/client/internal/seed"
	"github.com/timetrak/client/internal/session"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newSeeder(t *testing.T) (*seed.Seeder, *api.AdminService) {
	t.Helper()
	_, base := fakeapi.Start(t, fakeapi.Options{})

	bare := api.NewClient(base, 5*time.Second, api.WithLogger(discard))
	sess := session.New(session.NewMemoryStore(), bare.Auth(), session.WithLogger(discard))
	_, err := sess.Login(context.Background(), api.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	client := api.NewClient(base, 5*time.Second, api.WithSession(sess), api.WithLogger(discard))
	return seed.New(client, form.Must(form.New()), discard), client.Admin()
}

func TestImportEmployees(t *testing.T) {
	s, admin := newSeeder(t)
	ctx := context.Background()

	_, err := admin.CreateDepartment(ctx, api.DepartmentRequest{Name: "Kitchen"})
	require.NoError(t, err)

	csv := strings.Join([]string{
		"Name, Username, EMAIL, Department, Phone",
		"Jane Doe,,jane@example.com,kitchen,+1 555-010-0001",
		"Bob Stone,bob,bob@example.com,Front Desk,",
		"王伟,,wangwei@example.com,Front Desk,",
		"Broken Row,broken,not-an-email,Kitchen,",
		"Jane Again,jane.doe,jane2@example.com,Kitchen,",
	}, "\n")

	n, err := s.ImportEmployees(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	page, err := admin.ListEmployees(ctx, api.PageRequest{Size: 100})
	require.NoError(t, err)
	byUsername := make(map[string]string)
	for _, e := range page.Content {
		byUsername[e.Username] = e.DepartmentName
	}
	assert.Equal(t, map[string]string{
		"jane.doe": "Kitchen",
		"bob":      "Front Desk",
		"wangwei":  "Front Desk",
	}, byUsername)

	// Front Desk 只创建一次
	depts, err := admin.ListDepartments(ctx, api.PageRequest{Size: 100})
	require.NoError(t, err)
	assert.Len(t, depts.Content, 2)
}

func TestImportEmployees_MissingColumn(t *testing.T) {
	s, _ := newSeeder(t)

	_, err := s.ImportEmployees(context.Background(), strings.NewReader("name,email,department\nJane,jane@example.com,Kitchen\n"))
	assert.EqualError(t, err, `missing column "username"`)

	_, err = s.ImportEmployees(context.Background(), strings.NewReader(""))
	assert.ErrorContains(t, err, "read header")
}

func TestSeedDemoData(t *testing.T) {
	s, admin := newSeeder(t)
	ctx := context.Background()

	depts, err := s.Departments(ctx, 3, 2)
	require.NoError(t, err)
	assert.Len(t, depts, 3)

	jobs, err := admin.ListJobs(ctx, api.PageRequest{Size: 100})
	require.NoError(t, err)
	assert.Len(t, jobs.Content, 6)

	n, err := s.Employees(ctx, 5, "example.com")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	shifts, err := s.Shifts(ctx, 5)
	require.NoError(t, err)
	all, err := admin.ListShifts(ctx, api.PageRequest{Size: 1000})
	require.NoError(t, err)
	assert.Equal(t, int64(shifts), all.TotalElements)
	for _, sh := range all.Content {
		require.NotNil(t, sh.ClockOut)
		assert.True(t, sh.ClockOut.After(sh.ClockIn))
	}

	_, err = s.Departments(ctx, 0, 1)
	assert.Error(t, err)
	_, err = s.Employees(ctx, 0, "example.com")
	assert.Error(t, err)
}
