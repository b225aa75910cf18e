package store_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timetrak/client/internal/api"
	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/fakeapi"
	"github.com/timetrak/client/internal/form"
	"github.com/timetrak/client/internal/notify"
	"github.com/timetrak/client/internal/query"
	"github.com/timetrak/client/internal/session"
	"github.com/timetrak/client/internal/store"
	"github.com/timetrak/client/internal/view"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// 2024-03-20 落在第 6 个双周周期（03-11 至 03-24）
var testNow = time.Date(2024, time.March, 20, 15, 0, 0, 0, time.UTC)

type fixture struct {
	srv   *fakeapi.Server
	store *store.Store
	admin *api.AdminService
	rec   *notify.Recorder
}

func setup(t *testing.T, opts fakeapi.Options) *fixture {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}
	srv, base := fakeapi.Start(t, opts)

	bare := api.NewClient(base, 5*time.Second, api.WithLogger(discard))
	sess := session.New(session.NewMemoryStore(), bare.Auth(),
		session.WithLogger(discard), session.WithClock(func() time.Time { return testNow }))
	_, err := sess.Login(context.Background(), api.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	client := api.NewClient(base, 5*time.Second, api.WithSession(sess), api.WithLogger(discard))
	rec := &notify.Recorder{}
	cache := query.NewCache(
		query.WithNotifier(rec),
		query.WithLogger(discard),
		query.WithDefaults(query.RetryDelay(time.Millisecond)),
	)
	return &fixture{
		srv:   srv,
		store: store.New(client, cache, store.WithLogger(discard)),
		admin: client.Admin(),
		rec:   rec,
	}
}

func itoaID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (f *fixture) department(t *testing.T, name string) *domain.Department {
	t.Helper()
	d, err := f.admin.CreateDepartment(context.Background(), api.DepartmentRequest{Name: name})
	require.NoError(t, err)
	return d
}

// employee 创建员工并分配一个岗位，返回员工和分配
func (f *fixture) employee(t *testing.T, dept *domain.Department, username string, job *domain.Job) (*domain.Employee, *domain.EmployeeJob) {
	t.Helper()
	ctx := context.Background()
	e, err := f.admin.RegisterEmployee(ctx, api.RegisterEmployeeRequest{
		Name:         username + " Tester",
		Username:     username,
		Email:        username + "@example.com",
		DepartmentID: dept.ID,
		Role:         domain.RoleEmployee,
	})
	require.NoError(t, err)
	if job == nil {
		return e, nil
	}
	ej, err := f.admin.AssignJob(ctx, api.AssignJobRequest{EmployeeID: e.ID, JobID: job.ID})
	require.NoError(t, err)
	return e, ej
}

func (f *fixture) job(t *testing.T, dept *domain.Department, title, wage string) *domain.Job {
	t.Helper()
	j, err := f.admin.CreateJob(context.Background(), api.JobRequest{
		Title:        title,
		HourlyWage:   decimal.RequireFromString(wage),
		DepartmentID: dept.ID,
	})
	require.NoError(t, err)
	return j
}

func (f *fixture) shift(t *testing.T, ej *domain.EmployeeJob, in, out, notes string) *domain.Shift {
	t.Helper()
	req := api.ShiftRequest{EmployeeJobID: ej.EmployeeJobID, ClockIn: in, Status: domain.ShiftStatusActive, Notes: notes}
	if out != "" {
		req.ClockOut = &out
		req.Status = domain.ShiftStatusCompleted
	}
	sh, err := f.admin.CreateShift(context.Background(), req)
	require.NoError(t, err)
	return sh
}

func TestInvalidationsCoverEveryMutation(t *testing.T) {
	mutations := []string{
		store.MutRegisterEmployee, store.MutApproveEmployee, store.MutRejectEmployee,
		store.MutActivateEmployee, store.MutDeactivateEmployee, store.MutDeleteEmployee,
		store.MutCreateDepartment, store.MutUpdateDepartment, store.MutDeleteDepartment,
		store.MutCreateJob, store.MutUpdateJob, store.MutDeleteJob,
		store.MutAssignJob, store.MutUnassignJob, store.MutUpdateWageOverride,
		store.MutCreateShift, store.MutUpdateShift, store.MutDeleteShift,
		store.MutClockIn, store.MutClockOut, store.MutBulkClockIn, store.MutBulkClockOut,
		store.MutCalculatePayments, store.MutUpdatePayment, store.MutUpdateCompany,
		store.MutCreateInvite, store.MutDeactivateInvite, store.MutRegisterByInvite,
	}
	families := map[string]bool{
		store.FamilyEmployees: true, store.FamilyEmployee: true, store.FamilyEmployeeCounts: true,
		store.FamilyDepartments: true, store.FamilyJobs: true, store.FamilyEmployeeJobs: true,
		store.FamilyShifts: true, store.FamilyPayments: true, store.FamilyPeriods: true,
		store.FamilyInvites: true, store.FamilyCompany: true,
	}

	assert.Len(t, store.Invalidations, len(mutations))
	for _, name := range mutations {
		keys, ok := store.Invalidations[name]
		if assert.True(t, ok, "missing invalidation for %s", name) {
			assert.NotEmpty(t, keys, name)
		}
		for _, k := range keys {
			assert.True(t, families[k.Family()], "%s invalidates unknown family %v", name, k)
		}
	}

	// 员工状态变化必须同时刷新列表和计数
	for _, name := range []string{store.MutApproveEmployee, store.MutRejectEmployee, store.MutActivateEmployee, store.MutDeactivateEmployee} {
		assert.Contains(t, store.Invalidations[name], store.Family(store.FamilyEmployees))
		assert.Contains(t, store.Invalidations[name], store.Family(store.FamilyEmployeeCounts))
	}
}

func TestEmployeeCounts_FansOutAndCaches(t *testing.T) {
	f := setup(t, fakeapi.Options{})
	ctx := context.Background()
	dept := f.department(t, "Kitchen")
	f.employee(t, dept, "ann", nil)
	f.employee(t, dept, "bob", nil)
	carl, _ := f.employee(t, dept, "carl", nil)
	_, err := f.admin.DeactivateEmployee(ctx, carl.ID)
	require.NoError(t, err)
	f.srv.ResetHits()

	counts, err := f.store.EmployeeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.EmployeeCounts{All: 3, Active: 2, Deactivated: 1}, counts)

	assert.Equal(t, 1, f.srv.Hits(http.MethodGet, "/admin/employees"))
	for _, status := range domain.EmployeeStatuses {
		assert.Equal(t, 1, f.srv.Hits(http.MethodGet, "/admin/employees/status/"+string(status)), status)
	}
	assert.Equal(t, 5, f.srv.TotalHits())

	_, err = f.store.EmployeeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, f.srv.TotalHits())

	// 写操作之后重新计数
	_, err = f.store.ActivateEmployee(ctx, carl.ID)
	require.NoError(t, err)
	counts, err = f.store.EmployeeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts.Active)
	assert.Zero(t, counts.Deactivated)
}

func TestEmployeeCounts_OneFailureFailsAll(t *testing.T) {
	f := setup(t, fakeapi.Options{})
	path := "/admin/employees/status/" + string(domain.EmployeeStatusRejected)
	// 读请求会重试一次
	f.srv.FailNext(http.MethodGet, path, http.StatusInternalServerError, "database is down")
	f.srv.FailNext(http.MethodGet, path, http.StatusInternalServerError, "database is down")

	_, err := f.store.EmployeeCounts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count REJECTED employees")
	assert.Equal(t, http.StatusInternalServerError, api.StatusOf(err))
}

func TestEmployees_EndpointSelection(t *testing.T) {
	f := setup(t, fakeapi.Options{})
	ctx := context.Background()
	kitchen := f.department(t, "Kitchen")
	desk := f.department(t, "Front desk")
	f.employee(t, kitchen, "ann", nil)
	f.employee(t, desk, "annabel", nil)
	f.employee(t, desk, "bob", nil)
	f.srv.ResetHits()

	st := view.NewListState(view.EmployeesPolicy)

	page, err := f.store.Employees(ctx, st.WithSearch("ann").WithDepartment(desk.ID))
	require.NoError(t, err)
	require.Len(t, page.Content, 1, "search endpoint, department applied to the page")
	assert.Equal(t, "annabel", page.Content[0].Username)
	assert.Equal(t, 1, f.srv.Hits(http.MethodGet, "/admin/employees/search"))

	page, err = f.store.Employees(ctx, st.WithDepartment(desk.ID))
	require.NoError(t, err)
	assert.Len(t, page.Content, 2)
	assert.Equal(t, 1, f.srv.Hits(http.MethodGet, "/admin/employees/department/"+itoaID(desk.ID)))

	page, err = f.store.Employees(ctx, st.WithTab("PENDING"))
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.Equal(t, 1, f.srv.Hits(http.MethodGet, "/admin/employees/status/PENDING"))
}

func TestEmployees_DepartmentWithStatusTab(t *testing.T) {
	f := setup(t, fakeapi.Options{})
	ctx := context.Background()
	desk := f.department(t, "Front desk")
	f.employee(t, desk, "annabel", nil)
	bob, _ := f.employee(t, desk, "bob", nil)
	_, err := f.admin.DeactivateEmployee(ctx, bob.ID)
	require.NoError(t, err)

	st := view.NewListState(view.EmployeesPolicy).WithDepartment(desk.ID)

	all, err := f.store.Employees(ctx, st)
	require.NoError(t, err)
	assert.Len(t, all.Content, 2)

	deactivated, err := f.store.Employees(ctx, st.WithTab(string(domain.EmployeeStatusDeactivated)))
	require.NoError(t, err)
	require.Len(t, deactivated.Content, 1)
	assert.Equal(t, "bob", deactivated.Content[0].Username)

	pending, err := f.store.Employees(ctx, st.WithTab(string(domain.EmployeeStatusPending)))
	require.NoError(t, err)
	assert.Empty(t, pending.Content)
}

func TestJobs_SearchWithinDepartment(t *testing.T) {
	f := setup(t, fakeapi.Options{})
	ctx := context.Background()
	kitchen := f.department(t, "Kitchen")
	desk := f.department(t, "Front desk")
	f.job(t, kitchen, "Line Cook", "18")
	f.job(t, desk, "Cook Liaison", "17")
	f.job(t, desk, "Receptionist", "16")

	st := view.NewListState(view.JobsPolicy)

	page, err := f.store.Jobs(ctx, st.WithSearch("cook"))
	require.NoError(t, err)
	assert.Len(t, page.Content, 2)

	page, err = f.store.Jobs(ctx, st.WithSearch("cook").WithDepartment(kitchen.ID))
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Line Cook", page.Content[0].Title)

	page, err = f.store.Jobs(ctx, st.WithDepartment(desk.ID))
	require.NoError(t, err)
	assert.Len(t, page.Content, 2)
}

func TestShifts_EndpointPriorityAndClientFilter(t *testing.T) {
	f := setup(t, fakeapi.Options{})
	ctx := context.Background()
	dept := f.department(t, "Warehouse")
	other := f.department(t, "Office")
	picker := f.job(t, dept, "Picker", "20")
	clerk := f.job(t, other, "Clerk", "18")
	ann, annJob := f.employee(t, dept, "ann", picker)
	_, bobJob := f.employee(t, dept, "bob", picker)
	_, carlJob := f.employee(t, other, "carl", clerk)

	f.shift(t, annJob, "2024-03-12T09:00", "2024-03-12T17:00", "")
	f.shift(t, annJob, "2024-03-20T09:00", "", "")
	f.shift(t, bobJob, "2024-03-13T09:00", "2024-03-13T13:00", "forklift training")
	f.shift(t, carlJob, "2024-02-27T09:00", "2024-02-27T17:00", "")
	f.srv.ResetHits()

	st := view.NewListState(view.ShiftsPolicy)

	t.Run("employee with status tab filters client side", func(t *testing.T) {
		page, err := f.store.Shifts(ctx, st.WithEmployee(ann.ID).WithTab("COMPLETED"))
		require.NoError(t, err)
		require.Len(t, page.Content, 1)
		assert.Equal(t, domain.ShiftStatusCompleted, page.Content[0].Status)
		assert.Equal(t, 1, f.srv.Hits(http.MethodGet, "/admin/shifts/employee/"+itoaID(ann.ID)))
		assert.Zero(t, f.srv.Hits(http.MethodGet, "/admin/shifts/status/COMPLETED"))
	})

	t.Run("period wins over employee and department", func(t *testing.T) {
		periods, err := f.store.AvailablePeriods(ctx)
		require.NoError(t, err)
		withPeriod, ok := st.WithDepartment(dept.ID).WithEmployee(ann.ID).WithPeriod(periods, "2024-02-26", "2024-03-10")
		require.True(t, ok)

		page, err := f.store.Shifts(ctx, withPeriod)
		require.NoError(t, err)
		require.Len(t, page.Content, 1)
		assert.Equal(t, carlJob.EmployeeJobID, page.Content[0].EmployeeJobID)
		assert.Equal(t, 1, f.srv.Hits(http.MethodGet, "/admin/shifts/period"))
		assert.Zero(t, f.srv.Hits(http.MethodGet, "/admin/shifts/department/"+itoaID(dept.ID)))
	})

	t.Run("search filters the department page", func(t *testing.T) {
		page, err := f.store.Shifts(ctx, st.WithDepartment(dept.ID).WithSearch("FORKLIFT"))
		require.NoError(t, err)
		require.Len(t, page.Content, 1)
		assert.Equal(t, bobJob.EmployeeJobID, page.Content[0].EmployeeJobID)
		// 总数仍是服务端的值
		assert.Equal(t, int64(3), page.TotalElements)
	})

	t.Run("status tab alone uses the status endpoint", func(t *testing.T) {
		page, err := f.store.Shifts(ctx, st.WithTab("ACTIVE"))
		require.NoError(t, err)
		require.Len(t, page.Content, 1)
		assert.True(t, page.Content[0].IsActive())
		assert.Equal(t, 1, f.srv.Hits(http.MethodGet, "/admin/shifts/status/ACTIVE"))
	})
}

func TestMutation_InvalidatesFamily(t *testing.T) {
	f := setup(t, fakeapi.Options{})
	ctx := context.Background()
	f.department(t, "Kitchen")

	page, err := f.store.Departments(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Content, 1)

	_, err = f.store.CreateDepartment(ctx, api.DepartmentRequest{Name: "Bar"})
	require.NoError(t, err)
	assert.NotEmpty(t, f.rec.Successes())

	page, err = f.store.Departments(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, page.Content, 2)
}

func TestMutation_ServerMessageIsShown(t *testing.T) {
	f := setup(t, fakeapi.Options{})
	dept := f.department(t, "Kitchen")
	f.employee(t, dept, "ann", nil)

	_, err := f.store.RegisterEmployee(context.Background(), api.RegisterEmployeeRequest{
		Name:         "Ann Again",
		Username:     "ann",
		Email:        "other@example.com",
		DepartmentID: dept.ID,
		Role:         domain.RoleEmployee,
	})
	assert.Equal(t, http.StatusConflict, api.StatusOf(err))
	assert.Equal(t, []string{"Username already exists"}, f.rec.Errors())
}

func TestCalculatePayments(t *testing.T) {
	f := setup(t, fakeapi.Options{})
	ctx := context.Background()
	dept := f.department(t, "Warehouse")
	picker := f.job(t, dept, "Picker", "20")
	_, annJob := f.employee(t, dept, "ann", picker)
	f.shift(t, annJob, "2024-02-27T09:00", "2024-02-27T17:00", "")
	f.shift(t, annJob, "2024-02-28T09:00", "2024-02-28T13:30", "")

	period, err := f.store.MostRecentCompletedPeriod(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-26", period.PeriodStart)

	res, err := f.store.CalculatePayments(ctx, *period)
	require.NoError(t, err)
	assert.Equal(t, 1, res.PaymentsCreated)
	assert.Equal(t, "250.00", res.TotalEarnings.StringFixed(2))

	// 重复计算得到相同的结果，不会产生重复记录
	res, err = f.store.CalculatePayments(ctx, *period)
	require.NoError(t, err)
	assert.Equal(t, 1, res.PaymentsCreated)

	st, ok := view.NewListState(view.PaymentsPolicy).WithPeriod([]domain.PaymentPeriod{*period}, period.PeriodStart, period.PeriodEnd)
	require.True(t, ok)
	payments, err := f.store.Payments(ctx, st)
	require.NoError(t, err)
	require.Len(t, payments.Content, 1)
	payment := payments.Content[0]
	assert.Equal(t, domain.PaymentStatusCalculated, payment.Status)
	assert.Equal(t, "12.5", payment.TotalHours.String())

	// 按周期查询时状态标签在客户端过滤
	payments, err = f.store.Payments(ctx, st.WithTab("ISSUED"))
	require.NoError(t, err)
	assert.Empty(t, payments.Content)

	// CALCULATED 不能直接变成 COMPLETED
	_, err = f.store.UpdatePaymentStatus(ctx, payment.ID, domain.PaymentStatusCompleted)
	assert.Equal(t, http.StatusBadRequest, api.StatusOf(err))

	_, err = f.store.UpdatePaymentStatus(ctx, payment.ID, domain.PaymentStatusIssued)
	require.NoError(t, err)
	payments, err = f.store.Payments(ctx, st.WithTab("ISSUED"))
	require.NoError(t, err)
	assert.Len(t, payments.Content, 1)
}

func TestCalculatePayments_RejectsConcurrentSubmit(t *testing.T) {
	f := setup(t, fakeapi.Options{Latency: 100 * time.Millisecond})
	ctx := context.Background()
	period := domain.PaymentPeriod{PeriodNumber: 5, PeriodStart: "2024-02-26", PeriodEnd: "2024-03-10"}

	errc := make(chan error, 1)
	go func() {
		_, err := f.store.CalculatePayments(ctx, period)
		errc <- err
	}()

	require.Eventually(t, func() bool {
		return f.srv.Hits(http.MethodPost, "/admin/payments/calculate-period") == 1
	}, time.Second, time.Millisecond)

	_, err := f.store.CalculatePayments(ctx, period)
	assert.ErrorIs(t, err, query.ErrMutationInFlight)
	require.NoError(t, <-errc)
	assert.Equal(t, 1, f.srv.Hits(http.MethodPost, "/admin/payments/calculate-period"))
}

func TestDashboard_SectionsFailIndependently(t *testing.T) {
	f := setup(t, fakeapi.Options{})
	f.srv.FailNext(http.MethodGet, "/periods/current", http.StatusServiceUnavailable, "")
	f.srv.FailNext(http.MethodGet, "/periods/current", http.StatusServiceUnavailable, "")

	d := f.store.Dashboard(context.Background())
	assert.Error(t, d.PeriodErr)
	assert.Nil(t, d.CurrentPeriod)
	assert.NoError(t, d.CountsErr)
	assert.NoError(t, d.ShiftsErr)
	assert.NoError(t, d.PaymentsErr)
	assert.Len(t, d.Errs(), 1)
}

func TestDepartmentEmployees_DisabledPickerSkipsRequest(t *testing.T) {
	f := setup(t, fakeapi.Options{})
	f.srv.ResetHits()

	emps, err := f.store.DepartmentEmployees(context.Background(), view.EmployeePicker{})
	require.NoError(t, err)
	assert.Nil(t, emps)
	assert.Zero(t, f.srv.TotalHits())
}

func TestBulkClockIn_SelectionToRequestBody(t *testing.T) {
	f := setup(t, fakeapi.Options{})
	ctx := context.Background()

	sel := view.NewSelection()
	sel.ToggleAll([]domain.Shift{{ID: 1, EmployeeJobID: 9}, {ID: 2, EmployeeJobID: 5}})
	bulk := form.BulkClockForm{IDs: sel.IDs(), Time: "2023-01-02T09:00", Notes: "  "}

	_, err := form.Submit(ctx, form.Must(form.New()), f.rec, bulk, func(ctx context.Context, bulk form.BulkClockForm) (*api.BulkClockResult, error) {
		return f.store.BulkClockIn(ctx, bulk.Request())
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.srv.Hits(http.MethodPost, "/admin/shifts/bulk/clock-in"))
	assert.JSONEq(t, `{"ids":[5,9],"time":"2023-01-02T09:00"}`,
		string(f.srv.LastBody(http.MethodPost, "/admin/shifts/bulk/clock-in")))
}

func TestBulkClockIn_EmptySelectionSendsNothing(t *testing.T) {
	f := setup(t, fakeapi.Options{})
	f.srv.ResetHits()

	bulk := form.BulkClockForm{IDs: view.NewSelection().IDs(), Time: "2023-01-02T09:00"}
	_, err := form.Submit(context.Background(), form.Must(form.New()), f.rec, bulk, func(ctx context.Context, bulk form.BulkClockForm) (*api.BulkClockResult, error) {
		return f.store.BulkClockIn(ctx, bulk.Request())
	})
	require.Error(t, err)
	assert.Equal(t, []string{"Please select at least one shift"}, f.rec.Errors())
	assert.Zero(t, f.srv.TotalHits())
}

func TestBulkClock_ReportsSucceededAndFailed(t *testing.T) {
	f := setup(t, fakeapi.Options{})
	ctx := context.Background()
	dept := f.department(t, "Kitchen")
	job := f.job(t, dept, "Cook", "20.00")
	_, a := f.employee(t, dept, "alice", job)
	_, b := f.employee(t, dept, "bob", job)
	_, c := f.employee(t, dept, "carol", job)

	_, err := f.admin.ClockIn(ctx, api.ClockRequest{EmployeeJobID: b.EmployeeJobID, Time: "2024-03-20T08:00"})
	require.NoError(t, err)

	ids := []int64{a.EmployeeJobID, b.EmployeeJobID, c.EmployeeJobID}
	res, err := f.store.BulkClockIn(ctx, api.BulkClockRequest{IDs: ids, Time: "2024-03-20T09:00"})
	require.NoError(t, err)
	assert.Len(t, res.Succeeded, 2)
	assert.Len(t, res.Failed, 1)

	res, err = f.store.BulkClockOut(ctx, api.BulkClockRequest{IDs: ids, Time: "2024-03-20T17:00"})
	require.NoError(t, err)
	assert.Len(t, res.Succeeded, 3)

	assert.Equal(t, []string{"Clocked in 2 assignments, 1 failed", "Clocked out 3 assignments"}, f.rec.Successes())
	assert.Empty(t, f.rec.Errors())
}
