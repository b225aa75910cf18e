package form_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timetrak/client/internal/api"
	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/form"
	"github.com/timetrak/client/internal/notify"
)

func newValidator(t *testing.T) *form.Validator {
	t.Helper()
	v, err := form.New()
	require.NoError(t, err)
	return v
}

func TestShiftForm_StatusFollowsClockOut(t *testing.T) {
	active := form.ShiftForm{EmployeeJobID: 3, ClockIn: "2023-01-02T09:00"}.Request()
	assert.Equal(t, domain.ShiftStatusActive, active.Status)
	assert.Nil(t, active.ClockOut)

	completed := form.ShiftForm{EmployeeJobID: 3, ClockIn: "2023-01-02T09:00", ClockOut: "2023-01-02T17:30"}.Request()
	assert.Equal(t, domain.ShiftStatusCompleted, completed.Status)
	require.NotNil(t, completed.ClockOut)
	assert.Equal(t, "2023-01-02T17:30", *completed.ClockOut)

	// 只有空白的下班时间视为未填写
	blank := form.ShiftForm{EmployeeJobID: 3, ClockIn: "2023-01-02T09:00", ClockOut: "  "}.Request()
	assert.Equal(t, domain.ShiftStatusActive, blank.Status)
	assert.Nil(t, blank.ClockOut)
}

func TestShiftForm_ActiveShiftSendsNullClockOut(t *testing.T) {
	body, err := json.Marshal(form.ShiftForm{EmployeeJobID: 3, ClockIn: "2023-01-02T09:00"}.Request())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(body, &m))
	v, ok := m["clockOut"]
	assert.True(t, ok, "clockOut must be present")
	assert.Nil(t, v)
}

func TestShiftForm_Validate(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name    string
		form    form.ShiftForm
		field   string
		message string
	}{
		{
			name:    "missing assignment",
			form:    form.ShiftForm{ClockIn: "2023-01-02T09:00"},
			field:   "EmployeeJobID",
			message: "Please select an employee and job",
		},
		{
			name:  "bad clock-in",
			form:  form.ShiftForm{EmployeeJobID: 1, ClockIn: "2023-01-02 09:00"},
			field: "ClockIn",
		},
		{
			name:    "clock-out equals clock-in",
			form:    form.ShiftForm{EmployeeJobID: 1, ClockIn: "2023-01-02T09:00", ClockOut: "2023-01-02T09:00"},
			field:   "ClockOut",
			message: "Clock-out must be after clock-in",
		},
		{
			name:    "clock-out before clock-in",
			form:    form.ShiftForm{EmployeeJobID: 1, ClockIn: "2023-01-02T09:00", ClockOut: "2023-01-01T17:00"},
			field:   "ClockOut",
			message: "Clock-out must be after clock-in",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.form)
			var verr *form.ValidationError
			require.ErrorAs(t, err, &verr)
			msg, ok := verr.Field(tt.field)
			require.True(t, ok, "expected error on %s, got %v", tt.field, verr.Fields)
			if tt.message != "" {
				assert.Equal(t, tt.message, msg)
			}
		})
	}

	assert.NoError(t, v.Validate(form.ShiftForm{EmployeeJobID: 1, ClockIn: "2023-01-02T09:00", ClockOut: "2023-01-02T17:00"}))
	assert.NoError(t, v.Validate(form.ShiftForm{EmployeeJobID: 1, ClockIn: "2023-01-02T09:00"}))
}

func TestBulkClockForm_OmitsEmptyNotesAndReason(t *testing.T) {
	f := form.BulkClockForm{IDs: []int64{5, 9}, Time: "2023-01-02T09:00", Notes: " ", Reason: ""}
	require.NoError(t, newValidator(t).Validate(f))

	body, err := json.Marshal(f.Request())
	require.NoError(t, err)
	assert.JSONEq(t, `{"ids":[5,9],"time":"2023-01-02T09:00"}`, string(body))

	f.Notes, f.Reason = "late bus", "forgot"
	body, err = json.Marshal(f.Request())
	require.NoError(t, err)
	assert.JSONEq(t, `{"ids":[5,9],"time":"2023-01-02T09:00","notes":"late bus","reason":"forgot"}`, string(body))
}

func TestBulkClockForm_EmptySelection(t *testing.T) {
	err := newValidator(t).Validate(form.BulkClockForm{Time: "2023-01-02T09:00"})
	var verr *form.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Please select at least one shift", verr.UserMessage())
}

func TestSubmit_InvalidFormNeverCallsFn(t *testing.T) {
	v := newValidator(t)
	rec := &notify.Recorder{}

	called := false
	_, err := form.Submit(context.Background(), v, rec, form.InviteForm{ExpiresInDays: 7},
		func(context.Context, form.InviteForm) (*domain.Invite, error) {
			called = true
			return &domain.Invite{}, nil
		})

	require.Error(t, err)
	assert.False(t, called)
	assert.Equal(t, []string{"Please select a department"}, rec.Errors())
}

func TestSubmit_ValidFormCallsFn(t *testing.T) {
	v := newValidator(t)
	rec := &notify.Recorder{}

	got, err := form.Submit(context.Background(), v, rec, form.DepartmentForm{Name: " Kitchen "},
		func(_ context.Context, f form.DepartmentForm) (api.DepartmentRequest, error) {
			return f.Request(), nil
		})

	require.NoError(t, err)
	assert.Equal(t, "Kitchen", got.Name)
	assert.Empty(t, rec.Errors())
}

func TestInviteForm_Request(t *testing.T) {
	tests := []struct {
		name string
		form form.InviteForm
		want api.CreateInviteRequest
	}{
		{
			name: "single use overrides max uses",
			form: form.InviteForm{DepartmentID: "4", SingleUse: true, MaxUses: 10, ExpiresInDays: 7},
			want: api.CreateInviteRequest{DepartmentID: 4, MaxUses: 1, ExpiresInDays: 7},
		},
		{
			name: "zero max uses means one",
			form: form.InviteForm{DepartmentID: "4", ExpiresInDays: 30},
			want: api.CreateInviteRequest{DepartmentID: 4, MaxUses: 1, ExpiresInDays: 30},
		},
		{
			name: "multi use",
			form: form.InviteForm{DepartmentID: "12", MaxUses: 5, ExpiresInDays: 1},
			want: api.CreateInviteRequest{DepartmentID: 12, MaxUses: 5, ExpiresInDays: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.form.Request()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_FirstMessageAndOverrides(t *testing.T) {
	v := newValidator(t)

	err := v.Validate(form.InviteRegistrationForm{
		InviteCode:      "ABCD1234",
		Name:            "Jane Doe",
		Username:        "jane",
		Email:           "jane@example.com",
		Password:        "password1",
		ConfirmPassword: "password2",
	})
	var verr *form.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Passwords do not match", verr.UserMessage())

	err = v.Validate(form.LoginForm{})
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
	assert.Equal(t, "Username is a required field", verr.UserMessage())
}

func TestJobForm_Wage(t *testing.T) {
	v := newValidator(t)

	f := form.JobForm{Title: "Cook", HourlyWage: decimal.RequireFromString("18.456"), DepartmentID: 1}
	require.NoError(t, v.Validate(f))
	assert.Equal(t, "18.46", f.Request().HourlyWage.StringFixed(2))

	f.HourlyWage = decimal.Zero
	assert.Error(t, v.Validate(f))
}

func TestWageOverrideForm_NilClears(t *testing.T) {
	assert.Nil(t, form.WageOverrideForm{}.Request().HourlyWage)

	w := decimal.RequireFromString("21.5")
	req := form.WageOverrideForm{HourlyWage: &w}.Request()
	require.NotNil(t, req.HourlyWage)
	assert.True(t, req.HourlyWage.Equal(w))
}
