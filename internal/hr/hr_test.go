package hr

import (
	"context"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/pawonsalam/restosuite/internal/auth"
	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/pawonsalam/restosuite/internal/repositories/memory"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *testclock.Clock) {
	clk := testclock.NewClock(time.Date(2024, 5, 17, 8, 0, 0, 0, time.UTC))
	store := memory.NewStore()
	svc := NewService(store.Users(), store.Restaurants(),
		auth.NewTokenIssuer("secret", 0, clk), auth.NewLoginThrottle(clk), clk)
	created, err := svc.Bootstrap(context.Background(), "owner@pawon.id", "owner-pass")
	require.NoError(t, err)
	require.True(t, created)
	return svc, clk
}

func newEmployee(email string) NewEmployee {
	return NewEmployee{
		Name:       "Siti",
		Email:      email,
		Password:   "rahasia",
		Role:       models.RoleStaffFOH,
		Position:   "Waiter",
		Salary:     decimal.NewFromInt(3500000),
		JoinDate:   "2024-02-01",
		Department: "Service",
	}
}

func TestBootstrapOnlyOnce(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Bootstrap(context.Background(), "other@pawon.id", "x")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestLogin(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	token, user, err := svc.Login(ctx, "owner@pawon.id", "owner-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.RoleOwner, user.Role)

	_, _, err = svc.Login(ctx, "nobody@pawon.id", "x")
	assert.Equal(t, ErrUserNotFound, err)

	_, _, err = svc.Login(ctx, "owner@pawon.id", "wrong")
	assert.Equal(t, ErrInvalidCredentials, err)

	// a failed attempt starts a cooldown
	_, _, err = svc.Login(ctx, "owner@pawon.id", "owner-pass")
	var throttled *ThrottledError
	require.True(t, errors.As(err, &throttled))
	assert.Equal(t, 2, throttled.WaitSeconds)

	clk.Advance(2 * time.Second)
	_, _, err = svc.Login(ctx, "owner@pawon.id", "owner-pass")
	require.NoError(t, err)
}

func TestLoginInactive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	emp, err := svc.CreateEmployee(ctx, newEmployee("siti@pawon.id"))
	require.NoError(t, err)
	require.NoError(t, svc.DeactivateEmployee(ctx, emp.ID))

	_, _, err = svc.Login(ctx, "siti@pawon.id", "rahasia")
	assert.Equal(t, ErrInactive, err)
}

func TestCreateEmployee(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	emp, err := svc.CreateEmployee(ctx, newEmployee("siti@pawon.id"))
	require.NoError(t, err)
	assert.True(t, emp.IsActive)
	require.NotNil(t, emp.EmployeeProfile)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), emp.EmployeeProfile.JoinDate)
	assert.NotEqual(t, "rahasia", emp.PasswordHash)

	_, err = svc.CreateEmployee(ctx, newEmployee("siti@pawon.id"))
	assert.Equal(t, ErrEmailInUse, err)

	missing := newEmployee("budi@pawon.id")
	missing.Department = ""
	_, err = svc.CreateEmployee(ctx, missing)
	assert.Equal(t, ErrMissingFields, err)

	zeroSalary := newEmployee("budi@pawon.id")
	zeroSalary.Salary = decimal.Zero
	_, err = svc.CreateEmployee(ctx, zeroSalary)
	assert.Equal(t, ErrMissingFields, err)

	badRole := newEmployee("budi@pawon.id")
	badRole.Role = "CHEF"
	_, err = svc.CreateEmployee(ctx, badRole)
	assert.Equal(t, ErrInvalidRole, err)

	badDate := newEmployee("budi@pawon.id")
	badDate.JoinDate = "kemarin"
	_, err = svc.CreateEmployee(ctx, badDate)
	assert.Equal(t, ErrInvalidJoinDate, err)
}

func TestListEmployeesExcludesOwners(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateEmployee(ctx, newEmployee("a@pawon.id"))
	require.NoError(t, err)
	clk.Advance(time.Minute)
	second, err := svc.CreateEmployee(ctx, newEmployee("b@pawon.id"))
	require.NoError(t, err)

	list, err := svc.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestUpdateAndDeactivate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	emp, err := svc.CreateEmployee(ctx, newEmployee("siti@pawon.id"))
	require.NoError(t, err)

	position := "Head Waiter"
	salary := decimal.NewFromInt(4000000)
	updated, err := svc.UpdateEmployee(ctx, emp.ID, models.EmployeePatch{Position: &position, Salary: &salary})
	require.NoError(t, err)
	assert.Equal(t, "Head Waiter", updated.EmployeeProfile.Position)
	assert.Equal(t, "Service", updated.EmployeeProfile.Department)
	assert.True(t, updated.EmployeeProfile.Salary.Equal(salary))

	bad := models.Role("CHEF")
	_, err = svc.UpdateEmployee(ctx, emp.ID, models.EmployeePatch{Role: &bad})
	assert.Equal(t, ErrInvalidRole, err)

	_, err = svc.UpdateEmployee(ctx, "missing", models.EmployeePatch{Position: &position})
	assert.Equal(t, ErrEmployeeNotFound, err)

	require.NoError(t, svc.DeactivateEmployee(ctx, emp.ID))
	got, err := svc.GetEmployee(ctx, emp.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, ErrEmployeeNotFound, svc.DeactivateEmployee(ctx, "missing"))
}

func TestDashboard(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, owner, err := svc.Login(ctx, "owner@pawon.id", "owner-pass")
	require.NoError(t, err)
	emp, err := svc.CreateEmployee(ctx, newEmployee("siti@pawon.id"))
	require.NoError(t, err)

	d, err := svc.Dashboard(ctx, auth.Principal{UserID: owner.ID, Role: owner.Role})
	require.NoError(t, err)
	assert.Equal(t, ViewOwner, d.View)
	assert.Equal(t, []string{"Dashboard", "Perusahaan & Cabang", "Karyawan", "Absensi & Jadwal",
		"Keuangan & Gaji", "Marketing & Events"}, labels(d.Sections))
	require.NotNil(t, d.Stats)
	assert.Equal(t, 1, d.Stats.TotalEmployees)

	d, err = svc.Dashboard(ctx, auth.Principal{UserID: emp.ID, Role: emp.Role})
	require.NoError(t, err)
	assert.Equal(t, ViewStaff, d.View)
	assert.Equal(t, "Selamat datang, Siti!", d.Greeting)
	assert.Equal(t, []string{"Dashboard", "Absensi & Jadwal", "Payslip Saya"}, labels(d.Sections))
	assert.Nil(t, d.Stats)
}

func labels(sections []Section) []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = s.Label
	}
	return out
}

func TestViewFor(t *testing.T) {
	tests := map[models.Role]string{
		models.RoleSuperAdmin:        ViewOwner,
		models.RoleOwner:             ViewOwner,
		models.RoleRestaurantManager: ViewManager,
		models.RoleStaffFOH:          ViewStaff,
		models.RoleStaffBOH:          ViewStaff,
		models.RoleHRManager:         ViewWelcome,
		models.RoleFinanceManager:    ViewWelcome,
		models.RoleMarketingManager:  ViewWelcome,
	}
	for role, view := range tests {
		assert.Equal(t, view, ViewFor(role), string(role))
	}
}
