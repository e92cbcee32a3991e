package hr

import (
	"context"

	"github.com/pawonsalam/restosuite/internal/auth"
	"github.com/pawonsalam/restosuite/internal/models"
)

const (
	ViewOwner   = "owner"
	ViewManager = "manager"
	ViewStaff   = "staff"
	ViewWelcome = "welcome"
)

type Section struct {
	Label string        `json:"label"`
	Path  string        `json:"path"`
	Roles []models.Role `json:"-"`
}

var sections = []Section{
	{Label: "Dashboard", Path: "/", Roles: models.AllRoles},
	{Label: "Perusahaan & Cabang", Path: "/restaurants", Roles: []models.Role{
		models.RoleSuperAdmin, models.RoleOwner}},
	{Label: "Karyawan", Path: "/employees", Roles: []models.Role{
		models.RoleSuperAdmin, models.RoleOwner, models.RoleHRManager, models.RoleRestaurantManager}},
	{Label: "Absensi & Jadwal", Path: "/attendance", Roles: []models.Role{
		models.RoleOwner, models.RoleHRManager, models.RoleRestaurantManager, models.RoleStaffFOH, models.RoleStaffBOH}},
	{Label: "Keuangan & Gaji", Path: "/finance", Roles: []models.Role{
		models.RoleOwner, models.RoleFinanceManager}},
	{Label: "Payslip Saya", Path: "/payslip", Roles: []models.Role{
		models.RoleStaffFOH, models.RoleStaffBOH, models.RoleRestaurantManager, models.RoleHRManager}},
	{Label: "Marketing & Events", Path: "/marketing", Roles: []models.Role{
		models.RoleOwner, models.RoleMarketingManager}},
}

// SectionsFor lists the navigation entries visible to role, in menu order.
func SectionsFor(role models.Role) []Section {
	out := []Section{}
	for _, s := range sections {
		for _, r := range s.Roles {
			if r == role {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func ViewFor(role models.Role) string {
	switch role {
	case models.RoleSuperAdmin, models.RoleOwner:
		return ViewOwner
	case models.RoleRestaurantManager:
		return ViewManager
	case models.RoleStaffFOH, models.RoleStaffBOH:
		return ViewStaff
	default:
		return ViewWelcome
	}
}

type Stats struct {
	TotalEmployees  int `json:"totalEmployees"`
	ActiveEmployees int `json:"activeEmployees"`
}

type Dashboard struct {
	View     string    `json:"view"`
	Greeting string    `json:"greeting"`
	Sections []Section `json:"sections"`
	Stats    *Stats    `json:"stats,omitempty"`
}

// Dashboard builds the landing page for the authenticated user. Owners and
// managers also get roster counts.
func (s *Service) Dashboard(ctx context.Context, p auth.Principal) (Dashboard, error) {
	user, err := s.Me(ctx, p.UserID)
	if err != nil {
		return Dashboard{}, err
	}
	d := Dashboard{
		View:     ViewFor(user.Role),
		Greeting: "Selamat datang, " + user.Name + "!",
		Sections: SectionsFor(user.Role),
	}
	if d.View == ViewOwner || d.View == ViewManager {
		employees, err := s.ListEmployees(ctx)
		if err != nil {
			return Dashboard{}, err
		}
		stats := &Stats{TotalEmployees: len(employees)}
		for _, e := range employees {
			if e.IsActive {
				stats.ActiveEmployees++
			}
		}
		d.Stats = stats
	}
	return d, nil
}
