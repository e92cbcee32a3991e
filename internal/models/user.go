package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleSuperAdmin        Role = "SUPER_ADMIN"
	RoleOwner             Role = "OWNER"
	RoleHRManager         Role = "HR_MANAGER"
	RoleRestaurantManager Role = "RESTAURANT_MANAGER"
	RoleFinanceManager    Role = "FINANCE_MANAGER"
	RoleMarketingManager  Role = "MARKETING_MANAGER"
	RoleStaffFOH          Role = "STAFF_FOH"
	RoleStaffBOH          Role = "STAFF_BOH"
)

// EmployeeRoles is the set of roles listed on the employee table.
var EmployeeRoles = []Role{
	RoleHRManager,
	RoleRestaurantManager,
	RoleFinanceManager,
	RoleMarketingManager,
	RoleStaffFOH,
	RoleStaffBOH,
}

var AllRoles = []Role{
	RoleSuperAdmin,
	RoleOwner,
	RoleHRManager,
	RoleRestaurantManager,
	RoleFinanceManager,
	RoleMarketingManager,
	RoleStaffFOH,
	RoleStaffBOH,
}

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if role == r {
			return true
		}
	}
	return false
}

type EmployeeProfile struct {
	Position   string          `json:"position"`
	Salary     decimal.Decimal `json:"salary"`
	JoinDate   time.Time       `json:"joinDate"`
	Department string          `json:"department"`
}

type User struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Email           string           `json:"email"`
	PasswordHash    string           `json:"-"`
	Phone           string           `json:"phone,omitempty"`
	Role            Role             `json:"role"`
	IsActive        bool             `json:"isActive"`
	RestaurantID    *string          `json:"restaurantId,omitempty"`
	PhotoURL        string           `json:"photoUrl,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	EmployeeProfile *EmployeeProfile `json:"employeeProfile,omitempty"`
	Restaurant      *RestaurantRef   `json:"restaurant,omitempty"`
}

// EmployeePatch is the typed partial update accepted by PATCH /api/employees/{id}.
type EmployeePatch struct {
	Name       *string          `json:"name,omitempty"`
	Phone      *string          `json:"phone,omitempty"`
	Role       *Role            `json:"role,omitempty"`
	IsActive   *bool            `json:"isActive,omitempty"`
	Position   *string          `json:"position,omitempty"`
	Salary     *decimal.Decimal `json:"salary,omitempty"`
	Department *string          `json:"department,omitempty"`
}

// Apply returns a copy of user with the patch applied. The profile is created when missing.
func (p EmployeePatch) Apply(user User) User {
	if p.Name != nil {
		user.Name = *p.Name
	}
	if p.Phone != nil {
		user.Phone = *p.Phone
	}
	if p.Role != nil {
		user.Role = *p.Role
	}
	if p.IsActive != nil {
		user.IsActive = *p.IsActive
	}
	if p.Position == nil && p.Salary == nil && p.Department == nil {
		return user
	}
	var profile EmployeeProfile
	if user.EmployeeProfile != nil {
		profile = *user.EmployeeProfile
	}
	if p.Position != nil {
		profile.Position = *p.Position
	}
	if p.Salary != nil {
		profile.Salary = *p.Salary
	}
	if p.Department != nil {
		profile.Department = *p.Department
	}
	user.EmployeeProfile = &profile
	return user
}
