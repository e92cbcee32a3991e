package factories

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/shopspring/decimal"
)

var fake = faker.New()

type roleProfile struct {
	weight     float64
	department string
	positions  []string
	minSalary  int64 // monthly, rupiah
	maxSalary  int64
}

// most of a restaurant's roster works the floor or the kitchen
var roleProfiles = map[models.Role]roleProfile{
	models.RoleStaffFOH: {0.40, "Service", []string{"Waiter", "Waitress", "Cashier", "Host"}, 3000000, 4500000},
	models.RoleStaffBOH: {0.35, "Kitchen", []string{"Cook", "Chef", "Dishwasher", "Barista"}, 3200000, 6000000},
	models.RoleRestaurantManager: {0.10, "Operations", []string{"Restaurant Manager", "Assistant Manager"},
		7000000, 12000000},
	models.RoleHRManager:        {0.05, "Human Resources", []string{"HR Manager", "HR Officer"}, 6500000, 11000000},
	models.RoleFinanceManager:   {0.05, "Finance", []string{"Finance Manager", "Accountant"}, 7000000, 12500000},
	models.RoleMarketingManager: {0.05, "Marketing", []string{"Marketing Manager", "Social Media Officer"}, 6000000, 10000000},
}

type EmployeeFactory struct {
	// PasswordHash is shared by every generated account; hashing per user
	// would dominate seeding time.
	PasswordHash string
	emailCache   sync.Map
}

// CreateEmployee builds an active employee with a profile, assigned to one of
// restaurants when any are given.
func (ef *EmployeeFactory) CreateEmployee(restaurants []*models.Restaurant, now time.Time) *models.User {
	role := ef.assignRole()
	profile := roleProfiles[role]
	name := fake.Person().Name()

	var restaurantID *string
	if len(restaurants) > 0 {
		id := restaurants[rand.Intn(len(restaurants))].ID
		restaurantID = &id
	}

	// salaries are rounded to the nearest 50k like real offer letters
	salary := fake.Int64Between(profile.minSalary, profile.maxSalary) / 50000 * 50000
	joinDate := now.AddDate(0, 0, -fake.IntBetween(30, 5*365)).Truncate(24 * time.Hour)

	return &models.User{
		ID:           cuid.New(),
		Name:         name,
		Email:        ef.createUniqueEmail(name),
		PasswordHash: ef.PasswordHash,
		Phone:        fake.Phone().Number(),
		Role:         role,
		IsActive:     rand.Float64() > 0.05,
		RestaurantID: restaurantID,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
		EmployeeProfile: &models.EmployeeProfile{
			Position:   profile.positions[rand.Intn(len(profile.positions))],
			Salary:     decimal.NewFromInt(salary),
			JoinDate:   joinDate.UTC(),
			Department: profile.department,
		},
	}
}

func (ef *EmployeeFactory) assignRole() models.Role {
	weights := make([]float64, len(models.EmployeeRoles))
	totalWeight := 0.0
	for i, role := range models.EmployeeRoles {
		weights[i] = roleProfiles[role].weight
		totalWeight += weights[i]
	}
	return selectWeighted(models.EmployeeRoles, weights, totalWeight)
}

func selectWeighted(roles []models.Role, weights []float64, totalWeight float64) models.Role {
	r := rand.Float64() * totalWeight
	currentSum := 0.0

	for i, role := range roles {
		currentSum += weights[i]
		if r <= currentSum {
			return role
		}
	}
	return roles[len(roles)-1]
}

func (ef *EmployeeFactory) createUniqueEmail(name string) string {
	local := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		if r == ' ' {
			return '.'
		}
		return -1
	}, strings.ToLower(name))
	if local == "" {
		local = "staff"
	}

	email := local + "@pawonsalam.id"
	counter := 2
	for {
		if _, exists := ef.emailCache.LoadOrStore(email, true); !exists {
			return email
		}
		email = fmt.Sprintf("%s%d@pawonsalam.id", local, counter)
		counter++
	}
}
