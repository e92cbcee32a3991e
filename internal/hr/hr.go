// Package hr implements login, the employee roster and the role dashboard
// of the restaurant management app.
package hr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/juju/clock"
	"github.com/lucsky/cuid"
	"github.com/pawonsalam/restosuite/internal/auth"
	"github.com/pawonsalam/restosuite/internal/logger"
	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/pawonsalam/restosuite/internal/repositories"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInactive           = errors.New("account is inactive")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidJoinDate    = errors.New("invalid join date")
	ErrEmailInUse         = errors.New("email already in use")
	ErrEmployeeNotFound   = errors.New("employee not found")
)

// ThrottledError is returned while an email is cooling down after failed
// logins.
type ThrottledError struct {
	WaitSeconds int
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("too many failed attempts, retry in %d seconds", e.WaitSeconds)
}

type Service struct {
	users       repositories.UserRepository
	restaurants repositories.RestaurantRepository
	tokens      *auth.TokenIssuer
	throttle    *auth.LoginThrottle
	clock       clock.Clock
}

func NewService(users repositories.UserRepository, restaurants repositories.RestaurantRepository,
	tokens *auth.TokenIssuer, throttle *auth.LoginThrottle, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Service{users: users, restaurants: restaurants, tokens: tokens, throttle: throttle, clock: clk}
}

// Login checks credentials and issues a token. Unknown emails, inactive
// accounts and wrong passwords fail with distinct errors.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	if wait := s.throttle.WaitSeconds(email); wait > 0 {
		return "", nil, &ThrottledError{WaitSeconds: wait}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", nil, ErrUserNotFound
	}
	if err != nil {
		return "", nil, errors.Wrap(err, "looking up user")
	}
	if !user.IsActive {
		return "", nil, ErrInactive
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		s.throttle.RecordFailure(email)
		logger.GetLogger().Infow("failed login", "email", email)
		return "", nil, ErrInvalidCredentials
	}
	s.throttle.RecordSuccess(email)

	token, err := s.tokens.Issue(auth.Principal{UserID: user.ID, Role: user.Role, RestaurantID: user.RestaurantID})
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *Service) Me(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// NewEmployee is the body of an employee creation request.
type NewEmployee struct {
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Password     string          `json:"password"`
	Phone        string          `json:"phone"`
	Role         models.Role     `json:"role"`
	Position     string          `json:"position"`
	Salary       decimal.Decimal `json:"salary"`
	JoinDate     string          `json:"joinDate"`
	RestaurantID *string         `json:"restaurantId"`
	Department   string          `json:"department"`
}

func parseJoinDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidJoinDate
}

func (s *Service) ListEmployees(ctx context.Context) ([]*models.User, error) {
	return s.users.ListByRoles(ctx, models.EmployeeRoles)
}

func (s *Service) CreateEmployee(ctx context.Context, in NewEmployee) (*models.User, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" ||
		in.Role == "" || in.Position == "" || in.Salary.IsZero() || in.JoinDate == "" || in.Department == "" {
		return nil, ErrMissingFields
	}
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	joinDate, err := parseJoinDate(in.JoinDate)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, errors.Wrap(err, "checking email")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, errors.Wrap(err, "hashing password")
	}
	now := s.clock.Now().UTC()
	user := &models.User{
		ID:           cuid.New(),
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		Phone:        in.Phone,
		Role:         in.Role,
		IsActive:     true,
		RestaurantID: in.RestaurantID,
		CreatedAt:    now,
		UpdatedAt:    now,
		EmployeeProfile: &models.EmployeeProfile{
			Position:   in.Position,
			Salary:     in.Salary,
			JoinDate:   joinDate,
			Department: in.Department,
		},
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, ErrEmailInUse
		}
		return nil, errors.Wrap(err, "creating employee")
	}
	return user, nil
}

func (s *Service) GetEmployee(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrEmployeeNotFound
	}
	return user, err
}

func (s *Service) UpdateEmployee(ctx context.Context, id string, patch models.EmployeePatch) (*models.User, error) {
	if patch.Role != nil && !patch.Role.Valid() {
		return nil, ErrInvalidRole
	}
	user, err := s.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := patch.Apply(*user)
	updated.UpdatedAt = s.clock.Now().UTC()
	if err := s.users.Update(ctx, &updated); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, errors.Wrap(err, "updating employee")
	}
	return &updated, nil
}

// DeactivateEmployee is a soft delete: the account stays but can no longer
// log in.
func (s *Service) DeactivateEmployee(ctx context.Context, id string) error {
	inactive := false
	_, err := s.UpdateEmployee(ctx, id, models.EmployeePatch{IsActive: &inactive})
	return err
}

// Bootstrap creates the first OWNER account when no user exists yet.
func (s *Service) Bootstrap(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	n, err := s.users.Count(ctx)
	if err != nil {
		return false, errors.Wrap(err, "counting users")
	}
	if n > 0 {
		return false, nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	now := s.clock.Now().UTC()
	err = s.users.Create(ctx, &models.User{
		ID:           cuid.New(),
		Name:         "Owner",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleOwner,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return false, errors.Wrap(err, "creating owner")
	}
	return true, nil
}
