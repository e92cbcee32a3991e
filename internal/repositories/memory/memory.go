// Package memory implements the repositories in process memory for tests and
// single-node demos.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/pawonsalam/restosuite/internal/repositories"
)

type Store struct {
	mu          sync.RWMutex
	users       map[string]*models.User
	restaurants map[string]*models.Restaurant
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]*models.User),
		restaurants: make(map[string]*models.Restaurant),
	}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}

func (s *Store) Restaurants() *RestaurantRepository {
	return &RestaurantRepository{s: s}
}

type UserRepository struct {
	s *Store
}

// copyUser detaches stored users from callers and joins the restaurant name.
func (s *Store) copyUser(u *models.User) *models.User {
	c := *u
	if u.EmployeeProfile != nil {
		p := *u.EmployeeProfile
		c.EmployeeProfile = &p
	}
	if u.RestaurantID != nil {
		rid := *u.RestaurantID
		c.RestaurantID = &rid
		if r, ok := s.restaurants[rid]; ok {
			c.Restaurant = &models.RestaurantRef{Name: r.Name}
		}
	}
	return &c
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = strings.TrimSpace(email)
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return r.s.copyUser(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return r.s.copyUser(u), nil
}

func (r *UserRepository) ListByRoles(_ context.Context, roles []models.Role) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		wanted[role] = true
	}
	users := []*models.User{}
	for _, u := range r.s.users {
		if wanted[u.Role] {
			users = append(users, r.s.copyUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID > users[j].ID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (r *UserRepository) insert(u *models.User) error {
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repositories.ErrDuplicateEmail
		}
	}
	stored := r.s.copyUser(u)
	stored.Restaurant = nil
	r.s.users[u.ID] = stored
	return nil
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.insert(user)
}

func (r *UserRepository) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored := r.s.copyUser(user)
	stored.Email = existing.Email
	stored.PasswordHash = existing.PasswordHash
	stored.CreatedAt = existing.CreatedAt
	stored.Restaurant = nil
	r.s.users[user.ID] = stored
	return nil
}

func (r *UserRepository) Count(context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users), nil
}

// BulkCreate inserts all users or none.
func (r *UserRepository) BulkCreate(_ context.Context, users []*models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := make(map[string]bool, len(users))
	for _, existing := range r.s.users {
		seen[strings.ToLower(existing.Email)] = true
	}
	for _, u := range users {
		key := strings.ToLower(u.Email)
		if seen[key] {
			return repositories.ErrDuplicateEmail
		}
		seen[key] = true
	}
	for _, u := range users {
		if err := r.insert(u); err != nil {
			return err
		}
	}
	return nil
}

type RestaurantRepository struct {
	s *Store
}

func (r *RestaurantRepository) Create(_ context.Context, restaurant *models.Restaurant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *restaurant
	r.s.restaurants[restaurant.ID] = &c
	return nil
}

func (r *RestaurantRepository) GetAll(context.Context) ([]*models.Restaurant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.Restaurant, 0, len(r.s.restaurants))
	for _, restaurant := range r.s.restaurants {
		c := *restaurant
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
