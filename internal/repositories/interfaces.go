package repositories

import (
	"context"

	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/pkg/errors"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// UserRepository stores HR accounts together with their employee profile.
// Reads fill in the restaurant name when the user belongs to one.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// ListByRoles returns users having any of roles, newest first.
	ListByRoles(ctx context.Context, roles []models.Role) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Count(ctx context.Context) (int, error)
	BulkCreate(ctx context.Context, users []*models.User) error
}

type RestaurantRepository interface {
	Create(ctx context.Context, restaurant *models.Restaurant) error
	GetAll(ctx context.Context) ([]*models.Restaurant, error)
}
