package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pawonsalam/restosuite/internal/models"
)

type RestaurantRepository struct {
	pool *pgxpool.Pool
}

func NewRestaurantRepository(pool *pgxpool.Pool) *RestaurantRepository {
	return &RestaurantRepository{pool: pool}
}

func (r *RestaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO restaurants (id, name, created_at) VALUES ($1, $2, $3)`,
		restaurant.ID, restaurant.Name, restaurant.CreatedAt,
	)
	return err
}

func (r *RestaurantRepository) GetAll(ctx context.Context) ([]*models.Restaurant, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM restaurants ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	restaurants := []*models.Restaurant{}
	for rows.Next() {
		restaurant := &models.Restaurant{}
		if err := rows.Scan(&restaurant.ID, &restaurant.Name, &restaurant.CreatedAt); err != nil {
			return nil, err
		}
		restaurants = append(restaurants, restaurant)
	}
	return restaurants, rows.Err()
}
