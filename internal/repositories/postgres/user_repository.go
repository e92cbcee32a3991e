package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/pawonsalam/restosuite/internal/repositories"
	"github.com/shopspring/decimal"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const selectUser = `
    SELECT
        u.id, u.name, u.email, u.password_hash, u.phone, u.role, u.is_active,
        u.restaurant_id, u.photo_url, u.created_at, u.updated_at,
        p.position, p.salary::text, p.join_date, p.department,
        r.name
    FROM users u
    LEFT JOIN employee_profiles p ON p.user_id = u.id
    LEFT JOIN restaurants r ON r.id = u.restaurant_id`

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		user           models.User
		role           string
		position       *string
		salary         *string
		joinDate       *time.Time
		department     *string
		restaurantName *string
	)
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Phone,
		&role,
		&user.IsActive,
		&user.RestaurantID,
		&user.PhotoURL,
		&user.CreatedAt,
		&user.UpdatedAt,
		&position,
		&salary,
		&joinDate,
		&department,
		&restaurantName,
	)
	if err != nil {
		return nil, err
	}
	user.Role = models.Role(role)

	if position != nil {
		profile := &models.EmployeeProfile{Position: *position}
		if salary != nil {
			profile.Salary, err = decimal.NewFromString(*salary)
			if err != nil {
				return nil, fmt.Errorf("invalid salary for user %s: %w", user.ID, err)
			}
		}
		if joinDate != nil {
			profile.JoinDate = *joinDate
		}
		if department != nil {
			profile.Department = *department
		}
		user.EmployeeProfile = profile
	}
	if restaurantName != nil {
		user.Restaurant = &models.RestaurantRef{Name: *restaurantName}
	}
	return &user, nil
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, selectUser+" WHERE "+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "lower(u.email) = lower($1)", strings.TrimSpace(email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "u.id = $1", id)
}

func (r *UserRepository) ListByRoles(ctx context.Context, roles []models.Role) ([]*models.User, error) {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}

	rows, err := r.pool.Query(ctx, selectUser+" WHERE u.role = ANY($1) ORDER BY u.created_at DESC", names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func insertUser(ctx context.Context, tx pgx.Tx, user *models.User) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO users (
            id, name, email, password_hash, phone, role, is_active,
            restaurant_id, photo_url, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Phone,
		string(user.Role),
		user.IsActive,
		user.RestaurantID,
		user.PhotoURL,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return repositories.ErrDuplicateEmail
	}
	return err
}

func upsertProfile(ctx context.Context, tx pgx.Tx, userID string, p *models.EmployeeProfile) error {
	if p == nil {
		return nil
	}
	_, err := tx.Exec(ctx, `
        INSERT INTO employee_profiles (user_id, position, salary, join_date, department)
        VALUES ($1, $2, $3::numeric, $4, $5)
        ON CONFLICT (user_id) DO UPDATE SET
            position = EXCLUDED.position,
            salary = EXCLUDED.salary,
            join_date = EXCLUDED.join_date,
            department = EXCLUDED.department`,
		userID, p.Position, p.Salary.String(), p.JoinDate, p.Department,
	)
	return err
}

// Create inserts the user and its profile in one transaction.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return execTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		return upsertProfile(ctx, tx, user.ID, user.EmployeeProfile)
	})
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return execTxWithRetry(ctx, r.pool, 3, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
            UPDATE users SET
                name = $2, phone = $3, role = $4, is_active = $5,
                restaurant_id = $6, photo_url = $7, updated_at = $8
            WHERE id = $1`,
			user.ID,
			user.Name,
			user.Phone,
			string(user.Role),
			user.IsActive,
			user.RestaurantID,
			user.PhotoURL,
			user.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repositories.ErrNotFound
		}
		return upsertProfile(ctx, tx, user.ID, user.EmployeeProfile)
	})
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// numericFromDecimal keeps every digit of d for the binary COPY protocol.
func numericFromDecimal(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return n, nil
}

// BulkCreate loads users and profiles with COPY.
func (r *UserRepository) BulkCreate(ctx context.Context, users []*models.User) error {
	userRows := make([][]interface{}, 0, len(users))
	profileRows := make([][]interface{}, 0, len(users))
	for _, u := range users {
		userRows = append(userRows, []interface{}{
			u.ID, u.Name, u.Email, u.PasswordHash, u.Phone, string(u.Role), u.IsActive,
			u.RestaurantID, u.PhotoURL, u.CreatedAt, u.UpdatedAt,
		})
		if p := u.EmployeeProfile; p != nil {
			salary, err := numericFromDecimal(p.Salary)
			if err != nil {
				return fmt.Errorf("salary for %s: %w", u.ID, err)
			}
			profileRows = append(profileRows, []interface{}{u.ID, p.Position, salary, p.JoinDate, p.Department})
		}
	}

	return execTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"users"},
			[]string{"id", "name", "email", "password_hash", "phone", "role", "is_active",
				"restaurant_id", "photo_url", "created_at", "updated_at"},
			pgx.CopyFromRows(userRows),
		)
		if isUniqueViolation(err) {
			return repositories.ErrDuplicateEmail
		}
		if err != nil {
			return fmt.Errorf("copy users: %w", err)
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"employee_profiles"},
			[]string{"user_id", "position", "salary", "join_date", "department"},
			pgx.CopyFromRows(profileRows),
		)
		if err != nil {
			return fmt.Errorf("copy employee profiles: %w", err)
		}
		return nil
	})
}
