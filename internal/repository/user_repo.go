package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizforge-backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, email, password_hash, full_name, is_active, plan, stripe_customer_id,
	daily_generation_count, last_reset_date, total_generation_count, created_at, last_login_at`

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, full_name, is_active, plan, last_reset_date)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_DATE)
		RETURNING created_at`

	user.ID = uuid.New()
	user.Plan = "free"
	user.IsActive = true

	return r.pool.QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FullName, user.IsActive, user.Plan,
	).Scan(&user.CreatedAt)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.IsActive,
		&user.Plan, &user.StripeCustomerID, &user.DailyGenerationCount, &user.LastResetDate,
		&user.TotalGenerationCount, &user.CreatedAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.IsActive,
		&user.Plan, &user.StripeCustomerID, &user.DailyGenerationCount, &user.LastResetDate,
		&user.TotalGenerationCount, &user.CreatedAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET last_login_at = $1 WHERE id = $2", time.Now(), userID)
	return err
}

// ResetDailyCount zeroes the daily counter and stamps the reset date. Called
// lazily on the first limit evaluation after a calendar-day boundary.
func (r *UserRepo) ResetDailyCount(ctx context.Context, userID uuid.UUID, resetDate time.Time) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE users SET daily_generation_count = 0, last_reset_date = $1 WHERE id = $2",
		resetDate, userID,
	)
	return err
}

// IncrementGenerationCounts bumps both the daily and lifetime counters.
// Read-modify-write without row locking; concurrent generations from the same
// user can race, which is accepted behavior for the free-tier cap.
func (r *UserRepo) IncrementGenerationCounts(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET daily_generation_count = daily_generation_count + 1,
			total_generation_count = total_generation_count + 1
		 WHERE id = $1`,
		userID,
	)
	return err
}

func (r *UserRepo) SetPlan(ctx context.Context, userID uuid.UUID, plan string) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET plan = $1 WHERE id = $2", plan, userID)
	return err
}

func (r *UserRepo) SetStripeCustomer(ctx context.Context, userID uuid.UUID, customerID string) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET stripe_customer_id = $1 WHERE id = $2", customerID, userID)
	return err
}

func (r *UserRepo) SetPlanByStripeCustomer(ctx context.Context, customerID, plan string) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET plan = $1 WHERE stripe_customer_id = $2", plan, customerID)
	return err
}
