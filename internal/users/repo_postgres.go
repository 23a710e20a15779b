package users

import (
	"context"
	"database/sql"
	"time"

	"voicedesk/internal/plan"
	"voicedesk/pkg/utils"
)

// PostgresRepo persists users in the users table. The table carries a unique
// index on lower(email).
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const userColumns = `
id, org_id, email, name, password_hash, plan, billing, role, created_at, updated_at
`

func (r *PostgresRepo) Insert(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, u.OrgID, u.Email, u.Name, u.PasswordHash, u.Plan, u.Billing, u.Role,
		u.CreatedAt, u.UpdatedAt)
	if utils.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *PostgresRepo) FindByID(ctx context.Context, id string) (User, bool, error) {
	return r.findOne(ctx, `id = $1`, id)
}

func (r *PostgresRepo) FindByEmail(ctx context.Context, email string) (User, bool, error) {
	return r.findOne(ctx, `lower(email) = lower($1)`, email)
}

func (r *PostgresRepo) findOne(ctx context.Context, where string, arg any) (User, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE `+where, arg)
	var u User
	err := row.Scan(
		&u.ID, &u.OrgID, &u.Email, &u.Name, &u.PasswordHash, &u.Plan, &u.Billing,
		&u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

func (r *PostgresRepo) UpdatePlanMirror(ctx context.Context, userID, planName string, cycle plan.BillingCycle, updatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET plan = $2, billing = $3, updated_at = $4
		WHERE id = $1`,
		userID, planName, cycle, updatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
