package subscription

import (
	"context"
	"database/sql"
	"time"

	"voicedesk/internal/plan"
	"voicedesk/pkg/utils"
)

// PostgresRepo persists subscriptions and add-on purchases.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const subscriptionColumns = `
id, org_id, user_id, plan_id, billing_cycle, status, start_date, end_date,
additional_minutes, created_at, updated_at
`

func (r *PostgresRepo) FindActiveByUser(ctx context.Context, userID string) (Subscription, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1`, userID, StatusActive)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return Subscription{}, false, nil
	}
	if err != nil {
		return Subscription{}, false, err
	}
	return sub, true, nil
}

func (r *PostgresRepo) Insert(ctx context.Context, sub Subscription) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		sub.ID, sub.OrgID, sub.UserID, sub.PlanID, sub.BillingCycle, sub.Status,
		sub.StartDate, sub.EndDate, sub.AdditionalMinutes, sub.CreatedAt, sub.UpdatedAt)
	return err
}

func (r *PostgresRepo) UpdatePlan(ctx context.Context, subID, planID string, cycle plan.BillingCycle, endDate, updatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET plan_id = $2, billing_cycle = $3, end_date = $4, updated_at = $5
		WHERE id = $1`,
		subID, planID, cycle, endDate, updatedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepo) UpdateStatus(ctx context.Context, subID string, status Status, updatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET status = $2, updated_at = $3
		WHERE id = $1`,
		subID, status, updatedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// AddMinutes increments the subscription's minute balance and records the
// purchase in one transaction. The row lock serializes concurrent top-ups.
func (r *PostgresRepo) AddMinutes(ctx context.Context, subID string, purchase AddOnPurchase, updatedAt time.Time) (Subscription, error) {
	var sub Subscription
	err := utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			UPDATE subscriptions
			SET additional_minutes = additional_minutes + $2, updated_at = $3
			WHERE id = $1
			RETURNING `+subscriptionColumns,
			subID, purchase.Minutes, updatedAt)
		var err error
		sub, err = scanSubscription(row)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO addon_purchases (id, subscription_id, minutes, price_minor, purchased_at)
			VALUES ($1, $2, $3, $4, $5)`,
			purchase.ID, purchase.SubscriptionID, purchase.Minutes, purchase.PriceMinor, purchase.PurchasedAt)
		return err
	})
	if err != nil {
		return Subscription{}, err
	}
	return sub, nil
}

func (r *PostgresRepo) ListAddOns(ctx context.Context, subID string) ([]AddOnPurchase, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, subscription_id, minutes, price_minor, purchased_at
		FROM addon_purchases
		WHERE subscription_id = $1
		ORDER BY purchased_at DESC`, subID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AddOnPurchase
	for rows.Next() {
		var p AddOnPurchase
		if err := rows.Scan(&p.ID, &p.SubscriptionID, &p.Minutes, &p.PriceMinor, &p.PurchasedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (Subscription, error) {
	var sub Subscription
	err := row.Scan(
		&sub.ID, &sub.OrgID, &sub.UserID, &sub.PlanID, &sub.BillingCycle, &sub.Status,
		&sub.StartDate, &sub.EndDate, &sub.AdditionalMinutes, &sub.CreatedAt, &sub.UpdatedAt)
	return sub, err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
