package plan

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PostgresRepo stores plans in the plans table. Features are a JSONB column;
// they are read as a unit and never queried individually.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const planColumns = `
id, name, currency, monthly_price_minor, yearly_price_minor, included_minutes,
addon_minute_rate_minor, features, status, created_at, updated_at
`

func (r *PostgresRepo) FindByID(ctx context.Context, planID string) (Plan, bool, error) {
	q := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`
	p, err := scanPlan(r.db.QueryRowContext(ctx, q, planID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Plan{}, false, nil
		}
		return Plan{}, false, err
	}
	return p, true, nil
}

func (r *PostgresRepo) ListActive(ctx context.Context) ([]Plan, error) {
	q := `SELECT ` + planColumns + ` FROM plans WHERE status = $1 ORDER BY monthly_price_minor ASC`
	rows, err := r.db.QueryContext(ctx, q, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Insert(ctx context.Context, p Plan) error {
	const q = `
INSERT INTO plans (
  id, name, currency, monthly_price_minor, yearly_price_minor, included_minutes,
  addon_minute_rate_minor, features, status, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`
	features, err := json.Marshal(p.Features)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		p.ID, p.Name, p.Currency, p.MonthlyPriceMinor, p.YearlyPriceMinor,
		p.IncludedMinutes, p.AddOnMinuteRateMinor, features, p.Status,
		p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) Update(ctx context.Context, p Plan) error {
	const q = `
UPDATE plans SET
  name = $2, currency = $3, monthly_price_minor = $4, yearly_price_minor = $5,
  included_minutes = $6, addon_minute_rate_minor = $7, features = $8,
  status = $9, updated_at = $10
WHERE id = $1
`
	features, err := json.Marshal(p.Features)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		p.ID, p.Name, p.Currency, p.MonthlyPriceMinor, p.YearlyPriceMinor,
		p.IncludedMinutes, p.AddOnMinuteRateMinor, features, p.Status, p.UpdatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (Plan, error) {
	var p Plan
	var features []byte
	if err := row.Scan(
		&p.ID, &p.Name, &p.Currency, &p.MonthlyPriceMinor, &p.YearlyPriceMinor,
		&p.IncludedMinutes, &p.AddOnMinuteRateMinor, &features, &p.Status,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return Plan{}, err
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return Plan{}, err
		}
	}
	return p, nil
}
