package phone

import (
	"context"
	"database/sql"

	"voicedesk/pkg/utils"
)

// PostgresRepo persists phone numbers in the phone_numbers table. The table
// carries a unique index on number.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const phoneColumns = `
id, org_id, user_id, provider_number_id, number, provider, assistant_id,
created_at, updated_at
`

func (r *PostgresRepo) Insert(ctx context.Context, n PhoneNumber) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO phone_numbers (`+phoneColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, n.OrgID, n.UserID, n.ProviderNumberID, n.Number, n.Provider,
		nullIfEmpty(n.AssistantID), n.CreatedAt, n.UpdatedAt)
	if err != nil && isUniqueViolation(err) {
		return ErrNumberTaken
	}
	return err
}

func (r *PostgresRepo) Update(ctx context.Context, n PhoneNumber) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE phone_numbers
		SET assistant_id = $2, updated_at = $3
		WHERE id = $1`,
		n.ID, nullIfEmpty(n.AssistantID), n.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM phone_numbers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepo) FindByID(ctx context.Context, id string) (PhoneNumber, bool, error) {
	return r.findOne(ctx, `id = $1`, id)
}

func (r *PostgresRepo) FindByNumber(ctx context.Context, number string) (PhoneNumber, bool, error) {
	return r.findOne(ctx, `number = $1`, number)
}

func (r *PostgresRepo) findOne(ctx context.Context, where string, arg any) (PhoneNumber, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+phoneColumns+`
		FROM phone_numbers
		WHERE `+where, arg)
	n, err := scanPhone(row)
	if err == sql.ErrNoRows {
		return PhoneNumber{}, false, nil
	}
	if err != nil {
		return PhoneNumber{}, false, err
	}
	return n, true, nil
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string) ([]PhoneNumber, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+phoneColumns+`
		FROM phone_numbers
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PhoneNumber
	for rows.Next() {
		n, err := scanPhone(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhone(row rowScanner) (PhoneNumber, error) {
	var n PhoneNumber
	var assistantID sql.NullString
	err := row.Scan(
		&n.ID, &n.OrgID, &n.UserID, &n.ProviderNumberID, &n.Number, &n.Provider,
		&assistantID, &n.CreatedAt, &n.UpdatedAt)
	n.AssistantID = assistantID.String
	return n, err
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	return utils.IsUniqueViolation(err)
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
