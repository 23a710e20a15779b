package assistant

import (
	"context"
	"database/sql"
)

// PostgresRepo persists assistant mirrors in the assistants table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const assistantColumns = `
id, org_id, user_id, name, first_message, model_provider, model,
system_prompt, voice_provider, voice_id, created_at, updated_at
`

func (r *PostgresRepo) Insert(ctx context.Context, a Assistant) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO assistants (`+assistantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.OrgID, a.UserID, a.Name, a.FirstMessage, a.ModelProvider, a.Model,
		a.SystemPrompt, a.VoiceProvider, a.VoiceID, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r *PostgresRepo) Update(ctx context.Context, a Assistant) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE assistants
		SET name = $2, first_message = $3, model_provider = $4, model = $5,
		    system_prompt = $6, voice_provider = $7, voice_id = $8, updated_at = $9
		WHERE id = $1`,
		a.ID, a.Name, a.FirstMessage, a.ModelProvider, a.Model,
		a.SystemPrompt, a.VoiceProvider, a.VoiceID, a.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assistants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepo) FindByID(ctx context.Context, id string) (Assistant, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+assistantColumns+`
		FROM assistants
		WHERE id = $1`, id)
	a, err := scanAssistant(row)
	if err == sql.ErrNoRows {
		return Assistant{}, false, nil
	}
	if err != nil {
		return Assistant{}, false, err
	}
	return a, true, nil
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string) ([]Assistant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+assistantColumns+`
		FROM assistants
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Assistant
	for rows.Next() {
		a, err := scanAssistant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssistant(row rowScanner) (Assistant, error) {
	var a Assistant
	err := row.Scan(
		&a.ID, &a.OrgID, &a.UserID, &a.Name, &a.FirstMessage, &a.ModelProvider, &a.Model,
		&a.SystemPrompt, &a.VoiceProvider, &a.VoiceID, &a.CreatedAt, &a.UpdatedAt)
	return a, err
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
