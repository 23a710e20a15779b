package calllog

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"voicedesk/pkg/utils"
)

// PostgresRepo persists call logs in the call_logs table.
//
// Serialization: Reconcile takes a per-call advisory transaction lock before
// reading, so two webhook deliveries for the same call_id never interleave
// their read-modify-write — including the case where the row does not exist
// yet (a plain FOR UPDATE cannot lock an absent row).
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const callLogColumns = `
id, org_id, call_id, type, status, started_at, ended_at, minutes, cost,
customer_number, assistant_id, assistant_name, assistant_first_message,
assistant_voice_provider, assistant_voice_id, event_rank, created_at, updated_at
`

func (r *PostgresRepo) Reconcile(ctx context.Context, callID string, fn ReconcileFunc) error {
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, callID); err != nil {
			return err
		}

		cur, ok, err := findByCallIDTx(ctx, tx, callID)
		if err != nil {
			return err
		}
		if !ok {
			cur = nil
		}

		next, err := fn(cur)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		if ok {
			return updateTx(ctx, tx, next)
		}
		return insertTx(ctx, tx, next)
	})
}

func (r *PostgresRepo) Insert(ctx context.Context, log *CallLog) error {
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		err := insertTx(ctx, tx, log)
		if err != nil && isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	})
}

func (r *PostgresRepo) FindByCallID(ctx context.Context, callID string) (*CallLog, bool, error) {
	q := `SELECT ` + callLogColumns + ` FROM call_logs WHERE call_id = $1`
	row := r.db.QueryRowContext(ctx, q, callID)
	log, err := scanCallLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return log, true, nil
}

func (r *PostgresRepo) List(ctx context.Context, orgID string, f ListFilter) ([]CallLog, error) {
	q := `SELECT ` + callLogColumns + ` FROM call_logs WHERE org_id = $1`
	args := []any{orgID}

	if !f.From.IsZero() {
		args = append(args, f.From)
		q += ` AND created_at >= $` + itoa(len(args))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		q += ` AND created_at < $` + itoa(len(args))
	}
	if f.AssistantID != "" {
		args = append(args, f.AssistantID)
		q += ` AND assistant_id = $` + itoa(len(args))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		q += ` AND type = $` + itoa(len(args))
	}
	q += ` ORDER BY created_at DESC`
	limit := f.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > 0 {
		args = append(args, limit)
		q += ` LIMIT $` + itoa(len(args))
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CallLog
	for rows.Next() {
		log, err := scanCallLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *log)
	}
	return out, rows.Err()
}

func findByCallIDTx(ctx context.Context, tx *sql.Tx, callID string) (*CallLog, bool, error) {
	q := `SELECT ` + callLogColumns + ` FROM call_logs WHERE call_id = $1`
	log, err := scanCallLog(tx.QueryRowContext(ctx, q, callID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return log, true, nil
}

func insertTx(ctx context.Context, tx *sql.Tx, l *CallLog) error {
	const q = `
INSERT INTO call_logs (
  id, org_id, call_id, type, status, started_at, ended_at, minutes, cost,
  customer_number, assistant_id, assistant_name, assistant_first_message,
  assistant_voice_provider, assistant_voice_id, event_rank, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18
)
`
	snap := l.Assistant
	if snap == nil {
		snap = &AssistantSnapshot{}
	}
	_, err := tx.ExecContext(ctx, q,
		l.ID,
		l.OrgID,
		l.CallID,
		l.Type,
		l.Status,
		l.StartedAt,
		l.EndedAt,
		l.Minutes,
		l.Cost,
		nullIfEmpty(l.CustomerNumber),
		nullIfEmpty(l.AssistantID),
		snap.Name,
		snap.FirstMessage,
		snap.VoiceProvider,
		snap.VoiceID,
		l.EventRank,
		l.CreatedAt,
		l.UpdatedAt,
	)
	return err
}

func updateTx(ctx context.Context, tx *sql.Tx, l *CallLog) error {
	const q = `
UPDATE call_logs SET
  status = $2, started_at = $3, ended_at = $4, minutes = $5, cost = $6,
  customer_number = $7, assistant_id = $8, assistant_name = $9,
  assistant_first_message = $10, assistant_voice_provider = $11,
  assistant_voice_id = $12, event_rank = $13, updated_at = $14
WHERE call_id = $1
`
	snap := l.Assistant
	if snap == nil {
		snap = &AssistantSnapshot{}
	}
	_, err := tx.ExecContext(ctx, q,
		l.CallID,
		l.Status,
		l.StartedAt,
		l.EndedAt,
		l.Minutes,
		l.Cost,
		nullIfEmpty(l.CustomerNumber),
		nullIfEmpty(l.AssistantID),
		snap.Name,
		snap.FirstMessage,
		snap.VoiceProvider,
		snap.VoiceID,
		l.EventRank,
		l.UpdatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCallLog(row rowScanner) (*CallLog, error) {
	var l CallLog
	var customerNumber, assistantID sql.NullString
	var snapName, snapFirstMessage, snapVoiceProvider, snapVoiceID sql.NullString
	if err := row.Scan(
		&l.ID,
		&l.OrgID,
		&l.CallID,
		&l.Type,
		&l.Status,
		&l.StartedAt,
		&l.EndedAt,
		&l.Minutes,
		&l.Cost,
		&customerNumber,
		&assistantID,
		&snapName,
		&snapFirstMessage,
		&snapVoiceProvider,
		&snapVoiceID,
		&l.EventRank,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	l.CustomerNumber = customerNumber.String
	l.AssistantID = assistantID.String
	if snapName.String != "" || snapFirstMessage.String != "" || snapVoiceProvider.String != "" || snapVoiceID.String != "" {
		l.Assistant = &AssistantSnapshot{
			Name:          snapName.String,
			FirstMessage:  snapFirstMessage.String,
			VoiceProvider: snapVoiceProvider.String,
			VoiceID:       snapVoiceID.String,
		}
	}
	return &l, nil
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

func itoa(n int) string { return strconv.Itoa(n) }
