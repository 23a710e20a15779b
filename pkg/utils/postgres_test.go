package utils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestWithTx_SignatureSmoke(t *testing.T) {
	// This test can't run without a real *sql.DB; keep it as a compile-time smoke test
	// for the helper signature.
	var _ TxFunc = func(ctx context.Context, tx *sql.Tx) error { return nil }
	var _ = WithTx
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	if !IsUniqueViolation(pgErr) {
		t.Fatalf("expected unique violation for code 23505")
	}
	if !IsUniqueViolation(fmt.Errorf("insert users: %w", pgErr)) {
		t.Fatalf("expected unique violation through wrapping")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if IsUniqueViolation(errors.New("ERROR: 23505 mentioned in text only")) {
		t.Fatalf("plain error text must not match")
	}
	if IsUniqueViolation(nil) {
		t.Fatalf("nil error must not match")
	}
}
