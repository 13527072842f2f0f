package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	pberrors "github.com/kbukum/gopocket/errors"
)

func newMockSQL(t *testing.T) (*SQL, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	s, err := NewSQL(sqlx.NewDb(db, "postgres"), "")
	if err != nil {
		t.Fatalf("NewSQL failed: %v", err)
	}
	return s, mock
}

const upsertQuery = "INSERT INTO pb_auth_state (name, value) VALUES ($1, $2) ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value"

func TestSQL_PostgresPlaceholders(t *testing.T) {
	s, _ := newMockSQL(t)
	if s.getQuery != "SELECT value FROM pb_auth_state WHERE name = $1" {
		t.Errorf("unexpected get query %q", s.getQuery)
	}
	if s.upsertQuery != upsertQuery {
		t.Errorf("expected upsert query %q, got %q", upsertQuery, s.upsertQuery)
	}
}

func TestSQL_SQLitePlaceholders(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	s, err := NewSQL(sqlx.NewDb(db, "sqlite3"), "tokens")
	if err != nil {
		t.Fatalf("NewSQL failed: %v", err)
	}
	want := "INSERT INTO tokens (name, value) VALUES (?, ?) ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value"
	if s.upsertQuery != want {
		t.Errorf("expected upsert query %q, got %q", want, s.upsertQuery)
	}
}

func TestSQL_Get(t *testing.T) {
	s, mock := newMockSQL(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT value FROM pb_auth_state WHERE name = $1").
		WithArgs("pb_auth").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("T"))
	mock.ExpectQuery("SELECT value FROM pb_auth_state WHERE name = $1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	v, ok, err := s.Get(ctx, "pb_auth")
	if err != nil || !ok || v != "T" {
		t.Errorf("expected T, got %q ok=%v err=%v", v, ok, err)
	}
	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Errorf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSQL_SetIsSingleUpsert(t *testing.T) {
	s, mock := newMockSQL(t)
	ctx := context.Background()

	mock.ExpectExec(upsertQuery).
		WithArgs("pb_auth", "T").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(upsertQuery).
		WithArgs("pb_auth", "T2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Set(ctx, "pb_auth", "T"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "pb_auth", "T2"); err != nil {
		t.Fatalf("second Set failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSQL_SetError(t *testing.T) {
	s, mock := newMockSQL(t)

	mock.ExpectExec(upsertQuery).
		WithArgs("pb_auth", "T").
		WillReturnError(errors.New("connection reset"))

	err := s.Set(context.Background(), "pb_auth", "T")
	if !pberrors.IsStorageAccess(err) {
		t.Fatalf("expected storage access error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSQL_DeleteAndEnsureTable(t *testing.T) {
	s, mock := newMockSQL(t)
	ctx := context.Background()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS pb_auth_state (name VARCHAR(255) PRIMARY KEY, value TEXT NOT NULL)").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM pb_auth_state WHERE name = $1").
		WithArgs("pb_auth").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.EnsureTable(ctx); err != nil {
		t.Fatalf("EnsureTable failed: %v", err)
	}
	if err := s.Delete(ctx, "pb_auth"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestNewSQL_RejectsBadTable(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	if _, err := NewSQL(sqlx.NewDb(db, "postgres"), "auth; DROP TABLE users"); !pberrors.IsStorageAccess(err) {
		t.Errorf("expected storage access error, got %v", err)
	}
}

func TestOpenSQL_RequiresDSN(t *testing.T) {
	if _, err := OpenSQL(context.Background(), SQLConfig{Driver: "postgres"}); !pberrors.IsStorageAccess(err) {
		t.Errorf("expected storage access error, got %v", err)
	}
}
