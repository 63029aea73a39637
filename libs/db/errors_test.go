package db

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestErrorClassification(t *testing.T) {
	wrapped := func(code string) error {
		return fmt.Errorf("insert appointment: %w", &pgconn.PgError{Code: code})
	}

	if !IsUniqueViolation(wrapped("23505")) {
		t.Fatal("expected unique violation")
	}
	if !IsExclusionViolation(wrapped("23P01")) {
		t.Fatal("expected exclusion violation")
	}
	if !IsForeignKeyViolation(wrapped("23503")) {
		t.Fatal("expected foreign key violation")
	}
	if !IsInvalidInput(wrapped("22P02")) {
		t.Fatal("expected invalid input")
	}
	if IsUniqueViolation(wrapped("23P01")) {
		t.Fatal("exclusion violation must not be classified as unique")
	}
	if !IsNotFound(fmt.Errorf("load: %w", pgx.ErrNoRows)) {
		t.Fatal("expected wrapped ErrNoRows to be not found")
	}
	if IsNotFound(nil) || IsUniqueViolation(nil) {
		t.Fatal("nil error must not match")
	}
}
