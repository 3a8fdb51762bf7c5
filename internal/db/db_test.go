package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	uniqueErr := &pq.Error{Code: "23505"}
	if !IsUniqueViolation(uniqueErr) {
		t.Error("23505 should be a unique violation")
	}
	if !IsUniqueViolation(fmt.Errorf("insert user: %w", uniqueErr)) {
		t.Error("wrapped 23505 should be a unique violation")
	}
	if IsUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("23503 is not a unique violation")
	}
	if IsUniqueViolation(errors.New("connection refused")) {
		t.Error("plain errors are not unique violations")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	fkErr := &pq.Error{Code: "23503"}
	if !IsForeignKeyViolation(fkErr) {
		t.Error("23503 should be a foreign-key violation")
	}
	if !IsForeignKeyViolation(fmt.Errorf("insert project: %w", fkErr)) {
		t.Error("wrapped 23503 should be a foreign-key violation")
	}
	if IsForeignKeyViolation(&pq.Error{Code: "23505"}) {
		t.Error("23505 is not a foreign-key violation")
	}
	if IsForeignKeyViolation(errors.New("connection refused")) {
		t.Error("plain errors are not foreign-key violations")
	}
}
