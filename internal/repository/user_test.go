package repository

import (
	"errors"
	"strings"
	"testing"
)

func TestNewUserRepository(t *testing.T) {
	repo := NewUserRepository(nil)
	if repo == nil {
		t.Fatal("expected non-nil UserRepository")
	}
	if repo.db != nil {
		t.Fatal("expected nil db when constructed with nil")
	}
}

func TestSentinelErrors(t *testing.T) {
	if ErrUserNotFound.Error() != "user not found" {
		t.Fatalf("unexpected error message: %s", ErrUserNotFound.Error())
	}
	if ErrDuplicateEmail.Error() != "email already exists" {
		t.Fatalf("unexpected error message: %s", ErrDuplicateEmail.Error())
	}
	if ErrAlreadySaved.Error() != "recipe already saved" {
		t.Fatalf("unexpected error message: %s", ErrAlreadySaved.Error())
	}
}

func TestIsDuplicateEntryError(t *testing.T) {
	if isDuplicateEntryError(nil) {
		t.Fatal("nil error should not be a duplicate entry error")
	}
	if isDuplicateEntryError(ErrUserNotFound) {
		t.Fatal("ErrUserNotFound should not be a duplicate entry error")
	}
	mysqlErr := errors.New("Error 1062 (23000): Duplicate entry 'a@b.c' for key 'users.email'")
	if !isDuplicateEntryError(mysqlErr) {
		t.Fatal("expected MySQL 1062 error to be a duplicate entry error")
	}
}

func TestSchemaCoversTables(t *testing.T) {
	want := []string{"users", "user_preferences", "saved_recipes", "revoked_tokens"}
	if len(schema) != len(want) {
		t.Fatalf("expected %d schema statements, got %d", len(want), len(schema))
	}
	for i, table := range want {
		if !strings.Contains(schema[i], "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Fatalf("statement %d does not create %s", i, table)
		}
	}
}
