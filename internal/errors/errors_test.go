package errors

import (
	"errors"
	"testing"
)

type storageError struct {
	Driver string
}

func (e storageError) Error() string { return e.Driver + " unavailable" }

func TestWrap(t *testing.T) {
	if Wrap(nil, "secret db-password") != nil {
		t.Fatal("wrapping nil must return nil")
	}

	wrapped := Wrap(ErrNotFound, "secret db-password")
	if wrapped.Error() != "secret db-password: not found" {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
	if !Is(wrapped, ErrNotFound) {
		t.Error("wrapped error must match ErrNotFound")
	}

	// Each layer keeps the sentinel reachable
	twice := Wrap(wrapped, "backup")
	if !Is(twice, ErrNotFound) || Is(twice, ErrConflict) {
		t.Error("double wrapped error must only match ErrNotFound")
	}
}

func TestWrapf(t *testing.T) {
	if Wrapf(nil, "key %s", "signing") != nil {
		t.Fatal("wrapping nil must return nil")
	}

	wrapped := Wrapf(ErrInvalidOperation, "key %s version %d", "signing", 2)
	if wrapped.Error() != "key signing version 2: invalid operation" {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
	if !Is(wrapped, ErrInvalidOperation) {
		t.Error("wrapped error must match ErrInvalidOperation")
	}
}

func TestAs(t *testing.T) {
	err := Wrap(storageError{Driver: "postgres"}, "list secrets")

	var target storageError
	if !As(err, &target) {
		t.Fatal("expected As to find storageError")
	}
	if target.Driver != "postgres" {
		t.Errorf("expected driver postgres, got %q", target.Driver)
	}

	if As(New("plain"), &target) {
		t.Error("a plain error must not match storageError")
	}
}

func TestStandardErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrConflict,
		ErrInvalidInput,
		ErrInvalidOperation,
		ErrNotImplemented,
		ErrDecryptionFailed,
		ErrUnauthorized,
		ErrForbidden,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if (i == j) != errors.Is(a, b) {
				t.Errorf("errors.Is(%v, %v) = %v", a, b, errors.Is(a, b))
			}
		}
	}
}
