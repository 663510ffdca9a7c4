package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFound_MatchesSentinel(t *testing.T) {
	err := NotFound("Case", "abc123")

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFound() should match ErrNotFound")
	}
	if err.Message != "Case with ID: abc123 not found" {
		t.Errorf("Message = %q, want %q", err.Message, "Case with ID: abc123 not found")
	}
}

func TestNotFound_SurvivesWrapping(t *testing.T) {
	// Services wrap repository errors with %w; errors.Is must still see
	// the sentinel through the chain.
	wrapped := fmt.Errorf("fetching case: %w", NotFound("Case", "xyz"))

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("wrapped NotFound should still match ErrNotFound")
	}

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As should extract *AppError from the chain")
	}
	if appErr.Message == "" {
		t.Error("extracted AppError has empty message")
	}
}

func TestConflict(t *testing.T) {
	err := Conflict("Case with that title already exists")

	if !errors.Is(err, ErrConflict) {
		t.Error("Conflict() should match ErrConflict")
	}
	if err.Error() != "Case with that title already exists" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestInvalidCredentials_UniformMessage(t *testing.T) {
	// Two separate constructions must produce the identical message — the
	// login flow relies on this to not leak which check failed.
	a := InvalidCredentials()
	b := InvalidCredentials()

	if a.Message != b.Message {
		t.Errorf("messages differ: %q vs %q", a.Message, b.Message)
	}
	if !errors.Is(a, ErrInvalidCredentials) {
		t.Error("InvalidCredentials() should match ErrInvalidCredentials")
	}
}

func TestMethodNotSupported_NamesTheMethod(t *testing.T) {
	err := MethodNotSupported("DELETE")

	if !errors.Is(err, ErrMethodNotSupported) {
		t.Error("should match ErrMethodNotSupported")
	}
	if err.Message != "Method: DELETE is not supported" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestDispatchFailed_KeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := DispatchFailed(cause)

	if !errors.Is(err, ErrDispatchFailed) {
		t.Error("should match ErrDispatchFailed")
	}
	if !errors.Is(err, cause) {
		t.Error("underlying cause should remain in the chain")
	}
}
