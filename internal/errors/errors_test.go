package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError(t *testing.T) {
	err := New("TEST_001", "test error")

	if err.Code != "TEST_001" {
		t.Errorf("expected code TEST_001, got %s", err.Code)
	}
	if err.Message != "test error" {
		t.Errorf("expected message 'test error', got %s", err.Message)
	}
	if err.Kind != KindInternal {
		t.Errorf("expected unknown code to be internal, got %s", err.Kind)
	}
}

func TestAppErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := New("TEST_001", "test error", cause)

	if err.Cause != cause {
		t.Errorf("expected cause to be set")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "underlying error") {
		t.Errorf("expected error string to contain cause, got %s", errStr)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := New("TEST_001", "test error", cause)

	unwrapped := err.Unwrap()
	if unwrapped != cause {
		t.Errorf("expected unwrap to return cause")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := From(ErrTransport, fmt.Errorf("dial tcp: connection refused"))
	wrapped := fmt.Errorf("list vaccinations: %w", err)

	if !stderrors.Is(wrapped, ErrTransport) {
		t.Error("expected wrapped transport error to match ErrTransport")
	}
	if stderrors.Is(wrapped, ErrShape) {
		t.Error("transport error must not match ErrShape")
	}
}

func TestGetKind(t *testing.T) {
	tests := []struct {
		err  error
		kind Kind
	}{
		{From(ErrTransport, nil), KindTransport},
		{fmt.Errorf("ctx: %w", ErrNoToken), KindAuth},
		{From(ErrShape, fmt.Errorf("bad json")), KindShape},
		{Input("Please enter dosage"), KindInput},
		{fmt.Errorf("plain"), KindInternal},
	}

	for _, tt := range tests {
		if got := GetKind(tt.err); got != tt.kind {
			t.Errorf("GetKind(%v) = %s, want %s", tt.err, got, tt.kind)
		}
	}
}

func TestIsAppError(t *testing.T) {
	appErr := New("TEST_001", "test error")
	stdErr := fmt.Errorf("standard error")

	if !IsAppError(appErr) {
		t.Error("expected IsAppError to return true for AppError")
	}
	if !IsAppError(fmt.Errorf("wrapped: %w", appErr)) {
		t.Error("expected IsAppError to see through wrapping")
	}
	if IsAppError(stdErr) {
		t.Error("expected IsAppError to return false for standard error")
	}
}

func TestGetCode(t *testing.T) {
	appErr := New("TEST_001", "test error")
	stdErr := fmt.Errorf("standard error")

	if GetCode(appErr) != "TEST_001" {
		t.Errorf("expected code TEST_001, got %s", GetCode(appErr))
	}
	if GetCode(stdErr) != "UNKNOWN" {
		t.Errorf("expected code UNKNOWN for standard error, got %s", GetCode(stdErr))
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrap(cause, "SHAPE_001", "vaccination record")

	if err.Code != "SHAPE_001" {
		t.Errorf("expected code SHAPE_001, got %s", err.Code)
	}
	if err.Kind != KindShape {
		t.Errorf("expected shape kind, got %s", err.Kind)
	}
	if err.Cause != cause {
		t.Error("expected cause to be set")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(Input("Please enter medicine name")); got != "Please enter medicine name" {
		t.Errorf("unexpected user message %q", got)
	}
	if got := UserMessage(fmt.Errorf("boom")); got != "boom" {
		t.Errorf("unexpected user message %q", got)
	}
}

func TestPredefinedErrors(t *testing.T) {
	if ErrConfigNotFound.Code != "CONFIG_001" {
		t.Errorf("unexpected code for ErrConfigNotFound")
	}
	if ErrNoToken.Kind != KindAuth {
		t.Errorf("unexpected kind for ErrNoToken")
	}
	if ErrUnauthorized.Code != "AUTH_003" {
		t.Errorf("unexpected code for ErrUnauthorized")
	}
}
