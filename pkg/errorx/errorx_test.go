package errorx

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeAndMessage(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(cause, CodeRequest, "Network error")

	if GetCode(err) != CodeRequest || !IsRequest(err) {
		t.Fatalf("code = %d", GetCode(err))
	}
	if Message(err) != "Network error" {
		t.Fatalf("Message = %q", Message(err))
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause not unwrapped")
	}

	wrapped := fmt.Errorf("load rooms: %w", err)
	if GetCode(wrapped) != CodeRequest || Message(wrapped) != "Network error" {
		t.Fatal("code lost through fmt wrapping")
	}
}

func TestPlainErrors(t *testing.T) {
	err := errors.New("boom")
	if GetCode(err) != CodeServerBusy || Message(err) != "boom" {
		t.Fatalf("code=%d msg=%q", GetCode(err), Message(err))
	}
	if IsValidation(nil) || Message(nil) != "" {
		t.Fatal("nil error misclassified")
	}
}

func TestKinds(t *testing.T) {
	if !IsValidation(Newf(CodeInvalidParam, "query must be at least %d characters", 3)) {
		t.Fatal("validation not detected")
	}
	if !IsTransport(ErrNotConnected) || IsTransport(ErrNoIdentity) {
		t.Fatal("transport misclassified")
	}
	if !IsNotFound(New(CodeNotFound, "User not found")) {
		t.Fatal("not found misclassified")
	}
}

func TestErrorText(t *testing.T) {
	if got := New(CodeNotFound, "Room not found").Error(); got != "Room not found" {
		t.Fatalf("Error = %q", got)
	}
	err := Wrapf(errors.New("timeout"), CodeRequest, "Failed to load %s", "rooms")
	if got := err.Error(); got != "Failed to load rooms: timeout" {
		t.Fatalf("Error = %q", got)
	}
	if !IsNotFound(fmt.Errorf("ctx: %w", New(CodeNotFound, "x"))) || IsNotFound(err) {
		t.Fatal("IsNotFound")
	}
}
