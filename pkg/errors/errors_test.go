package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewAndIs(t *testing.T) {
	err := New(ErrCodeInvalidGraph, "duplicate node id %q", "a")
	if !Is(err, ErrCodeInvalidGraph) {
		t.Error("Is should match the code")
	}
	if Is(err, ErrCodeNotFound) {
		t.Error("Is should not match a different code")
	}
	if !strings.Contains(err.Error(), "INVALID_GRAPH") {
		t.Errorf("Error() = %q, want code prefix", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(ErrCodeRenderFailed, cause, "render frame")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match its cause via errors.Is")
	}
	if GetCode(err) != ErrCodeRenderFailed {
		t.Errorf("GetCode = %q, want RENDER_FAILED", GetCode(err))
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("Error() = %q, want cause text", err.Error())
	}
}

func TestGetCodeNonStructured(t *testing.T) {
	if GetCode(fmt.Errorf("plain")) != "" {
		t.Error("GetCode on plain error should be empty")
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidMode, "unknown layout mode %q", "spiral")
	if got := UserMessage(err); strings.Contains(got, "INVALID_MODE") {
		t.Errorf("UserMessage = %q, should omit the code", got)
	}
	plain := stderrors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}
