package workflow

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := NewError(CodeFromFinalStatus, "document %s is in final status %s", "PO-001", "completed")
	want := "FROM_FINAL_STATUS: document PO-001 is in final status completed"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"coded error", NewError(CodeApprovalDenied, "no rule"), CodeApprovalDenied},
		{"wrapped coded error", fmt.Errorf("transition: %w", NewError(CodeToInitialStatus, "back to draft")), CodeToInitialStatus},
		{"plain error", errors.New("disk full"), CodePersistenceFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("engine: %w", NewError(CodeConcurrentModification, "version moved"))
	if !IsCode(err, CodeConcurrentModification) {
		t.Error("IsCode() should match through wrapping")
	}
	if IsCode(err, CodeApprovalDenied) {
		t.Error("IsCode() matched wrong code")
	}
	if IsCode(errors.New("plain"), CodePersistenceFailure) {
		t.Error("IsCode() should not match uncoded errors")
	}
}
