package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrInvariantViolation, "tokenizer", "lists diverge: %d != %d", 3, 2)
	wrapped := fmt.Errorf("running pipeline: %w", err)

	if !errors.Is(wrapped, ErrInvariantViolation) {
		t.Fatal("expected wrapped error to match ErrInvariantViolation")
	}
	if got := Stage(wrapped); got != "tokenizer" {
		t.Errorf("expected stage tokenizer, got %q", got)
	}
	if !strings.Contains(err.Error(), "lists diverge: 3 != 2") {
		t.Errorf("message missing from %q", err.Error())
	}
}

func TestForDocumentIncludesContext(t *testing.T) {
	err := ForDocument(ErrInvalidInput, "dataset", "doc-7", "bad line")
	msg := err.Error()
	for _, want := range []string{"invalid input", "stage=dataset", "document=doc-7", "bad line"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"configuration", New(ErrConfiguration, "config", "bad selector"), ExitConfiguration},
		{"invariant", New(ErrInvariantViolation, "scorer", "order 5"), ExitInvariant},
		{"input", fmt.Errorf("reading: %w", ErrInvalidInput), ExitInput},
		{"other", errors.New("boom"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWarningString(t *testing.T) {
	w := Warning{DocumentID: "d1", Field: "abstract", Message: "empty after sponsor removal"}
	if !strings.Contains(w.String(), "d1") || !strings.Contains(w.String(), "abstract") {
		t.Errorf("unexpected warning text %q", w.String())
	}
}
