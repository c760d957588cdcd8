package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseParse,
				Kind:   KindInvalidData,
				Token:  "COLMETADATA",
				Offset: 17,
				Detail: "column count exceeds limit",
			},
			contains: []string{"[parse]", "invalid_data", "COLMETADATA", "offset 17", "column count exceeds limit"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDispatch,
				Kind:  KindUnknownToken,
			},
			contains: []string{"[dispatch]", "unknown_token"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseStream,
				Kind:   KindTruncated,
				Detail: "stream ended",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[stream]", "truncated", "stream ended", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseParse,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDispatch,
		Kind:  KindUnknownToken,
		Token: "FOO",
	}

	// Same phase and kind
	if !err.Is(&Error{Phase: PhaseDispatch, Kind: KindUnknownToken}) {
		t.Error("Is should match same phase and kind")
	}

	// Different phase
	if err.Is(&Error{Phase: PhaseParse, Kind: KindUnknownToken}) {
		t.Error("Is should not match different phase")
	}

	// Different kind
	if err.Is(&Error{Phase: PhaseDispatch, Kind: KindInvalidData}) {
		t.Error("Is should not match different kind")
	}

	// Non-Error target
	if err.Is(errors.New("plain")) {
		t.Error("Is should not match a plain error")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("bad byte")
	err := New(PhaseParse, KindInvalidData).
		Token("ENVCHANGE").
		Offset(5).
		Value(byte(0x99)).
		Detail("sub-kind %d out of range", 0x99).
		Cause(cause).
		Build()

	if err.Phase != PhaseParse {
		t.Errorf("Phase = %q, want %q", err.Phase, PhaseParse)
	}
	if err.Kind != KindInvalidData {
		t.Errorf("Kind = %q, want %q", err.Kind, KindInvalidData)
	}
	if err.Token != "ENVCHANGE" {
		t.Errorf("Token = %q, want ENVCHANGE", err.Token)
	}
	if err.Offset != 5 {
		t.Errorf("Offset = %d, want 5", err.Offset)
	}
	if v, ok := err.Value.(byte); !ok || v != 0x99 {
		t.Errorf("Value = %v, want 0x99", err.Value)
	}
	if !strings.Contains(err.Detail, "153") {
		t.Errorf("Detail = %q, want formatted sub-kind", err.Detail)
	}
	if !errors.Is(err, cause) {
		t.Error("built error should wrap cause")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		phase    Phase
		kind     Kind
		contains string
	}{
		{"UnknownToken", UnknownToken(0x42), PhaseDispatch, KindUnknownToken, "0x42"},
		{"UnsupportedType", UnsupportedType("ROW", "amount", 0x3C), PhaseParse, KindUnsupportedType, "0x3C"},
		{"Overflow", Overflow("ROW", 1<<30, 1<<21), PhaseStream, KindOverflow, "exceeds limit"},
		{"Truncated", Truncated("DONE", 8, 3), PhaseStream, KindTruncated, "3 buffered"},
		{"InvalidData", InvalidData("ORDER", "odd byte length"), PhaseParse, KindInvalidData, "odd byte length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("Phase = %q, want %q", tt.err.Phase, tt.phase)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", tt.err.Kind, tt.kind)
			}
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("message %q does not contain %q", tt.err.Error(), tt.contains)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("io failed")
	err := Wrap(PhaseStream, KindTruncated, cause, "mid-token")

	if !errors.Is(err, cause) {
		t.Error("wrapped error should match cause")
	}
	if !errors.Is(err, &Error{Phase: PhaseStream, Kind: KindTruncated}) {
		t.Error("wrapped error should match phase/kind")
	}
}
