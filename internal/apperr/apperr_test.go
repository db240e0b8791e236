package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"plain error", errors.New("boom"), Internal},
		{"validation", Validationf("votes must be non-negative"), Validation},
		{"not found", NotFoundf("todo not found: %s", "t1"), NotFound},
		{"wrapped", fmt.Errorf("process: update: %w", Unauthorizedf("role VIEWER cannot modify")), Unauthorized},
		{"unauthenticated", Unauthenticatedf("no user"), Unauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	cause := errors.New("disk full")
	tests := []struct {
		err  *Error
		want string
	}{
		{New(Validation, "title is required"), "title is required"},
		{Wrap(Internal, cause, "save todo %s", "t1"), "save todo t1: disk full"},
		{&Error{Kind: NotFound}, "not_found"},
		{&Error{Err: cause}, "disk full"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestWrap_Unwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(Internal, cause, "save")
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestIs(t *testing.T) {
	if Is(nil, Internal) {
		t.Error("nil error should not match any kind")
	}
	if !Is(Validationf("x"), Validation) {
		t.Error("expected Validation")
	}
}
