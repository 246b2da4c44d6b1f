package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{name: "decode", err: Decode("spans", "start_offset", "must be an integer"), target: ErrDecode},
		{name: "invalid argument", err: InvalidArgument("id must be 0, got %d", 7), target: ErrInvalidArgument},
		{name: "not found", err: NotFound("annotation %d", 3), target: ErrNotFound},
		{name: "conflict", err: Conflict("label %q exists", "A"), target: ErrConflict},
		{name: "forbidden", err: Forbidden("user %d is not a member", 3), target: ErrForbidden},
		{name: "transport", err: &TransportError{Method: "GET", Path: "/x", Status: 502, Err: errors.New("bad gateway")}, target: ErrTransport},
		{name: "wrapped decode", err: fmt.Errorf("failed to list: %w", Decode("bboxes", "x", "missing")), target: ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.target) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.target)
			}
		})
	}
}

func TestDecodeError_As(t *testing.T) {
	err := fmt.Errorf("wrap: %w", Decode("spans", "end_offset", "missing"))

	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatal("errors.As should find *DecodeError")
	}
	if de.Field != "end_offset" {
		t.Errorf("Field = %q, want end_offset", de.Field)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("decode error must not match ErrNotFound")
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TransportError{Method: "POST", Path: "/projects/1/examples/2/spans", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("TransportError should unwrap to its cause")
	}
	if err.Error() != "POST /projects/1/examples/2/spans: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
}
