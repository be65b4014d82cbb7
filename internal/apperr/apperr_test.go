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
		{"precondition", Precondition("no owner"), KindPrecondition},
		{"validation", Validation(map[string]string{"name": "required"}), KindValidation},
		{"not found", NotFound("gone"), KindNotFound},
		{"conflict", Conflict("taken"), KindConflict},
		{"backend", Backend("insert", errors.New("down")), KindBackend},
		{"wrapped typed error", fmt.Errorf("outer: %w", NotFound("gone")), KindNotFound},
		{"untyped error", errors.New("plain"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("got kind %d, want %d", got, tt.want)
			}
			if !IsKind(tt.err, tt.want) && tt.want != KindUnknown {
				t.Errorf("IsKind disagrees with KindOf for %v", tt.err)
			}
		})
	}
}

func TestFieldsOf(t *testing.T) {
	err := Validation(map[string]string{"amount": "must be positive"})
	fields := FieldsOf(err)
	if fields["amount"] != "must be positive" {
		t.Errorf("unexpected fields: %v", fields)
	}
	if FieldsOf(errors.New("plain")) != nil {
		t.Error("untyped errors carry no fields")
	}
}

func TestBackendUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Backend("insert clients", cause)
	if !errors.Is(err, cause) {
		t.Error("backend errors must unwrap to their cause")
	}
}
