package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("group config", "ROLL")

	if got := err.Error(); got != "group config with ID ROLL not found" {
		t.Errorf("unexpected message: %q", got)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is(err, ErrNotFound) to be true")
	}
	if !IsNotFound(err) {
		t.Error("expected IsNotFound to be true")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("wastage", "150%", "must be below 100%")

	if got := err.Error(); got != "validation failed for field wastage: must be below 100%" {
		t.Errorf("unexpected message: %q", got)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("expected errors.Is(err, ErrInvalidInput) to be true")
	}

	// Without a field name
	bare := &ValidationError{Message: "empty document"}
	if got := bare.Error(); got != "validation failed: empty document" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestConfigError(t *testing.T) {
	tests := []struct {
		name string
		err  *ConfigError
		want string
	}{
		{
			name: "group and value",
			err:  &ConfigError{Group: "ROLL", Value: "abc", Message: "markup is not a number"},
			want: `configuration error for group ROLL (value "abc"): markup is not a number`,
		},
		{
			name: "group only",
			err:  NewConfigError("VERT", "no group config", nil),
			want: "configuration error for group VERT: no group config",
		},
		{
			name: "value only",
			err:  &ConfigError{Value: "Awning Fabrics", Message: "supply category matches no configured group"},
			want: `configuration error for value "Awning Fabrics": supply category matches no configured group`,
		},
		{
			name: "bare",
			err:  NewConfigError("", "empty category mapping", nil),
			want: "configuration error: empty category mapping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if !IsConfigError(tt.err) {
				t.Error("expected IsConfigError to be true")
			}
		})
	}
}

func TestConfigErrorUnwrap(t *testing.T) {
	inner := errors.New("bad decimal")
	err := NewConfigError("ROLL", "markup", inner)

	if !errors.Is(err, inner) {
		t.Error("expected wrapped error to be reachable via errors.Is")
	}
}

func TestParseError(t *testing.T) {
	inner := fmt.Errorf("unexpected token")
	err := NewParseError("yaml", "groups.yaml", "unexpected token", inner)

	if got := err.Error(); got != "parse error in yaml file groups.yaml: unexpected token" {
		t.Errorf("unexpected message: %q", got)
	}
	if errors.Unwrap(err) != inner {
		t.Error("expected Unwrap to return the inner error")
	}

	if WrapParse("csv", "supply.csv", nil) != nil {
		t.Error("expected WrapParse(nil) to return nil")
	}
}

func TestWrapIO(t *testing.T) {
	inner := errors.New("permission denied")
	err := WrapIO("read", "/tmp/supply.csv", inner)

	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatal("expected an *IOError")
	}
	if ioErr.Path != "/tmp/supply.csv" {
		t.Errorf("unexpected path: %q", ioErr.Path)
	}
	if WrapIO("read", "x", nil) != nil {
		t.Error("expected WrapIO(nil) to return nil")
	}
}
