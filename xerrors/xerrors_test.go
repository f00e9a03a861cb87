package xerrors

import (
	"errors"
	"testing"
)

func TestWrap_Unit(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if Wrap(nil, "ctx") != nil {
			t.Error("Expected nil for nil error")
		}
		if Wrapf(nil, "ctx %d", 1) != nil {
			t.Error("Expected nil for nil error")
		}
	})

	t.Run("wrapped error preserves chain", func(t *testing.T) {
		sentinel := New("base failure")
		wrapped := Wrapf(sentinel, "during step %d", 2)
		if !errors.Is(wrapped, sentinel) {
			t.Error("Expected errors.Is to find sentinel through Wrapf")
		}
	})
}

func TestWithCode_Unit(t *testing.T) {
	sentinel := New("invalid input")
	err := WithCode(sentinel, "worker_id_out_of_range")

	if !errors.Is(err, sentinel) {
		t.Error("Expected coded error to unwrap to sentinel")
	}
	if got := GetCode(err); got != "worker_id_out_of_range" {
		t.Errorf("Expected code worker_id_out_of_range, got %q", got)
	}
	if got := GetCode(Wrap(err, "outer")); got != "worker_id_out_of_range" {
		t.Errorf("Expected code through outer wrap, got %q", got)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("Expected empty code for plain error, got %q", got)
	}
}
