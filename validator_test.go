package snowgen

import (
	"testing"

	"github.com/ceyewan/snowgen/clock"
	"github.com/ceyewan/snowgen/layout"
)

func TestValidate_Unit(t *testing.T) {
	const (
		epoch = DefaultEpoch
		dc    = int64(3)
		wk    = int64(21)
		skew  = int64(10000)
	)
	clk := clock.NewManual(epoch + 1_000_000)

	id := layout.Encode(999_000, dc, wk, 7)

	tests := []struct {
		name string
		id   int64
		want bool
	}{
		{"own id", id, true},
		{"negative id", -1, false},
		{"wrong datacenter", layout.Encode(999_000, dc+1, wk, 7), false},
		{"wrong worker", layout.Encode(999_000, dc, wk+1, 7), false},
		{"flipped worker bit", id ^ (1 << 12), false},
		{"at clock now", layout.Encode(1_000_000, dc, wk, 0), true},
		{"within skew tolerance", layout.Encode(1_000_000+skew, dc, wk, 0), true},
		{"beyond skew tolerance", layout.Encode(1_000_000+skew+1, dc, wk, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(tt.id, epoch, dc, wk, clk, skew); got != tt.want {
				t.Errorf("Validate(%d) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestTimestamp_Unit(t *testing.T) {
	id := layout.Encode(123456, 1, 2, 3)
	if got := Timestamp(id, DefaultEpoch); got != DefaultEpoch+123456 {
		t.Errorf("Expected timestamp %d, got %d", DefaultEpoch+123456, got)
	}
}
