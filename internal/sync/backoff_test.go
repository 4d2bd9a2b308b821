package sync

import (
	"testing"
	"time"
)

func TestNextRetryDelay_DoublesAndCaps(t *testing.T) {
	tests := []struct {
		retryCount int
		want       time.Duration
	}{
		{0, 30 * time.Second},
		{1, time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{6, 32 * time.Minute},
		{7, time.Hour},
		{20, time.Hour},
		{-1, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := NextRetryDelay(tt.retryCount); got != tt.want {
			t.Errorf("NextRetryDelay(%d) = %v, want %v", tt.retryCount, got, tt.want)
		}
	}
}

func TestNextRetryDelay_Monotonic(t *testing.T) {
	prev := time.Duration(0)
	for i := 0; i < 12; i++ {
		d := NextRetryDelay(i)
		if d < prev {
			t.Fatalf("Delay shrank at retry %d: %v < %v", i, d, prev)
		}
		if d > MaxRetryDelay {
			t.Fatalf("Delay exceeded cap at retry %d: %v", i, d)
		}
		prev = d
	}
}
