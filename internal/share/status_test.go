package share

import (
	"testing"
	"time"
)

func TestCompute_Boundaries(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	expiry := base.Unix() + 3600

	tests := []struct {
		name string
		now  time.Time
		want Status
	}{
		{"one second before expiry", base.Add(3599 * time.Second), StatusActive},
		{"exactly at expiry", base.Add(3600 * time.Second), StatusExpired},
		{"one second after expiry", base.Add(3601 * time.Second), StatusExpired},
		{"at creation", base, StatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(expiry, tt.now); got != tt.want {
				t.Fatalf("Compute(%d, %v) = %q, want %q", expiry, tt.now, got, tt.want)
			}
		})
	}
}

func TestIsExpired_NeverReverses(t *testing.T) {
	expiry := int64(1000)
	if !IsExpired(expiry, time.Unix(1000, 0)) {
		t.Fatalf("expected expired at the expiry instant")
	}
	if !IsExpired(expiry, time.Unix(5000, 0)) {
		t.Fatalf("expected expired long after the expiry instant")
	}
	if IsExpired(expiry, time.Unix(999, 0)) {
		t.Fatalf("expected active before the expiry instant")
	}
}
