package phonex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"already normalized", "+14155552671", "+14155552671", false},
		{"with separators", "+1 (415) 555-2671", "+14155552671", false},
		{"without plus", "914155552671", "+914155552671", false},
		{"dots", "44.20.7946.0958", "+442079460958", false},
		{"too short", "+1234567", "", true},
		{"too long", "+1234567890123456", "", true},
		{"letters", "+1415CALLME", "", true},
		{"leading zero", "0123456789", "", true},
		{"plus in middle", "123+4567890", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeE164(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPhone)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
