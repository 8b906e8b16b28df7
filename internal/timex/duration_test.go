package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	type holder struct {
		D Duration `json:"d"`
	}

	t.Run("string form", func(t *testing.T) {
		var h holder
		require.NoError(t, json.Unmarshal([]byte(`{"d":"2m30s"}`), &h))
		assert.Equal(t, 2*time.Minute+30*time.Second, h.D.Duration)
	})

	t.Run("integer nanoseconds", func(t *testing.T) {
		var h holder
		require.NoError(t, json.Unmarshal([]byte(`{"d":1000000000}`), &h))
		assert.Equal(t, time.Second, h.D.Duration)
	})

	t.Run("invalid string", func(t *testing.T) {
		var h holder
		assert.Error(t, json.Unmarshal([]byte(`{"d":"soon"}`), &h))
	})

	t.Run("invalid type", func(t *testing.T) {
		var h holder
		assert.Error(t, json.Unmarshal([]byte(`{"d":[1]}`), &h))
	})
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{90 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))
}
