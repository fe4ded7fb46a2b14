package timedataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferFreq(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	testData := map[string]struct {
		t        []time.Time
		expected time.Duration
		err      error
	}{
		"no points": {
			err: ErrCannotInferFreq,
		},
		"single point": {
			t:   []time.Time{start},
			err: ErrCannotInferFreq,
		},
		"regular hourly": {
			t:        Times(start, 5, time.Hour),
			expected: time.Hour,
		},
		"gap in daily": {
			t: []time.Time{
				start,
				start.Add(24 * time.Hour),
				start.Add(48 * time.Hour),
				start.Add(120 * time.Hour),
			},
			expected: 24 * time.Hour,
		},
		"tie prefers shorter interval": {
			t: []time.Time{
				start,
				start.Add(2 * time.Minute),
				start.Add(3 * time.Minute),
			},
			expected: time.Minute,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			freq, err := InferFreq(td.t)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected, freq)
		})
	}
}

func TestExtend(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	base := Times(start, 3, 24*time.Hour)

	out, err := Extend(base, 2)
	require.NoError(t, err)
	assert.Equal(t, Times(start, 5, 24*time.Hour), out)
	assert.Len(t, base, 3)

	out, err = Extend(base, 0)
	require.NoError(t, err)
	assert.Equal(t, base, out)

	_, err = Extend(base[:1], 1)
	require.ErrorIs(t, err, ErrCannotInferFreq)
}
