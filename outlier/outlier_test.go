package outlier

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	testData := map[string]struct {
		y        []float64
		lower    float64
		upper    float64
		tukey    float64
		expected []int
	}{
		"spike": {
			y:        []float64{0, 1, -1, 0.5, -0.5, 20, 0, 1, -1, 0},
			lower:    0.1,
			upper:    0.8,
			tukey:    1.0,
			expected: []int{5},
		},
		"dip and spike": {
			y:        []float64{0, 1, -30, 0.5, -0.5, 20, 0, 1, -1, 0},
			lower:    0.2,
			upper:    0.8,
			tukey:    1.0,
			expected: []int{2, 5},
		},
		"constant": {
			y:     []float64{2, 2, 2, 2},
			lower: 0.1,
			upper: 0.9,
			tukey: 1.0,
		},
		"nan ignored": {
			y:        []float64{math.NaN(), 0, 1, 0, 1, 50},
			lower:    0.1,
			upper:    0.5,
			tukey:    0.5,
			expected: []int{5},
		},
		"empty": {},
		"single": {
			y:     []float64{3},
			lower: 0.1,
			upper: 0.9,
		},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, Options{LowerPercentile: td.lower, UpperPercentile: td.upper, TukeyFactor: td.tukey}.Detect(td.y))
		})
	}
}
