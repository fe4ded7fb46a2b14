package timedataset

import (
	"maps"
	"slices"
	"time"
)

// InferFreq returns the most frequent interval between consecutive time points. When
// several intervals are equally common the shortest one wins.
func InferFreq(t []time.Time) (time.Duration, error) {
	if len(t) < 2 {
		return 0, ErrCannotInferFreq
	}
	counts := make(map[time.Duration]int)
	for i := range len(t) - 1 {
		counts[t[i+1].Sub(t[i])]++
	}

	deltas := slices.Sorted(maps.Keys(counts))
	best := deltas[0]
	for _, d := range deltas[1:] {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best, nil
}

// Extend returns a copy of t followed by n points continuing at its inferred frequency.
func Extend(t []time.Time, n int) ([]time.Time, error) {
	out := slices.Clone(t)
	if n <= 0 {
		return out, nil
	}
	freq, err := InferFreq(t)
	if err != nil {
		return nil, err
	}
	last := t[len(t)-1]
	for i := 1; i <= n; i++ {
		out = append(out, last.Add(time.Duration(i)*freq))
	}
	return out, nil
}
