package calculator

import (
	"time"

	"golang.org/x/exp/slices"
)

type distinctSet[T comparable] map[T]struct{}

func (s distinctSet[T]) Add(value T) {
	s[value] = struct{}{}
}

func (s distinctSet[T]) Count() int64 {
	return int64(len(s))
}

// speedAccumulator keeps every present speed of a group so the summary can be
// computed in a fixed order regardless of how records arrived.
type speedAccumulator struct {
	speeds []float64
}

func (a *speedAccumulator) Add(speed *float64) {
	if speed == nil {
		return
	}

	a.speeds = append(a.speeds, *speed)
}

// Summary returns mean, max and min. All three are nil when the group had no speeds.
func (a *speedAccumulator) Summary() (*float64, *float64, *float64) {
	if len(a.speeds) == 0 {
		return nil, nil, nil
	}

	sorted := slices.Clone(a.speeds)
	slices.Sort(sorted)

	sum := 0.0
	for _, speed := range sorted {
		sum += speed
	}

	average := sum / float64(len(sorted))
	maximum := sorted[len(sorted)-1]
	minimum := sorted[0]

	return &average, &maximum, &minimum
}

type watermark struct {
	latest time.Time
}

func (w *watermark) Observe(eventTime time.Time) {
	if eventTime.After(w.latest) {
		w.latest = eventTime
	}
}

func (w *watermark) Time() time.Time {
	return w.latest
}
