// Package event generates holiday time spans and indicator series used as regressors.
package event

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// ErrUnknownHoliday is returned for a holiday name missing from USHolidays.
var ErrUnknownHoliday = errors.New("unknown holiday")

// USHolidays are the US federal holidays available as regressors, keyed by short name.
var USHolidays = map[string]*cal.Holiday{
	"new_year":     us.NewYear,
	"mlk":          us.MlkDay,
	"presidents":   us.PresidentsDay,
	"memorial":     us.MemorialDay,
	"juneteenth":   us.Juneteenth,
	"independence": us.IndependenceDay,
	"labor":        us.LaborDay,
	"columbus":     us.ColumbusDay,
	"veterans":     us.VeteransDay,
	"thanksgiving": us.ThanksgivingDay,
	"christmas":    us.ChristmasDay,
}

// Event is a time span [Start, End) modeled separately from the rest of the series.
type Event struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the event span.
func (e Event) Contains(t time.Time) bool {
	return !t.Before(e.Start) && t.Before(e.End)
}

// HolidayNames returns the sorted keys of USHolidays.
func HolidayNames() []string {
	return slices.Sorted(maps.Keys(USHolidays))
}

// LookupHolidays resolves short holiday names. The name "all" expands to every US holiday.
func LookupHolidays(names []string) ([]*cal.Holiday, error) {
	var hols []*cal.Holiday
	for _, name := range names {
		if name == "all" {
			hols = hols[:0]
			for _, n := range HolidayNames() {
				hols = append(hols, USHolidays[n])
			}
			return hols, nil
		}
		hol, exists := USHolidays[name]
		if !exists {
			return nil, fmt.Errorf("got %q, must be one of [%s], %w", name, strings.Join(HolidayNames(), ", "), ErrUnknownHoliday)
		}
		hols = append(hols, hol)
	}
	return hols, nil
}

// Occurrences returns a day long event for each observed date of hol within [start, end],
// in the location of start. Each event is widened by before and after.
func Occurrences(hol *cal.Holiday, start, end time.Time, before, after time.Duration) []Event {
	loc := start.Location()
	var events []Event
	for year := start.Year(); year <= end.Year(); year++ {
		_, obs := hol.Calc(year)
		if obs.IsZero() {
			continue
		}
		day := time.Date(obs.Year(), obs.Month(), obs.Day(), 0, 0, 0, 0, loc)
		if day.Before(start) || day.After(end) {
			continue
		}
		events = append(events, Event{
			Name:  strings.ReplaceAll(fmt.Sprintf("%s_%d", hol.Name, year), " ", "_"),
			Start: day.Add(-before),
			End:   day.AddDate(0, 0, 1).Add(after),
		})
	}
	return events
}

// Mask returns 1.0 for every time point covered by at least one event and 0.0 otherwise.
func Mask(t []time.Time, events []Event) []float64 {
	mask := make([]float64, len(t))
	for i, tPnt := range t {
		for _, e := range events {
			if e.Contains(tPnt) {
				mask[i] = 1.0
				break
			}
		}
	}
	return mask
}

// HolidayMask is the indicator series of the observed days of the given holidays over t.
// The time points do not need to be sorted.
func HolidayMask(t []time.Time, hols []*cal.Holiday) []float64 {
	if len(t) == 0 {
		return nil
	}
	start, end := slices.MinFunc(t, time.Time.Compare), slices.MaxFunc(t, time.Time.Compare)
	// widen so a holiday observed the day before the first point is still generated
	start = start.Add(-24 * time.Hour)

	var events []Event
	for _, hol := range hols {
		events = append(events, Occurrences(hol, start, end, 0, 0)...)
	}
	return Mask(t, events)
}
