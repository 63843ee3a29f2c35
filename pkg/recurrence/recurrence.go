package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// Freq is the period a recurring event repeats on.
type Freq int

const (
	FreqNone Freq = iota
	FreqDaily
	FreqWeekly
	FreqMonthly
	FreqYearly
)

func (f Freq) String() string {
	switch f {
	case FreqDaily:
		return "daily"
	case FreqWeekly:
		return "weekly"
	case FreqMonthly:
		return "monthly"
	case FreqYearly:
		return "yearly"
	default:
		return "none"
	}
}

// ParseFreq maps a recurrence type string to a Freq. The empty string parses
// as FreqNone.
func ParseFreq(s string) (Freq, error) {
	switch s {
	case "", "none":
		return FreqNone, nil
	case "daily":
		return FreqDaily, nil
	case "weekly":
		return FreqWeekly, nil
	case "monthly":
		return FreqMonthly, nil
	case "yearly":
		return FreqYearly, nil
	default:
		return FreqNone, fmt.Errorf("unknown recurrence type %q", s)
	}
}

// Rule describes how a master event repeats. Until bounds occurrence starts
// inclusively; Count bounds the total number of occurrences including the
// master itself. Zero values leave the respective bound open.
type Rule struct {
	Freq     Freq
	Interval int
	Until    *time.Time
	Count    int
}

// Occurrence is one concrete (start, end) instance derived from a master
// event. Occurrences are never persisted; they live only as long as the query
// that produced them.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

// Window is the half-open query range [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// Expand generates the occurrences of a master event whose starts fall inside
// the window, ordered by start time. The master's own interval is occurrence
// #0 and every occurrence keeps its duration. Occurrences before the window
// still count against Count so alignment is preserved.
//
// Monthly and yearly rules follow RFC 5545 skip semantics: an anchor on a
// day-of-month the stepped month does not have (e.g. the 31st) produces no
// occurrence in that month.
func Expand(anchorStart, anchorEnd time.Time, rule Rule, window Window) ([]Occurrence, error) {
	if window.To.Before(window.From) {
		return nil, errors.New("expand: window end is before window start")
	}

	if rule.Freq == FreqNone {
		if window.contains(anchorStart) {
			return []Occurrence{{Start: anchorStart, End: anchorEnd}}, nil
		}
		return nil, nil
	}

	freq, err := rruleFreq(rule.Freq)
	if err != nil {
		return nil, err
	}

	interval := rule.Interval
	if interval < 1 {
		interval = 1
	}

	opts := rrule.ROption{
		Freq:     freq,
		Interval: interval,
		Dtstart:  anchorStart,
	}
	if rule.Count > 0 {
		opts.Count = rule.Count
	}
	if rule.Until != nil {
		opts.Until = *rule.Until
	}

	r, err := rrule.NewRRule(opts)
	if err != nil {
		return nil, fmt.Errorf("expand: %w", err)
	}

	duration := anchorEnd.Sub(anchorStart)
	starts := r.Between(window.From, window.To, true)

	occurrences := make([]Occurrence, 0, len(starts))
	for _, start := range starts {
		// Between is inclusive on both ends; the window is half-open.
		if !start.Before(window.To) {
			continue
		}
		occurrences = append(occurrences, Occurrence{Start: start, End: start.Add(duration)})
	}
	return occurrences, nil
}

func rruleFreq(f Freq) (rrule.Frequency, error) {
	switch f {
	case FreqDaily:
		return rrule.DAILY, nil
	case FreqWeekly:
		return rrule.WEEKLY, nil
	case FreqMonthly:
		return rrule.MONTHLY, nil
	case FreqYearly:
		return rrule.YEARLY, nil
	default:
		return 0, fmt.Errorf("expand: no rrule frequency for %s", f)
	}
}
