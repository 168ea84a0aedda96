package datagen

import (
	"fmt"
	"time"
)

// DateLayout is the YYYY-MM-DD layout used for every generated date
const DateLayout = "2006-01-02"

// Quarter is a calendar quarter such as 2024Q3
type Quarter struct {
	Label string
	Start time.Time
	End   time.Time
}

// QuarterStart returns the first day of t's calendar quarter
func QuarterStart(t time.Time) time.Time {
	month := ((int(t.Month())-1)/3)*3 + 1
	return time.Date(t.Year(), time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// QuarterEnd returns the last day of the quarter beginning at start
func QuarterEnd(start time.Time) time.Time {
	return time.Date(start.Year(), start.Month()+3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

// QuarterLabel renders start as YYYYQn
func QuarterLabel(start time.Time) string {
	return fmt.Sprintf("%dQ%d", start.Year(), (int(start.Month())-1)/3+1)
}

// HistoricalQuarters returns the n quarters ending with the quarter that
// contains now, oldest first.
func HistoricalQuarters(now time.Time, n int) []Quarter {
	current := QuarterStart(now)
	quarters := make([]Quarter, n)
	for i := 0; i < n; i++ {
		start := time.Date(current.Year(), current.Month()-time.Month(3*i), 1, 0, 0, 0, 0, time.UTC)
		quarters[n-1-i] = Quarter{
			Label: QuarterLabel(start),
			Start: start,
			End:   QuarterEnd(start),
		}
	}
	return quarters
}

// DateRange spans from the first quarter's start to the last quarter's end
func DateRange(quarters []Quarter) (time.Time, time.Time) {
	if len(quarters) == 0 {
		return time.Time{}, time.Time{}
	}
	return quarters[0].Start, quarters[len(quarters)-1].End
}

// DateRangeBack returns the range from days before now to now
func DateRangeBack(now time.Time, days int) (string, string) {
	return now.AddDate(0, 0, -days).Format(DateLayout), now.Format(DateLayout)
}

// QuarterEnds returns n quarter-end dates, newest first, starting from the
// most recent quarter end on or before now.
func QuarterEnds(now time.Time, n int) []string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	recent := time.Date(now.Year()-1, time.December, 31, 0, 0, 0, 0, time.UTC)
	for _, m := range []time.Month{time.December, time.September, time.June, time.March} {
		end := monthEnd(now.Year(), m)
		if !end.After(today) {
			recent = end
			break
		}
	}

	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = monthEnd(recent.Year(), recent.Month()-time.Month(3*i)).Format(DateLayout)
	}
	return out
}

// DateList returns every date from start to end inclusive
func DateList(start, end string) ([]string, error) {
	s, e, err := parseRange(start, end)
	if err != nil {
		return nil, err
	}
	var out []string
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(DateLayout))
	}
	return out, nil
}

// BusinessDays returns the Monday to Friday dates from start to end inclusive
func BusinessDays(start, end string) ([]string, error) {
	s, e, err := parseRange(start, end)
	if err != nil {
		return nil, err
	}
	var out []string
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			out = append(out, d.Format(DateLayout))
		}
	}
	return out, nil
}

// MonthEnds returns the last day of the current month and the n-1 months
// before it, newest first.
func MonthEnds(now time.Time, n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = monthEnd(now.Year(), now.Month()-time.Month(i)).Format(DateLayout)
	}
	return out
}

// FormatTimestamp renders t as YYYY-MM-DD HH:MM:SS
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// monthEnd normalises month overflow the way time.Date does
func monthEnd(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	return s, e, nil
}

func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}
