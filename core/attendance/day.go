package attendance

import (
	"time"

	"github.com/pkg/errors"
)

// dayLayout is the canonical form used as comparison and storage key.
// String comparison of days is only valid in this form.
const dayLayout = "2006-01-02"

// Day is a calendar date in its canonical YYYY-MM-DD form.
type Day string

var acceptedLayouts = []string{
	dayLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDay normalizes a date representation to its canonical Day.
// All representations resolving to the same calendar day yield the same Day.
func ParseDay(s string) (Day, error) {
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DayOf(t), nil
		}
	}
	return "", errors.Errorf("invalid date %q", s)
}

// DayOf returns the canonical Day of the given wall-clock time.
func DayOf(t time.Time) Day {
	return Day(t.Format(dayLayout))
}

// Today returns the current Day in UTC.
func Today() Day {
	return DayOf(time.Now().UTC())
}

func (d Day) String() string {
	return string(d)
}

func (d Day) IsZero() bool {
	return d == ""
}

// Time returns the Day as a midnight-UTC time.Time.
func (d Day) Time() (time.Time, error) {
	return time.Parse(dayLayout, string(d))
}
