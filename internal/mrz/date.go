package mrz

import (
	"fmt"
	"strconv"
	"time"
)

// Date is a YYMMDD MRZ date. Components are stored as read; IsValid reports
// whether they are in range.
type Date struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Day   int    `json:"day"`
	Raw   string `json:"raw,omitempty"`
}

// NewDate builds a date without raw MRZ text.
func NewDate(year, month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// ParseDateText parses six YYMMDD digits. Unlike ParseDate on an extractor,
// out of range components are an error.
func ParseDateText(s string) (Date, error) {
	if len(s) != 6 {
		return Date{}, invalidArgument("date %q: must be 6 characters long", s)
	}
	var parts [3]int
	for i := range parts {
		n, err := strconv.ParseUint(s[i*2:i*2+2], 10, 8)
		if err != nil {
			return Date{}, invalidArgument("date %q: not numeric", s)
		}
		parts[i] = int(n)
	}
	d := Date{Year: parts[0], Month: parts[1], Day: parts[2], Raw: s}
	if p := d.problems(); len(p) > 0 {
		return Date{}, invalidArgument("date %q: %s", s, p[0])
	}
	return d, nil
}

// IsValid checks component bounds only; day-of-month and leap years are not
// checked.
func (d Date) IsValid() bool {
	return len(d.problems()) == 0
}

func (d Date) problems() []string {
	var out []string
	if d.Year < 0 || d.Year > 99 {
		out = append(out, fmt.Sprintf("invalid year value %d: must be 0..99", d.Year))
	}
	if d.Month < 1 || d.Month > 12 {
		out = append(out, fmt.Sprintf("invalid month value %d: must be 1..12", d.Month))
	}
	if d.Day < 1 || d.Day > 31 {
		out = append(out, fmt.Sprintf("invalid day value %d: must be 1..31", d.Day))
	}
	return out
}

// FullYear expands the two-digit year relative to now: years that would land
// more than five years after now belong to the 1900s.
func (d Date) FullYear(now time.Time) int {
	if d.Year+2000 > now.Year()+5 {
		return d.Year + 1900
	}
	return d.Year + 2000
}

// Normal renders the date as d/m/yyyy using FullYear.
func (d Date) Normal(now time.Time) string {
	return fmt.Sprintf("%d/%d/%d", d.Day, d.Month, d.FullYear(now))
}

// Time converts a valid date to midnight UTC.
func (d Date) Time(now time.Time) (time.Time, bool) {
	if !d.IsValid() {
		return time.Time{}, false
	}
	return time.Date(d.FullYear(now), time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC), true
}

// ToMrz returns the raw text the date was read from, or YYMMDD.
func (d Date) ToMrz() string {
	if d.Raw != "" {
		return d.Raw
	}
	return fmt.Sprintf("%02d%02d%02d", d.Year, d.Month, d.Day)
}

// Equal compares components and ignores Raw.
func (d Date) Equal(o Date) bool {
	return d.Year == o.Year && d.Month == o.Month && d.Day == o.Day
}

// Before orders dates by their two-digit components.
func (d Date) Before(o Date) bool {
	return d.ordinal() < o.ordinal()
}

func (d Date) ordinal() int {
	return d.Year*10000 + d.Month*100 + d.Day
}

func (d Date) String() string {
	return fmt.Sprintf("{%d/%d/%d}", d.Day, d.Month, d.Year)
}
