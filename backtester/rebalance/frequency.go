package rebalance

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Daily rebalances every calendar day
func Daily() Frequency { return EveryNDays(1) }

// EveryNDays rebalances every n calendar days counted from the start date
func EveryNDays(n int) Frequency { return Frequency{kind: everyNDays, n: n} }

// Weekly rebalances every Sunday
func Weekly() Frequency { return OnWeekday(time.Sunday) }

// WeekStart is an alias of Weekly, weeks are anchored on Sunday
func WeekStart() Frequency { return Weekly() }

// WeekEnd rebalances every Friday
func WeekEnd() Frequency { return OnWeekday(time.Friday) }

// OnWeekday rebalances on every given weekday
func OnWeekday(d time.Weekday) Frequency { return Frequency{kind: weekday, weekday: d} }

// Monthly rebalances on the last day of every month
func Monthly() Frequency { return MonthEnd() }

// MonthEnd rebalances on the last day of every month
func MonthEnd() Frequency { return Frequency{kind: monthEnd} }

// MonthStart rebalances on the first day of every month
func MonthStart() Frequency { return Frequency{kind: monthStart} }

// QuarterEnd rebalances on the last day of March, June, September and December
func QuarterEnd() Frequency { return Frequency{kind: quarterEnd} }

// QuarterStart rebalances on the first day of January, April, July and October
func QuarterStart() Frequency { return Frequency{kind: quarterStart} }

// Validate checks the frequency was built by a constructor with usable
// parameters
func (f Frequency) Validate() error {
	switch f.kind {
	case everyNDays:
		if f.n < 1 {
			return fmt.Errorf("%w: every %d days", errInvalidFrequency, f.n)
		}
	case weekday:
		if f.weekday < time.Sunday || f.weekday > time.Saturday {
			return fmt.Errorf("%w: weekday %d", errInvalidFrequency, f.weekday)
		}
	case monthStart, monthEnd, quarterStart, quarterEnd:
	default:
		return fmt.Errorf("%w: zero value", errInvalidFrequency)
	}
	return nil
}

// String returns the frequency code
func (f Frequency) String() string {
	switch f.kind {
	case everyNDays:
		return strconv.Itoa(f.n) + "D"
	case weekday:
		return "W-" + strings.ToUpper(f.weekday.String()[:3])
	case monthStart:
		return "MS"
	case monthEnd:
		return "M"
	case quarterStart:
		return "QS"
	case quarterEnd:
		return "Q"
	}
	return "invalid"
}

func (f Frequency) includes(d time.Time) bool {
	switch f.kind {
	case weekday:
		return d.Weekday() == f.weekday
	case monthStart:
		return d.Day() == 1
	case monthEnd:
		return d.AddDate(0, 0, 1).Day() == 1
	case quarterStart:
		return d.Day() == 1 && d.Month()%3 == 1
	case quarterEnd:
		return d.AddDate(0, 0, 1).Day() == 1 && d.Month()%3 == 0
	case everyNDays:
		return true
	}
	return false
}

var namedFrequencies = map[string]Frequency{
	"daily":         Daily(),
	"weekly":        Weekly(),
	"monthly":       Monthly(),
	"month-start":   MonthStart(),
	"month-end":     MonthEnd(),
	"quarter-start": QuarterStart(),
	"quarter-end":   QuarterEnd(),
	"quarterly":     QuarterEnd(),
	"week-start":    WeekStart(),
	"week-end":      WeekEnd(),
	"d":             Daily(),
	"w":             Weekly(),
	"1w":            Weekly(),
	"m":             MonthEnd(),
	"1m":            MonthEnd(),
	"me":            MonthEnd(),
	"ms":            MonthStart(),
	"q":             QuarterEnd(),
	"qe":            QuarterEnd(),
	"qs":            QuarterStart(),
}

// ParseFrequency accepts names such as "monthly", "week-end", "friday" or
// "every-3-days" and calendar codes such as "1D", "3D", "W-FRI", "MS", "Q"
// and "QS"
func ParseFrequency(s string) (Frequency, error) {
	n := strings.NewReplacer("_", "-", " ", "-").Replace(strings.ToLower(strings.TrimSpace(s)))
	if f, ok := namedFrequencies[n]; ok {
		return f, nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if n == name || n == "w-"+name[:3] {
			return OnWeekday(d), nil
		}
	}
	days := strings.TrimSuffix(n, "d")
	if strings.HasPrefix(n, "every-") && strings.HasSuffix(n, "-days") {
		days = strings.TrimSuffix(strings.TrimPrefix(n, "every-"), "-days")
	}
	if days != n {
		v, err := strconv.Atoi(days)
		if err == nil && v > 0 {
			return EveryNDays(v), nil
		}
	}
	return Frequency{}, fmt.Errorf("%w: '%v'", errInvalidFrequency, s)
}

// MarshalText implements encoding.TextMarshaler
func (f Frequency) MarshalText() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (f *Frequency) UnmarshalText(b []byte) error {
	v, err := ParseFrequency(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
