package clock

import (
	"fmt"
	"time"
)

// Clock returns the current instant. Services take a Clock instead of calling
// time.Now so tests can freeze time.
type Clock interface {
	Now() time.Time
}

// Func adapts a plain function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// System reads the wall clock.
func System() Clock {
	return Func(time.Now)
}

// Fixed always returns t.
func Fixed(t time.Time) Clock {
	return Func(func() time.Time { return t })
}

// TimeOfDay is a local wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts "15:04" or "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
}

// FromMicroseconds builds a TimeOfDay from microseconds since midnight, the
// representation PostgreSQL uses for the time type.
func FromMicroseconds(us int64) TimeOfDay {
	secs := us / 1_000_000
	return TimeOfDay{
		Hour:   int(secs / 3600),
		Minute: int(secs % 3600 / 60),
		Second: int(secs % 60),
	}
}

// At returns the wall-clock time of t, truncated to the minute.
func At(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// MinuteOfDay returns minutes since midnight; seconds are discarded.
func (t TimeOfDay) MinuteOfDay() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Microseconds() int64 {
	return int64(t.Hour*3600+t.Minute*60+t.Second) * 1_000_000
}

func (t TimeOfDay) Before(u TimeOfDay) bool {
	return t.Microseconds() < u.Microseconds()
}

func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60 && t.Second >= 0 && t.Second < 60
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// FormatMinute renders a minute-of-day as "15:04". Values outside one day wrap
// around midnight.
func FormatMinute(m int) string {
	m = ((m % 1440) + 1440) % 1440
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Date returns the calendar date of t as a UTC midnight value, so dates from
// different zones compare by day only.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
