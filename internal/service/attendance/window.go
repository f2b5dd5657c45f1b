package attendance

import (
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/clock"
)

// DefaultMarginMinutes is the buffer around working hours.
const DefaultMarginMinutes = 15

// Window is a half-open or closed range of minutes since local midnight.
// Bounds may fall outside 0..1439 when the margin crosses midnight.
type Window struct {
	From  int
	Until int
}

func (w Window) String() string {
	return clock.FormatMinute(w.From) + "-" + clock.FormatMinute(w.Until)
}

// Windows are the ranges derived from a Location's working hours.
type Windows struct {
	// CheckIn is closed on both ends.
	CheckIn Window
	// ForbiddenClose excludes Until.
	ForbiddenClose Window
	// ForbiddenOpen excludes Until.
	ForbiddenOpen Window
}

// WindowPolicy applies a margin around working hours. All comparisons are
// at minute granularity.
type WindowPolicy struct {
	MarginMinutes int
}

func NewWindowPolicy(marginMinutes int) WindowPolicy {
	return WindowPolicy{MarginMinutes: marginMinutes}
}

// Windows fails with a location error when working hours are missing or inverted.
func (p WindowPolicy) Windows(loc location.Location) (Windows, error) {
	if loc.WorkingStartTime == nil || loc.WorkingEndTime == nil {
		return Windows{}, location.ErrWorkingHoursNotConfigured
	}
	if !loc.WorkingStartTime.Before(*loc.WorkingEndTime) {
		return Windows{}, location.ErrInvalidWorkingHours
	}

	start := loc.WorkingStartTime.MinuteOfDay()
	end := loc.WorkingEndTime.MinuteOfDay()
	m := p.MarginMinutes

	return Windows{
		CheckIn:        Window{From: start - m, Until: end + m},
		ForbiddenClose: Window{From: end - m, Until: end},
		ForbiddenOpen:  Window{From: start, Until: start + m},
	}, nil
}

// CheckIn validates a check-in at local time now.
func (p WindowPolicy) CheckIn(loc location.Location, now clock.TimeOfDay) error {
	w, err := p.Windows(loc)
	if err != nil {
		return err
	}

	minute := now.MinuteOfDay()
	at := clock.FormatMinute(minute)

	if minute < w.CheckIn.From {
		return attendance.NewTooEarly("check-in", at, clock.FormatMinute(w.CheckIn.From))
	}
	if minute > w.CheckIn.Until {
		return attendance.NewTooLate("check-in", at, clock.FormatMinute(w.CheckIn.Until))
	}
	if minute >= w.ForbiddenClose.From && minute < w.ForbiddenClose.Until {
		return attendance.NewWithinForbiddenCloseWindow(
			at, clock.FormatMinute(w.ForbiddenClose.From), clock.FormatMinute(w.ForbiddenClose.Until), p.MarginMinutes,
		)
	}
	return nil
}

// CheckOut validates a check-out at local time now. Only the opening
// sub-window is enforced; the ledger rejects check-outs before check-in.
func (p WindowPolicy) CheckOut(loc location.Location, now clock.TimeOfDay) error {
	w, err := p.Windows(loc)
	if err != nil {
		return err
	}

	minute := now.MinuteOfDay()
	if minute >= w.ForbiddenOpen.From && minute < w.ForbiddenOpen.Until {
		return attendance.NewWithinForbiddenOpenWindow(
			clock.FormatMinute(minute), clock.FormatMinute(w.ForbiddenOpen.From), clock.FormatMinute(w.ForbiddenOpen.Until), p.MarginMinutes,
		)
	}
	return nil
}
