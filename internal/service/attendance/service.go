package attendance

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
)

// DefaultToleranceMeters is the geofence radius around a Location.
const DefaultToleranceMeters = 150

type Policy struct {
	MarginMinutes   int
	ToleranceMeters float64
}

type AttendanceServiceImpl struct {
	user.UserRepository
	location.LocationRepository
	calendar *WorkCalendar
	windows  WindowPolicy
	ledger   *Ledger
	clock    clock.Clock
	policy   Policy
	logger   *slog.Logger
}

// site is a request placed on the caller's Location calendar.
type site struct {
	user     user.User
	location location.Location
	day      Day
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, invalidInput(err)
	}

	st, err := s.place(ctx, req.UserID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := s.requireWorkingDay(st); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := clock.At(st.day.Local)
	if err := s.windows.CheckIn(st.location, now); err != nil {
		return attendance.AttendanceResponse{}, s.configOr(st.location, err)
	}

	lat, lon := req.Coordinates()
	if err := s.checkRange(st, lat, lon); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := s.ledger.CheckIn(ctx, attendance.Entry{
		UserID:     st.user.ID,
		DeviceUUID: req.DeviceUUID,
		DeviceName: req.DeviceName,
		Date:       st.day.Date,
		At:         now,
		Latitude:   lat,
		Longitude:  lon,
	})
	if err != nil {
		s.logRejected(ctx, "check-in", st, err)
		return attendance.AttendanceResponse{}, err
	}

	s.logger.InfoContext(ctx, "Check-in registered",
		slog.String("user_id", record.UserID),
		slog.String("attendance_id", record.ID),
		slog.String("date", record.Date.Format(time.DateOnly)),
		slog.String("check_in", record.CheckIn.String()),
	)

	return attendance.ToResponse(record), nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, invalidInput(err)
	}

	st, err := s.place(ctx, req.UserID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := s.requireWorkingDay(st); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := clock.At(st.day.Local)
	if err := s.windows.CheckOut(st.location, now); err != nil {
		return attendance.AttendanceResponse{}, s.configOr(st.location, err)
	}

	lat, lon := req.Coordinates()
	if err := s.checkRange(st, lat, lon); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := s.ledger.CheckOut(ctx, attendance.Entry{
		UserID:     st.user.ID,
		DeviceUUID: req.DeviceUUID,
		Date:       st.day.Date,
		At:         now,
		Latitude:   lat,
		Longitude:  lon,
	})
	if err != nil {
		s.logRejected(ctx, "check-out", st, err)
		return attendance.AttendanceResponse{}, err
	}

	s.logger.InfoContext(ctx, "Check-out registered",
		slog.String("user_id", record.UserID),
		slog.String("attendance_id", record.ID),
		slog.String("date", record.Date.Format(time.DateOnly)),
		slog.String("check_out", record.CheckOut.String()),
	)

	return attendance.ToResponse(record), nil
}

// Today implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Today(ctx context.Context, userID string) (attendance.TodayResponse, error) {
	if validator.IsEmpty(userID) {
		return attendance.TodayResponse{}, attendance.NewInvalidInput(validator.ValidationErrors{
			{Field: "user_id", Message: "user_id is required"},
		})
	}

	st, err := s.place(ctx, userID)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	record, err := s.ledger.Find(ctx, st.user.ID, st.day.Date)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	resp := attendance.TodayResponse{
		Date:     st.day.Date.Format(time.DateOnly),
		Timezone: st.location.TimezoneName(),
		State:    attendance.StateOf(record).String(),
	}
	if record != nil {
		r := attendance.ToResponse(*record)
		resp.Attendance = &r
	}
	return resp, nil
}

// place resolves the user's Location and the local day at the clock's now.
func (s *AttendanceServiceImpl) place(ctx context.Context, userID string) (site, error) {
	u, err := s.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return site{}, attendance.NewMissingLocation(err)
		}
		return site{}, attendance.NewPersistenceError("load user", err)
	}
	if !u.Active {
		return site{}, attendance.NewMissingLocation(user.ErrUserInactive)
	}
	if u.LocationID == nil || *u.LocationID == "" {
		return site{}, attendance.NewMissingLocation(nil)
	}

	loc, err := s.LocationRepository.GetByID(ctx, *u.LocationID)
	if err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			return site{}, attendance.NewMissingLocation(err)
		}
		return site{}, attendance.NewPersistenceError("load location", err)
	}
	if !loc.Active {
		return site{}, attendance.NewMissingLocation(location.ErrLocationInactive)
	}
	if err := loc.Validate(); err != nil {
		return site{}, s.configError(loc, err)
	}

	day, err := s.calendar.Resolve(ctx, loc, s.clock.Now())
	if err != nil {
		return site{}, s.configOr(loc, err)
	}

	return site{user: u, location: loc, day: day}, nil
}

func (s *AttendanceServiceImpl) requireWorkingDay(st site) error {
	if st.day.Working {
		return nil
	}
	return attendance.NewNotWorkingDay(st.day.Date.Format(time.DateOnly), st.day.Weekday, st.day.Holiday)
}

// checkRange enforces the geofence. EXTERNAL users are exempt.
func (s *AttendanceServiceImpl) checkRange(st site, lat, lon float64) error {
	if st.user.IsExternal() {
		return nil
	}
	if !st.location.HasCoordinates() {
		return s.configError(st.location, location.ErrCoordinatesNotConfigured)
	}

	d := geo.Between(lat, lon, *st.location.Latitude, *st.location.Longitude)
	if d.Exceeds(s.policy.ToleranceMeters) {
		return attendance.NewOutOfRange(
			d.Reading().String(),
			d.Meters().StringFixed(2),
			strconv.FormatFloat(s.policy.ToleranceMeters, 'f', -1, 64),
		)
	}
	return nil
}

// configOr turns Location misconfiguration into a ConfigError and any other
// non-domain failure into a PersistenceError.
func (s *AttendanceServiceImpl) configOr(loc location.Location, err error) error {
	var domainErr *attendance.Error
	switch {
	case errors.As(err, &domainErr):
		return err
	case isLocationConfigError(err):
		return s.configError(loc, err)
	default:
		return attendance.NewPersistenceError("resolve working day", err)
	}
}

func (s *AttendanceServiceImpl) configError(loc location.Location, err error) error {
	s.logger.Error("Location is misconfigured",
		slog.String("location_id", loc.ID),
		slog.Any("error", err),
	)
	return attendance.NewConfigError(loc.ID, err)
}

func (s *AttendanceServiceImpl) logRejected(ctx context.Context, operation string, st site, err error) {
	level := slog.LevelInfo
	if errors.Is(err, attendance.ErrPersistence) {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "Attendance "+operation+" rejected",
		slog.String("user_id", st.user.ID),
		slog.String("date", st.day.Date.Format(time.DateOnly)),
		slog.Any("error", err),
	)
}

func isLocationConfigError(err error) bool {
	for _, target := range []error{
		location.ErrWorkingDaysNotConfigured,
		location.ErrInvalidWorkingDays,
		location.ErrWorkingHoursNotConfigured,
		location.ErrInvalidWorkingHours,
		location.ErrInvalidCoordinates,
		location.ErrCoordinatesNotConfigured,
		location.ErrInvalidTimezone,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func invalidInput(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return attendance.NewInvalidInput(verrs)
	}
	return attendance.NewInvalidInput(validator.ValidationErrors{{Field: "request", Message: err.Error()}})
}

func NewAttendanceService(
	userRepo user.UserRepository,
	locationRepo location.LocationRepository,
	calendar *WorkCalendar,
	ledger *Ledger,
	clk clock.Clock,
	policy Policy,
	logger *slog.Logger,
) attendance.AttendanceService {
	if policy.MarginMinutes <= 0 {
		policy.MarginMinutes = DefaultMarginMinutes
	}
	if policy.ToleranceMeters <= 0 {
		policy.ToleranceMeters = DefaultToleranceMeters
	}
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceServiceImpl{
		UserRepository:     userRepo,
		LocationRepository: locationRepo,
		calendar:           calendar,
		windows:            NewWindowPolicy(policy.MarginMinutes),
		ledger:             ledger,
		clock:              clk,
		policy:             policy,
		logger:             logger,
	}
}
