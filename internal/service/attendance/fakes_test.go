package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/device"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/clock"
	"github.com/stretchr/testify/require"
)

// fakeTx serializes transactions, standing in for the advisory lock.
type fakeTx struct {
	mu sync.Mutex
}

func (f *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(ctx)
}

type fakeAttendanceRepo struct {
	mu        sync.Mutex
	rows      map[string]attendance.Attendance
	createErr error
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{rows: map[string]attendance.Attendance{}}
}

func dayKey(userID string, date time.Time) string {
	return userID + "|" + date.Format(time.DateOnly)
}

func (r *fakeAttendanceRepo) LockUserDay(ctx context.Context, userID string, date time.Time) error {
	return ctx.Err()
}

func (r *fakeAttendanceRepo) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[dayKey(userID, date)]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *fakeAttendanceRepo) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return attendance.Attendance{}, r.createErr
	}
	key := dayKey(a.UserID, a.Date)
	if _, ok := r.rows[key]; ok {
		return attendance.Attendance{}, errors.New("duplicate key value violates unique constraint")
	}
	r.rows[key] = a
	return a, nil
}

func (r *fakeAttendanceRepo) RegisterCheckOut(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := dayKey(a.UserID, a.Date)
	if _, ok := r.rows[key]; !ok {
		return attendance.Attendance{}, fmt.Errorf("attendance %s not found", a.ID)
	}
	r.rows[key] = a
	return a, nil
}

func (r *fakeAttendanceRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type fakeDeviceRepo struct {
	mu      sync.Mutex
	devices map[string]device.Device
}

func (r *fakeDeviceRepo) Resolve(ctx context.Context, userID, deviceUUID string, deviceName *string) (device.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.devices == nil {
		r.devices = map[string]device.Device{}
	}
	key := userID + "|" + deviceUUID
	if d, ok := r.devices[key]; ok {
		return d, nil
	}
	d := device.Device{
		ID:         fmt.Sprintf("device-%d", len(r.devices)+1),
		UserID:     userID,
		DeviceUUID: deviceUUID,
		DeviceName: deviceName,
	}
	r.devices[key] = d
	return d, nil
}

type fakeUserRepo map[string]user.User

func (r fakeUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := r[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

type fakeLocationRepo map[string]location.Location

func (r fakeLocationRepo) GetByID(ctx context.Context, id string) (location.Location, error) {
	l, ok := r[id]
	if !ok {
		return location.Location{}, location.ErrLocationNotFound
	}
	return l, nil
}

// fakeHolidayRepo maps location id to holiday dates.
type fakeHolidayRepo map[string][]string

func (r fakeHolidayRepo) IsHoliday(ctx context.Context, locationID string, date time.Time) (bool, error) {
	for _, d := range r[locationID] {
		if d == date.Format(time.DateOnly) {
			return true, nil
		}
	}
	return false, nil
}

const (
	romeID     = "loc-rome"
	romeLat    = 41.9028
	romeLon    = 12.4964
	testDevice = "0123456789abcdef"
)

func ptr[T any](v T) *T { return &v }

func tod(s string) *clock.TimeOfDay {
	t, err := clock.ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return &t
}

func romeLocation() location.Location {
	return location.Location{
		ID:               romeID,
		Name:             "Rome HQ",
		Latitude:         ptr(romeLat),
		Longitude:        ptr(romeLon),
		Timezone:         ptr("Europe/Rome"),
		WorkingDays:      location.WorkingDays{1, 2, 3, 4, 5},
		WorkingStartTime: tod("09:00:00"),
		WorkingEndTime:   tod("18:00:00"),
		ExcludeHolidays:  true,
		Active:           true,
	}
}

type fixture struct {
	t           *testing.T
	now         time.Time
	users       fakeUserRepo
	locations   fakeLocationRepo
	holidays    fakeHolidayRepo
	attendances *fakeAttendanceRepo
	devices     *fakeDeviceRepo
	service     attendance.AttendanceService
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		t:           t,
		users:       fakeUserRepo{},
		locations:   fakeLocationRepo{romeID: romeLocation()},
		holidays:    fakeHolidayRepo{romeID: {"2025-04-25"}},
		attendances: newFakeAttendanceRepo(),
		devices:     &fakeDeviceRepo{},
	}

	ledger := NewLedger(&fakeTx{}, f.attendances, f.devices, time.Second)
	calendar := NewWorkCalendar(f.holidays, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.Func(func() time.Time { return f.now })

	f.service = NewAttendanceService(f.users, f.locations, calendar, ledger, clk, Policy{
		MarginMinutes:   15,
		ToleranceMeters: 150,
	}, logger)
	return f
}

func (f *fixture) addUser(id string, contract user.ContractType) {
	f.users[id] = user.User{
		ID:           id,
		LocationID:   ptr(romeID),
		Name:         id,
		ContractType: &contract,
		Active:       true,
	}
}

// at sets the clock to a local wall time in Rome.
func (f *fixture) at(date string, hhmm string) {
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(f.t, err)
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", date+" "+hhmm, rome)
	require.NoError(f.t, err)
	f.now = ts
}

func checkInReq(userID string, lat, lon string) attendance.CheckInRequest {
	return attendance.CheckInRequest{
		UserID:     userID,
		Latitude:   jsonNumber(lat),
		Longitude:  jsonNumber(lon),
		DeviceUUID: testDevice,
		DeviceName: ptr("Pixel 8"),
	}
}

func checkOutReq(userID string, lat, lon string) attendance.CheckOutRequest {
	return attendance.CheckOutRequest{
		UserID:     userID,
		Latitude:   jsonNumber(lat),
		Longitude:  jsonNumber(lon),
		DeviceUUID: testDevice,
	}
}

// Roughly 5.5 m north of the Rome site.
const (
	nearLat = "41.90285"
	nearLon = "12.4964"
)

// requireCode asserts err is an *attendance.Error with the given code.
func requireCode(t *testing.T, err error, code attendance.Code) *attendance.Error {
	t.Helper()
	require.Error(t, err)
	var domainErr *attendance.Error
	require.True(t, errors.As(err, &domainErr), "expected *attendance.Error, got %T: %v", err, err)
	require.Equal(t, code, domainErr.Code, domainErr.Error())
	return domainErr
}

func jsonNumber(s string) json.Number { return json.Number(s) }
