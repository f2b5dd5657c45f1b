package attendance

import (
	"encoding/json"
	"strconv"

	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

// Coordinates are kept as json.Number so the literal the client sent can be
// checked for shape, not just for range.
type CheckInRequest struct {
	UserID     string      `json:"-"`
	Latitude   json.Number `json:"latitude"`
	Longitude  json.Number `json:"longitude"`
	DeviceUUID string      `json:"device_uuid"`
	DeviceName *string     `json:"device_name,omitempty"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	validateCoordinates(r.Latitude, r.Longitude, &errs)
	validateDevice(r.DeviceUUID, &errs)

	if r.DeviceName != nil && !validator.MaxLength(*r.DeviceName, 255) {
		errs = append(errs, validator.ValidationError{
			Field:   "device_name",
			Message: "device_name must not exceed 255 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Coordinates returns the parsed latitude and longitude. Call after Validate.
func (r *CheckInRequest) Coordinates() (float64, float64) {
	return parseCoordinate(r.Latitude), parseCoordinate(r.Longitude)
}

type CheckOutRequest struct {
	UserID     string      `json:"-"`
	Latitude   json.Number `json:"latitude"`
	Longitude  json.Number `json:"longitude"`
	DeviceUUID string      `json:"device_uuid"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	validateCoordinates(r.Latitude, r.Longitude, &errs)
	validateDevice(r.DeviceUUID, &errs)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Coordinates returns the parsed latitude and longitude. Call after Validate.
func (r *CheckOutRequest) Coordinates() (float64, float64) {
	return parseCoordinate(r.Latitude), parseCoordinate(r.Longitude)
}

func validateCoordinates(lat, lon json.Number, errs *validator.ValidationErrors) {
	switch {
	case lat == "":
		*errs = append(*errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude is required",
		})
	case !validator.IsValidLatitudeFormat(lat.String()):
		*errs = append(*errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be a decimal number with 1 or 2 integer digits",
		})
	case !geo.ValidLatitude(parseCoordinate(lat)):
		*errs = append(*errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	switch {
	case lon == "":
		*errs = append(*errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude is required",
		})
	case !validator.IsValidLongitudeFormat(lon.String()):
		*errs = append(*errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be a decimal number with 1 to 3 integer digits",
		})
	case !geo.ValidLongitude(parseCoordinate(lon)):
		*errs = append(*errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}
}

func validateDevice(deviceUUID string, errs *validator.ValidationErrors) {
	if validator.IsEmpty(deviceUUID) {
		*errs = append(*errs, validator.ValidationError{
			Field:   "device_uuid",
			Message: "device_uuid is required",
		})
	} else if !validator.IsValidDeviceUUID(deviceUUID) {
		*errs = append(*errs, validator.ValidationError{
			Field:   "device_uuid",
			Message: "device_uuid must be 16 hexadecimal characters",
		})
	}
}

func parseCoordinate(n json.Number) float64 {
	v, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

type AttendanceResponse struct {
	ID                string   `json:"id"`
	UserID            string   `json:"user_id"`
	DeviceID          string   `json:"device_id"`
	Date              string   `json:"date"`
	CheckIn           string   `json:"check_in"`
	CheckOut          *string  `json:"check_out,omitempty"`
	CheckInLatitude   *float64 `json:"check_in_latitude,omitempty"`
	CheckInLongitude  *float64 `json:"check_in_longitude,omitempty"`
	CheckOutLatitude  *float64 `json:"check_out_latitude,omitempty"`
	CheckOutLongitude *float64 `json:"check_out_longitude,omitempty"`
}

type TodayResponse struct {
	Date       string              `json:"date"`
	Timezone   string              `json:"timezone"`
	State      string              `json:"state"`
	Attendance *AttendanceResponse `json:"attendance,omitempty"`
}

// ToResponse maps a record to its API shape.
func ToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:                a.ID,
		UserID:            a.UserID,
		DeviceID:          a.DeviceID,
		Date:              a.Date.Format("2006-01-02"),
		CheckIn:           a.CheckIn.String(),
		CheckInLatitude:   a.CheckInLatitude,
		CheckInLongitude:  a.CheckInLongitude,
		CheckOutLatitude:  a.CheckOutLatitude,
		CheckOutLongitude: a.CheckOutLongitude,
	}
	if a.CheckOut != nil {
		out := a.CheckOut.String()
		resp.CheckOut = &out
	}
	return resp
}
