package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromClaims(r)
	if err != nil {
		slog.Warn("CheckIn rejected token claims", "error", err)
		response.Unauthorized(w, err.Error())
		return
	}

	var req attendance.CheckInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		slog.Error("CheckIn decode error", "error", err)
		response.HandleError(w, err)
		return
	}
	req.UserID = userID

	result, err := h.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check-in registered successfully", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromClaims(r)
	if err != nil {
		slog.Warn("CheckOut rejected token claims", "error", err)
		response.Unauthorized(w, err.Error())
		return
	}

	var req attendance.CheckOutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		slog.Error("CheckOut decode error", "error", err)
		response.HandleError(w, err)
		return
	}
	req.UserID = userID

	result, err := h.attendanceService.CheckOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check-out registered successfully", result)
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromClaims(r)
	if err != nil {
		slog.Warn("Today rejected token claims", "error", err)
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := h.attendanceService.Today(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// userIDFromClaims reads the verified user_id claim. Identity never comes
// from the request body.
func userIDFromClaims(r *http.Request) (string, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims[jwt.ClaimUserID].(string)
	if !ok || userID == "" {
		return "", errors.New("user_id claim is missing or invalid")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return "", errors.New("user_id claim is not a valid UUID")
	}
	return userID, nil
}

// decodeJSON reports malformed bodies as invalid input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		field := "body"
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			field = typeErr.Field
		}
		return attendance.NewInvalidInput(validator.ValidationErrors{
			{Field: field, Message: "invalid JSON: " + err.Error()},
		})
	}
	return nil
}
