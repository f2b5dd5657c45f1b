package validator

import (
	"regexp"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// UUIDv7 regex: version 7 (the 15th character must be '7'), all lowercase hex digits.
var uuidv7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// UUIDv7 validation
func IsValidUUID(uuid string) bool {
	return uuidv7Regex.MatchString(strings.ToLower(uuid))
}

// Coordinates must be written with a decimal point: 1-2 integer digits for
// latitude, 1-3 for longitude.
var (
	latitudeRegex  = regexp.MustCompile(`^-?\d{1,2}\.\d+$`)
	longitudeRegex = regexp.MustCompile(`^-?\d{1,3}\.\d+$`)
)

func IsValidLatitudeFormat(s string) bool {
	return latitudeRegex.MatchString(s)
}

func IsValidLongitudeFormat(s string) bool {
	return longitudeRegex.MatchString(s)
}

// Device identifiers reported by the mobile client are 16 hex characters.
var deviceUUIDRegex = regexp.MustCompile(`^[0-9a-fA-F]{16}$`)

func IsValidDeviceUUID(s string) bool {
	return deviceUUIDRegex.MatchString(s)
}

// MaxLength reports whether s has at most n characters.
func MaxLength(s string, n int) bool {
	return len([]rune(s)) <= n
}
