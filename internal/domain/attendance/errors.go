package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	ErrAlreadyClockedIn     = errors.New("already clocked in")
	ErrNotClockedIn         = errors.New("no open session to clock out from")
	ErrOutsideGeofence      = errors.New("you are outside the allowed radius")
	ErrLocationRequired     = errors.New("location is required for this company")
	ErrAttendanceNotFound   = errors.New("attendance record not found")
	ErrNoOvertimeToApprove  = errors.New("attendance record has no calculated overtime")
	ErrInvalidApprovedHours = errors.New("approved overtime exceeds calculated overtime")
)

// GeofenceError reports how far outside the configured radius a clock-in was.
type GeofenceError struct {
	DistanceMeters float64
	RadiusMeters   float64
}

func (e *GeofenceError) Error() string {
	return fmt.Sprintf("%s: distance %.0fm exceeds allowed %.0fm", ErrOutsideGeofence.Error(), e.DistanceMeters, e.RadiusMeters)
}

func (e *GeofenceError) Unwrap() error {
	return ErrOutsideGeofence
}
