package scheduler

import "errors"

var (
	// ErrInvalidSchedule is returned for a refresh time that is not HH:MM
	ErrInvalidSchedule = errors.New("invalid refresh schedule")

	// ErrRefreshInProgress is returned when a manual refresh overlaps a running one
	ErrRefreshInProgress = errors.New("refresh already in progress")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
