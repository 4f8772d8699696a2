package report

import "github.com/homecooks/profitability/internal/domain/shared"

var (
	// ErrInvalidDateRange is returned when a report window starts after it ends
	ErrInvalidDateRange = shared.NewDomainError("INVALID_DATE_RANGE", "start date must not be after end date")

	// ErrInvalidWeekOffset is returned for week offsets pointing into the future
	ErrInvalidWeekOffset = shared.NewDomainError("INVALID_WEEK_OFFSET", "week offset must be zero or negative")
)
