package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	reportapp "github.com/homecooks/profitability/internal/application/report"
	"github.com/homecooks/profitability/internal/interfaces/http/dto"
	"github.com/homecooks/profitability/internal/interfaces/http/middleware"
)

const dateLayout = "2006-01-02"

// Day filter values accepted by the D2C endpoints
const (
	DayFilterAll            = "all"
	DayFilterMonday         = "monday"
	DayFilterThursday       = "thursday"
	DayFilterMondayThursday = "monday_thursday"
	defaultDayFilter        = DayFilterAll
)

// WindowRequest is the date window of a dashboard query. Missing dates
// default to the last 14 days.
type WindowRequest struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

// D2CQueryRequest is the query of the D2C endpoints
type D2CQueryRequest struct {
	WindowRequest
	DayFilter string `form:"day_filter" binding:"omitempty,oneof=all monday thursday monday_thursday"`
}

// OrdersQueryRequest adds the response format to the D2C query
type OrdersQueryRequest struct {
	D2CQueryRequest
	Format string `form:"format" binding:"omitempty,oneof=json csv"`
}

// GoPuffQueryRequest selects the Go Puff week, 0 for the current one
type GoPuffQueryRequest struct {
	WeekOffset int `form:"week_offset"`
}

// window resolves the requested dates against the default window. Dates are
// already validated by binding.
func (r WindowRequest) window(now time.Time) (time.Time, time.Time) {
	start, end := reportapp.DefaultWindow(now)
	if r.StartDate != "" {
		start, _ = time.ParseInLocation(dateLayout, r.StartDate, now.Location())
	}
	if r.EndDate != "" {
		end, _ = time.ParseInLocation(dateLayout, r.EndDate, now.Location())
	}
	return start, end
}

func (r D2CQueryRequest) toQuery(now time.Time) reportapp.DashboardQuery {
	start, end := r.window(now)
	q := reportapp.DashboardQuery{Start: start, End: end}

	filter := r.DayFilter
	if filter == "" {
		filter = defaultDayFilter
	}
	switch filter {
	case DayFilterAll:
		q.IncludeAll = true
	case DayFilterMonday:
		q.IncludeMonday = true
	case DayFilterThursday:
		q.IncludeThursday = true
	case DayFilterMondayThursday:
		q.IncludeMonday = true
		q.IncludeThursday = true
	}
	return q
}

func (r WindowRequest) toRetailQuery(now time.Time) reportapp.RetailQuery {
	start, end := r.window(now)
	return reportapp.RetailQuery{Start: start, End: end}
}

// clock returns the handler clock, time.Now when unset
type clock func() time.Time

func (f clock) now() time.Time {
	if f == nil {
		return time.Now()
	}
	return f()
}

// bindQuery binds and validates the query string. Values that do not parse
// into their field type are a 400 as well.
func bindQuery(c *gin.Context, h *BaseHandler, req any) bool {
	err := c.ShouldBindQuery(req)
	if err == nil {
		return true
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		middleware.HandleValidationError(c, err)
	} else {
		h.ErrorWithCode(c, dto.ErrCodeInvalidInput, "Malformed query parameters")
	}
	return false
}
