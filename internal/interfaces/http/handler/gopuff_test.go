package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reportapp "github.com/homecooks/profitability/internal/application/report"
	"github.com/homecooks/profitability/internal/domain/integration"
	"github.com/homecooks/profitability/internal/domain/report"
	"github.com/homecooks/profitability/internal/interfaces/http/dto"
)

func TestGoPuffHandler_GetDashboard(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		offset int
	}{
		{"current week", "", 0},
		{"previous week", "?week_offset=-1", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeGoPuff{offset: 99}
			w, env := serveRoutes(t, NewGoPuffHandler(svc).Routes(), http.MethodGet, "/api/v1/gopuff/dashboard"+tt.query)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.offset, svc.offset)
			assert.Equal(t, "2025-09-16", decodeData[reportapp.GoPuffResponse](t, env).LatestDate)
		})
	}
}

func TestGoPuffHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"non-numeric offset", "?week_offset=last", nil, http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"future week", "?week_offset=1", report.ErrInvalidWeekOffset, http.StatusBadRequest, dto.ErrCodeInvalidWeekOffset},
		{"sheet unreachable", "", integration.ErrPlatformUnavailable, http.StatusBadGateway, dto.ErrCodeUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := serveRoutes(t, NewGoPuffHandler(&fakeGoPuff{err: tt.err}).Routes(), http.MethodGet, "/api/v1/gopuff/dashboard"+tt.query)

			assert.Equal(t, tt.wantStatus, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}
