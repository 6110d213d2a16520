package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/analytics"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	analytics.Service
	gotRange analytics.Range
	gotLimit int
	err      error
}

func (s *stubService) Location() *time.Location { return time.UTC }

func (s *stubService) Summary(_ context.Context, rng analytics.Range) (*analytics.Summary, error) {
	s.gotRange = rng
	if s.err != nil {
		return nil, s.err
	}
	return &analytics.Summary{TotalSales: 120.5, OrderCount: 2, AverageOrderValue: 60.3}, nil
}

func (s *stubService) TopSellers(_ context.Context, rng analytics.Range, limit int) ([]analytics.TopSeller, error) {
	s.gotRange = rng
	s.gotLimit = limit
	return []analytics.TopSeller{}, nil
}

func TestSummaryPassesDateRange(t *testing.T) {
	svc := &stubService{}
	req := httptest.NewRequest(http.MethodGet, "/dashboard/summary?startDate=2024-01-01&endDate=2024-01-31", nil)
	rec := httptest.NewRecorder()
	Summary(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.gotRange.Start)
	require.NotNil(t, svc.gotRange.End)
	require.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC), *svc.gotRange.End)

	var body struct {
		Data analytics.Summary `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, 2, body.Data.OrderCount)
}

func TestSummaryIgnoresHalfRange(t *testing.T) {
	svc := &stubService{}
	req := httptest.NewRequest(http.MethodGet, "/dashboard/summary?startDate=2024-01-01", nil)
	Summary(svc, nil).ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, svc.gotRange.IsZero())
}

func TestSummaryServiceError(t *testing.T) {
	svc := &stubService{err: errors.New("db down")}
	rec := httptest.NewRecorder()
	Summary(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/summary", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTopProductsLimit(t *testing.T) {
	svc := &stubService{}
	rec := httptest.NewRecorder()
	TopProducts(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/topProducts", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, analytics.DefaultTopLimit, svc.gotLimit)

	rec = httptest.NewRecorder()
	TopProducts(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/topProducts?limit=abc", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
