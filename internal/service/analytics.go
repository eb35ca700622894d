package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/models"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/repository"
)

// RequestLogReader is the query side of the request log repository.
type RequestLogReader interface {
	CountByTimeRange(ctx context.Context, from, to time.Time) (int64, error)
	CountSessions(ctx context.Context, from, to time.Time) (int64, error)
	GetAverageResponseTime(ctx context.Context, from, to time.Time) (float64, error)
	GetPercentile(ctx context.Context, from, to time.Time, percentile float64) (int, error)
	CountByStatusCodeRange(ctx context.Context, minStatusCode, maxStatusCode int, from, to time.Time) (int64, error)
	GetTopEndpoints(ctx context.Context, from, to time.Time, limit int) ([]repository.EndpointCount, error)
	GetHourlyCounts(ctx context.Context, from, to time.Time) ([]repository.HourlyCount, error)
	FindByTimeRange(ctx context.Context, from, to time.Time, limit, offset int) ([]models.RequestLog, error)
	FindByStatusCode(ctx context.Context, statusCode int, from, to time.Time, limit, offset int) ([]models.RequestLog, error)
	FindBySession(ctx context.Context, sessionID uuid.UUID, from, to time.Time, limit, offset int) ([]models.RequestLog, error)
	DeleteOldLogs(ctx context.Context, before time.Time) (int64, error)
}

type AnalyticsService struct {
	repository RequestLogReader
}

func NewAnalyticsService(repo RequestLogReader) *AnalyticsService {
	return &AnalyticsService{repository: repo}
}

// Holds analytics summary data
type AnalyticsSummary struct {
	TotalRequests   int64                      `json:"total_requests"`
	UniqueSessions  int64                      `json:"unique_sessions"`
	AvgResponseTime float64                    `json:"avg_response_time_ms"`
	P50ResponseTime int                        `json:"p50_response_time_ms"`
	P95ResponseTime int                        `json:"p95_response_time_ms"`
	P99ResponseTime int                        `json:"p99_response_time_ms"`
	ErrorRate       float64                    `json:"error_rate"`
	SuccessRate     float64                    `json:"success_rate"`
	ClientErrorRate float64                    `json:"client_error_rate"`
	ServerErrorRate float64                    `json:"server_error_rate"`
	TopEndpoints    []repository.EndpointCount `json:"top_endpoints"`
}

// Filters for paged log listing
type LogQuery struct {
	From       time.Time
	To         time.Time
	StatusCode *int
	SessionID  *uuid.UUID
	Limit      int
	Offset     int
}

// Retrieves analytics summary for a time range
func (s *AnalyticsService) GetSummary(ctx context.Context, from, to time.Time) (*AnalyticsSummary, error) {
	summary := &AnalyticsSummary{TopEndpoints: []repository.EndpointCount{}}

	totalRequests, err := s.repository.CountByTimeRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary.TotalRequests = totalRequests

	if totalRequests == 0 {
		summary.SuccessRate = 100
		return summary, nil
	}

	if summary.UniqueSessions, err = s.repository.CountSessions(ctx, from, to); err != nil {
		return nil, err
	}

	if summary.AvgResponseTime, err = s.repository.GetAverageResponseTime(ctx, from, to); err != nil {
		return nil, err
	}

	// Percentiles are best effort
	summary.P50ResponseTime, _ = s.repository.GetPercentile(ctx, from, to, 0.50)
	summary.P95ResponseTime, _ = s.repository.GetPercentile(ctx, from, to, 0.95)
	summary.P99ResponseTime, _ = s.repository.GetPercentile(ctx, from, to, 0.99)

	clientErrors, err := s.repository.CountByStatusCodeRange(ctx, 400, 499, from, to)
	if err != nil {
		return nil, err
	}
	serverErrors, err := s.repository.CountByStatusCodeRange(ctx, 500, 599, from, to)
	if err != nil {
		return nil, err
	}
	summary.applyErrorCounts(clientErrors, serverErrors)

	topEndpoints, err := s.repository.GetTopEndpoints(ctx, from, to, 10)
	if err != nil {
		return nil, err
	}
	if topEndpoints != nil {
		summary.TopEndpoints = topEndpoints
	}

	return summary, nil
}

func (a *AnalyticsSummary) applyErrorCounts(clientErrors, serverErrors int64) {
	total := float64(a.TotalRequests)
	a.ClientErrorRate = float64(clientErrors) / total * 100
	a.ServerErrorRate = float64(serverErrors) / total * 100
	a.ErrorRate = a.ClientErrorRate + a.ServerErrorRate
	a.SuccessRate = 100 - a.ErrorRate
}

// Retrieves hourly request volume
func (s *AnalyticsService) GetTimeSeries(ctx context.Context, from, to time.Time) ([]repository.HourlyCount, error) {
	series, err := s.repository.GetHourlyCounts(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if series == nil {
		series = []repository.HourlyCount{}
	}
	return series, nil
}

// Retrieves request logs with pagination. A session filter wins over a
// status filter.
func (s *AnalyticsService) GetLogs(ctx context.Context, q LogQuery) ([]models.RequestLog, error) {
	var (
		logs []models.RequestLog
		err  error
	)

	switch {
	case q.SessionID != nil:
		logs, err = s.repository.FindBySession(ctx, *q.SessionID, q.From, q.To, q.Limit, q.Offset)
	case q.StatusCode != nil:
		logs, err = s.repository.FindByStatusCode(ctx, *q.StatusCode, q.From, q.To, q.Limit, q.Offset)
	default:
		logs, err = s.repository.FindByTimeRange(ctx, q.From, q.To, q.Limit, q.Offset)
	}
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []models.RequestLog{}
	}

	return logs, nil
}

// Deletes logs older than specified retention period
func (s *AnalyticsService) CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error) {
	cutOffDate := time.Now().AddDate(0, 0, -retentionDays)
	return s.repository.DeleteOldLogs(ctx, cutOffDate)
}
