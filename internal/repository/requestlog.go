package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/models"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/storage"
)

type RequestLogRepository struct {
	db *storage.Postgres
}

func NewRequestLogRepository(db *storage.Postgres) *RequestLogRepository {
	return &RequestLogRepository{db: db}
}

// Inserts request logs in batches of up to 100 rows
func (r *RequestLogRepository) CreateBatch(ctx context.Context, logs []models.RequestLog) error {
	if len(logs) == 0 {
		return nil
	}

	return r.db.DB.WithContext(ctx).CreateInBatches(logs, 100).Error
}

// Retrieves logs within a time range
func (r *RequestLogRepository) FindByTimeRange(ctx context.Context, from, to time.Time, limit, offset int) ([]models.RequestLog, error) {
	var logs []models.RequestLog

	err := r.db.DB.WithContext(ctx).
		Where("timestamp BETWEEN ? AND ?", from, to).
		Order("timestamp DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error

	return logs, err
}

// Retrieves logs for a single calculator session
func (r *RequestLogRepository) FindBySession(ctx context.Context, sessionID uuid.UUID, from, to time.Time, limit, offset int) ([]models.RequestLog, error) {
	var logs []models.RequestLog
	err := r.db.DB.WithContext(ctx).
		Where("session_id = ? AND timestamp BETWEEN ? AND ?", sessionID, from, to).
		Order("timestamp DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error

	return logs, err
}

// Counts distinct sessions seen in a time range
func (r *RequestLogRepository) CountSessions(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64

	err := r.db.DB.WithContext(ctx).
		Model(&models.RequestLog{}).
		Where("session_id IS NOT NULL AND timestamp BETWEEN ? AND ?", from, to).
		Distinct("session_id").
		Count(&count).Error

	return count, err
}

// Retrieve logs with specific status code
func (r *RequestLogRepository) FindByStatusCode(ctx context.Context, statusCode int, from, to time.Time, limit, offset int) ([]models.RequestLog, error) {
	var logs []models.RequestLog

	err := r.db.DB.WithContext(ctx).
		Where("status_code = ? AND timestamp BETWEEN ? AND ?", statusCode, from, to).
		Order("timestamp DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error

	return logs, err
}

// Counts logs in a time range
func (r *RequestLogRepository) CountByTimeRange(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64

	err := r.db.DB.WithContext(ctx).
		Model(&models.RequestLog{}).
		Where("timestamp BETWEEN ? AND ?", from, to).
		Count(&count).Error

	return count, err
}

// Calculates average response time
func (r *RequestLogRepository) GetAverageResponseTime(ctx context.Context, from, to time.Time) (float64, error) {
	var avg float64

	err := r.db.DB.WithContext(ctx).
		Model(&models.RequestLog{}).
		Where("timestamp BETWEEN ? AND ?", from, to).
		Select("COALESCE(AVG(response_time_ms), 0)").
		Scan(&avg).Error

	return avg, err
}

// Calculates response time percentile
func (r *RequestLogRepository) GetPercentile(ctx context.Context, from, to time.Time, percentile float64) (int, error) {
	// Calculate percentile using SQL
	var result float64
	query := `
		SELECT PERCENTILE_CONT(?) WITHIN GROUP (ORDER BY response_time_ms)
		FROM request_logs
		WHERE timestamp BETWEEN ? AND ?
	`

	err := r.db.DB.WithContext(ctx).Raw(query, percentile, from, to).Scan(&result).Error
	return int(result), err
}

// Count logs by status code range (e.g., 4xx, 5xx)
func (r *RequestLogRepository) CountByStatusCodeRange(ctx context.Context, minStatusCode, maxStatusCode int, from, to time.Time) (int64, error) {
	var count int64

	err := r.db.DB.WithContext(ctx).
		Model(&models.RequestLog{}).
		Where("status_code BETWEEN ? AND ? AND timestamp BETWEEN ? AND ?", minStatusCode, maxStatusCode, from, to).
		Count(&count).Error

	return count, err
}

// Request count for a route
type EndpointCount struct {
	Route string `json:"route"`
	Count int64  `json:"count"`
}

// Request volume for one hour bucket
type HourlyCount struct {
	Hour            time.Time `json:"hour"`
	Count           int64     `json:"count"`
	AvgResponseTime float64   `json:"avg_response_time"`
}

// Returns the most requested routes
func (r *RequestLogRepository) GetTopEndpoints(ctx context.Context, from, to time.Time, limit int) ([]EndpointCount, error) {
	var results []EndpointCount

	err := r.db.DB.WithContext(ctx).
		Model(&models.RequestLog{}).
		Select("route, COUNT(*) AS count").
		Where("route <> '' AND timestamp BETWEEN ? AND ?", from, to).
		Group("route").
		Order("count DESC").
		Limit(limit).
		Scan(&results).Error

	return results, err
}

// Returns the request count grouped by hour
func (r *RequestLogRepository) GetHourlyCounts(ctx context.Context, from, to time.Time) ([]HourlyCount, error) {
	var results []HourlyCount

	err := r.db.DB.WithContext(ctx).
		Model(&models.RequestLog{}).
		Select("DATE_TRUNC('hour', timestamp) AS hour, COUNT(*) AS count, AVG(response_time_ms) AS avg_response_time").
		Where("timestamp BETWEEN ? AND ?", from, to).
		Group("hour").
		Order("hour ASC").
		Scan(&results).Error

	return results, err
}

// Deletes logs older than the specified time
func (r *RequestLogRepository) DeleteOldLogs(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Where("timestamp < ?", before).
		Delete(&models.RequestLog{})

	return result.RowsAffected, result.Error
}
