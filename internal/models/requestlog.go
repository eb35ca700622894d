package models

import (
	"time"

	"github.com/google/uuid"
)

// One served request. Route is the matched pattern, e.g. /api/v1/workloads/:index,
// and is empty for unmatched paths.
type RequestLog struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Timestamp      time.Time  `gorm:"index" json:"timestamp"`
	RequestID      string     `gorm:"index" json:"request_id"`
	SessionID      *uuid.UUID `gorm:"type:uuid;index" json:"session_id,omitempty"`
	Method         string     `json:"method"`
	Path           string     `json:"path"`
	Route          string     `gorm:"index" json:"route"`
	StatusCode     int        `gorm:"index" json:"status_code"`
	ResponseTimeMs int        `json:"response_time_ms"`
	IPAddress      string     `json:"ip_address"`
	UserAgent      string     `json:"user_agent"`
}

func (RequestLog) TableName() string {
	return "request_logs"
}
