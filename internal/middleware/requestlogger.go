package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/models"
	"go.uber.org/zap"
)

const (
	logBatchSize     = 100
	logFlushInterval = 5 * time.Second
)

// LogWriter persists request logs in bulk.
type LogWriter interface {
	CreateBatch(ctx context.Context, logs []models.RequestLog) error
}

// RequestLogger queues request logs on a buffered channel and writes them
// from a single background worker. Entries are dropped when the buffer is full.
type RequestLogger struct {
	writer  LogWriter
	logger  *zap.Logger
	entries chan models.RequestLog
	done    chan struct{}
}

func NewRequestLogger(writer LogWriter, bufferSize int, logger *zap.Logger) *RequestLogger {
	if bufferSize <= 0 {
		bufferSize = logBatchSize
	}
	return &RequestLogger{
		writer:  writer,
		logger:  logger,
		entries: make(chan models.RequestLog, bufferSize),
		done:    make(chan struct{}),
	}
}

// Start runs the batching worker until ctx is cancelled. Whatever is still
// queued at that point is flushed before Done is closed.
func (r *RequestLogger) Start(ctx context.Context) {
	go func() {
		defer close(r.done)

		batch := make([]models.RequestLog, 0, logBatchSize)
		ticker := time.NewTicker(logFlushInterval)
		defer ticker.Stop()

		for {
			select {
			case entry := <-r.entries:
				batch = append(batch, entry)
				if len(batch) >= logBatchSize {
					batch = r.flush(batch)
				}
			case <-ticker.C:
				batch = r.flush(batch)
			case <-ctx.Done():
				r.drain(batch)
				return
			}
		}
	}()
}

// Done is closed once the worker has flushed and exited.
func (r *RequestLogger) Done() <-chan struct{} {
	return r.done
}

func (r *RequestLogger) drain(batch []models.RequestLog) {
	for {
		select {
		case entry := <-r.entries:
			batch = append(batch, entry)
		default:
			r.flush(batch)
			return
		}
	}
}

func (r *RequestLogger) flush(batch []models.RequestLog) []models.RequestLog {
	if len(batch) == 0 {
		return batch
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := r.writer.CreateBatch(ctx, batch); err != nil {
		r.logger.Error("failed to insert request logs",
			zap.Int("count", len(batch)),
			zap.Error(err),
		)
	}

	return make([]models.RequestLog, 0, logBatchSize)
}

// Middleware records every request that passes through it.
func (r *RequestLogger) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		var sessionID *uuid.UUID
		if id, ok := SessionID(c); ok {
			sessionID = &id
		}

		entry := models.RequestLog{
			Timestamp:      start,
			RequestID:      c.GetString(RequestIDKey),
			SessionID:      sessionID,
			Method:         c.Request.Method,
			Path:           c.Request.URL.Path,
			Route:          c.FullPath(),
			StatusCode:     c.Writer.Status(),
			ResponseTimeMs: int(time.Since(start).Milliseconds()),
			IPAddress:      c.ClientIP(),
			UserAgent:      c.Request.UserAgent(),
		}

		select {
		case r.entries <- entry:
		default:
			r.logger.Warn("request log buffer full, dropping entry",
				zap.String("request_id", entry.RequestID),
			)
		}
	}
}
