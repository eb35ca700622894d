package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/models"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/ratelimit"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSession(t *testing.T) {
	existing := uuid.New()

	tests := []struct {
		name    string
		header  string
		wantNew bool
	}{
		{name: "valid id is kept", header: existing.String()},
		{name: "missing id starts a session", header: "", wantNew: true},
		{name: "malformed id starts a session", header: "not-a-uuid", wantNew: true},
		{name: "nil id starts a session", header: uuid.Nil.String(), wantNew: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen uuid.UUID
			router := gin.New()
			router.Use(Session("X-Session-ID"))
			router.GET("/", func(c *gin.Context) {
				seen, _ = SessionID(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("X-Session-ID", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if got := w.Header().Get("X-Session-ID"); got != seen.String() {
				t.Errorf("echoed header = %q, want %q", got, seen)
			}
			if tt.wantNew && (seen == existing || seen == uuid.Nil) {
				t.Errorf("session id = %s, want a fresh id", seen)
			}
			if !tt.wantNew && seen != existing {
				t.Errorf("session id = %s, want %s", seen, existing)
			}
		})
	}
}

func TestSessionIDOutsideSession(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := SessionID(c); ok {
		t.Error("SessionID() ok = true without the session middleware")
	}
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Body.String() != "abc-123" || w.Header().Get(RequestIDHeader) != "abc-123" {
		t.Errorf("request id = %q, header %q, want abc-123", w.Body.String(), w.Header().Get(RequestIDHeader))
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if _, err := uuid.Parse(w.Body.String()); err != nil {
		t.Errorf("generated request id %q is not a uuid", w.Body.String())
	}
}

func TestRateLimit(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(ratelimit.NewLocal(2, time.Minute), zap.NewNop()))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		router.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, last.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("status codes = %v, want [200 200 429]", codes)
	}
	if last.Header().Get("X-RateLimit-Limit") != "2" {
		t.Errorf("X-RateLimit-Limit = %q, want 2", last.Header().Get("X-RateLimit-Limit"))
	}
	if last.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", last.Header().Get("X-RateLimit-Remaining"))
	}
	if last.Header().Get("Retry-After") == "" || last.Header().Get("Retry-After") == "0" {
		t.Errorf("Retry-After = %q, want a positive delay", last.Header().Get("Retry-After"))
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(ctx context.Context, key string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, context.DeadlineExceeded
}
func (failingLimiter) Limit() int            { return 1 }
func (failingLimiter) Window() time.Duration { return time.Minute }

func TestRateLimitFailsOpen(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(failingLimiter{}, zap.NewNop()))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when the limiter fails", w.Code)
	}
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(zap.NewNop()))
	router.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := gin.New()
	router.Use(CORS("X-Session-ID"))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Expose-Headers"); got == "" {
		t.Error("Access-Control-Expose-Headers not set")
	}
}

type recordingWriter struct {
	mu   sync.Mutex
	logs []models.RequestLog
}

func (r *recordingWriter) CreateBatch(ctx context.Context, logs []models.RequestLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, logs...)
	return nil
}

func TestRequestLoggerFlushesOnShutdown(t *testing.T) {
	writer := &recordingWriter{}
	requestLogger := NewRequestLogger(writer, 10, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	requestLogger.Start(ctx)

	router := gin.New()
	router.Use(RequestID(), requestLogger.Middleware(), Session("X-Session-ID"))
	router.DELETE("/api/v1/workloads/:index", func(c *gin.Context) { c.Status(http.StatusOK) })

	sessionID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/workloads/3", nil)
	req.Header.Set("X-Session-ID", sessionID.String())
	router.ServeHTTP(httptest.NewRecorder(), req)

	cancel()
	select {
	case <-requestLogger.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("request logger did not stop")
	}

	writer.mu.Lock()
	defer writer.mu.Unlock()
	if len(writer.logs) != 1 {
		t.Fatalf("logged %d requests, want 1", len(writer.logs))
	}
	entry := writer.logs[0]
	if entry.Path != "/api/v1/workloads/3" || entry.Route != "/api/v1/workloads/:index" || entry.StatusCode != http.StatusOK {
		t.Errorf("entry = %+v, want DELETE /api/v1/workloads/3 200", entry)
	}
	if entry.SessionID == nil || *entry.SessionID != sessionID {
		t.Errorf("entry session = %v, want %s", entry.SessionID, sessionID)
	}
	if entry.RequestID == "" {
		t.Error("entry has no request id")
	}
}
