package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordEvaluation(t *testing.T) {
	c := NewCollector()

	c.RecordEvaluation(2, 2045.33, nil)
	c.RecordEvaluation(1, 0, errors.New("boom"))

	if got := testutil.ToFloat64(c.evaluationsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok evaluations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.evaluationsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("error evaluations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.lastMonthlyCredits); got != 2045.33 {
		t.Errorf("last monthly credits = %v, want 2045.33", got)
	}
}

func TestRecordMutation(t *testing.T) {
	c := NewCollector()

	c.RecordMutation("append", nil)
	c.RecordMutation("append", nil)
	c.RecordMutation("remove", errors.New("out of range"))

	if got := testutil.ToFloat64(c.mutationsTotal.WithLabelValues("append", "ok")); got != 2 {
		t.Errorf("append ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.mutationsTotal.WithLabelValues("remove", "error")); got != 1 {
		t.Errorf("remove error = %v, want 1", got)
	}
}

func TestRecordRequest(t *testing.T) {
	c := NewCollector()
	c.RecordRequest("GET", "", 404, 10*time.Millisecond)

	if got := testutil.CollectAndCount(c.requestDuration); got != 1 {
		t.Errorf("request series = %d, want 1", got)
	}
}
