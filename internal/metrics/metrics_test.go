package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_SubmissionLifecycle(t *testing.T) {
	m := New()

	m.SubmissionStarted(1024)
	if got := testutil.ToFloat64(m.SubmissionsActive); got != 1 {
		t.Errorf("active = %v, want 1", got)
	}

	m.SubmissionFinished(OutcomeSuccess, 2*time.Second)
	m.SubmissionRejected(OutcomeValidation)

	if got := testutil.ToFloat64(m.SubmissionsActive); got != 0 {
		t.Errorf("active = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.UploadBytes); got != 1024 {
		t.Errorf("upload bytes = %v, want 1024", got)
	}
	if got := testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues(OutcomeSuccess)); got != 1 {
		t.Errorf("success total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues(OutcomeValidation)); got != 1 {
		t.Errorf("validation total = %v, want 1", got)
	}
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.StaleCompletion()
	m.HealthCheck(true)
	m.HealthCheck(false)
	m.HealthCheck(false)

	if got := testutil.ToFloat64(m.StaleCompletions); got != 1 {
		t.Errorf("stale = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.HealthChecks.WithLabelValues("unhealthy")); got != 2 {
		t.Errorf("unhealthy = %v, want 2", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.SubmissionRejected(OutcomeRejected)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `truthweaver_submissions_total{outcome="rejected"} 1`) {
		t.Errorf("exposition missing submissions counter:\n%s", body)
	}
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	// two instances must not collide on registration
	a, b := New(), New()
	a.StaleCompletion()

	if got := testutil.ToFloat64(b.StaleCompletions); got != 0 {
		t.Errorf("registries leaked state: %v", got)
	}
}
