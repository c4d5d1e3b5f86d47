package submission

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/yildizm/TruthWeaver/internal/analysis"
	"github.com/yildizm/TruthWeaver/internal/metrics"
	"github.com/yildizm/TruthWeaver/internal/session"
	"github.com/yildizm/TruthWeaver/internal/weaver"
)

func audio(name string) *session.AudioFile {
	return session.NewAudioFile(name, "audio/wav", []byte("RIFF-bytes"))
}

// newServerController wires a controller to an httptest server and counts requests.
func newServerController(t *testing.T, status int, body string) (*Controller, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	client, err := weaver.New(&weaver.Config{BaseURL: server.URL, MaxUploadBytes: weaver.DefaultMaxUploadBytes})
	if err != nil {
		t.Fatalf("weaver.New() error = %v", err)
	}
	return New(session.NewStore(), client), &calls
}

func TestSubmit_NoFile(t *testing.T) {
	c, calls := newServerController(t, http.StatusOK, `{}`)

	outcome := c.Submit(context.Background(), nil)

	if outcome.OK() {
		t.Fatal("expected failure")
	}
	if outcome.Failure.Message != "Please select an audio file." {
		t.Errorf("Message = %q", outcome.Failure.Message)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no network call, got %d", calls.Load())
	}

	snap := c.Store().Snapshot()
	if snap.Status != session.StatusFailed || snap.ErrorMessage != "Please select an audio file." {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestSubmit_OversizeFile(t *testing.T) {
	c, calls := newServerController(t, http.StatusOK, `{}`)
	c.maxUpload = 4

	outcome := c.Submit(context.Background(), audio("big.wav"))

	if outcome.OK() || outcome.Failure.Message != "Audio file exceeds the 4 bytes upload limit." {
		t.Errorf("unexpected outcome %+v", outcome.Failure)
	}
	if calls.Load() != 0 {
		t.Error("oversize file must not reach the network")
	}
}

func TestSubmit_Success(t *testing.T) {
	c, calls := newServerController(t, http.StatusOK, `{
		"success": true,
		"transcript": "hello",
		"analysis": {"revealed_truth": {"age": "29"}, "deception_patterns": []}
	}`)

	outcome := c.Submit(context.Background(), audio("a.wav"))

	if !outcome.OK() {
		t.Fatalf("unexpected failure %+v", outcome.Failure)
	}
	if calls.Load() != 1 {
		t.Errorf("expected one call, got %d", calls.Load())
	}

	snap := c.Store().Snapshot()
	if snap.Status != session.StatusSucceeded {
		t.Errorf("Status = %v", snap.Status)
	}
	if snap.Transcript != "hello" {
		t.Errorf("Transcript = %q", snap.Transcript)
	}
	if snap.HasError() {
		t.Errorf("unexpected error %q", snap.ErrorMessage)
	}
	if v, _ := snap.Analysis.RevealedTruth.Get("age"); v.String() != "29" {
		t.Errorf("age = %q", v.String())
	}
	if len(snap.Analysis.DeceptionPatterns) != 0 {
		t.Error("expected empty pattern list")
	}
}

func TestSubmit_FailureMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
		exact  bool
	}{
		{
			name:   "success false",
			status: http.StatusOK,
			body:   `{"success": false}`,
			want:   "Failed to process audio: Processing failed",
			exact:  true,
		},
		{
			name:   "server message",
			status: http.StatusInternalServerError,
			body:   `{"error": "audio too short"}`,
			want:   "audio too short",
		},
		{
			name:   "server without message",
			status: http.StatusInternalServerError,
			body:   `Internal Server Error`,
			want:   "Failed to process audio: Failed to process audio",
			exact:  true,
		},
		{
			name:   "incomplete analysis",
			status: http.StatusOK,
			body:   `{"success": true, "transcript": "x"}`,
			want:   "Failed to process audio: Processing failed",
			exact:  true,
		},
		{
			name:   "unparseable body",
			status: http.StatusOK,
			body:   `<html>`,
			want:   "Failed to process audio: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newServerController(t, tt.status, tt.body)

			outcome := c.Submit(context.Background(), audio("a.wav"))
			if outcome.OK() {
				t.Fatal("expected failure")
			}

			snap := c.Store().Snapshot()
			if snap.Status != session.StatusFailed {
				t.Errorf("Status = %v", snap.Status)
			}
			if snap.Transcript != "" || snap.Analysis != nil {
				t.Error("failure must leave results empty")
			}
			if tt.exact && snap.ErrorMessage != tt.want {
				t.Errorf("ErrorMessage = %q, want %q", snap.ErrorMessage, tt.want)
			}
			if !tt.exact && !strings.Contains(snap.ErrorMessage, tt.want) {
				t.Errorf("ErrorMessage = %q, want it to contain %q", snap.ErrorMessage, tt.want)
			}
			if outcome.Failure.Message != snap.ErrorMessage {
				t.Errorf("outcome and session disagree: %q vs %q", outcome.Failure.Message, snap.ErrorMessage)
			}
			if !snap.Status.CanSubmit() {
				t.Error("store must be submittable after failure")
			}
		})
	}
}

type fakeUploader struct {
	calls   atomic.Int32
	release chan struct{}
	entered chan struct{}
	resp    *weaver.Response
	err     error
}

func (f *fakeUploader) TranscribeAndAnalyze(ctx context.Context, upload *weaver.Upload) (*weaver.Response, error) {
	f.calls.Add(1)
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.resp, f.err
}

func okResponse() *weaver.Response {
	return &weaver.Response{
		Transcript: "done",
		Analysis:   &analysis.Result{RevealedTruth: analysis.Truth{}, DeceptionPatterns: []analysis.Pattern{}},
	}
}

func TestSubmit_IgnoredWhileInFlight(t *testing.T) {
	up := &fakeUploader{
		release: make(chan struct{}),
		entered: make(chan struct{}, 1),
		resp:    okResponse(),
	}
	c := New(session.NewStore(), up)

	done := make(chan Outcome, 1)
	go func() { done <- c.Submit(context.Background(), audio("a.wav")) }()
	<-up.entered

	second := c.Submit(context.Background(), audio("b.wav"))
	if second.OK() || !errors.Is(second.Failure.Err, session.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %+v", second.Failure)
	}

	snap := c.Store().Snapshot()
	if snap.Status != session.StatusInFlight || snap.File.Name != "a.wav" || snap.HasError() {
		t.Errorf("ignored submit must not touch state, got %+v", snap)
	}

	close(up.release)
	if first := <-done; !first.OK() {
		t.Errorf("first submission failed: %+v", first.Failure)
	}
	if up.calls.Load() != 1 {
		t.Errorf("expected exactly one network call, got %d", up.calls.Load())
	}
}

func TestSubmit_ConcurrentCallersSingleFlight(t *testing.T) {
	up := &fakeUploader{release: make(chan struct{}), resp: okResponse()}
	c := New(session.NewStore(), up)
	file := audio("a.wav")

	var wg sync.WaitGroup
	var ignored atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if o := c.Submit(context.Background(), file); !o.OK() {
				ignored.Add(1)
			}
		}()
	}

	// wait until every caller except the one in flight has returned
	deadline := time.After(5 * time.Second)
	for ignored.Load() < 19 {
		select {
		case <-deadline:
			t.Fatalf("timed out, ignored=%d", ignored.Load())
		case <-time.After(time.Millisecond):
		}
	}
	close(up.release)
	wg.Wait()

	if up.calls.Load() != 1 {
		t.Errorf("expected one network call, got %d", up.calls.Load())
	}
	if c.Store().Snapshot().Status != session.StatusSucceeded {
		t.Errorf("Status = %v", c.Store().Snapshot().Status)
	}
}

func TestSubmit_StaleResultDropped(t *testing.T) {
	up := &fakeUploader{
		release: make(chan struct{}),
		entered: make(chan struct{}, 1),
		resp:    okResponse(),
	}
	m := metrics.New()
	c := New(session.NewStore(), up, WithRecorder(m))

	done := make(chan Outcome, 1)
	go func() { done <- c.Submit(context.Background(), audio("a.wav")) }()
	<-up.entered

	c.Store().SelectFile(audio("b.wav"))
	close(up.release)

	outcome := <-done
	if !outcome.Stale {
		t.Error("expected stale outcome")
	}

	snap := c.Store().Snapshot()
	if snap.Status != session.StatusIdle || snap.Transcript != "" || snap.File.Name != "b.wav" {
		t.Errorf("stale result must not be recorded, got %+v", snap)
	}
	if got := testutil.ToFloat64(m.StaleCompletions); got != 1 {
		t.Errorf("stale completions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues(metrics.OutcomeSuccess)); got != 0 {
		t.Errorf("superseded result counted as success: %v", got)
	}
	if got := testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues(metrics.OutcomeStale)); got != 1 {
		t.Errorf("stale submissions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SubmissionsActive); got != 0 {
		t.Errorf("active submissions = %v, want 0", got)
	}
}

func TestSubmit_StaleFailureNotCountedAsFailure(t *testing.T) {
	up := &fakeUploader{
		release: make(chan struct{}),
		entered: make(chan struct{}, 1),
		err:     weaver.NewServerError(http.StatusInternalServerError, "audio too short"),
	}
	m := metrics.New()
	c := New(session.NewStore(), up, WithRecorder(m))

	done := make(chan Outcome, 1)
	go func() { done <- c.Submit(context.Background(), audio("a.wav")) }()
	<-up.entered

	c.Store().SelectFile(audio("b.wav"))
	close(up.release)

	outcome := <-done
	if !outcome.Stale {
		t.Error("expected stale outcome")
	}
	if snap := c.Store().Snapshot(); snap.HasError() {
		t.Errorf("stale failure must not be recorded, got %+v", snap)
	}
	if got := testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues(metrics.OutcomeServer)); got != 0 {
		t.Errorf("superseded failure counted as server error: %v", got)
	}
	if got := testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues(metrics.OutcomeStale)); got != 1 {
		t.Errorf("stale submissions = %v, want 1", got)
	}
}

func TestSubmit_UnclassifiedErrorIsTransport(t *testing.T) {
	up := &fakeUploader{err: errors.New("connection reset by peer")}
	m := metrics.New()
	c := New(session.NewStore(), up, WithRecorder(m))

	outcome := c.Submit(context.Background(), audio("a.wav"))

	if outcome.Failure == nil || outcome.Failure.Message != "Failed to process audio: connection reset by peer" {
		t.Errorf("unexpected failure %+v", outcome.Failure)
	}
	if !weaver.IsTransportError(outcome.Failure.Err) {
		t.Errorf("expected transport error, got %v", outcome.Failure.Err)
	}
	if got := testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues(metrics.OutcomeTransport)); got != 1 {
		t.Errorf("transport outcomes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SubmissionsActive); got != 0 {
		t.Errorf("active = %v, want 0", got)
	}
}

func TestSubmitSelected(t *testing.T) {
	up := &fakeUploader{resp: okResponse()}
	c := New(session.NewStore(), up)

	if o := c.SubmitSelected(context.Background()); o.OK() || o.Failure.Message != weaver.MessageNoFile {
		t.Errorf("expected no-file failure, got %+v", o)
	}

	c.Store().SelectFile(audio("a.wav"))
	if o := c.SubmitSelected(context.Background()); !o.OK() {
		t.Errorf("unexpected failure %+v", o.Failure)
	}
	if c.Store().Snapshot().Transcript != "done" {
		t.Error("expected transcript to be recorded")
	}
}
