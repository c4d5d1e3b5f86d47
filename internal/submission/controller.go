// Package submission orchestrates one upload from selection to result.
package submission

import (
	"context"
	"errors"
	"time"

	"github.com/yildizm/TruthWeaver/internal/analysis"
	"github.com/yildizm/TruthWeaver/internal/logger"
	"github.com/yildizm/TruthWeaver/internal/metrics"
	"github.com/yildizm/TruthWeaver/internal/session"
	"github.com/yildizm/TruthWeaver/internal/weaver"
)

// MessageBusy is returned, not stored, when a submission is already in flight.
const MessageBusy = "A submission is already in progress."

// Uploader performs the network call
type Uploader interface {
	TranscribeAndAnalyze(ctx context.Context, upload *weaver.Upload) (*weaver.Response, error)
}

// Recorder receives submission metrics. *metrics.Metrics implements it.
type Recorder interface {
	SubmissionStarted(bytes int)
	SubmissionFinished(outcome string, elapsed time.Duration)
	SubmissionRejected(outcome string)
	StaleCompletion()
}

// Failure is a failed outcome. Message is what the session displays.
type Failure struct {
	Message string
	Err     error
}

// Outcome is the result of one Submit call
type Outcome struct {
	RequestID  string
	Transcript string
	Analysis   *analysis.Result
	Failure    *Failure

	// Stale is set when the session moved on before the call returned;
	// the result was not recorded.
	Stale bool
}

// OK reports whether the submission succeeded
func (o Outcome) OK() bool {
	return o.Failure == nil
}

// Controller drives submissions against one session store
type Controller struct {
	store     *session.Store
	uploader  Uploader
	recorder  Recorder
	log       *logger.Logger
	maxUpload int64
	now       func() time.Time
}

// Option configures a Controller
type Option func(*Controller)

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithMaxUploadBytes overrides the upload limit
func WithMaxUploadBytes(limit int64) Option {
	return func(c *Controller) { c.maxUpload = limit }
}

// New creates a controller
func New(store *session.Store, uploader Uploader, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		uploader:  uploader,
		log:       logger.Nop(),
		maxUpload: weaver.DefaultMaxUploadBytes,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the session store the controller writes to
func (c *Controller) Store() *session.Store {
	return c.store
}

// SubmitSelected submits the store's current selection
func (c *Controller) SubmitSelected(ctx context.Context) Outcome {
	return c.Submit(ctx, c.store.Selected())
}

// Submit uploads file and records the outcome in the session.
//
// A nil or oversize file fails locally without any network call. A call made
// while another submission is in flight is ignored and leaves state untouched.
func (c *Controller) Submit(ctx context.Context, file *session.AudioFile) Outcome {
	if file == nil {
		return c.reject(weaver.NewValidationError(weaver.MessageNoFile))
	}
	if c.maxUpload > 0 && int64(file.Size()) > c.maxUpload {
		return c.reject(weaver.NewUploadTooLargeError(c.maxUpload))
	}

	ticket, err := c.store.BeginSubmissionFor(file)
	if err != nil {
		c.log.Debug("submission ignored: %v", err)
		c.recordRejected(metrics.OutcomeRejected)
		return Outcome{Failure: &Failure{Message: MessageBusy, Err: err}}
	}

	fields := []logger.Field{
		logger.F("request_id", ticket.ID),
		logger.F("file", file.Name),
		logger.F("bytes", file.Size()),
	}
	c.log.DebugWithFields("submitting audio", fields)

	if c.recorder != nil {
		c.recorder.SubmissionStarted(file.Size())
	}
	start := c.now()

	resp, err := c.uploader.TranscribeAndAnalyze(ctx, &weaver.Upload{
		RequestID: ticket.ID,
		Filename:  file.Name,
		MIMEType:  file.MIMEType,
		Data:      file.Data,
	})
	elapsed := c.now().Sub(start)
	fields = append(fields, logger.Duration(elapsed))

	if err != nil {
		return c.fail(ticket, classify(err), elapsed, fields)
	}
	if resp == nil || resp.Analysis == nil {
		return c.fail(ticket, weaver.NewProcessingError(analysis.ErrIncompleteAnalysis), elapsed, fields)
	}

	outcome := Outcome{
		RequestID:  ticket.ID,
		Transcript: resp.Transcript,
		Analysis:   resp.Analysis,
	}
	if err := c.store.CompleteSuccess(ticket, resp.Transcript, resp.Analysis); err != nil {
		outcome.Stale = c.dropped(err, fields)
		c.recordFinished(metrics.OutcomeSuccess, outcome.Stale, elapsed)
		return outcome
	}
	c.recordFinished(metrics.OutcomeSuccess, false, elapsed)

	c.log.InfoWithFields("submission succeeded", append(fields,
		logger.F("facts", len(resp.Analysis.RevealedTruth)),
		logger.F("patterns", len(resp.Analysis.DeceptionPatterns))))
	return outcome
}

func (c *Controller) fail(ticket session.Ticket, werr *weaver.Error, elapsed time.Duration, fields []logger.Field) Outcome {
	message := werr.DisplayMessage()
	outcome := Outcome{
		RequestID: ticket.ID,
		Failure:   &Failure{Message: message, Err: werr},
	}
	if err := c.store.CompleteFailure(ticket, message); err != nil {
		outcome.Stale = c.dropped(err, fields)
		c.recordFinished(outcomeLabel(werr), outcome.Stale, elapsed)
		return outcome
	}
	c.recordFinished(outcomeLabel(werr), false, elapsed)

	c.log.WarnWithFields("submission failed", append(fields,
		logger.F("kind", string(werr.Type)),
		logger.Error(werr)))
	return outcome
}

func (c *Controller) reject(werr *weaver.Error) Outcome {
	outcome := Outcome{Failure: &Failure{Message: werr.DisplayMessage(), Err: werr}}

	if err := c.store.RejectSubmission(werr.Message); err != nil {
		c.log.Debug("rejection ignored: %v", err)
		c.recordRejected(metrics.OutcomeRejected)
		outcome.Failure.Err = errors.Join(werr, err)
		return outcome
	}

	c.recordRejected(metrics.OutcomeValidation)
	c.log.Debug("submission rejected: %s", werr.Message)
	return outcome
}

// recordFinished closes an upload in the metrics once the store has ruled on
// it. A superseded result is counted as stale instead of under label.
func (c *Controller) recordFinished(label string, stale bool, elapsed time.Duration) {
	if c.recorder == nil {
		return
	}
	if stale {
		label = metrics.OutcomeStale
	}
	c.recorder.SubmissionFinished(label, elapsed)
}

func (c *Controller) recordRejected(label string) {
	if c.recorder != nil {
		c.recorder.SubmissionRejected(label)
	}
}

// dropped handles a completion the store refused. It reports whether the
// refusal was a stale ticket.
func (c *Controller) dropped(err error, fields []logger.Field) bool {
	if errors.Is(err, session.ErrStaleSubmission) {
		if c.recorder != nil {
			c.recorder.StaleCompletion()
		}
		c.log.WarnWithFields("discarding result of superseded submission", fields)
		return true
	}
	c.log.ErrorWithFields("failed to record submission result", append(fields, logger.Error(err)))
	return false
}

func classify(err error) *weaver.Error {
	var werr *weaver.Error
	if errors.As(err, &werr) {
		return werr
	}
	return weaver.NewTransportError(err)
}

func outcomeLabel(werr *weaver.Error) string {
	switch werr.Type {
	case weaver.ErrTypeServer:
		return metrics.OutcomeServer
	case weaver.ErrTypeProcessing:
		return metrics.OutcomeProcessing
	case weaver.ErrTypeValidation:
		return metrics.OutcomeValidation
	default:
		return metrics.OutcomeTransport
	}
}
