// Package session ties the parameter store, the font catalog and the
// generation client together for one interactive session.
//
// Submit always works on a snapshot of the store, so edits made while a
// request is in flight apply to the next submission only. Every failure is
// returned to the caller and also routed to the Notifier.
package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"handwrite/core"
	"handwrite/handwriteapi"
	"handwrite/logging"
	"handwrite/params"
	"handwrite/validation"
)

// ErrFontsPending is returned by Submit while the font catalog has not
// loaded. The generator is not called.
var ErrFontsPending = errors.New("session: font catalog not loaded yet")

// Catalog is the session's font list.
type Catalog interface {
	Load(ctx context.Context) error
	Snapshot() validation.FontCatalog
}

// Generator renders a validated model.
type Generator interface {
	Generate(ctx context.Context, vm validation.ValidModel) (handwriteapi.Result, error)
}

// Session is safe for concurrent use.
type Session struct {
	store     *params.Store
	catalog   Catalog
	generator Generator
	engine    *validation.Engine
	notifier  Notifier
	recorder  Recorder
	logger    *logging.Logger
	newID     func() string

	submitting atomic.Bool

	mu        sync.RWMutex
	last      handwriteapi.Result
	hasResult bool
	listeners map[int]func(handwriteapi.Result)
	nextID    int
}

// Option customizes a Session.
type Option func(*Session)

// WithNotifier routes notifications to n.
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithRecorder records every attempt that reaches the service.
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDFunc overrides how correlation ids are minted.
func WithIDFunc(fn func() string) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New creates a session over store.
func New(store *params.Store, catalog Catalog, generator Generator, opts ...Option) *Session {
	s := &Session{
		store:     store,
		catalog:   catalog,
		generator: generator,
		engine:    validation.NewEngine(),
		notifier:  nopNotifier{},
		logger:    logging.NewNop(),
		newID:     core.NewCorrelationID,
		listeners: make(map[int]func(handwriteapi.Result)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the session's parameter store.
func (s *Session) Store() *params.Store {
	return s.store
}

// LoadFonts fetches the font catalog if it has not loaded yet. A failure is
// notified and returned; calling again retries.
func (s *Session) LoadFonts(ctx context.Context) error {
	if err := s.catalog.Load(ctx); err != nil {
		s.notifier.Notify(Notification{
			Level:   LevelWarning,
			Title:   "Fonts unavailable",
			Message: "The font list could not be loaded. Font selection stays pending.",
			Err:     err,
		})
		return err
	}
	return nil
}

// Check validates the current model against the catalog as it is now.
func (s *Session) Check() validation.Report {
	return s.engine.Validate(s.store.Snapshot(), s.catalog.Snapshot())
}

// CanSubmit reports whether Submit would reach the service right now.
func (s *Session) CanSubmit() bool {
	return !s.submitting.Load() && s.Check().OK()
}

// Busy reports whether a submission is in flight.
func (s *Session) Busy() bool {
	return s.submitting.Load()
}

// Submit validates a snapshot of the model and, if it is valid, sends it to
// the generation service. Field errors are returned as validation.Errors. A
// successful result replaces LastResult and is delivered to OnResult
// listeners; a failure leaves the previous result and the model untouched.
func (s *Session) Submit(ctx context.Context) (handwriteapi.Result, error) {
	m := s.store.Snapshot()
	report := s.engine.Validate(m, s.catalog.Snapshot())
	if err := report.Err(); err != nil {
		if errors.Is(err, validation.ErrPending) {
			s.logger.Info("submit blocked: font catalog pending")
			return handwriteapi.Result{}, ErrFontsPending
		}
		s.logger.Info("submit blocked by field errors", zap.Int("errors", len(report.Errors)))
		return handwriteapi.Result{}, err
	}
	vm, _ := report.ValidModel()

	if !s.submitting.CompareAndSwap(false, true) {
		s.notifier.Notify(Notification{
			Level:   LevelWarning,
			Title:   "Generation in progress",
			Message: "Wait for the current request to finish before submitting again.",
			Err:     handwriteapi.ErrRequestInFlight,
		})
		return handwriteapi.Result{}, handwriteapi.ErrRequestInFlight
	}
	defer s.submitting.Store(false)

	id := s.newID()
	log := s.logger.With(zap.String("correlation_id", id))
	ctx = handwriteapi.ContextWithRequestID(ctx, id)

	started := time.Now()
	result, err := s.generator.Generate(ctx, vm)
	attempt := newAttempt(id, m, started, result, err)
	s.record(ctx, log, attempt)

	if err != nil {
		log.Warn("generation failed",
			zap.String("status", attempt.Status),
			zap.String("code", attempt.ErrorCode),
			zap.Error(err))
		s.notifier.Notify(failureNotification(attempt, err))
		return handwriteapi.Result{}, err
	}

	log.Info("generation succeeded",
		zap.Int("page_count", result.PageCount),
		zap.Duration("duration", attempt.Duration))
	s.publish(result)
	s.notifier.Notify(Notification{
		Level:   LevelInfo,
		Title:   "Generation complete",
		Message: pageCountMessage(result.PageCount),
	})
	return result, nil
}

func (s *Session) record(ctx context.Context, log *logging.Logger, a Attempt) {
	if s.recorder == nil {
		return
	}
	// The attempt is recorded even when ctx was cancelled.
	if err := s.recorder.RecordAttempt(context.WithoutCancel(ctx), a); err != nil {
		log.Warn("failed to record generation attempt", zap.Error(err))
	}
}

func failureNotification(a Attempt, err error) Notification {
	if a.Status == StatusCancelled {
		return Notification{Level: LevelWarning, Title: "Generation cancelled", Message: "The request was cancelled.", Err: err}
	}
	msg := a.ErrorMessage
	var genErr *handwriteapi.GenerationError
	if errors.As(err, &genErr) && genErr.Retryable {
		msg += " You can submit again."
	}
	return Notification{Level: LevelError, Title: "Generation failed", Message: msg, Err: err}
}

func pageCountMessage(n int) string {
	if n == 1 {
		return "1 page rendered."
	}
	return strconv.Itoa(n) + " pages rendered."
}

func (s *Session) publish(result handwriteapi.Result) {
	s.mu.Lock()
	s.last = result
	s.hasResult = true
	listeners := make([]func(handwriteapi.Result), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(result)
	}
}

// LastResult returns the most recent successful result.
func (s *Session) LastResult() (handwriteapi.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.hasResult
}

// OnResult registers fn to receive every successful result and returns a
// function that removes it.
func (s *Session) OnResult(fn func(handwriteapi.Result)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}
