package triage

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"
)

var tracer = otel.Tracer("github.com/linnemanlabs/carepath/internal/triage")

// DefaultMaxTopN caps the number of candidates a query may request.
const DefaultMaxTopN = 10

// Notifier receives assessments at or above the escalation severity.
type Notifier interface {
	Notify(ctx context.Context, id string, result *Result) error
}

// Hooks are optional callbacks fired during Predict, used for metrics.
type Hooks struct {
	OnRejected   func(reason string)
	OnClassify   func(duration float64, err error)
	OnComplete   func(e *CompleteEvent)
	OnEscalation func(err error)
}

// CompleteEvent describes a successful prediction.
type CompleteEvent struct {
	ESILevel      int
	TopConfidence float64
	Candidates    []Candidate
	Duration      float64
}

// Service is the business boundary for symptom triage. It validates the
// query, calls the classifier, and hands the output to the Engine.
type Service struct {
	classifier  Classifier
	engine      *Engine
	logger      log.Logger
	hooks       Hooks
	notifier    Notifier
	escalateAt  int
	defaultTopN int
	maxTopN     int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithHooks installs metric callbacks.
func WithHooks(h Hooks) ServiceOption {
	return func(s *Service) { s.hooks = h }
}

// WithNotifier sends results with an ESI level <= escalateAt to n.
func WithNotifier(n Notifier, escalateAt int) ServiceOption {
	return func(s *Service) {
		s.notifier = n
		s.escalateAt = escalateAt
	}
}

// WithMaxTopN caps per-query candidate counts.
func WithMaxTopN(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxTopN = n
		}
	}
}

// WithDefaultTopN sets the candidate count used when a query sets none.
func WithDefaultTopN(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.defaultTopN = n
		}
	}
}

// NewService creates a new triage service.
func NewService(classifier Classifier, engine *Engine, logger log.Logger, opts ...ServiceOption) *Service {
	if classifier == nil {
		panic(xerrors.New("classifier is required"))
	}
	if engine == nil {
		engine = NewEngine(nil)
	}
	if logger == nil {
		logger = log.Nop()
	}
	s := &Service{
		classifier:  classifier,
		engine:      engine,
		logger:      logger,
		defaultTopN: DefaultTopN,
		maxTopN:     DefaultMaxTopN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Disclaimer returns the safety notice attached to results and errors.
func (s *Service) Disclaimer() string { return s.engine.Disclaimer() }

// Predict runs a full triage for q. It returns either a complete Result or
// a *ValidationError / *ClassifierError, never a partial result.
func (s *Service) Predict(ctx context.Context, q Query) (*Result, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "triage.Predict")
	defer span.End()

	topN, err := s.topN(q.TopN)
	if err == nil {
		err = ValidateText(q.Text)
	}
	if err != nil {
		span.SetStatus(codes.Error, "invalid query")
		if s.hooks.OnRejected != nil {
			s.hooks.OnRejected("invalid")
		}
		return nil, err
	}

	id := ulid.Make().String()
	span.SetAttributes(attribute.String("carepath.assessment.id", id), attribute.Int("carepath.top_n", topN))
	L := s.logger.With("assessment_id", id)

	classifyStart := time.Now()
	output, err := s.classifier.Classify(ctx, q.Text)
	if s.hooks.OnClassify != nil {
		s.hooks.OnClassify(time.Since(classifyStart).Seconds(), err)
	}
	if err != nil {
		L.Error(ctx, err, "classifier call failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "classifier failed")
		if s.hooks.OnRejected != nil {
			s.hooks.OnRejected("classifier_error")
		}
		return nil, &ClassifierError{Err: err}
	}

	var info ModelInfo
	if p, ok := s.classifier.(ModelInfoProvider); ok {
		info = p.ModelInfo()
	}

	result, err := s.engine.Build(q.Text, output, topN, info)
	if err != nil {
		var ce *ClassifierError
		if errors.As(err, &ce) {
			L.Error(ctx, ce.Err, "classifier output rejected", "labels", len(output))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		if s.hooks.OnRejected != nil {
			s.hooks.OnRejected("classifier_error")
		}
		return nil, err
	}
	result.ID = id

	top, _ := result.Top()
	sev := result.EmergencySeverity
	span.SetAttributes(
		attribute.Int("carepath.esi_level", sev.ESILevel),
		attribute.Int("carepath.candidates", len(result.Predictions)),
	)

	L.Info(ctx, "triage complete",
		"esi_level", sev.ESILevel,
		"matched_keyword", sev.MatchedKeyword,
		"top_condition", top.Condition,
		"top_confidence", top.Confidence,
		"candidates", len(result.Predictions),
		"duration", time.Since(start).Seconds(),
	)

	if s.hooks.OnComplete != nil {
		s.hooks.OnComplete(&CompleteEvent{
			ESILevel:      sev.ESILevel,
			TopConfidence: top.Confidence,
			Candidates:    result.Predictions,
			Duration:      time.Since(start).Seconds(),
		})
	}

	if s.notifier != nil && sev.ESILevel <= s.escalateAt {
		// shallow copy; notifiers only read the predictions
		cp := *result
		go s.escalate(context.WithoutCancel(ctx), id, &cp)
	}

	return result, nil
}

func (s *Service) topN(n int) (int, error) {
	switch {
	case n < 0:
		return 0, &ValidationError{Field: "top_n", Message: "top_n must be a positive integer"}
	case n == 0:
		return min(s.defaultTopN, s.maxTopN), nil
	case n > s.maxTopN:
		return s.maxTopN, nil
	default:
		return n, nil
	}
}

func (s *Service) escalate(ctx context.Context, id string, result *Result) {
	err := s.notifier.Notify(ctx, id, result)
	if err != nil {
		s.logger.Error(ctx, err, "escalation notice failed", "assessment_id", id)
	}
	if s.hooks.OnEscalation != nil {
		s.hooks.OnEscalation(err)
	}
}
