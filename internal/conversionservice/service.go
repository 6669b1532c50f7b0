// Package conversionservice coordinates the conversion engine, the history
// store and change notifications for the HTTP and MCP transports.
package conversionservice

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/starford/metron/internal/apperr"
	"github.com/starford/metron/internal/catalog"
	"github.com/starford/metron/internal/engine"
	"github.com/starford/metron/internal/models"
	"github.com/starford/metron/internal/store"
	"github.com/starford/metron/internal/telemetry"
)

// History change event types.
const (
	EventHistoryCreated = "history.created"
	EventHistoryDeleted = "history.deleted"
)

const instrumentationName = "metron/conversion"

// Notifier receives per-user change events.
type Notifier interface {
	PublishUser(userID, eventType string, data any)
}

// CategoryInfo describes one category and its ordered units.
type CategoryInfo struct {
	ID    catalog.Category `json:"id"`
	Label string           `json:"label"`
	Kind  catalog.Kind     `json:"kind"`
	Units []catalog.Unit   `json:"units"`
}

// Option configures a Service.
type Option func(*Service)

// WithLenient switches unknown categories and units from errors to the
// fallback behavior of engine.Convert.
func WithLenient(lenient bool) Option {
	return func(s *Service) { s.lenient = lenient }
}

// WithNotifier sets the history change notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service coordinates conversions and per-user history.
type Service struct {
	engine   *engine.Engine
	history  store.HistoryStore
	notifier Notifier
	logger   *slog.Logger
	lenient  bool

	tracer      trace.Tracer
	conversions metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewService creates a conversion service. history may be nil when only
// stateless conversions are served, as in the MCP server.
func NewService(eng *engine.Engine, history store.HistoryStore, opts ...Option) *Service {
	s := &Service{
		engine:  eng,
		history: history,
		logger:  slog.Default(),
		tracer:  telemetry.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}

	meter := telemetry.Meter(instrumentationName)
	var err error
	if s.conversions, err = meter.Int64Counter("metron.conversions",
		metric.WithDescription("Conversions performed, by category and outcome")); err != nil {
		s.logger.Warn("conversion counter unavailable", slog.String("error", err.Error()))
	}
	if s.duration, err = meter.Float64Histogram("metron.conversion.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Conversion latency")); err != nil {
		s.logger.Warn("conversion histogram unavailable", slog.String("error", err.Error()))
	}
	return s
}

// Lenient reports whether the service uses the lenient conversion policy.
func (s *Service) Lenient() bool { return s.lenient }

// Categories lists every category in display order.
func (s *Service) Categories() []CategoryInfo {
	entries := s.engine.Catalog().Entries()
	out := make([]CategoryInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, CategoryInfo{ID: e.Category, Label: e.Label, Kind: e.Kind(), Units: e.Units()})
	}
	return out
}

// Units returns the ordered units of a category. Unknown categories are an
// error unless the service is lenient, in which case the fallback list is
// returned.
func (s *Service) Units(category string) ([]catalog.Unit, error) {
	c := catalog.Category(catalog.Normalize(category))
	if s.lenient {
		return s.engine.Catalog().Units(c), nil
	}
	e, err := s.engine.Catalog().Lookup(c)
	if err != nil {
		return nil, err
	}
	return e.Units(), nil
}

// Convert converts req. The category is normalized first; unit ids are
// matched exactly.
func (s *Service) Convert(ctx context.Context, req engine.Request) (engine.Result, error) {
	req.Category = catalog.Normalize(req.Category)
	ctx, span := s.tracer.Start(ctx, "conversion.convert", trace.WithAttributes(
		attribute.String("metron.category", req.Category),
		attribute.String("metron.from", req.From),
		attribute.String("metron.to", req.To),
	))
	defer span.End()

	start := time.Now()
	var (
		res engine.Result
		err error
	)
	if s.lenient {
		res = s.engine.Lenient(req)
	} else {
		res, err = s.engine.Do(req)
	}
	if err == nil && (math.IsInf(res.Converted, 0) || math.IsNaN(res.Converted)) {
		err = fmt.Errorf("%w: %s %s does not fit in %s", apperr.ErrInvalidInput,
			engine.FormatNumber(req.Value), req.From, req.To)
		res = engine.Result{}
	}

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case res.Fallback:
		outcome = "fallback"
	}
	s.record(ctx, req.Category, outcome, time.Since(start))
	return res, err
}

// SaveConversion recomputes req and stores the result in userID's history.
func (s *Service) SaveConversion(ctx context.Context, userID string, req engine.Request) (models.HistoryRecord, error) {
	if s.history == nil {
		return models.HistoryRecord{}, fmt.Errorf("conversionservice: history unavailable")
	}
	if userID == "" {
		return models.HistoryRecord{}, apperr.ErrUnauthorized
	}
	res, err := s.Convert(ctx, req)
	if err != nil {
		return models.HistoryRecord{}, err
	}

	rec := engine.NewRecord(res)
	rec.UserID = userID
	saved, err := s.history.InsertHistory(ctx, rec)
	if err != nil {
		return models.HistoryRecord{}, err
	}
	s.logger.Info("conversion saved",
		slog.String("user_id", userID),
		slog.String("id", saved.ID),
		slog.String("category", saved.Category),
	)
	s.publish(userID, EventHistoryCreated, saved)
	return saved, nil
}

// History lists userID's records newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]models.HistoryRecord, error) {
	if s.history == nil {
		return nil, fmt.Errorf("conversionservice: history unavailable")
	}
	return s.history.ListHistory(ctx, userID, limit)
}

// DeleteHistory removes one of userID's records. Records owned by someone
// else are reported as apperr.ErrNotFound.
func (s *Service) DeleteHistory(ctx context.Context, userID, id string) error {
	if s.history == nil {
		return fmt.Errorf("conversionservice: history unavailable")
	}
	if err := s.history.DeleteHistory(ctx, userID, id); err != nil {
		return err
	}
	s.publish(userID, EventHistoryDeleted, map[string]string{"id": id})
	return nil
}

func (s *Service) record(ctx context.Context, category, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("category", category),
		attribute.String("outcome", outcome),
	)
	if s.conversions != nil {
		s.conversions.Add(ctx, 1, attrs)
	}
	if s.duration != nil {
		s.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
	}
}

func (s *Service) publish(userID, eventType string, data any) {
	if s.notifier != nil {
		s.notifier.PublishUser(userID, eventType, data)
	}
}
