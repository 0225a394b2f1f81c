package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	partydomain "github.com/Apurer/go-pos-backoffice/internal/domains/parties/domain"
	partyports "github.com/Apurer/go-pos-backoffice/internal/domains/parties/ports"
)

const tracerName = "github.com/Apurer/go-pos-backoffice/internal/domains/parties/adapters/observability/service"

// Service decorates the customer and supplier service with tracing and logging.
type Service struct {
	inner  partyports.Service
	tracer trace.Tracer
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func New(inner partyports.Service, opts ...Option) partyports.Service {
	s := &Service{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) Create(ctx context.Context, kind partydomain.Kind, input partyports.PartyInput) (*partydomain.Party, error) {
	ctx, span := s.tracer.Start(ctx, "PartyService.Create", trace.WithAttributes(attribute.String("party.kind", string(kind))))
	defer span.End()

	result, err := s.inner.Create(ctx, kind, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create party", slog.String("kind", string(kind)))
	}
	s.logInfo(ctx, "party created", slog.String("kind", string(kind)), slog.Int64("party_id", result.ID))
	return result, nil
}

func (s *Service) Update(ctx context.Context, kind partydomain.Kind, id int64, input partyports.PartyInput) (*partydomain.Party, error) {
	ctx, span := s.tracer.Start(ctx, "PartyService.Update", partyAttrs(kind, id))
	defer span.End()

	result, err := s.inner.Update(ctx, kind, id, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update party", slog.String("kind", string(kind)), slog.Int64("party_id", id))
	}
	return result, nil
}

func (s *Service) Get(ctx context.Context, kind partydomain.Kind, id int64) (*partydomain.Party, error) {
	ctx, span := s.tracer.Start(ctx, "PartyService.Get", partyAttrs(kind, id))
	defer span.End()

	result, err := s.inner.Get(ctx, kind, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load party", slog.String("kind", string(kind)), slog.Int64("party_id", id))
	}
	return result, nil
}

func (s *Service) List(ctx context.Context, kind partydomain.Kind) ([]*partydomain.Party, error) {
	ctx, span := s.tracer.Start(ctx, "PartyService.List", trace.WithAttributes(attribute.String("party.kind", string(kind))))
	defer span.End()

	result, err := s.inner.List(ctx, kind)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list parties", slog.String("kind", string(kind)))
	}
	span.SetAttributes(attribute.Int("parties.count", len(result)))
	return result, nil
}

func (s *Service) Delete(ctx context.Context, kind partydomain.Kind, id int64) error {
	ctx, span := s.tracer.Start(ctx, "PartyService.Delete", partyAttrs(kind, id))
	defer span.End()

	if err := s.inner.Delete(ctx, kind, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete party", slog.String("kind", string(kind)), slog.Int64("party_id", id))
	}
	s.logInfo(ctx, "party deleted", slog.String("kind", string(kind)), slog.Int64("party_id", id))
	return nil
}

func partyAttrs(kind partydomain.Kind, id int64) trace.SpanStartOption {
	return trace.WithAttributes(attribute.String("party.kind", string(kind)), attribute.Int64("party.id", id))
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

var _ partyports.Service = (*Service)(nil)
