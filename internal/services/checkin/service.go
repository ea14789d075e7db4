// Package checkin содержит бизнес-логику допуска участников в клубы и на занятия.
//
// Service принимает решение по правилам членства и состоянию подписки,
// возвращает models.CheckInOutcome и никогда не пробрасывает ошибки наружу:
// внутренние сбои превращаются в результат с причиной models.ReasonError.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/fitcheck/internal/lib/sl"
	"github.com/magabrotheeeer/fitcheck/internal/models"
)

// ErrUserVanished возвращается, если пользователь исчез из хранилища между чтением и записью.
var ErrUserVanished = errors.New("user disappeared before check-in was recorded")

// Store определяет методы хранилища, которые нужны движку чекинов.
// Отсутствие записи это nil без ошибки; ошибка означает внутренний сбой.
type Store interface {
	// FindUser возвращает пользователя по ID.
	FindUser(ctx context.Context, id string) (*models.User, error)
	// FindClub возвращает клуб по ID.
	FindClub(ctx context.Context, id string) (*models.Club, error)
	// FindClass возвращает занятие по ID.
	FindClass(ctx context.Context, id string) (*models.Class, error)
	// SetCheckedInClub записывает клуб, в котором находится пользователь.
	SetCheckedInClub(ctx context.Context, userID, clubID string) (*models.User, error)
}

// LocationVerifier проверяет местоположение участника клуба одного клуба.
// Вызов может занимать заметное время.
type LocationVerifier interface {
	Verify(ctx context.Context, userID, clubID string) error
}

// ErrorReporter принимает внутренние сбои для внешнего мониторинга.
type ErrorReporter interface {
	Report(ctx context.Context, op string, err error)
}

// Recorder учитывает результаты чекинов (метрики).
type Recorder interface {
	Record(kind models.CheckInKind, outcome models.CheckInOutcome)
}

// EventPublisher отправляет события об успешных чекинах.
type EventPublisher interface {
	Publish(ctx context.Context, event models.CheckInEvent) error
}

// Service реализует правила допуска.
type Service struct {
	store     Store
	verifier  LocationVerifier
	log       *slog.Logger
	tracer    Tracer
	reporter  ErrorReporter
	recorder  Recorder
	publisher EventPublisher
	now       func() time.Time
}

// Option настраивает необязательных соавторов Service.
type Option func(*Service)

// WithTracer подключает трассировку операций.
func WithTracer(t Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithErrorReporter подключает отправку внутренних сбоев.
func WithErrorReporter(r ErrorReporter) Option {
	return func(s *Service) { s.reporter = r }
}

// WithRecorder подключает учёт результатов.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithEventPublisher подключает публикацию событий.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock подменяет источник времени для событий.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService создает новый экземпляр Service.
func NewService(store Store, verifier LocationVerifier, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		verifier: verifier,
		log:      log,
		tracer:   NoopTracer{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// fail помечает span отказом и возвращает результат.
func fail(span Span, reason models.FailureReason, message string) models.CheckInOutcome {
	span.SetTag(TagOutcome, OutcomeFailed)
	span.SetTag(TagFailureReason, string(reason))
	return models.Failed(reason, message)
}

// fault обрабатывает внутренний сбой: логирует, отправляет в мониторинг
// и возвращает общий ответ об ошибке.
func (s *Service) fault(ctx context.Context, span Span, op string, err error) models.CheckInOutcome {
	s.log.Error("check-in evaluation failed", slog.String("op", op), sl.Err(err))
	if s.reporter != nil {
		s.reporter.Report(ctx, op, err)
	}
	span.SetTag(TagOutcome, OutcomeError)
	return models.Failed(models.ReasonError, models.MessageInternalError)
}

// recoverFault превращает панику в сбой. Вызывается через defer.
func (s *Service) recoverFault(ctx context.Context, span Span, op string, out *models.CheckInOutcome) {
	if r := recover(); r != nil {
		*out = s.fault(ctx, span, op, fmt.Errorf("%s: panic: %v", op, r))
	}
}

// observe передаёт итог в метрики и, при успехе, публикует событие.
func (s *Service) observe(ctx context.Context, kind models.CheckInKind, userID, targetID string, out models.CheckInOutcome) {
	if s.recorder != nil {
		s.recorder.Record(kind, out)
	}
	if !out.Success || s.publisher == nil {
		return
	}
	event := models.CheckInEvent{
		EventID:    uuid.NewString(),
		Kind:       kind,
		UserID:     userID,
		TargetID:   targetID,
		AccessPath: out.AccessPath,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish check-in event",
			slog.String("event_id", event.EventID), slog.String("kind", string(kind)), sl.Err(err))
	}
}
