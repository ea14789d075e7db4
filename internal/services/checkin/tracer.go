package checkin

import "context"

// Имена операций и теги трассировки.
const (
	OpCheckInClub        = "checkInClub"
	OpCheckInClass       = "checkInClass"
	OpQueryUser          = "db.query.user"
	OpQueryUserAndClass  = "db.query.user_and_class"
	OpVerifySubscription = "logic.verify_subscription"
	OpVerifyLocation     = "db.query.verify_location"
	OpVerifyAccessPath   = "logic.verify_access_path"
	OpRecordCheckIn      = "db.mutation.check_in"

	TagMembershipType = "membership.type"
	TagOutcome        = "check_in.outcome"
	TagFailureReason  = "check_in.failure_reason"
	TagAccessPath     = "check_in.access_path"

	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeError   = "error"
)

// Tracer открывает span для операции. Дочерние span'ы создаются
// от контекста, который вернул родительский вызов Start.
type Tracer interface {
	Start(ctx context.Context, op, description string) (context.Context, Span)
}

// Span отдельная операция в трассировке.
type Span interface {
	SetTag(key, value string)
	Finish()
}

// NoopTracer ничего не записывает.
type NoopTracer struct{}

// Start возвращает контекст без изменений.
func (NoopTracer) Start(ctx context.Context, _, _ string) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) SetTag(string, string) {}
func (noopSpan) Finish()               {}
