// Package reporting передаёт внутренние сбои во внешний мониторинг:
// пишет их в лог и отмечает на текущем span'е трассировки.
package reporting

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/magabrotheeeer/fitcheck/internal/lib/sl"
)

// Reporter реализует checkin.ErrorReporter.
type Reporter struct {
	log *slog.Logger
}

// New создаёт Reporter.
func New(log *slog.Logger) *Reporter {
	return &Reporter{log: log}
}

// Report фиксирует сбой операции op.
func (r *Reporter) Report(ctx context.Context, op string, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, op)

	attrs := []any{slog.String("op", op), sl.Err(err)}
	if sc := span.SpanContext(); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	r.log.ErrorContext(ctx, "internal fault reported", attrs...)
}
