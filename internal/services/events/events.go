// Package events публикует события об успешных чекинах в RabbitMQ.
package events

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/fitcheck/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/fitcheck/internal/models"
)

// Publisher реализует checkin.EventPublisher. Ключ маршрутизации совпадает с видом чекина.
type Publisher struct {
	ch       rabbitmq.Channel
	exchange string
}

// NewPublisher создает Publisher для обменника exchange.
func NewPublisher(ch rabbitmq.Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// Publish отправляет событие.
func (p *Publisher) Publish(ctx context.Context, event models.CheckInEvent) error {
	const op = "events.Publish"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if err := rabbitmq.PublishMessage(p.ch, p.exchange, string(event.Kind), event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
