package checkin

import (
	"context"
	"fmt"
	"time"
)

// DefaultVerifyDelay задержка проверки местоположения по умолчанию.
const DefaultVerifyDelay = 150 * time.Millisecond

// DelayVerifier имитирует удалённую проверку местоположения.
// Ожидание не блокирует другие вызовы: каждый ждёт свой таймер.
type DelayVerifier struct {
	delay time.Duration
}

// NewDelayVerifier создает DelayVerifier. Отрицательная задержка считается нулевой.
func NewDelayVerifier(delay time.Duration) *DelayVerifier {
	if delay < 0 {
		delay = 0
	}
	return &DelayVerifier{delay: delay}
}

// Verify ждёт заданное время. Возвращает ошибку, если контекст отменён раньше.
func (v *DelayVerifier) Verify(ctx context.Context, _, _ string) error {
	const op = "checkin.DelayVerifier.Verify"
	if v.delay == 0 {
		return nil
	}
	timer := time.NewTimer(v.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	}
}
