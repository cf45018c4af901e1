package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// ChangesChannel - канал pg_notify, в который пишет триггер notify_table_change (миграция 00002).
const ChangesChannel = "table_changes"

// PGListener держит отдельное соединение с LISTEN и публикует уведомления в Broker.
type PGListener struct {
	pool    *pgxpool.Pool
	channel string
	broker  *Broker
	logger  *zap.Logger
}

func NewPGListener(pool *pgxpool.Pool, broker *Broker, logger *zap.Logger) *PGListener {
	return &PGListener{pool: pool, channel: ChangesChannel, broker: broker, logger: logger}
}

// Run слушает канал до отмены ctx, переподключаясь с экспоненциальной задержкой.
func (l *PGListener) Run(ctx context.Context) {
	backoff := minBackoff
	for {
		connected, err := l.listen(ctx)
		if ctx.Err() != nil {
			l.logger.Info("PGListener: остановлен", zap.String("channel", l.channel))
			return
		}
		if connected {
			backoff = minBackoff
		}
		l.logger.Warn("PGListener: соединение потеряно, переподключение",
			zap.String("channel", l.channel),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (l *PGListener) listen(ctx context.Context) (bool, error) {
	pooled, err := l.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("не удалось получить соединение: %w", err)
	}
	// Соединение с LISTEN не возвращается в пул.
	conn := pooled.Hijack()
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return false, fmt.Errorf("не удалось выполнить LISTEN: %w", err)
	}
	l.logger.Info("PGListener: подписан на канал", zap.String("channel", l.channel))

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return true, err
		}
		change, err := DecodeNotification(n.Payload, time.Now())
		if err != nil {
			l.logger.Warn("PGListener: пропущено уведомление", zap.Error(err))
			continue
		}
		l.broker.Publish(change)
	}
}
