package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/klassenhub/klassenhub/internal/pkg/logger"
)

// notifyChannel is the Postgres NOTIFY channel the row change triggers
// publish on. Must match the trigger function in the migrations.
const notifyChannel = "row_changes"

// Listener holds a dedicated connection on LISTEN and feeds decoded
// notifications into the broker.
type Listener struct {
	pool   *pgxpool.Pool
	broker *Broker

	cancel context.CancelFunc
	done   chan struct{}
}

// NewListener creates a listener bound to the given pool and broker.
func NewListener(pool *pgxpool.Pool, broker *Broker) *Listener {
	return &Listener{
		pool:   pool,
		broker: broker,
		done:   make(chan struct{}),
	}
}

// Start begins listening in a background goroutine. The connection is
// re-acquired with backoff after failures until Stop is called.
func (l *Listener) Start(ctx context.Context) {
	ctx, l.cancel = context.WithCancel(ctx)

	go func() {
		defer close(l.done)
		for {
			if err := l.listen(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Error().Err(err).Msg("Change listener disconnected, retrying")
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
		}
	}()
}

// Stop cancels the listener and waits for the goroutine to exit.
func (l *Listener) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	<-l.done
}

// listen acquires one connection, issues LISTEN and dispatches
// notifications until the connection or context dies.
func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return err
	}
	logger.Info().Str("channel", notifyChannel).Msg("Listening for row changes")

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		var event ChangeEvent
		if err := json.Unmarshal([]byte(notification.Payload), &event); err != nil {
			logger.Warn().Err(err).Str("payload", notification.Payload).Msg("Skipping malformed change notification")
			continue
		}
		l.broker.Publish(event)
	}
}
