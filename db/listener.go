package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// ChangesChannel is the NOTIFY channel fed by the players/matches triggers.
const ChangesChannel = "lerner_changes"

const (
	minReconnectInterval = 2 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

// Listener превращает уведомления Postgres в сигналы без содержимого.
// Порядок и количество сигналов не гарантируются: потребитель всегда
// перечитывает состояние целиком.
type Listener struct {
	listener *pq.Listener
	signals  chan struct{}
	logger   *slog.Logger
}

func NewListener(dsn string, logger *slog.Logger) (*Listener, error) {
	l := &Listener{signals: make(chan struct{}, 1), logger: logger}

	l.listener = pq.NewListener(dsn, minReconnectInterval, maxReconnectInterval, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			logger.Info("change listener connected", "channel", ChangesChannel)
		case pq.ListenerEventDisconnected:
			logger.Warn("change listener disconnected", "error", err)
		case pq.ListenerEventReconnected:
			logger.Info("change listener reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			logger.Warn("change listener connection attempt failed", "error", err)
		}
	})

	if err := l.listener.Listen(ChangesChannel); err != nil {
		l.listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", ChangesChannel, err)
	}
	return l, nil
}

func (l *Listener) Signals() <-chan struct{} {
	return l.signals
}

// Run блокируется до отмены ctx.
func (l *Listener) Run(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer l.listener.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-l.listener.Notify:
			// nil приходит после переподключения: изменения могли быть пропущены
			if n != nil {
				l.logger.Debug("change notification", "table", n.Extra)
			}
			l.signal()
		case <-ticker.C:
			go func() {
				if err := l.listener.Ping(); err != nil {
					l.logger.Warn("change listener ping failed", "error", err)
				}
			}()
		}
	}
}

func (l *Listener) signal() {
	select {
	case l.signals <- struct{}{}:
	default:
	}
}
