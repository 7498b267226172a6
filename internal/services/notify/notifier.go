// Package notify delivers alert messages over SMS or Telegram and implements
// send-once deduplication on message content.
package notify

import (
	"context"

	"go.uber.org/zap"
)

// Notifier sends a message and reports whether it was delivered.
type Notifier interface {
	Send(ctx context.Context, message string) (bool, error)
}

// OnceNotifier wraps a Notifier with send-once semantics: a message already
// delivered through SendOnce is suppressed for the rest of the process
// lifetime unless explicitly overridden. The dedup set is never cleared.
type OnceNotifier struct {
	inner  Notifier
	logger *zap.Logger
	sent   map[string]struct{}
}

// NewOnceNotifier wraps the given notifier.
func NewOnceNotifier(inner Notifier, logger *zap.Logger) *OnceNotifier {
	return &OnceNotifier{
		inner:  inner,
		logger: logger,
		sent:   make(map[string]struct{}),
	}
}

// Send delivers unconditionally.
func (n *OnceNotifier) Send(ctx context.Context, message string) (bool, error) {
	return n.inner.Send(ctx, message)
}

// SendOnce delivers the message only if it has not been sent before, or
// always when override is set. A send attempt that did not error records the
// message, turning later identical calls into no-ops.
func (n *OnceNotifier) SendOnce(ctx context.Context, message string, override bool) (bool, error) {
	if !override {
		if _, seen := n.sent[message]; seen {
			n.logger.Debug("duplicate alert suppressed", zap.String("message", message))
			return false, nil
		}
	}

	delivered, err := n.inner.Send(ctx, message)
	if err != nil {
		return false, err
	}
	n.sent[message] = struct{}{}
	return delivered, nil
}
