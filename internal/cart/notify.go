package cart

import (
	"context"

	"github.com/verdantia/storefront-backend/pkg/logger"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a toast-style status message emitted after every command.
type Notification struct {
	SessionID string `json:"session_id"`
	Command   string `json:"command"`
	Level     Level  `json:"level"`
	Message   string `json:"message"`
}

// Notifier receives command outcomes. Delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// LogNotifier writes notifications to the application log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n Notification) {
	logger.Info("Cart notification", map[string]interface{}{
		"session_id": n.SessionID,
		"command":    n.Command,
		"level":      n.Level,
		"message":    n.Message,
	})
}

// Observer is told about every command outcome and every failed write.
type Observer interface {
	CommandApplied(command string, err error)
	PersistenceFailed(err error)
}

type NopObserver struct{}

func (NopObserver) CommandApplied(string, error) {}
func (NopObserver) PersistenceFailed(error)      {}
