// Package notify carries user-facing notifications (the toasts of a browser
// client) from the engine to whoever is listening.
package notify

import (
	"context"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Level       Level     `json:"level"`
	At          time.Time `json:"at"`
}

// Notifier receives notifications. Implementations must not block the caller
// for long; slow sinks queue or drop.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, n Notification)

func (f Func) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Discard drops every notification.
var Discard Notifier = Func(func(context.Context, Notification) {})

// Multi fans a notification out to every non-nil notifier.
func Multi(notifiers ...Notifier) Notifier {
	out := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return multi(out)
}

type multi []Notifier

func (m multi) Notify(ctx context.Context, n Notification) {
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	for _, sink := range m {
		sink.Notify(ctx, n)
	}
}

// Success, Warning and Error build notifications of the matching level.
func Success(title, description string) Notification {
	return Notification{Title: title, Description: description, Level: LevelSuccess}
}

func Warning(title, description string) Notification {
	return Notification{Title: title, Description: description, Level: LevelWarning}
}

func Error(title, description string) Notification {
	return Notification{Title: title, Description: description, Level: LevelError}
}

func Info(title, description string) Notification {
	return Notification{Title: title, Description: description, Level: LevelInfo}
}
