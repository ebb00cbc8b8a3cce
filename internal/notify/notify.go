// Package notify delivers best-effort user notifications.
package notify

import (
	"context"
	"log/slog"

	"go.uber.org/multierr"
)

// Sink receives rest-complete notifications. Implementations must not block for long;
// failures are reported but never stop a workout.
type Sink interface {
	NotifyRestComplete(ctx context.Context, n RestComplete) error
}

// RestComplete describes the rest period that just ended.
type RestComplete struct {
	SessionID string `json:"sessionId"`
	Exercise  string `json:"exercise"`
	Timer     string `json:"timer"`
}

// LogSink writes notifications to the log.
type LogSink struct {
	Log *slog.Logger
}

func (s LogSink) NotifyRestComplete(_ context.Context, n RestComplete) error {
	s.Log.Info("rest complete", "session", n.SessionID, "exercise", n.Exercise, "timer", n.Timer)
	return nil
}

// Func adapts a function to Sink.
type Func func(ctx context.Context, n RestComplete) error

func (f Func) NotifyRestComplete(ctx context.Context, n RestComplete) error {
	return f(ctx, n)
}

// Multi fans out to every sink and combines their errors.
type Multi []Sink

func (m Multi) NotifyRestComplete(ctx context.Context, n RestComplete) error {
	var err error
	for _, s := range m {
		err = multierr.Append(err, s.NotifyRestComplete(ctx, n))
	}
	return err
}
