// ABOUTME: Observer extension points: request issued, reply received, failure classified.
// ABOUTME: Injected at construction; the default logs through slog.

package canister

import (
	"log/slog"
	"time"
)

// Observer receives notifications at the client's extension points. All
// methods may be called concurrently.
type Observer interface {
	RequestIssued(method string, kind CallKind)
	ReplyReceived(method string, kind CallKind, elapsed time.Duration)
	FailureClassified(method string, err error)
}

// logObserver logs call lifecycle events through slog.
type logObserver struct {
	log *slog.Logger
}

// NewLogObserver returns an Observer that logs through the given logger.
func NewLogObserver(log *slog.Logger) Observer {
	return &logObserver{log: log}
}

func (o *logObserver) RequestIssued(method string, kind CallKind) {
	o.log.Debug("canister request issued", "method", method, "kind", string(kind))
}

func (o *logObserver) ReplyReceived(method string, kind CallKind, elapsed time.Duration) {
	o.log.Debug("canister reply received",
		"method", method,
		"kind", string(kind),
		"elapsed", elapsed.Round(time.Millisecond).String(),
	)
}

func (o *logObserver) FailureClassified(method string, err error) {
	o.log.Warn("canister call failed", "method", method, "error", err)
}

// observers fans notifications out to multiple observers.
type observers []Observer

func (os observers) RequestIssued(method string, kind CallKind) {
	for _, o := range os {
		o.RequestIssued(method, kind)
	}
}

func (os observers) ReplyReceived(method string, kind CallKind, elapsed time.Duration) {
	for _, o := range os {
		o.ReplyReceived(method, kind, elapsed)
	}
}

func (os observers) FailureClassified(method string, err error) {
	for _, o := range os {
		o.FailureClassified(method, err)
	}
}
