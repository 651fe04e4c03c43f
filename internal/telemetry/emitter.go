// Package telemetry defines the session lifecycle events the client emits
// and the emitter contract for shipping them (e.g. to OTel Logs).
package telemetry

import (
	"context"
	"log"
	"time"
)

// Event types for the session lifecycle.
const (
	EventLoginSucceeded    = "login_succeeded"
	EventLoginFailed       = "login_failed"
	EventRegisterSucceeded = "register_succeeded"
	EventRegisterFailed    = "register_failed"
	EventLogout            = "logout"
	EventRefreshSucceeded  = "refresh_succeeded"
	EventRefreshFailed     = "refresh_failed"
	EventForcedLogout      = "forced_logout"
)

// SessionEvent describes one session lifecycle transition.
type SessionEvent struct {
	Type   string    // one of the Event* constants
	UserID string    // empty when unauthenticated
	Email  string    // empty unless known (login/register)
	Path   string    // request path for forced logouts
	Reason string    // failure message for *_failed and forced_logout
	At     time.Time // zero means "now"
}

// EventEmitter emits session events. Best-effort; callers log and ignore
// errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *SessionEvent) error
}

// EmitAsync runs Emit in a goroutine with a short timeout so session
// operations are not blocked on the exporter. Errors are logged.
func EmitAsync(emitter EventEmitter, event *SessionEvent) {
	if emitter == nil || event == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := emitter.Emit(ctx, event); err != nil {
			log.Printf("telemetry: async emit failed: %v", err)
		}
	}()
}
