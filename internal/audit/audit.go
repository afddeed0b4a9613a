// Package audit defines audit events and the recorder services use to
// emit them. Persistence happens asynchronously in the worker so a slow
// audit sink never stalls a command.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event is one audit record in flight.
type Event struct {
	UserID    uuid.UUID              `json:"user_id"`
	Action    string                 `json:"action"`
	Resource  string                 `json:"resource"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Sink accepts events for eventual persistence.
type Sink interface {
	Enqueue(ctx context.Context, ev *Event) error
}

// Recorder emits audit events to a sink. A nil Recorder or nil sink is a
// no-op, which keeps service tests free of audit plumbing.
type Recorder struct {
	sink Sink
}

// NewRecorder creates a recorder writing to the given sink.
func NewRecorder(sink Sink) *Recorder {
	return &Recorder{sink: sink}
}

// Record emits one event. Failures are logged, never propagated: an audit
// outage must not fail the command that triggered it.
func (r *Recorder) Record(ctx context.Context, userID uuid.UUID, action, resource string, details map[string]interface{}) {
	if r == nil || r.sink == nil {
		return
	}
	ev := &Event{
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
	if err := r.sink.Enqueue(ctx, ev); err != nil {
		slog.Error("Failed to enqueue audit event", "action", action, "resource", resource, "error", err)
	}
}

// Audit actions constants
const (
	ActionCreateGroup      = "create_group"
	ActionEditGroup        = "edit_group"
	ActionDisableGroup     = "disable_group"
	ActionEnableGroup      = "enable_group"
	ActionDeleteGroup      = "delete_group"
	ActionBindGroupRole    = "bind_group_role"
	ActionCreatePermission = "create_permission"
	ActionEditPermission   = "edit_permission"
	ActionDisablePerm      = "disable_permission"
	ActionEnablePerm       = "enable_permission"
	ActionDeletePermission = "delete_permission"
	ActionLogin            = "login"
)
