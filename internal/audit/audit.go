// Package audit carries the append-only trail of who changed what. Delivery
// is best-effort: callers log a failed Record and carry on.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Event struct {
	ID         uuid.UUID `json:"id"`
	ActorID    int64     `json:"actor_id"`
	Action     Action    `json:"action"`
	EntityKind string    `json:"entity_kind"`
	EntityID   int64     `json:"entity_id"`
	Old        any       `json:"old,omitempty"`
	New        any       `json:"new,omitempty"`
	At         time.Time `json:"at"`
}

// NewEvent stamps an event with an ID, the actor carried by ctx and the current time.
func NewEvent(ctx context.Context, action Action, kind string, id int64, before, after any) Event {
	return Event{
		ID:         uuid.New(),
		ActorID:    ActorFromContext(ctx),
		Action:     action,
		EntityKind: kind,
		EntityID:   id,
		Old:        before,
		New:        after,
		At:         time.Now().UTC(),
	}
}

type actorKey struct{}

func WithActor(ctx context.Context, actorID int64) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorFromContext returns 0 when no actor is attached.
func ActorFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(actorKey{}).(int64)
	return id
}

// LogSink writes events to a slog logger. It is the sink of last resort when
// neither the database writer nor the queue is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogSink{logger: logger}
}

func (s *LogSink) Record(ctx context.Context, e Event) error {
	s.logger.InfoContext(ctx, "audit",
		"event_id", e.ID,
		"actor_id", e.ActorID,
		"action", e.Action,
		"entity_kind", e.EntityKind,
		"entity_id", e.EntityID,
	)

	return nil
}
