package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Writer persists events into audit_logs.
type Writer struct {
	db *sql.DB
}

func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

func (w *Writer) Record(ctx context.Context, e Event) error {
	if e.Action == "" || e.EntityKind == "" {
		return errors.New("audit event requires action and entity kind")
	}

	oldJSON, err := marshalState(e.Old)
	if err != nil {
		return fmt.Errorf("encoding old state: %w", err)
	}

	newJSON, err := marshalState(e.New)
	if err != nil {
		return fmt.Errorf("encoding new state: %w", err)
	}

	query := `
		INSERT INTO audit_logs (event_id, user_id, action, table_name, record_id, old_values, new_values, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO NOTHING
	`

	var actor sql.NullInt64
	if e.ActorID != 0 {
		actor = sql.NullInt64{Int64: e.ActorID, Valid: true}
	}

	if _, err := w.db.ExecContext(ctx, query, e.ID, actor, e.Action, e.EntityKind, e.EntityID, oldJSON, newJSON, e.At); err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}

	return nil
}

func marshalState(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}

	return json.Marshal(v)
}
