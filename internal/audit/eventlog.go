package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"
)

const (
	TypeCourseLoaded  = "CourseLoaded"
	TypeLoadFailed    = "LoadFailed"
	TypeSessionClosed = "SessionClosed"
)

type Event struct {
	Type string
	Key  string // course or session id
	Data any    // JSON-encoded payload
}

// Log is the append-only audit trail of load and session outcomes. Session
// data-model state is never persisted; SessionClosed carries only the final
// status/score snapshot taken before the in-memory session is discarded.
type Log struct{ db *sql.DB }

func NewLog(db *sql.DB) *Log { return &Log{db: db} }

func (l *Log) Append(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return err
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		e.Type, e.Key, string(payload), time.Now().Unix())
	return err
}

// TryAppend logs and swallows append failures; the audit trail must never
// turn a successful operation into a failed one.
func (l *Log) TryAppend(ctx context.Context, e Event) {
	if l == nil {
		return
	}
	if err := l.Append(ctx, e); err != nil {
		log.Printf("audit: append %s/%s: %v", e.Type, e.Key, err)
	}
}
