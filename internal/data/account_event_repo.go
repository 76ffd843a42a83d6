package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/smartbin/portal/internal/data/pgxutil"
	apperrors "github.com/smartbin/portal/internal/errors"
	"github.com/smartbin/portal/internal/observability/notify"
)

var _ notify.Sink = (*AccountEventRepo)(nil)

// AccountEventRepo keeps an audit trail of account events. It is registered
// as a notifier sink so every event that reaches Slack or the log also lands
// in user_events.
type AccountEventRepo struct {
	DB   *sql.DB
	Time TimeProvider
}

// NewAccountEventRepo creates a new AccountEventRepo.
func NewAccountEventRepo(db *sql.DB) *AccountEventRepo {
	return &AccountEventRepo{DB: db, Time: &RealTimeProvider{}}
}

// StoredEvent is one persisted account event.
type StoredEvent struct {
	ID         int64             `db:"id"`
	UserID     string            `db:"user_id"`
	Kind       string            `db:"kind"`
	Channel    string            `db:"channel"`
	Contact    string            `db:"contact"`
	Metadata   map[string]string `db:"metadata"`
	OccurredAt time.Time         `db:"occurred_at"`
}

// SendAccountEvent implements notify.Sink. Events without a user id are
// stored with a NULL user_id.
func (r *AccountEventRepo) SendAccountEvent(ctx context.Context, event notify.AccountEvent) error {
	if event.Kind == "" {
		return ErrEventKindRequired
	}
	meta := event.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode event metadata: %w", err)
	}
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = r.Time.Now()
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO user_events (user_id, kind, channel, contact, metadata, occurred_at)
		VALUES (NULLIF($1, '')::bigint, $2, $3, $4, $5::jsonb, $6)`,
		event.UserID, event.Kind, event.Channel, event.Contact, string(metaJSON), occurred.UTC())
	if err != nil {
		return fmt.Errorf("record account event: %w", apperrors.MapDBError(err))
	}
	return nil
}

// ListForUser returns the newest events for userID, at most limit rows.
func (r *AccountEventRepo) ListForUser(ctx context.Context, userID string, limit int) ([]StoredEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var out []StoredEvent
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, COALESCE(user_id::text, '') AS user_id, kind, channel, contact, metadata, occurred_at
			FROM user_events
			WHERE user_id::text = $1
			ORDER BY occurred_at DESC, id DESC
			LIMIT $2`, userID, limit)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[StoredEvent])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list account events: %w", apperrors.MapDBError(err))
	}
	return out, nil
}
