package audit

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the postgres driver for database/sql.
	_ "github.com/lib/pq"

	id "opptak/pkg/domain"
)

// PostgresStore persists audit events through database/sql. The audit trail
// is append-only by construction: there is no update or delete statement.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection pool and ensures the schema exists.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_events (
			id             BIGSERIAL PRIMARY KEY,
			occurred_at    TIMESTAMPTZ NOT NULL,
			application_id UUID        NOT NULL,
			action         TEXT        NOT NULL,
			from_status    TEXT        NOT NULL DEFAULT '',
			to_status      TEXT        NOT NULL DEFAULT '',
			actor_id       UUID,
			actor_role     TEXT        NOT NULL DEFAULT '',
			reason         TEXT        NOT NULL DEFAULT '',
			client_ip      TEXT        NOT NULL DEFAULT '',
			user_agent     TEXT        NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS audit_events_application_idx
			ON audit_events (application_id, occurred_at);
	`)
	if err != nil {
		return fmt.Errorf("migrate audit schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	var actorID any
	if !event.ActorID.IsZero() {
		actorID = event.ActorID.String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events
			(occurred_at, application_id, action, from_status, to_status,
			 actor_id, actor_role, reason, client_ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		event.Timestamp, event.ApplicationID.String(), string(event.Action),
		event.From, event.To, actorID, event.ActorRole.String(),
		event.Reason, event.ClientIP, event.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByApplication(ctx context.Context, appID id.ApplicationID) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT occurred_at, action, from_status, to_status,
		       COALESCE(actor_id::text, ''), actor_role, reason, client_ip, user_agent
		FROM audit_events
		WHERE application_id = $1
		ORDER BY occurred_at, id`,
		appID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e         Event
			action    string
			actorID   string
			actorRole string
		)
		if err := rows.Scan(&e.Timestamp, &action, &e.From, &e.To,
			&actorID, &actorRole, &e.Reason, &e.ClientIP, &e.UserAgent); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.ApplicationID = appID
		e.Action = Action(action)
		e.ActorRole = id.Role(actorRole)
		if actorID != "" {
			if parsed, err := id.ParseStaffID(actorID); err == nil {
				e.ActorID = parsed
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }
