package admission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"opptak/internal/domain"
	id "opptak/pkg/domain"
	"opptak/pkg/platform/sentinel"
)

// PostgresApplicationStore persists applications in PostgreSQL via pgx.
// Queryable workflow fields are scalar columns; the nested intake document
// (child, guardians, preferences, dual request, history) is one JSONB column,
// since nothing queries inside it.
type PostgresApplicationStore struct {
	pool *pgxpool.Pool
}

// NewPostgresApplicationStore connects a pool and ensures the schema exists.
func NewPostgresApplicationStore(ctx context.Context, dsn string) (*PostgresApplicationStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect applications database: %w", err)
	}
	s := &PostgresApplicationStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresApplicationStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS applications (
			id            UUID PRIMARY KEY,
			app_type      TEXT        NOT NULL,
			status        TEXT        NOT NULL,
			round         TEXT        NOT NULL DEFAULT '',
			submitted_at  TIMESTAMPTZ,
			last_modified TIMESTAMPTZ NOT NULL,
			document      JSONB       NOT NULL
		);
		CREATE INDEX IF NOT EXISTS applications_status_idx ON applications (status);
	`)
	if err != nil {
		return fmt.Errorf("migrate applications schema: %w", err)
	}
	return nil
}

// applicationDocument is the JSONB payload. It deliberately repeats domain
// field names so the column stays readable in psql.
type applicationDocument struct {
	Child         domain.Child              `json:"child"`
	Guardians     []domain.Guardian         `json:"guardians"`
	Preferences   []domain.Preference       `json:"preferences"`
	Dual          *domain.DualRequest       `json:"dual,omitempty"`
	SiblingPlaced bool                      `json:"sibling_placed"`
	History       []domain.TransitionRecord `json:"history"`
}

func (s *PostgresApplicationStore) Save(ctx context.Context, app domain.Application) error {
	doc, err := json.Marshal(applicationDocument{
		Child:         app.Child,
		Guardians:     app.Guardians,
		Preferences:   app.Preferences,
		Dual:          app.Dual,
		SiblingPlaced: app.SiblingPlaced,
		History:       app.History,
	})
	if err != nil {
		return fmt.Errorf("marshal application document: %w", err)
	}

	var submittedAt *time.Time
	if !app.SubmittedAt.IsZero() {
		submittedAt = &app.SubmittedAt
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO applications (id, app_type, status, round, submitted_at, last_modified, document)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			app_type      = EXCLUDED.app_type,
			status        = EXCLUDED.status,
			round         = EXCLUDED.round,
			submitted_at  = EXCLUDED.submitted_at,
			last_modified = EXCLUDED.last_modified,
			document      = EXCLUDED.document`,
		app.ID.String(), string(app.Type), string(app.Status), string(app.Round),
		submittedAt, app.LastModified, doc,
	)
	if err != nil {
		return fmt.Errorf("save application: %w", err)
	}
	return nil
}

func (s *PostgresApplicationStore) FindByID(ctx context.Context, appID id.ApplicationID) (domain.Application, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT app_type, status, round, submitted_at, last_modified, document
		FROM applications WHERE id = $1`,
		appID.String(),
	)
	app, err := scanApplication(row, appID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Application{}, sentinel.ErrNotFound
	}
	return app, err
}

func (s *PostgresApplicationStore) ListByStatus(ctx context.Context, status domain.ApplicationStatus) ([]domain.Application, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, app_type, status, round, submitted_at, last_modified, document
		FROM applications WHERE status = $1
		ORDER BY last_modified`,
		string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		var (
			rawID       string
			appType     string
			statusCol   string
			round       string
			submittedAt *time.Time
			modified    time.Time
			doc         []byte
		)
		if err := rows.Scan(&rawID, &appType, &statusCol, &round, &submittedAt, &modified, &doc); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		appID, err := id.ParseApplicationID(rawID)
		if err != nil {
			return nil, fmt.Errorf("corrupt application id %q: %w", rawID, err)
		}
		app, err := buildApplication(appID, appType, statusCol, round, submittedAt, modified, doc)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func scanApplication(row pgx.Row, appID id.ApplicationID) (domain.Application, error) {
	var (
		appType     string
		status      string
		round       string
		submittedAt *time.Time
		modified    time.Time
		doc         []byte
	)
	if err := row.Scan(&appType, &status, &round, &submittedAt, &modified, &doc); err != nil {
		return domain.Application{}, err
	}
	return buildApplication(appID, appType, status, round, submittedAt, modified, doc)
}

func buildApplication(appID id.ApplicationID, appType, status, round string, submittedAt *time.Time, modified time.Time, doc []byte) (domain.Application, error) {
	var payload applicationDocument
	if err := json.Unmarshal(doc, &payload); err != nil {
		return domain.Application{}, fmt.Errorf("unmarshal application document: %w", err)
	}
	app := domain.Application{
		ID:            appID,
		Type:          domain.ApplicationType(appType),
		Status:        domain.ApplicationStatus(status),
		Round:         domain.AdmissionRound(round),
		LastModified:  modified,
		Child:         payload.Child,
		Guardians:     payload.Guardians,
		Preferences:   payload.Preferences,
		Dual:          payload.Dual,
		SiblingPlaced: payload.SiblingPlaced,
		History:       payload.History,
	}
	if submittedAt != nil {
		app.SubmittedAt = *submittedAt
	}
	return app, nil
}

// Close releases the connection pool.
func (s *PostgresApplicationStore) Close() { s.pool.Close() }
