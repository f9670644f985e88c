package placement

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

// PostgresDecisionStore persists the decision log in PostgreSQL via pgx.
// Decisions only ever get inserted; the seq column fixes the append order
// that ListByApplication and Resolved depend on.
type PostgresDecisionStore struct {
	pool *pgxpool.Pool
}

// NewPostgresDecisionStore connects a pool and ensures the schema exists.
func NewPostgresDecisionStore(ctx context.Context, dsn string) (*PostgresDecisionStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect decisions database: %w", err)
	}
	s := &PostgresDecisionStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresDecisionStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS placement_decisions (
			seq             BIGSERIAL PRIMARY KEY,
			id              UUID        NOT NULL UNIQUE,
			application_id  UUID        NOT NULL,
			kindergarten_id TEXT        NOT NULL DEFAULT '',
			age_band        TEXT        NOT NULL,
			outcome         TEXT        NOT NULL,
			decided_by      UUID,
			decided_at      TIMESTAMPTZ NOT NULL,
			reason          TEXT        NOT NULL DEFAULT '',
			supersedes      UUID
		);
		CREATE INDEX IF NOT EXISTS placement_decisions_application_idx
			ON placement_decisions (application_id, seq);
	`)
	if err != nil {
		return fmt.Errorf("migrate decisions schema: %w", err)
	}
	return nil
}

func (s *PostgresDecisionStore) Append(ctx context.Context, decision domain.PlacementDecision) error {
	var decidedBy, supersedes *string
	if !decision.DecidedBy.IsZero() {
		v := decision.DecidedBy.String()
		decidedBy = &v
	}
	if !decision.Supersedes.IsZero() {
		v := decision.Supersedes.String()
		supersedes = &v
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO placement_decisions
			(id, application_id, kindergarten_id, age_band, outcome, decided_by, decided_at, reason, supersedes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		decision.ID.String(), decision.ApplicationID.String(), decision.KindergartenID.String(),
		decision.AgeBand.String(), string(decision.Outcome), decidedBy, decision.DecidedAt,
		decision.Reason, supersedes,
	)
	if err != nil {
		return fmt.Errorf("append placement decision: %w", err)
	}
	return nil
}

func (s *PostgresDecisionStore) ListByApplication(ctx context.Context, appID id.ApplicationID) ([]domain.PlacementDecision, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, kindergarten_id, age_band, outcome, decided_by, decided_at, reason, supersedes
		FROM placement_decisions WHERE application_id = $1
		ORDER BY seq`,
		appID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list placement decisions: %w", err)
	}
	defer rows.Close()

	var decisions []domain.PlacementDecision
	for rows.Next() {
		var (
			rawID      string
			kg         string
			band       string
			outcome    string
			decidedBy  *string
			decidedAt  time.Time
			reason     string
			supersedes *string
		)
		if err := rows.Scan(&rawID, &kg, &band, &outcome, &decidedBy, &decidedAt, &reason, &supersedes); err != nil {
			return nil, fmt.Errorf("scan placement decision: %w", err)
		}
		decision, err := buildDecision(rawID, appID, kg, band, outcome, decidedBy, decidedAt, reason, supersedes)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, decision)
	}
	return decisions, rows.Err()
}

// Resolved implements the admission module's PlacementResolver guard for the
// approved→placed edge: only the latest decision counts, so a superseding
// correction reverses an earlier placed one.
func (s *PostgresDecisionStore) Resolved(ctx context.Context, appID id.ApplicationID) (bool, error) {
	var outcome string
	err := s.pool.QueryRow(ctx, `
		SELECT outcome FROM placement_decisions
		WHERE application_id = $1
		ORDER BY seq DESC LIMIT 1`,
		appID.String(),
	).Scan(&outcome)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("resolve placement: %w", err)
	}
	return domain.PlacementOutcome(outcome) == domain.OutcomePlaced, nil
}

func buildDecision(rawID string, appID id.ApplicationID, kg, band, outcome string, decidedBy *string, decidedAt time.Time, reason string, supersedes *string) (domain.PlacementDecision, error) {
	decisionID, err := id.ParseDecisionID(rawID)
	if err != nil {
		return domain.PlacementDecision{}, fmt.Errorf("corrupt decision id %q: %w", rawID, err)
	}
	decision := domain.PlacementDecision{
		ID:             decisionID,
		ApplicationID:  appID,
		KindergartenID: id.KindergartenID(kg),
		AgeBand:        id.AgeBand(band),
		Outcome:        domain.PlacementOutcome(outcome),
		DecidedAt:      decidedAt,
		Reason:         reason,
	}
	if decidedBy != nil {
		staffID, err := id.ParseStaffID(*decidedBy)
		if err != nil {
			return domain.PlacementDecision{}, fmt.Errorf("corrupt staff id %q: %w", *decidedBy, err)
		}
		decision.DecidedBy = staffID
	}
	if supersedes != nil {
		priorID, err := id.ParseDecisionID(*supersedes)
		if err != nil {
			return domain.PlacementDecision{}, fmt.Errorf("corrupt superseded id %q: %w", *supersedes, err)
		}
		decision.Supersedes = priorID
	}
	return decision, nil
}

// Close releases the connection pool.
func (s *PostgresDecisionStore) Close() { s.pool.Close() }

// PostgresScheduleStore persists dual placement schedules. Queryable fields
// are columns; the split, approvals, and reservation tokens live in one JSONB
// document, since nothing queries inside them.
type PostgresScheduleStore struct {
	pool *pgxpool.Pool
}

// NewPostgresScheduleStore connects a pool and ensures the schema exists.
func NewPostgresScheduleStore(ctx context.Context, dsn string) (*PostgresScheduleStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect schedules database: %w", err)
	}
	s := &PostgresScheduleStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresScheduleStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS dual_schedules (
			id             UUID        PRIMARY KEY,
			application_id UUID        NOT NULL,
			status         TEXT        NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL,
			document       JSONB       NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate schedules schema: %w", err)
	}
	return nil
}

// scheduleDocument is the JSONB payload of one dual placement schedule.
type scheduleDocument struct {
	PrimaryKindergartenID   id.KindergartenID      `json:"primary_kindergarten_id"`
	SecondaryKindergartenID id.KindergartenID      `json:"secondary_kindergarten_id"`
	AgeBand                 id.AgeBand             `json:"age_band"`
	Split                   domain.WeekdaySplit    `json:"split"`
	Description             string                 `json:"description"`
	PrimaryApproved         bool                   `json:"primary_approved"`
	SecondaryApproved       bool                   `json:"secondary_approved"`
	PrimaryReservation      id.ReservationID       `json:"primary_reservation"`
	SecondaryReservation    id.ReservationID       `json:"secondary_reservation"`
	History                 []domain.ApprovalEvent `json:"history"`
}

func (s *PostgresScheduleStore) Save(ctx context.Context, schedule domain.DualPlacementSchedule) error {
	doc, err := json.Marshal(scheduleDocument{
		PrimaryKindergartenID:   schedule.PrimaryKindergartenID,
		SecondaryKindergartenID: schedule.SecondaryKindergartenID,
		AgeBand:                 schedule.AgeBand,
		Split:                   schedule.Split,
		Description:             schedule.Description,
		PrimaryApproved:         schedule.PrimaryApproved,
		SecondaryApproved:       schedule.SecondaryApproved,
		PrimaryReservation:      schedule.PrimaryReservation,
		SecondaryReservation:    schedule.SecondaryReservation,
		History:                 schedule.History,
	})
	if err != nil {
		return fmt.Errorf("marshal schedule document: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO dual_schedules (id, application_id, status, created_at, document)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			status   = EXCLUDED.status,
			document = EXCLUDED.document`,
		schedule.ID.String(), schedule.ApplicationID.String(), string(schedule.Status),
		schedule.CreatedAt, doc,
	)
	if err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}
	return nil
}

func (s *PostgresScheduleStore) FindByID(ctx context.Context, scheduleID id.ScheduleID) (domain.DualPlacementSchedule, error) {
	var (
		rawAppID  string
		status    string
		createdAt time.Time
		doc       []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT application_id, status, created_at, document
		FROM dual_schedules WHERE id = $1`,
		scheduleID.String(),
	).Scan(&rawAppID, &status, &createdAt, &doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DualPlacementSchedule{}, sentinel.ErrNotFound
	}
	if err != nil {
		return domain.DualPlacementSchedule{}, fmt.Errorf("find schedule: %w", err)
	}

	appID, err := id.ParseApplicationID(rawAppID)
	if err != nil {
		return domain.DualPlacementSchedule{}, fmt.Errorf("corrupt application id %q: %w", rawAppID, err)
	}
	var payload scheduleDocument
	if err := json.Unmarshal(doc, &payload); err != nil {
		return domain.DualPlacementSchedule{}, fmt.Errorf("unmarshal schedule document: %w", err)
	}
	return domain.DualPlacementSchedule{
		ID:                      scheduleID,
		ApplicationID:           appID,
		PrimaryKindergartenID:   payload.PrimaryKindergartenID,
		SecondaryKindergartenID: payload.SecondaryKindergartenID,
		AgeBand:                 payload.AgeBand,
		Split:                   payload.Split,
		Description:             payload.Description,
		PrimaryApproved:         payload.PrimaryApproved,
		SecondaryApproved:       payload.SecondaryApproved,
		Status:                  domain.ScheduleStatus(status),
		PrimaryReservation:      payload.PrimaryReservation,
		SecondaryReservation:    payload.SecondaryReservation,
		CreatedAt:               createdAt,
		History:                 payload.History,
	}, nil
}

// Close releases the connection pool.
func (s *PostgresScheduleStore) Close() { s.pool.Close() }
