package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/applicant-wizard/internal/pkg/apperrors"
	"github.com/yigit/applicant-wizard/internal/pkg/dberrors"
	"github.com/yigit/applicant-wizard/internal/pkg/logger"
)

const sessionsTable = "wizard_sessions"

// PgSessionRepository stores sessions in PostgreSQL with a JSONB snapshot
type PgSessionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPgSessionRepository creates a new PgSessionRepository
func NewPgSessionRepository(db *pgxpool.Pool) *PgSessionRepository {
	return &PgSessionRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func nullableFormID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func wrapQueryError(op string, err error) error {
	if dberrors.IsUndefinedTable(err) {
		return fmt.Errorf("%s: table %s is missing, run migrations: %w", op, sessionsTable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Create inserts a new session row
func (r *PgSessionRepository) Create(ctx context.Context, s *SessionRecord) error {
	snapshot, err := json.Marshal(s.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode session snapshot: %w", err)
	}
	now := time.Now()

	sql, args, err := r.sb.Insert(sessionsTable).
		Columns("id", "mode", "form_id", "state", "snapshot", "created_at", "updated_at", "expires_at").
		Values(s.ID, string(s.Snapshot.Mode), nullableFormID(s.Snapshot.FormID), string(s.Snapshot.State), string(snapshot), now, now, s.ExpiresAt).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create session SQL")
		return fmt.Errorf("failed to build create session query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, sessionsTable+"_pkey") {
			return apperrors.NewConflictError("session " + s.ID + " already exists")
		}
		logger.Error().Err(err).Str("sessionID", s.ID).Msg("Error executing create session query")
		return wrapQueryError("error creating session", err)
	}
	s.CreatedAt, s.UpdatedAt = now, now
	return nil
}

// Get loads a live session
func (r *PgSessionRepository) Get(ctx context.Context, id string) (*SessionRecord, error) {
	sql, args, err := r.sb.Select("id", "snapshot", "created_at", "updated_at", "expires_at").
		From(sessionsTable).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Gt{"expires_at": time.Now()}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get session query: %w", err)
	}

	var (
		s   SessionRecord
		raw []byte
	)
	err = r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &raw, &s.CreatedAt, &s.UpdatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		logger.Error().Err(err).Str("sessionID", id).Msg("Error scanning session row")
		return nil, wrapQueryError("error getting session", err)
	}
	if err := json.Unmarshal(raw, &s.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode session snapshot: %w", err)
	}
	return &s, nil
}

// Save updates the snapshot of an existing session
func (r *PgSessionRepository) Save(ctx context.Context, s *SessionRecord) error {
	snapshot, err := json.Marshal(s.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode session snapshot: %w", err)
	}
	now := time.Now()

	sql, args, err := r.sb.Update(sessionsTable).
		Set("state", string(s.Snapshot.State)).
		Set("form_id", nullableFormID(s.Snapshot.FormID)).
		Set("snapshot", string(snapshot)).
		Set("updated_at", now).
		Set("expires_at", s.ExpiresAt).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build save session query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("sessionID", s.ID).Msg("Error executing save session query")
		return wrapQueryError("error saving session", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}
	s.UpdatedAt = now
	return nil
}

// Delete removes a session row
func (r *PgSessionRepository) Delete(ctx context.Context, id string) error {
	sql, args, err := r.sb.Delete(sessionsTable).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete session query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return wrapQueryError("error deleting session", err)
	}
	return nil
}

// DeleteExpired removes expired rows and returns their ids
func (r *PgSessionRepository) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	sql, args, err := r.sb.Delete(sessionsTable).
		Where(squirrel.LtOrEq{"expires_at": now}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build delete expired sessions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapQueryError("error deleting expired sessions", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("error reading expired session ids: %w", err)
	}
	return ids, nil
}
