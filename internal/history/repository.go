package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Repository persists search history and recent views in SQLite.
// Both lists are kept per session and capped.
type Repository struct {
	db        *sql.DB
	limit     int
	viewLimit int
}

// NewRepository creates a history repository. Non-positive limits
// select DefaultLimit and DefaultViewLimit.
func NewRepository(db *sql.DB, limit, viewLimit int) *Repository {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if viewLimit <= 0 {
		viewLimit = DefaultViewLimit
	}
	return &Repository{db: db, limit: limit, viewLimit: viewLimit}
}

const entryColumns = "id, search_id, session_id, query, state, result_count, radius_miles, created_at"

// Record stores a completed search and drops the oldest entries of the
// session beyond the limit. A SearchID is generated if e has none.
func (r *Repository) Record(ctx context.Context, e Entry) (_ *Entry, err error) {
	if e.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if e.SearchID == "" {
		e.SearchID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var radius sql.NullFloat64
	if e.RadiusMiles != nil {
		radius = sql.NullFloat64{Float64: *e.RadiusMiles, Valid: true}
	}

	result, err := tx.ExecContext(ctx,
		"INSERT INTO search_history (search_id, session_id, query, state, result_count, radius_miles) VALUES (?, ?, ?, ?, ?, ?)",
		e.SearchID, e.SessionID, e.Query, e.State, e.ResultCount, radius,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting search: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM search_history WHERE session_id = ? AND id NOT IN (
			SELECT id FROM search_history WHERE session_id = ? ORDER BY id DESC LIMIT ?
		)`,
		e.SessionID, e.SessionID, r.limit,
	)
	if err != nil {
		return nil, fmt.Errorf("trimming history: %w", err)
	}

	saved, err := scanEntry(tx.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM search_history WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("reading back search: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing: %w", err)
	}
	return saved, nil
}

// Get returns the entry with the given search ID.
func (r *Repository) Get(ctx context.Context, searchID string) (*Entry, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM search_history WHERE search_id = ?", searchID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting search: %w", err)
	}
	return e, nil
}

// Recent returns the session's searches, newest first.
func (r *Repository) Recent(ctx context.Context, sessionID string) (_ []*Entry, err error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM search_history WHERE session_id = ? ORDER BY id DESC LIMIT ?",
		sessionID, r.limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing searches: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning search: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating searches: %w", err)
	}
	return entries, nil
}

// Clear deletes the session's search history and returns the number of
// entries removed.
func (r *Repository) Clear(ctx context.Context, sessionID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM search_history WHERE session_id = ?", sessionID)
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}

// RecordView moves owner/address to the front of the session's recent
// views and drops the oldest views beyond the limit.
func (r *Repository) RecordView(ctx context.Context, sessionID, owner, address string) (err error) {
	if owner == "" || address == "" {
		return fmt.Errorf("owner and address are required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		"DELETE FROM recent_views WHERE session_id = ? AND owner = ? AND address = ?",
		sessionID, owner, address,
	); err != nil {
		return fmt.Errorf("removing previous view: %w", err)
	}

	if _, err = tx.ExecContext(ctx,
		"INSERT INTO recent_views (session_id, owner, address) VALUES (?, ?, ?)",
		sessionID, owner, address,
	); err != nil {
		return fmt.Errorf("inserting view: %w", err)
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM recent_views WHERE session_id = ? AND id NOT IN (
			SELECT id FROM recent_views WHERE session_id = ? ORDER BY id DESC LIMIT ?
		)`,
		sessionID, sessionID, r.viewLimit,
	); err != nil {
		return fmt.Errorf("trimming views: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// RecentViews returns the session's viewed properties, newest first.
func (r *Repository) RecentViews(ctx context.Context, sessionID string) (_ []*View, err error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, session_id, owner, address, viewed_at FROM recent_views WHERE session_id = ? ORDER BY id DESC LIMIT ?",
		sessionID, r.viewLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing views: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var views []*View
	for rows.Next() {
		var v View
		if err := rows.Scan(&v.ID, &v.SessionID, &v.Owner, &v.Address, &v.ViewedAt); err != nil {
			return nil, fmt.Errorf("scanning view: %w", err)
		}
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating views: %w", err)
	}
	return views, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var e Entry
	var radius sql.NullFloat64
	if err := s.Scan(&e.ID, &e.SearchID, &e.SessionID, &e.Query, &e.State, &e.ResultCount, &radius, &e.CreatedAt); err != nil {
		return nil, err
	}
	if radius.Valid {
		r := radius.Float64
		e.RadiusMiles = &r
	}
	return &e, nil
}
