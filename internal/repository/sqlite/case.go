package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/case-runner/internal/apperror"
	"github.com/sakif/case-runner/internal/model"
	"github.com/sakif/case-runner/internal/repository"
)

// Compile-time check that *DB implements repository.CaseRepository.
var _ repository.CaseRepository = (*DB)(nil)

const caseColumns = `id, owner_id, title, host, uri, method, request_body,
	expected_result, category, used, response_code, response_body,
	created_at, updated_at`

// Create inserts a new case. The ID and timestamps are generated here and
// written back onto c, so the caller's struct reflects the stored row.
// A duplicate title violates the UNIQUE constraint and maps to Conflict.
func (db *DB) Create(ctx context.Context, c *model.Case) error {
	c.ID = xid.New().String()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Used = false
	c.ResponseCode = nil
	c.ResponseBody = nil

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO cases (id, owner_id, title, host, uri, method, request_body,
		                    expected_result, category, used, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		c.ID,
		c.OwnerID,
		c.Title,
		c.Host,
		c.URI,
		c.Method,
		c.RequestBody,
		c.ExpectedResult,
		c.Category,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Case with that title already exists")
		}
		return fmt.Errorf("sqlite: creating case: %w", err)
	}

	return nil
}

// GetByID retrieves a single case. Not owner-scoped.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Case, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE id = ?`, id)

	c, err := scanCase(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Case", id)
		}
		return nil, fmt.Errorf("sqlite: getting case %s: %w", id, err)
	}

	return c, nil
}

// ListByOwner returns the owner's cases ordered by id ascending.
func (db *DB) ListByOwner(ctx context.Context, ownerID string, opts repository.ListOptions) ([]model.Case, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+caseColumns+` FROM cases
		 WHERE owner_id = ?
		 ORDER BY id
		 LIMIT ? OFFSET ?`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing cases: %w", err)
	}
	defer rows.Close()

	cases := make([]model.Case, 0, limit)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning case row: %w", err)
		}
		cases = append(cases, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating cases: %w", err)
	}

	return cases, nil
}

// Update writes every mutable column from c. The caller (the service layer)
// is responsible for merging partial input over the stored record first.
// Zero rows affected means the case vanished between read and write.
func (db *DB) Update(ctx context.Context, c *model.Case) error {
	c.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE cases
		 SET owner_id = ?, title = ?, host = ?, uri = ?, method = ?,
		     request_body = ?, expected_result = ?, category = ?, used = ?,
		     updated_at = ?
		 WHERE id = ?`,
		c.OwnerID,
		c.Title,
		c.Host,
		c.URI,
		c.Method,
		c.RequestBody,
		c.ExpectedResult,
		c.Category,
		c.Used,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Case with that title already exists")
		}
		return fmt.Errorf("sqlite: updating case %s: %w", c.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Case", c.ID)
	}

	return nil
}

// UpdateResponse overwrites the captured response columns with the latest
// dispatch outcome. Prior values are discarded; the used flag is untouched.
func (db *DB) UpdateResponse(ctx context.Context, id, code, body string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE cases
		 SET response_code = ?, response_body = ?, updated_at = ?
		 WHERE id = ?`,
		code, body, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: recording response for case %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Case", id)
	}

	return nil
}

// Delete removes a case. Deleting a missing id reports NotFound, so a
// second delete of the same id fails the same way as the first would for an
// unknown id.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM cases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting case %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Case", id)
	}

	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCase(s scanner) (*model.Case, error) {
	var (
		c            model.Case
		responseCode sql.NullString
		responseBody sql.NullString
	)

	err := s.Scan(
		&c.ID,
		&c.OwnerID,
		&c.Title,
		&c.Host,
		&c.URI,
		&c.Method,
		&c.RequestBody,
		&c.ExpectedResult,
		&c.Category,
		&c.Used,
		&responseCode,
		&responseBody,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if responseCode.Valid {
		c.ResponseCode = &responseCode.String
	}
	if responseBody.Valid {
		c.ResponseBody = &responseBody.String
	}

	return &c, nil
}
