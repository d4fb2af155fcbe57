package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"catalog-backend/internal/domain"

	"github.com/google/uuid"
)

// lookupRow is the shared shape of the category and material tables
type lookupRow struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// lookupStore implements CRUD for a simple (id, name, timestamps) table.
type lookupStore struct {
	db           *sql.DB
	table        string
	notFound     error
	alreadyExist error
	inUse        error
}

func (s *lookupStore) create(ctx context.Context, row lookupRow) (*lookupRow, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, created_at, updated_at
	`, s.table)

	out, err := scanLookupRow(s.db.QueryRowContext(ctx, query, row.ID, row.Name, row.CreatedAt, row.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, s.alreadyExist
		}
		return nil, domain.NewStorageError("create "+s.table+" row", err)
	}
	return out, nil
}

func (s *lookupStore) findByID(ctx context.Context, id uuid.UUID) (*lookupRow, error) {
	query := fmt.Sprintf(`SELECT id, name, created_at, updated_at FROM %s WHERE id = $1`, s.table)

	out, err := scanLookupRow(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.notFound
		}
		return nil, domain.NewStorageError("find "+s.table+" row", err)
	}
	return out, nil
}

// findAll returns a page ordered by newest first with the full row count
func (s *lookupStore) findAll(ctx context.Context, q domain.PaginationQuery) ([]*lookupRow, uint64, error) {
	query := fmt.Sprintf(`
		SELECT id, name, created_at, updated_at, COUNT(*) OVER() AS total_count
		FROM %s
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, s.table)

	rows, err := s.db.QueryContext(ctx, query, q.GetLimit(), q.GetOffset())
	if err != nil {
		return nil, 0, domain.NewStorageError("list "+s.table, err)
	}
	defer rows.Close()

	var (
		out   = []*lookupRow{}
		total int64
	)
	for rows.Next() {
		var row lookupRow
		if err := rows.Scan(&row.ID, &row.Name, &row.CreatedAt, &row.UpdatedAt, &total); err != nil {
			return nil, 0, domain.NewStorageError("scan "+s.table+" row", err)
		}
		out = append(out, &row)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, domain.NewStorageError("iterate "+s.table, err)
	}
	return out, uint64(total), nil
}

func (s *lookupStore) update(ctx context.Context, id uuid.UUID, name string, updatedAt time.Time) (*lookupRow, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET name = $2, updated_at = $3
		WHERE id = $1
		RETURNING id, name, created_at, updated_at
	`, s.table)

	out, err := scanLookupRow(s.db.QueryRowContext(ctx, query, id, name, updatedAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.notFound
		}
		if isUniqueViolation(err) {
			return nil, s.alreadyExist
		}
		return nil, domain.NewStorageError("update "+s.table+" row", err)
	}
	return out, nil
}

// delete is idempotent. A row still referenced by products fails with inUse
// when the table has one.
func (s *lookupStore) delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table)

	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation && s.inUse != nil {
			return s.inUse
		}
		return domain.NewStorageError("delete "+s.table+" row", err)
	}
	return nil
}

func scanLookupRow(row scanner) (*lookupRow, error) {
	var out lookupRow
	if err := row.Scan(&out.ID, &out.Name, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}
