package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/allisson/keyvault-emulator/internal/database"
	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	apperrors "github.com/allisson/keyvault-emulator/internal/errors"
)

const mysqlDuplicateEntry = 1062

// MySQLRepository persists one entity kind in the vault_entities table.
type MySQLRepository[T any] struct {
	db   *sql.DB
	kind domain.Kind
}

// ListByName returns every version of name ordered by sequence.
func (m *MySQLRepository[T]) ListByName(ctx context.Context, name string) ([]*domain.Record[T], error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + entityColumns + ` FROM vault_entities
			  WHERE kind = ? AND name = ? ORDER BY seq`

	rows, err := querier.QueryContext(ctx, query, m.kind, name)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list entity versions")
	}
	return scanRecords[T](rows)
}

// GetByNameAndVersion returns a single version.
func (m *MySQLRepository[T]) GetByNameAndVersion(
	ctx context.Context,
	name, version string,
) (*domain.Record[T], error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + entityColumns + ` FROM vault_entities
			  WHERE kind = ? AND name = ? AND version = ?`

	return scanRecord[T](querier.QueryRowContext(ctx, query, m.kind, name, version))
}

// Insert stores a new version and records the generated sequence.
func (m *MySQLRepository[T]) Insert(ctx context.Context, record *domain.Record[T]) error {
	querier := database.GetTx(ctx, m.db)

	encoded, err := encodeRecord(record)
	if err != nil {
		return err
	}

	query := `INSERT INTO vault_entities
			  (kind, name, version, attributes, tags, payload, deleted, deleted_date, scheduled_purge_date)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := querier.ExecContext(
		ctx,
		query,
		m.kind,
		record.Name,
		record.Version,
		encoded.attributes,
		encoded.tags,
		encoded.payload,
		record.Deleted,
		record.DeletedDate,
		record.ScheduledPurgeDate,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return domain.ErrVersionExists
		}
		return apperrors.Wrap(err, "failed to insert entity")
	}

	sequence, err := result.LastInsertId()
	if err != nil {
		return apperrors.Wrap(err, "failed to read entity sequence")
	}
	record.Sequence = sequence
	return nil
}

// Update overwrites attributes and tags of a version.
func (m *MySQLRepository[T]) Update(ctx context.Context, record *domain.Record[T]) error {
	querier := database.GetTx(ctx, m.db)

	encoded, err := encodeRecord(record)
	if err != nil {
		return err
	}

	query := `UPDATE vault_entities SET attributes = ?, tags = ?
			  WHERE kind = ? AND name = ? AND version = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		encoded.attributes,
		encoded.tags,
		m.kind,
		record.Name,
		record.Version,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update entity")
	}
	return checkAffected(result)
}

// MarkDeleted flags every version of name as deleted.
func (m *MySQLRepository[T]) MarkDeleted(
	ctx context.Context,
	name string,
	deletedDate, scheduledPurgeDate int64,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE vault_entities SET deleted = TRUE, deleted_date = ?, scheduled_purge_date = ?
			  WHERE kind = ? AND name = ?`

	if _, err := querier.ExecContext(ctx, query, deletedDate, scheduledPurgeDate, m.kind, name); err != nil {
		return apperrors.Wrap(err, "failed to mark entity deleted")
	}
	return nil
}

// ClearDeleted clears the deleted flag on every version of name.
func (m *MySQLRepository[T]) ClearDeleted(ctx context.Context, name string) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE vault_entities SET deleted = FALSE, deleted_date = 0, scheduled_purge_date = 0
			  WHERE kind = ? AND name = ?`

	if _, err := querier.ExecContext(ctx, query, m.kind, name); err != nil {
		return apperrors.Wrap(err, "failed to clear entity deleted flag")
	}
	return nil
}

// DeleteByName removes every version of name.
func (m *MySQLRepository[T]) DeleteByName(ctx context.Context, name string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM vault_entities WHERE kind = ? AND name = ?`

	if _, err := querier.ExecContext(ctx, query, m.kind, name); err != nil {
		return apperrors.Wrap(err, "failed to delete entity")
	}
	return nil
}

// DeleteVersion removes a single version.
func (m *MySQLRepository[T]) DeleteVersion(ctx context.Context, name, version string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM vault_entities WHERE kind = ? AND name = ? AND version = ?`

	if _, err := querier.ExecContext(ctx, query, m.kind, name, version); err != nil {
		return apperrors.Wrap(err, "failed to delete entity version")
	}
	return nil
}

// ListNames returns distinct names in the given deleted state by first insertion.
func (m *MySQLRepository[T]) ListNames(ctx context.Context, deleted bool) ([]string, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT name FROM vault_entities WHERE kind = ? AND deleted = ?
			  GROUP BY name ORDER BY MIN(seq)`

	rows, err := querier.QueryContext(ctx, query, m.kind, deleted)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list entity names")
	}
	return scanNames(rows)
}

// NewMySQLRepository creates a MySQL repository for kind.
func NewMySQLRepository[T any](db *sql.DB, kind domain.Kind) *MySQLRepository[T] {
	return &MySQLRepository[T]{db: db, kind: kind}
}
