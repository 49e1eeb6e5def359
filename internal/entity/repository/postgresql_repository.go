package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/allisson/keyvault-emulator/internal/database"
	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	apperrors "github.com/allisson/keyvault-emulator/internal/errors"
)

const pqUniqueViolation = "23505"

// PostgreSQLRepository persists one entity kind in the vault_entities table.
type PostgreSQLRepository[T any] struct {
	db   *sql.DB
	kind domain.Kind
}

// ListByName returns every version of name ordered by sequence.
func (p *PostgreSQLRepository[T]) ListByName(ctx context.Context, name string) ([]*domain.Record[T], error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + entityColumns + ` FROM vault_entities
			  WHERE kind = $1 AND name = $2 ORDER BY seq`

	rows, err := querier.QueryContext(ctx, query, p.kind, name)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list entity versions")
	}
	return scanRecords[T](rows)
}

// GetByNameAndVersion returns a single version.
func (p *PostgreSQLRepository[T]) GetByNameAndVersion(
	ctx context.Context,
	name, version string,
) (*domain.Record[T], error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + entityColumns + ` FROM vault_entities
			  WHERE kind = $1 AND name = $2 AND version = $3`

	return scanRecord[T](querier.QueryRowContext(ctx, query, p.kind, name, version))
}

// Insert stores a new version and reads back its sequence.
func (p *PostgreSQLRepository[T]) Insert(ctx context.Context, record *domain.Record[T]) error {
	querier := database.GetTx(ctx, p.db)

	encoded, err := encodeRecord(record)
	if err != nil {
		return err
	}

	query := `INSERT INTO vault_entities
			  (kind, name, version, attributes, tags, payload, deleted, deleted_date, scheduled_purge_date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING seq`

	err = querier.QueryRowContext(
		ctx,
		query,
		p.kind,
		record.Name,
		record.Version,
		encoded.attributes,
		encoded.tags,
		encoded.payload,
		record.Deleted,
		record.DeletedDate,
		record.ScheduledPurgeDate,
	).Scan(&record.Sequence)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return domain.ErrVersionExists
		}
		return apperrors.Wrap(err, "failed to insert entity")
	}
	return nil
}

// Update overwrites attributes and tags of a version.
func (p *PostgreSQLRepository[T]) Update(ctx context.Context, record *domain.Record[T]) error {
	querier := database.GetTx(ctx, p.db)

	encoded, err := encodeRecord(record)
	if err != nil {
		return err
	}

	query := `UPDATE vault_entities SET attributes = $1, tags = $2
			  WHERE kind = $3 AND name = $4 AND version = $5`

	result, err := querier.ExecContext(
		ctx,
		query,
		encoded.attributes,
		encoded.tags,
		p.kind,
		record.Name,
		record.Version,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update entity")
	}
	return checkAffected(result)
}

// MarkDeleted flags every version of name as deleted.
func (p *PostgreSQLRepository[T]) MarkDeleted(
	ctx context.Context,
	name string,
	deletedDate, scheduledPurgeDate int64,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE vault_entities SET deleted = TRUE, deleted_date = $1, scheduled_purge_date = $2
			  WHERE kind = $3 AND name = $4`

	if _, err := querier.ExecContext(ctx, query, deletedDate, scheduledPurgeDate, p.kind, name); err != nil {
		return apperrors.Wrap(err, "failed to mark entity deleted")
	}
	return nil
}

// ClearDeleted clears the deleted flag on every version of name.
func (p *PostgreSQLRepository[T]) ClearDeleted(ctx context.Context, name string) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE vault_entities SET deleted = FALSE, deleted_date = 0, scheduled_purge_date = 0
			  WHERE kind = $1 AND name = $2`

	if _, err := querier.ExecContext(ctx, query, p.kind, name); err != nil {
		return apperrors.Wrap(err, "failed to clear entity deleted flag")
	}
	return nil
}

// DeleteByName removes every version of name.
func (p *PostgreSQLRepository[T]) DeleteByName(ctx context.Context, name string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM vault_entities WHERE kind = $1 AND name = $2`

	if _, err := querier.ExecContext(ctx, query, p.kind, name); err != nil {
		return apperrors.Wrap(err, "failed to delete entity")
	}
	return nil
}

// DeleteVersion removes a single version.
func (p *PostgreSQLRepository[T]) DeleteVersion(ctx context.Context, name, version string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM vault_entities WHERE kind = $1 AND name = $2 AND version = $3`

	if _, err := querier.ExecContext(ctx, query, p.kind, name, version); err != nil {
		return apperrors.Wrap(err, "failed to delete entity version")
	}
	return nil
}

// ListNames returns distinct names in the given deleted state by first insertion.
func (p *PostgreSQLRepository[T]) ListNames(ctx context.Context, deleted bool) ([]string, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT name FROM vault_entities WHERE kind = $1 AND deleted = $2
			  GROUP BY name ORDER BY MIN(seq)`

	rows, err := querier.QueryContext(ctx, query, p.kind, deleted)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list entity names")
	}
	return scanNames(rows)
}

// NewPostgreSQLRepository creates a PostgreSQL repository for kind.
func NewPostgreSQLRepository[T any](db *sql.DB, kind domain.Kind) *PostgreSQLRepository[T] {
	return &PostgreSQLRepository[T]{db: db, kind: kind}
}
