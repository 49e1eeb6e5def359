package repository

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	apperrors "github.com/allisson/keyvault-emulator/internal/errors"
)

const entityColumns = `seq, name, version, attributes, tags, payload, deleted, deleted_date, scheduled_purge_date`

type rowScanner interface {
	Scan(dest ...any) error
}

// encodedRecord holds the JSON columns of a record ready for a write.
type encodedRecord struct {
	attributes []byte
	tags       []byte
	payload    []byte
}

func encodeRecord[T any](record *domain.Record[T]) (*encodedRecord, error) {
	attributes, err := json.Marshal(record.Attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attributes: %w", err)
	}
	tags, err := json.Marshal(record.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	payload, err := json.Marshal(record.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return &encodedRecord{attributes: attributes, tags: tags, payload: payload}, nil
}

func scanRecord[T any](row rowScanner) (*domain.Record[T], error) {
	var (
		record     domain.Record[T]
		attributes []byte
		tags       []byte
		payload    []byte
	)

	err := row.Scan(
		&record.Sequence,
		&record.Name,
		&record.Version,
		&attributes,
		&tags,
		&payload,
		&record.Deleted,
		&record.DeletedDate,
		&record.ScheduledPurgeDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEntityNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan entity")
	}

	if err := json.Unmarshal(attributes, &record.Attributes); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode attributes")
	}
	if len(tags) > 0 && !bytes.Equal(tags, []byte("null")) {
		if err := json.Unmarshal(tags, &record.Tags); err != nil {
			return nil, apperrors.Wrap(err, "failed to decode tags")
		}
	}
	if err := json.Unmarshal(payload, &record.Payload); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode payload")
	}

	return &record, nil
}

func scanRecords[T any](rows *sql.Rows) ([]*domain.Record[T], error) {
	defer func() {
		_ = rows.Close()
	}()

	var records []*domain.Record[T]
	for rows.Next() {
		record, err := scanRecord[T](rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate entities")
	}
	return records, nil
}

func scanNames(rows *sql.Rows) ([]string, error) {
	defer func() {
		_ = rows.Close()
	}()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan entity name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate entity names")
	}
	return names, nil
}

func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return domain.ErrEntityNotFound
	}
	return nil
}
