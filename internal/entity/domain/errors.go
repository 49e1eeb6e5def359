package domain

import (
	"github.com/allisson/keyvault-emulator/internal/errors"
)

// Entity store errors.
var (
	// ErrEntityNotFound indicates no visible version exists for the name (and version).
	ErrEntityNotFound = errors.Wrap(errors.ErrNotFound, "entity not found")

	// ErrDeletedEntityNotFound indicates the name is not in the deleted state.
	ErrDeletedEntityNotFound = errors.Wrap(errors.ErrNotFound, "deleted entity not found")

	// ErrEntityDeleted indicates the name is deleted but not purged and cannot be reused.
	ErrEntityDeleted = errors.Wrap(errors.ErrConflict, "entity is deleted but not purged")

	// ErrEntityExists indicates a restore targets a name that already has versions.
	ErrEntityExists = errors.Wrap(errors.ErrConflict, "entity already exists")

	// ErrVersionExists indicates an explicit version token is already taken.
	ErrVersionExists = errors.Wrap(errors.ErrConflict, "entity version already exists")

	// ErrDocumentNotFound indicates a single-version document (policy, issuer, contacts)
	// does not exist.
	ErrDocumentNotFound = errors.Wrap(errors.ErrNotFound, "document not found")

	// ErrInvalidName indicates an empty or malformed entity name.
	ErrInvalidName = errors.Wrap(errors.ErrInvalidInput, "name must be 1-127 characters of letters, digits and dashes")

	// ErrInvalidVersion indicates an empty version token.
	ErrInvalidVersion = errors.Wrap(errors.ErrInvalidInput, "version must not be empty")

	// ErrBackupKindMismatch indicates a backup blob of a different entity kind.
	ErrBackupKindMismatch = errors.Wrap(errors.ErrInvalidInput, "backup blob belongs to a different entity kind")

	// ErrEmptyBackup indicates a backup blob without versions.
	ErrEmptyBackup = errors.Wrap(errors.ErrInvalidInput, "backup blob holds no versions")
)
