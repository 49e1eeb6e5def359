package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Kind identifies an entity collection. The value doubles as the URI path segment.
type Kind string

// Entity kinds served by the vault.
const (
	KindSecret      Kind = "secrets"
	KindKey         Kind = "keys"
	KindCertificate Kind = "certificates"
)

var namePattern = regexp.MustCompile(`^[0-9a-zA-Z-]{1,127}$`)

// Record is one version of a named entity. Payload is immutable once stored;
// attributes and tags are mutated through Patch.
type Record[T any] struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Version            string     `json:"version"`
	Attributes         Attributes `json:"attributes"`
	Tags               Tags       `json:"tags,omitempty"`
	Deleted            bool       `json:"deleted"`
	DeletedDate        int64      `json:"deletedDate,omitempty"`
	ScheduledPurgeDate int64      `json:"scheduledPurgeDate,omitempty"`
	Sequence           int64      `json:"sequence"`
	Payload            T          `json:"payload"`
}

// NewerThan reports whether r was created after other. Equal created timestamps
// are ordered by insertion sequence.
func (r *Record[T]) NewerThan(other *Record[T]) bool {
	if r.Attributes.Created != other.Attributes.Created {
		return r.Attributes.Created > other.Attributes.Created
	}
	return r.Sequence > other.Sequence
}

// Guard inspects the current version of a name before a new version is written.
// current is nil when the name has no active version. A non-nil error aborts the write.
type Guard[T any] func(current *Record[T]) error

// DeletedRecord describes a soft-deleted entity and how to recover it.
type DeletedRecord[T any] struct {
	Record             *Record[T]
	RecoveryID         string
	DeletedDate        int64
	ScheduledPurgeDate int64
}

// Page is one slice of a paged listing. NextCursor is empty on the final page.
type Page[T any] struct {
	Items      []*Record[T]
	NextCursor string
}

// Backup is the serialized form of every version of a name, sealed into a backup blob.
type Backup[T any] struct {
	Kind     Kind         `json:"kind"`
	Name     string       `json:"name"`
	Versions []*Record[T] `json:"versions"`
}

// Renew checks that b holds versions of kind and gives every version a fresh token.
// It returns the mapping from old to new tokens.
func (b *Backup[T]) Renew(kind Kind) (map[string]string, error) {
	if b.Kind != kind {
		return nil, ErrBackupKindMismatch
	}
	if err := ValidateName(b.Name); err != nil {
		return nil, err
	}
	if len(b.Versions) == 0 {
		return nil, ErrEmptyBackup
	}

	renamed := make(map[string]string, len(b.Versions))
	for _, v := range b.Versions {
		if v == nil {
			return nil, ErrEmptyBackup
		}
		next := NewVersion()
		renamed[v.Version] = next
		v.Version = next
		v.Name = b.Name
	}
	return renamed, nil
}

// NewVersion returns a fresh version token: 32 lowercase hex characters.
func NewVersion() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ValidateName checks an entity name: 1-127 characters of letters, digits and dashes.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return ErrInvalidName
	}
	return nil
}

// ValidateVersion rejects empty version tokens.
func ValidateVersion(version string) error {
	if strings.TrimSpace(version) == "" {
		return ErrInvalidVersion
	}
	return nil
}
