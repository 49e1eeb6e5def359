// Package domain defines the backup blob format and its errors.
package domain

import (
	"github.com/allisson/keyvault-emulator/internal/errors"
)

// Backup-specific error definitions.
var (
	// ErrInvalidBackup indicates a backup blob that could not be opened. Every
	// failure mode (bad encoding, wrong key, bad padding, bad payload) maps here.
	ErrInvalidBackup = errors.Wrap(errors.ErrDecryptionFailed, "invalid backup blob")
)
