package domain

import (
	"github.com/allisson/keyvault-emulator/internal/errors"
)

// Key-specific error definitions.
var (
	// ErrUnsupportedAlgorithm indicates an encryption or signature algorithm the engine does not implement.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrNotImplemented, "unsupported algorithm")

	// ErrUnsupportedKeyType indicates a key type other than RSA or RSA-HSM.
	ErrUnsupportedKeyType = errors.Wrap(errors.ErrNotImplemented, "unsupported key type")

	// ErrUnsupportedKeySize indicates an RSA size outside 2048, 3072 and 4096.
	ErrUnsupportedKeySize = errors.Wrap(errors.ErrInvalidInput, "unsupported key size")

	// ErrInvalidKeyMaterial indicates a JSON web key that does not describe a usable RSA key.
	ErrInvalidKeyMaterial = errors.Wrap(errors.ErrInvalidInput, "invalid key material")

	// ErrInvalidDigestLength indicates a digest whose length does not match the signature hash.
	ErrInvalidDigestLength = errors.Wrap(errors.ErrInvalidInput, "digest length does not match algorithm")

	// ErrPlaintextTooLong indicates a plaintext or wrapped key larger than the key's modulus allows.
	ErrPlaintextTooLong = errors.Wrap(errors.ErrInvalidInput, "plaintext too long for key")

	// ErrInvalidRandomBytesCount indicates a random bytes request outside 1..128.
	ErrInvalidRandomBytesCount = errors.Wrap(errors.ErrInvalidInput, "count must be between 1 and 128")

	// ErrPrivateKeyRequired indicates a private operation on public-only key material.
	ErrPrivateKeyRequired = errors.Wrap(errors.ErrInvalidOperation, "operation requires private key material")

	// ErrOperationNotAllowed indicates an operation missing from the key's key_ops.
	ErrOperationNotAllowed = errors.Wrap(errors.ErrInvalidOperation, "operation not permitted by key_ops")

	// ErrKeyDisabled indicates a cryptographic operation on a disabled key.
	ErrKeyDisabled = errors.Wrap(errors.ErrInvalidOperation, "key is disabled")

	// ErrKeyNotActive indicates a cryptographic operation outside the key's nbf/exp window.
	ErrKeyNotActive = errors.Wrap(errors.ErrInvalidOperation, "key is not yet valid or has expired")

	// ErrManagedKey indicates a direct change to a key whose lifetime belongs to a certificate.
	ErrManagedKey = errors.Wrap(errors.ErrInvalidOperation, "key is managed by a certificate")

	// ErrDecryptFailed indicates ciphertext that the key could not decrypt.
	ErrDecryptFailed = errors.Wrap(errors.ErrInvalidOperation, "decryption failed")
)
