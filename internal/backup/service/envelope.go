// Package service seals and opens backup blobs.
//
// A sealed envelope has four segments joined by ".": the JSON header, the AES session
// key encrypted with RSA-OAEP-SHA256 under the vault key, the CBC initialization
// vector and the AES-256-CBC ciphertext of the JSON payload (PKCS#7 padded). Every
// segment is base64url without padding, and the joined string is base64url encoded once
// more so the blob is a single opaque token.
//
// The header advertises A256CBC-HS512 for client compatibility, but no HMAC is computed
// or verified. Integrity of a blob rests on the RSA-wrapped session key alone.
//
// Thread safety:
//
//	EnvelopeService is read-only after construction and safe for concurrent use.
package service

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	backupDomain "github.com/allisson/keyvault-emulator/internal/backup/domain"
)

const (
	// VaultKeyBits is the size of the RSA key generated for a vault process.
	VaultKeyBits = 2048

	sessionKeySize = 32
	segmentCount   = 4
)

var encoding = base64.RawURLEncoding

// EnvelopeService seals values into backup blobs under one RSA key.
type EnvelopeService struct {
	key   *rsa.PrivateKey
	keyID string
}

// NewEnvelopeService creates an envelope service for key. keyID is written into
// every header.
func NewEnvelopeService(key *rsa.PrivateKey, keyID string) (*EnvelopeService, error) {
	if key == nil {
		return nil, fmt.Errorf("vault key must not be nil")
	}
	return &EnvelopeService{key: key, keyID: keyID}, nil
}

// GenerateVaultKey creates a fresh RSA key for sealing backups.
func GenerateVaultKey() (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, VaultKeyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate vault key: %w", err)
	}
	return key, nil
}

// KeyID returns the key identifier written into envelope headers.
func (s *EnvelopeService) KeyID() string {
	return s.keyID
}

// Seal serializes v to JSON and encrypts it into an opaque blob.
func (s *EnvelopeService) Seal(v any) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode backup payload: %w", err)
	}

	header, err := json.Marshal(backupDomain.Header{
		Algorithm:  backupDomain.KeyAlgorithm,
		Encryption: backupDomain.ContentAlgorithm,
		KeyID:      s.keyID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode envelope header: %w", err)
	}

	sessionKey := make([]byte, sessionKeySize)
	if _, err := rand.Read(sessionKey); err != nil {
		return "", fmt.Errorf("failed to generate session key: %w", err)
	}
	defer backupDomain.Zero(sessionKey)

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	block, err := aes.NewCipher(sessionKey)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	ciphertext := pad(plaintext, aes.BlockSize)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, ciphertext)

	encryptedKey, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, &s.key.PublicKey, sessionKey, nil)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt session key: %w", err)
	}

	compact := strings.Join([]string{
		encoding.EncodeToString(header),
		encoding.EncodeToString(encryptedKey),
		encoding.EncodeToString(iv),
		encoding.EncodeToString(ciphertext),
	}, ".")

	return encoding.EncodeToString([]byte(compact)), nil
}

// Open decrypts token and decodes its JSON payload into v. Any failure returns
// backupDomain.ErrInvalidBackup.
func (s *EnvelopeService) Open(token string, v any) error {
	plaintext, err := s.open(token)
	if err != nil {
		return backupDomain.ErrInvalidBackup
	}
	if err := json.Unmarshal(plaintext, v); err != nil {
		return backupDomain.ErrInvalidBackup
	}
	return nil
}

func (s *EnvelopeService) open(token string) ([]byte, error) {
	compact, err := encoding.DecodeString(token)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(string(compact), ".")
	if len(parts) != segmentCount {
		return nil, fmt.Errorf("expected %d segments, got %d", segmentCount, len(parts))
	}

	segments := make([][]byte, segmentCount)
	for i, part := range parts {
		segments[i], err = encoding.DecodeString(part)
		if err != nil {
			return nil, err
		}
	}

	var header backupDomain.Header
	if err := json.Unmarshal(segments[0], &header); err != nil {
		return nil, err
	}
	if header.Algorithm != backupDomain.KeyAlgorithm {
		return nil, fmt.Errorf("unsupported key algorithm %q", header.Algorithm)
	}

	sessionKey, err := rsa.DecryptOAEP(sha256.New(), nil, s.key, segments[1], nil)
	if err != nil {
		return nil, err
	}
	defer backupDomain.Zero(sessionKey)

	iv, ciphertext := segments[2], segments[3]
	if len(iv) != aes.BlockSize || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("malformed ciphertext")
	}

	block, err := aes.NewCipher(sessionKey)
	if err != nil {
		return nil, err
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return unpad(plaintext, aes.BlockSize)
}

// pad applies PKCS#7 padding and returns a fresh slice.
func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(bytes.Clone(data), bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty plaintext")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("invalid padding")
		}
	}
	return data[:len(data)-n], nil
}
