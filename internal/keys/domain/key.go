// Package domain defines RSA key material, algorithms and key operations.
// Keys are stored as JSON web keys holding raw big-endian integers; transport
// encodings are left to the HTTP layer.
package domain

import (
	"crypto/rsa"
	"math/big"
	"slices"
)

// KeyType is the JSON web key "kty" value.
type KeyType string

// Supported key types. EC and oct keys are recognized but not implemented.
const (
	KeyTypeRSA    KeyType = "RSA"
	KeyTypeRSAHSM KeyType = "RSA-HSM"
	KeyTypeEC     KeyType = "EC"
	KeyTypeECHSM  KeyType = "EC-HSM"
	KeyTypeOct    KeyType = "oct"
	KeyTypeOctHSM KeyType = "oct-HSM"
)

// IsRSA reports whether kty is backed by the RSA engine.
func (k KeyType) IsRSA() bool {
	return k == KeyTypeRSA || k == KeyTypeRSAHSM
}

// KeyOperation is one entry of a key's "key_ops".
type KeyOperation string

// Key operations.
const (
	OperationEncrypt   KeyOperation = "encrypt"
	OperationDecrypt   KeyOperation = "decrypt"
	OperationSign      KeyOperation = "sign"
	OperationVerify    KeyOperation = "verify"
	OperationWrapKey   KeyOperation = "wrapKey"
	OperationUnwrapKey KeyOperation = "unwrapKey"
)

// AllKeyOperations lists every operation, used when a key is created without key_ops.
var AllKeyOperations = []KeyOperation{
	OperationEncrypt,
	OperationDecrypt,
	OperationSign,
	OperationVerify,
	OperationWrapKey,
	OperationUnwrapKey,
}

// EncryptionAlgorithm names an RSA encryption or key wrap scheme.
type EncryptionAlgorithm string

// Encryption algorithms.
const (
	RSA15      EncryptionAlgorithm = "RSA1_5"
	RSAOAEP    EncryptionAlgorithm = "RSA-OAEP"
	RSAOAEP256 EncryptionAlgorithm = "RSA-OAEP-256"
)

// SignatureAlgorithm names an RSA PKCS#1 v1.5 signature scheme.
type SignatureAlgorithm string

// Signature algorithms.
const (
	RS256 SignatureAlgorithm = "RS256"
	RS384 SignatureAlgorithm = "RS384"
	RS512 SignatureAlgorithm = "RS512"
)

// DefaultRSAKeySize is used when a create request omits key_size.
const DefaultRSAKeySize = 2048

// SupportedRSAKeySizes lists the RSA modulus sizes the engine generates.
var SupportedRSAKeySizes = []int{2048, 3072, 4096}

// JSONWebKey holds RSA key material. Private fields are empty for public-only keys.
type JSONWebKey struct {
	Kty    KeyType        `json:"kty"`
	KeyOps []KeyOperation `json:"key_ops,omitempty"`
	N      []byte         `json:"n,omitempty"`
	E      []byte         `json:"e,omitempty"`
	D      []byte         `json:"d,omitempty"`
	P      []byte         `json:"p,omitempty"`
	Q      []byte         `json:"q,omitempty"`
	DP     []byte         `json:"dp,omitempty"`
	DQ     []byte         `json:"dq,omitempty"`
	QI     []byte         `json:"qi,omitempty"`
}

// Key is the stored payload of a key version.
type Key struct {
	JSONWebKey JSONWebKey `json:"key"`
	// Managed is set when the key backs a certificate.
	Managed bool `json:"managed,omitempty"`
}

// HasPrivate reports whether the key carries private material.
func (k *JSONWebKey) HasPrivate() bool {
	return len(k.D) > 0
}

// Allows reports whether op is listed in key_ops.
func (k *JSONWebKey) Allows(op KeyOperation) bool {
	return slices.Contains(k.KeyOps, op)
}

// Size returns the modulus size in bits.
func (k *JSONWebKey) Size() int {
	return new(big.Int).SetBytes(k.N).BitLen()
}

// Public returns a copy of the key without private material.
func (k *JSONWebKey) Public() JSONWebKey {
	return JSONWebKey{
		Kty:    k.Kty,
		KeyOps: slices.Clone(k.KeyOps),
		N:      slices.Clone(k.N),
		E:      slices.Clone(k.E),
	}
}

// RSAPublicKey converts the key into an *rsa.PublicKey.
func (k *JSONWebKey) RSAPublicKey() (*rsa.PublicKey, error) {
	if !k.Kty.IsRSA() {
		return nil, ErrUnsupportedKeyType
	}
	if len(k.N) == 0 || len(k.E) == 0 {
		return nil, ErrInvalidKeyMaterial
	}

	e := new(big.Int).SetBytes(k.E)
	if !e.IsInt64() || e.Int64() < 2 || e.Int64() > 1<<31-1 {
		return nil, ErrInvalidKeyMaterial
	}

	return &rsa.PublicKey{N: new(big.Int).SetBytes(k.N), E: int(e.Int64())}, nil
}

// RSAPrivateKey converts the key into a validated *rsa.PrivateKey.
func (k *JSONWebKey) RSAPrivateKey() (*rsa.PrivateKey, error) {
	pub, err := k.RSAPublicKey()
	if err != nil {
		return nil, err
	}
	if !k.HasPrivate() {
		return nil, ErrPrivateKeyRequired
	}
	if len(k.P) == 0 || len(k.Q) == 0 {
		return nil, ErrInvalidKeyMaterial
	}

	priv := &rsa.PrivateKey{
		PublicKey: *pub,
		D:         new(big.Int).SetBytes(k.D),
		Primes:    []*big.Int{new(big.Int).SetBytes(k.P), new(big.Int).SetBytes(k.Q)},
	}
	if err := priv.Validate(); err != nil {
		return nil, ErrInvalidKeyMaterial
	}
	priv.Precompute()

	return priv, nil
}

// NewJSONWebKeyFromRSA builds a JSON web key holding the full private key.
func NewJSONWebKeyFromRSA(priv *rsa.PrivateKey, kty KeyType, ops []KeyOperation) JSONWebKey {
	priv.Precompute()

	jwk := NewJSONWebKeyFromRSAPublic(&priv.PublicKey, kty, ops)
	jwk.D = priv.D.Bytes()
	if len(priv.Primes) >= 2 {
		jwk.P = priv.Primes[0].Bytes()
		jwk.Q = priv.Primes[1].Bytes()
	}
	if priv.Precomputed.Dp != nil {
		jwk.DP = priv.Precomputed.Dp.Bytes()
		jwk.DQ = priv.Precomputed.Dq.Bytes()
		jwk.QI = priv.Precomputed.Qinv.Bytes()
	}
	return jwk
}

// NewJSONWebKeyFromRSAPublic builds a public-only JSON web key.
func NewJSONWebKeyFromRSAPublic(pub *rsa.PublicKey, kty KeyType, ops []KeyOperation) JSONWebKey {
	if len(ops) == 0 {
		ops = AllKeyOperations
	}
	return JSONWebKey{
		Kty:    kty,
		KeyOps: slices.Clone(ops),
		N:      pub.N.Bytes(),
		E:      big.NewInt(int64(pub.E)).Bytes(),
	}
}
