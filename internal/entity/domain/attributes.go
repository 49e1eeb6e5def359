// Package domain defines the shape shared by every vault entity kind: attributes,
// tags, versioned records, pages and resource identifiers.
package domain

import "time"

// Recovery defaults applied to every new entity version.
const (
	DefaultRecoveryLevel   = "Recoverable+Purgeable"
	DefaultRecoverableDays = 90
)

// Attributes hold the mutable management metadata of an entity version.
// All timestamps are Unix seconds.
type Attributes struct {
	Enabled         bool   `json:"enabled"`
	NotBefore       *int64 `json:"nbf,omitempty"`
	Expires         *int64 `json:"exp,omitempty"`
	Created         int64  `json:"created"`
	Updated         int64  `json:"updated"`
	RecoveryLevel   string `json:"recoveryLevel"`
	RecoverableDays int    `json:"recoverableDays"`
}

// AttributesPatch carries the caller-settable attribute fields. Nil fields are left unchanged.
type AttributesPatch struct {
	Enabled   *bool
	NotBefore *int64
	Expires   *int64
}

// Tags is an arbitrary string map attached to an entity version.
type Tags map[string]string

// Clone returns an independent copy of the tags. A nil map stays nil.
func (t Tags) Clone() Tags {
	if t == nil {
		return nil
	}
	out := make(Tags, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// NewAttributes builds the attributes of a freshly created version. Entities are
// enabled unless the patch says otherwise.
func NewAttributes(now time.Time, patch *AttributesPatch, recoverableDays int) Attributes {
	if recoverableDays <= 0 {
		recoverableDays = DefaultRecoverableDays
	}
	attrs := Attributes{
		Enabled:         true,
		Created:         now.Unix(),
		Updated:         now.Unix(),
		RecoveryLevel:   DefaultRecoveryLevel,
		RecoverableDays: recoverableDays,
	}
	if patch != nil {
		attrs.Apply(*patch)
	}
	return attrs
}

// Apply copies every non-nil field of the patch into the attributes.
func (a *Attributes) Apply(patch AttributesPatch) {
	if patch.Enabled != nil {
		a.Enabled = *patch.Enabled
	}
	if patch.NotBefore != nil {
		v := *patch.NotBefore
		a.NotBefore = &v
	}
	if patch.Expires != nil {
		v := *patch.Expires
		a.Expires = &v
	}
}

// Patch is an in-place update of a version's attributes and tags. A nil Tags
// map leaves the tags untouched; an empty non-nil map clears them.
type Patch struct {
	Attributes *AttributesPatch
	Tags       Tags
}

// Int64Ptr is a small helper for building attribute patches.
func Int64Ptr(v int64) *int64 {
	return &v
}

// BoolPtr is a small helper for building attribute patches.
func BoolPtr(v bool) *bool {
	return &v
}
