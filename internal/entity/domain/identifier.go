package domain

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/allisson/keyvault-emulator/internal/errors"
)

// IDBuilder renders entity identifiers as URIs rooted at the vault base URI.
type IDBuilder struct {
	BaseURI string
}

// NewIDBuilder normalizes the base URI by trimming any trailing slash.
func NewIDBuilder(baseURI string) IDBuilder {
	return IDBuilder{BaseURI: strings.TrimRight(baseURI, "/")}
}

// ID returns {base}/{kind}/{name}/{version}, or {base}/{kind}/{name} without a version.
func (b IDBuilder) ID(kind Kind, name, version string) string {
	if version == "" {
		return fmt.Sprintf("%s/%s/%s", b.BaseURI, kind, name)
	}
	return fmt.Sprintf("%s/%s/%s/%s", b.BaseURI, kind, name, version)
}

// RecoveryID returns {base}/deleted{kind}/{name}.
func (b IDBuilder) RecoveryID(kind Kind, name string) string {
	return fmt.Sprintf("%s/deleted%s/%s", b.BaseURI, kind, name)
}

// ParseID splits an entity URI into kind, name and optional version.
func ParseID(id string) (Kind, string, string, error) {
	u, err := url.Parse(id)
	if err != nil {
		return "", "", "", errors.Wrap(errors.ErrInvalidInput, "malformed entity id")
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 {
		return "", "", "", errors.Wrap(errors.ErrInvalidInput, "malformed entity id")
	}
	version := ""
	if len(parts) == 3 {
		version = parts[2]
	}
	return Kind(parts[0]), parts[1], version, nil
}
