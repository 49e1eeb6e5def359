package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	certificatesDomain "github.com/allisson/keyvault-emulator/internal/certificates/domain"
	"github.com/allisson/keyvault-emulator/internal/certificates/service"
	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	apperrors "github.com/allisson/keyvault-emulator/internal/errors"
	keysDomain "github.com/allisson/keyvault-emulator/internal/keys/domain"
	secretsDomain "github.com/allisson/keyvault-emulator/internal/secrets/domain"
)

// certificateUseCase implements the CertificateUseCase interface.
type certificateUseCase struct {
	certs      EntityStore[certificatesDomain.Certificate]
	keys       EntityStore[keysDomain.Key]
	secrets    EntityStore[secretsDomain.Secret]
	policies   DocumentRepository[certificatesDomain.Policy]
	operations DocumentRepository[certificatesDomain.Operation]
	issuers    DocumentRepository[certificatesDomain.Issuer]
	engine     IssuanceEngine
	envelope   Envelope
	ids        domain.IDBuilder
	clock      func() time.Time
}

// Create issues a new certificate version from the stored policy of name, patched by
// input.Policy. The returned operation is always completed.
func (c *certificateUseCase) Create(
	ctx context.Context,
	name string,
	input CreateCertificateInput,
) (*certificatesDomain.Operation, error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	policy, err := c.policyFor(ctx, name, input.Policy)
	if err != nil {
		return nil, err
	}
	if err := c.checkIssuer(ctx, policy.Issuer.Name); err != nil {
		return nil, err
	}

	issued, err := c.engine.Issue(ctx, policy)
	if err != nil {
		return nil, err
	}

	record, err := c.commit(ctx, name, issued, policy, input.Attributes, input.Tags)
	if err != nil {
		return nil, err
	}
	if err := c.policies.Put(ctx, name, &policy); err != nil {
		return nil, err
	}

	op := &certificatesDomain.Operation{
		ID:        c.operationID(name),
		Issuer:    policy.Issuer,
		CSR:       issued.CSR,
		Status:    certificatesDomain.StatusCompleted,
		Target:    record.ID,
		RequestID: uuid.NewString(),
	}
	if err := c.operations.Put(ctx, name, op); err != nil {
		return nil, err
	}
	return op, nil
}

// Import stores externally issued material as a new certificate version. The backing
// secret is re-exported without a password.
func (c *certificateUseCase) Import(
	ctx context.Context,
	name string,
	input ImportCertificateInput,
) (*domain.Record[certificatesDomain.Certificate], error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	issued, contentType, err := c.engine.Parse(input.Value, input.Password)
	if err != nil {
		return nil, err
	}

	now := c.clock()
	policy := certificatesDomain.DefaultPolicy(now)
	policy.SecretProperties.ContentType = contentType
	if input.Policy != nil {
		policy.Apply(*input.Policy, now)
	}
	policy = service.DescribePolicy(policy, issued)
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	record, err := c.commit(ctx, name, issued, policy, input.Attributes, input.Tags)
	if err != nil {
		return nil, err
	}
	if err := c.policies.Put(ctx, name, &policy); err != nil {
		return nil, err
	}
	return record, nil
}

// Merge completes a pending certificate with a signed chain. The new version shares
// the pending private key.
func (c *certificateUseCase) Merge(
	ctx context.Context,
	name string,
	input MergeCertificateInput,
) (*domain.Record[certificatesDomain.Certificate], error) {
	current, err := c.certs.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if !current.Payload.Pending() {
		return nil, certificatesDomain.ErrNoPendingCertificate
	}

	key, err := c.keys.GetVersion(ctx, name, current.Version)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, certificatesDomain.ErrNoPendingCertificate
		}
		return nil, err
	}
	priv, err := key.Payload.JSONWebKey.RSAPrivateKey()
	if err != nil {
		return nil, certificatesDomain.ErrNoPendingCertificate
	}

	issued, err := c.engine.Merge(priv, input.X5C)
	if err != nil {
		return nil, err
	}

	tags := input.Tags
	if tags == nil {
		tags = current.Tags
	}
	record, err := c.commit(ctx, name, issued, current.Payload.Policy, input.Attributes, tags)
	if err != nil {
		return nil, err
	}

	op, err := c.operations.Get(ctx, name)
	switch {
	case err == nil:
		op.Target = record.ID
		op.Status = certificatesDomain.StatusCompleted
		if err := c.operations.Put(ctx, name, op); err != nil {
			return nil, err
		}
	case !apperrors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}
	return record, nil
}

// Get returns one version of name. An empty version returns the current one.
func (c *certificateUseCase) Get(
	ctx context.Context,
	name, version string,
) (*domain.Record[certificatesDomain.Certificate], error) {
	return c.certs.GetVersion(ctx, name, version)
}

// Update changes attributes and tags of a certificate version.
func (c *certificateUseCase) Update(
	ctx context.Context,
	name, version string,
	patch domain.Patch,
) (*domain.Record[certificatesDomain.Certificate], error) {
	return c.certs.Update(ctx, name, version, patch)
}

// List pages over the current version of every active certificate.
func (c *certificateUseCase) List(
	ctx context.Context,
	cursor string,
	take int,
) (*domain.Page[certificatesDomain.Certificate], error) {
	return c.certs.ListCurrent(ctx, cursor, take)
}

// ListVersions pages over every version of name.
func (c *certificateUseCase) ListVersions(
	ctx context.Context,
	name, cursor string,
	take int,
) (*domain.Page[certificatesDomain.Certificate], error) {
	return c.certs.ListVersions(ctx, name, cursor, take)
}

// Delete soft-deletes the certificate together with its key and secret.
func (c *certificateUseCase) Delete(
	ctx context.Context,
	name string,
) (*domain.DeletedRecord[certificatesDomain.Certificate], error) {
	deleted, err := c.certs.Delete(ctx, name)
	if err != nil {
		return nil, err
	}
	if _, err := c.keys.Delete(ctx, name); ignoreNotFound(err) != nil {
		return nil, err
	}
	if _, err := c.secrets.Delete(ctx, name); ignoreNotFound(err) != nil {
		return nil, err
	}
	return deleted, nil
}

// GetDeleted returns a deleted certificate.
func (c *certificateUseCase) GetDeleted(
	ctx context.Context,
	name string,
) (*domain.DeletedRecord[certificatesDomain.Certificate], error) {
	return c.certs.GetDeleted(ctx, name)
}

// ListDeleted pages over deleted certificates.
func (c *certificateUseCase) ListDeleted(
	ctx context.Context,
	cursor string,
	take int,
) (*domain.Page[certificatesDomain.Certificate], error) {
	return c.certs.ListDeleted(ctx, cursor, take)
}

// Recover restores a deleted certificate together with its key and secret.
func (c *certificateUseCase) Recover(
	ctx context.Context,
	name string,
) (*domain.Record[certificatesDomain.Certificate], error) {
	record, err := c.certs.Recover(ctx, name)
	if err != nil {
		return nil, err
	}
	if _, err := c.keys.Recover(ctx, name); ignoreNotFound(err) != nil {
		return nil, err
	}
	if _, err := c.secrets.Recover(ctx, name); ignoreNotFound(err) != nil {
		return nil, err
	}
	return record, nil
}

// Purge permanently removes a deleted certificate, its key, its secret, its policy
// and its operation.
func (c *certificateUseCase) Purge(ctx context.Context, name string) error {
	if err := c.certs.Purge(ctx, name); err != nil {
		return err
	}
	if err := ignoreNotFound(c.keys.Purge(ctx, name)); err != nil {
		return err
	}
	if err := ignoreNotFound(c.secrets.Purge(ctx, name)); err != nil {
		return err
	}
	if err := ignoreNotFound(c.policies.Delete(ctx, name)); err != nil {
		return err
	}
	return ignoreNotFound(c.operations.Delete(ctx, name))
}

// Backup seals every certificate version with its key and secret versions and the
// current policy.
func (c *certificateUseCase) Backup(ctx context.Context, name string) (string, error) {
	certs, err := c.certs.Versions(ctx, name)
	if err != nil {
		return "", err
	}
	keys, err := c.keys.Versions(ctx, name)
	if err != nil {
		return "", err
	}
	secrets, err := c.secrets.Versions(ctx, name)
	if err != nil {
		return "", err
	}
	policy, err := c.policies.Get(ctx, name)
	if ignoreNotFound(err) != nil {
		return "", err
	}

	return c.envelope.Seal(certificatesDomain.Backup{
		Certificate: domain.Backup[certificatesDomain.Certificate]{
			Kind:     domain.KindCertificate,
			Name:     name,
			Versions: certs,
		},
		Key:    domain.Backup[keysDomain.Key]{Kind: domain.KindKey, Name: name, Versions: keys},
		Secret: domain.Backup[secretsDomain.Secret]{Kind: domain.KindSecret, Name: name, Versions: secrets},
		Policy: policy,
	})
}

// Restore recreates a certificate with its key and secret under fresh version ids.
// Versions that shared a token before the backup share the new token too.
func (c *certificateUseCase) Restore(
	ctx context.Context,
	blob string,
) (*domain.Record[certificatesDomain.Certificate], error) {
	var backup certificatesDomain.Backup
	if err := c.envelope.Open(blob, &backup); err != nil {
		return nil, err
	}

	renamed, err := backup.Certificate.Renew(domain.KindCertificate)
	if err != nil {
		return nil, err
	}
	if backup.Key.Kind != domain.KindKey || backup.Secret.Kind != domain.KindSecret {
		return nil, domain.ErrBackupKindMismatch
	}
	if len(backup.Key.Versions) == 0 || len(backup.Secret.Versions) == 0 {
		return nil, domain.ErrEmptyBackup
	}

	name := backup.Certificate.Name
	for _, v := range backup.Key.Versions {
		if v == nil {
			return nil, domain.ErrEmptyBackup
		}
		v.Version = renewedVersion(renamed, v.Version)
	}
	for _, v := range backup.Secret.Versions {
		if v == nil {
			return nil, domain.ErrEmptyBackup
		}
		v.Version = renewedVersion(renamed, v.Version)
		v.Payload.KeyID = c.ids.ID(domain.KindKey, name, v.Version)
	}
	for _, v := range backup.Certificate.Versions {
		v.Payload.KeyID = c.ids.ID(domain.KindKey, name, v.Version)
		v.Payload.SecretID = c.ids.ID(domain.KindSecret, name, v.Version)
	}

	if _, err := c.keys.Restore(ctx, name, backup.Key.Versions); err != nil {
		return nil, err
	}
	undo := []func(context.Context) error{removeAll(c.keys, name, backup.Key.Versions)}

	if _, err := c.secrets.Restore(ctx, name, backup.Secret.Versions); err != nil {
		return nil, rollback(ctx, err, undo)
	}
	undo = append(undo, removeAll(c.secrets, name, backup.Secret.Versions))

	record, err := c.certs.Restore(ctx, name, backup.Certificate.Versions)
	if err != nil {
		return nil, rollback(ctx, err, undo)
	}
	undo = append(undo, removeAll(c.certs, name, backup.Certificate.Versions))

	if backup.Policy != nil {
		if err := c.policies.Put(ctx, name, backup.Policy); err != nil {
			return nil, rollback(ctx, err, undo)
		}
	}
	return record, nil
}

// GetPolicy returns the policy of an active certificate.
func (c *certificateUseCase) GetPolicy(ctx context.Context, name string) (*certificatesDomain.Policy, error) {
	if _, err := c.certs.Get(ctx, name); err != nil {
		return nil, err
	}
	return c.policy(ctx, name)
}

// UpdatePolicy replaces policy fields. The issuer only changes when the patch names one.
func (c *certificateUseCase) UpdatePolicy(
	ctx context.Context,
	name string,
	patch certificatesDomain.PolicyPatch,
) (*certificatesDomain.Policy, error) {
	if _, err := c.certs.Get(ctx, name); err != nil {
		return nil, err
	}
	policy, err := c.policy(ctx, name)
	if err != nil {
		return nil, err
	}

	policy.Apply(patch, c.clock())
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if err := c.checkIssuer(ctx, policy.Issuer.Name); err != nil {
		return nil, err
	}

	if err := c.policies.Put(ctx, name, policy); err != nil {
		return nil, err
	}
	return policy, nil
}

// BindIssuer points the policy of name at an existing issuer.
func (c *certificateUseCase) BindIssuer(
	ctx context.Context,
	name, issuerName string,
) (*certificatesDomain.Policy, error) {
	if _, err := c.certs.Get(ctx, name); err != nil {
		return nil, err
	}
	policy, err := c.policy(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := c.checkIssuer(ctx, issuerName); err != nil {
		return nil, err
	}

	policy.Issuer.Name = issuerName
	policy.Attributes.Updated = c.clock().Unix()
	if err := c.policies.Put(ctx, name, policy); err != nil {
		return nil, err
	}
	return policy, nil
}

// GetOperation returns the issuance operation of name.
func (c *certificateUseCase) GetOperation(ctx context.Context, name string) (*certificatesDomain.Operation, error) {
	op, err := c.operations.Get(ctx, name)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, certificatesDomain.ErrOperationNotFound
		}
		return nil, err
	}
	return op, nil
}

// DeleteOperation removes the issuance operation of name and returns it.
func (c *certificateUseCase) DeleteOperation(
	ctx context.Context,
	name string,
) (*certificatesDomain.Operation, error) {
	op, err := c.GetOperation(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := c.operations.Delete(ctx, name); err != nil {
		return nil, err
	}
	return op, nil
}

// commit writes the key, secret and certificate versions of issued under one fresh
// version token, removing the written parts again when a later write fails.
func (c *certificateUseCase) commit(
	ctx context.Context,
	name string,
	issued *service.Issued,
	policy certificatesDomain.Policy,
	attrs *domain.AttributesPatch,
	tags domain.Tags,
) (*domain.Record[certificatesDomain.Certificate], error) {
	if err := c.checkBackingNames(ctx, name); err != nil {
		return nil, err
	}

	value, err := c.engine.Export(issued, policy.SecretProperties.ContentType)
	if err != nil {
		return nil, err
	}

	version := domain.NewVersion()
	keyID := c.ids.ID(domain.KindKey, name, version)
	validity := &domain.AttributesPatch{
		NotBefore: domain.Int64Ptr(issued.Leaf.NotBefore.Unix()),
		Expires:   domain.Int64Ptr(issued.Leaf.NotAfter.Unix()),
	}
	if attrs != nil {
		validity.Enabled = attrs.Enabled
	}

	key := keysDomain.Key{
		JSONWebKey: keysDomain.NewJSONWebKeyFromRSA(issued.PrivateKey, policy.KeyProperties.KeyType, nil),
		Managed:    true,
	}
	secret := secretsDomain.Secret{
		Value:       value,
		ContentType: policy.SecretProperties.ContentType,
		Managed:     true,
		KeyID:       keyID,
	}
	cert := certificatesDomain.Certificate{
		CER:            issued.Leaf.Raw,
		X509Thumbprint: service.Thumbprint(issued.Leaf.Raw),
		KeyID:          keyID,
		SecretID:       c.ids.ID(domain.KindSecret, name, version),
		PendingCSR:     issued.CSR,
		Policy:         policy,
	}

	if _, err := c.keys.CreateVersion(ctx, name, version, key, validity, tags, backingKey); err != nil {
		return nil, err
	}
	undo := []func(context.Context) error{
		func(ctx context.Context) error { return c.keys.Remove(ctx, name, version) },
	}

	if _, err := c.secrets.CreateVersion(ctx, name, version, secret, validity, tags, backingSecret); err != nil {
		return nil, rollback(ctx, err, undo)
	}
	undo = append(undo, func(ctx context.Context) error { return c.secrets.Remove(ctx, name, version) })

	record, err := c.certs.CreateVersion(ctx, name, version, cert, validity, tags)
	if err != nil {
		return nil, rollback(ctx, err, undo)
	}
	return record, nil
}

// checkBackingNames refuses names held by a key or secret the certificate does not
// manage. The same rule is enforced again under the store lock by backingKey and
// backingSecret; this early check only avoids issuing material that cannot be stored.
func (c *certificateUseCase) checkBackingNames(ctx context.Context, name string) error {
	key, err := c.keys.Get(ctx, name)
	switch {
	case err == nil && !key.Payload.Managed:
		return certificatesDomain.ErrBackingNameInUse
	case ignoreNotFound(err) != nil:
		return err
	}

	secret, err := c.secrets.Get(ctx, name)
	switch {
	case err == nil && !secret.Payload.Managed:
		return certificatesDomain.ErrBackingNameInUse
	case ignoreNotFound(err) != nil:
		return err
	}
	return nil
}

func backingKey(current *domain.Record[keysDomain.Key]) error {
	if current != nil && !current.Payload.Managed {
		return certificatesDomain.ErrBackingNameInUse
	}
	return nil
}

func backingSecret(current *domain.Record[secretsDomain.Secret]) error {
	if current != nil && !current.Payload.Managed {
		return certificatesDomain.ErrBackingNameInUse
	}
	return nil
}

// policyFor resolves the policy for a new version: the stored policy or the default,
// patched by patch.
func (c *certificateUseCase) policyFor(
	ctx context.Context,
	name string,
	patch *certificatesDomain.PolicyPatch,
) (certificatesDomain.Policy, error) {
	now := c.clock()
	policy := certificatesDomain.DefaultPolicy(now)

	stored, err := c.policies.Get(ctx, name)
	switch {
	case err == nil:
		policy = *stored
	case !apperrors.Is(err, apperrors.ErrNotFound):
		return certificatesDomain.Policy{}, err
	}

	if patch != nil {
		policy.Apply(*patch, now)
	}
	return policy, policy.Validate()
}

func (c *certificateUseCase) policy(ctx context.Context, name string) (*certificatesDomain.Policy, error) {
	policy, err := c.policies.Get(ctx, name)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, certificatesDomain.ErrPolicyNotFound
		}
		return nil, err
	}
	return policy, nil
}

// checkIssuer requires issuers other than Self and Unknown to exist.
func (c *certificateUseCase) checkIssuer(ctx context.Context, issuerName string) error {
	if issuerName == certificatesDomain.IssuerSelf || issuerName == certificatesDomain.IssuerUnknown {
		return nil
	}

	issuer, err := c.issuers.Get(ctx, issuerName)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return certificatesDomain.ErrIssuerNotFound
		}
		return err
	}
	if issuer.Deleted {
		return certificatesDomain.ErrIssuerNotFound
	}
	return nil
}

func (c *certificateUseCase) operationID(name string) string {
	return c.ids.ID(domain.KindCertificate, name, "pending")
}

// rollback runs undo in reverse order. Failures are appended to cause.
func rollback(ctx context.Context, cause error, undo []func(context.Context) error) error {
	ctx = context.WithoutCancel(ctx)

	var failures *multierror.Error
	for i := len(undo) - 1; i >= 0; i-- {
		if err := undo[i](ctx); err != nil {
			failures = multierror.Append(failures, fmt.Errorf("rollback: %w", err))
		}
	}
	if failures == nil {
		return cause
	}
	return multierror.Append(cause, failures.Errors...)
}

func removeAll[T any](
	store EntityStore[T],
	name string,
	records []*domain.Record[T],
) func(context.Context) error {
	return func(ctx context.Context) error {
		var result *multierror.Error
		for _, r := range records {
			if err := store.Remove(ctx, name, r.Version); err != nil {
				result = multierror.Append(result, err)
			}
		}
		return result.ErrorOrNil()
	}
}

func renewedVersion(renamed map[string]string, version string) string {
	if next, ok := renamed[version]; ok {
		return next
	}
	return domain.NewVersion()
}

func ignoreNotFound(err error) error {
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	return err
}

// NewCertificateUseCase creates a certificate use case over the certificate, key and
// secret stores.
func NewCertificateUseCase(
	certs EntityStore[certificatesDomain.Certificate],
	keys EntityStore[keysDomain.Key],
	secrets EntityStore[secretsDomain.Secret],
	policies DocumentRepository[certificatesDomain.Policy],
	operations DocumentRepository[certificatesDomain.Operation],
	issuers DocumentRepository[certificatesDomain.Issuer],
	engine IssuanceEngine,
	envelope Envelope,
	ids domain.IDBuilder,
) CertificateUseCase {
	return &certificateUseCase{
		certs:      certs,
		keys:       keys,
		secrets:    secrets,
		policies:   policies,
		operations: operations,
		issuers:    issuers,
		engine:     engine,
		envelope:   envelope,
		ids:        ids,
		clock:      time.Now,
	}
}
