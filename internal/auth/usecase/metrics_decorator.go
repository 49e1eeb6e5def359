package usecase

import (
	"context"
	"time"

	authDomain "github.com/allisson/keyvault-emulator/internal/auth/domain"
	"github.com/allisson/keyvault-emulator/internal/metrics"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Issue records metrics for token issuance.
func (t *tokenUseCaseWithMetrics) Issue(
	ctx context.Context,
	issueTokenInput *authDomain.IssueTokenInput,
) (*authDomain.Token, error) {
	start := time.Now()
	output, err := t.next.Issue(ctx, issueTokenInput)
	metrics.Observe(ctx, t.metrics, "auth", "token_issue", start, err)
	return output, err
}

// Authenticate records metrics for bearer token checks. Rejected tokens are
// counted with the "unauthorized" status.
func (t *tokenUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	plainToken string,
) (*authDomain.Identity, error) {
	start := time.Now()
	identity, err := t.next.Authenticate(ctx, plainToken)
	metrics.Observe(ctx, t.metrics, "auth", "token_authenticate", start, err)
	return identity, err
}
