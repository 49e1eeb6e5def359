package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	authDomain "github.com/allisson/keyvault-emulator/internal/auth/domain"
	authUseCase "github.com/allisson/keyvault-emulator/internal/auth/usecase"
)

// RunCreateToken issues a bearer token signed with the configured key and prints it.
// The token is accepted by any server sharing the same AUTH_SIGNING_KEY.
func RunCreateToken(
	ctx context.Context,
	tokenUseCase authUseCase.TokenUseCase,
	logger *slog.Logger,
	subject string,
	resource string,
	format string,
	io IOTuple,
) error {
	logger.Info("creating bearer token", slog.String("subject", subject))

	token, err := tokenUseCase.Issue(ctx, &authDomain.IssueTokenInput{
		Subject:  subject,
		Resource: resource,
	})
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	if format == "json" {
		outputTokenJSON(token, io.Writer)
	} else {
		outputTokenText(token, io.Writer)
	}

	logger.Info("bearer token created",
		slog.String("subject", subject),
		slog.Time("expires_on", token.ExpiresOn),
	)

	return nil
}

// outputTokenText prints the token for humans.
func outputTokenText(token *authDomain.Token, writer io.Writer) {
	_, _ = fmt.Fprintf(writer, "Token: %s\n", token.AccessToken)
	_, _ = fmt.Fprintf(writer, "Expires: %s\n", token.ExpiresOn.Format(time.RFC3339))
	_, _ = fmt.Fprintf(writer, "\nAuthorization: %s %s\n", token.TokenType, token.AccessToken)
}

// outputTokenJSON prints the token in the token endpoint's response shape.
func outputTokenJSON(token *authDomain.Token, writer io.Writer) {
	result := map[string]any{
		"access_token": token.AccessToken,
		"token_type":   token.TokenType,
		"expires_in":   token.ExpiresIn,
		"expires_on":   token.ExpiresOn.Unix(),
	}
	if token.Resource != "" {
		result["resource"] = token.Resource
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
