// Package integration provides end-to-end tests for the vault API.
// Every flow runs against the in-memory store and, when reachable, PostgreSQL and MySQL.
package integration

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/keyvault-emulator/internal/app"
	"github.com/allisson/keyvault-emulator/internal/config"
	"github.com/allisson/keyvault-emulator/internal/testutil"
)

// integrationTestContext holds all dependencies and state for integration testing.
type integrationTestContext struct {
	container *app.Container
	db        *sql.DB
	server    *httptest.Server
	token     string
	driver    string
}

// makeRequest performs an HTTP request and returns the response and body.
func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body interface{},
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ctx.token != "" {
		req.Header.Set("Authorization", "Bearer "+ctx.token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	//nolint:gosec // controlled test environment with localhost URLs
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	if closeErr := resp.Body.Close(); closeErr != nil {
		t.Logf("Warning: failed to close response body: %v", closeErr)
	}

	return resp, respBody
}

// mustJSON performs a request, asserts the status code and decodes the body.
func (ctx *integrationTestContext) mustJSON(
	t *testing.T,
	method, path string,
	body interface{},
	expectedStatus int,
) map[string]any {
	t.Helper()

	resp, respBody := ctx.makeRequest(t, method, path, body)
	require.Equal(t, expectedStatus, resp.StatusCode, string(respBody))

	result := map[string]any{}
	if len(respBody) > 0 {
		require.NoError(t, json.Unmarshal(respBody, &result))
	}
	return result
}

// storageDrivers returns the drivers available in the current environment.
func storageDrivers(t *testing.T) []string {
	t.Helper()

	drivers := []string{config.StorageDriverMemory}
	if available(t, "postgres", testutil.GetPostgresTestDSN()) {
		drivers = append(drivers, config.StorageDriverPostgres)
	}
	if available(t, "mysql", testutil.GetMySQLTestDSN()) {
		drivers = append(drivers, config.StorageDriverMySQL)
	}
	return drivers
}

func available(t *testing.T, driverName, dsn string) bool {
	t.Helper()
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return false
	}
	defer func() {
		_ = db.Close()
	}()
	return db.Ping() == nil
}

// setupIntegrationTest initializes all components for integration testing.
func setupIntegrationTest(t *testing.T, driver string, authEnabled bool) *integrationTestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		ServerHost:           "localhost",
		ServerPort:           8443,
		VaultBaseURI:         "https://vault.test",
		RecoverableDays:      90,
		StorageDriver:        driver,
		DBMaxOpenConnections: 10,
		DBMaxIdleConnections: 5,
		DBConnMaxLifetime:    time.Hour,
		LogLevel:             "error",
		AuthEnabled:          authEnabled,
		AuthSigningKey:       "integration-test-signing-key",
		AuthTokenExpiration:  time.Hour,
	}

	var db *sql.DB
	switch driver {
	case config.StorageDriverPostgres:
		db = testutil.SetupPostgresDB(t)
		cfg.DBConnectionString = testutil.GetPostgresTestDSN()
	case config.StorageDriverMySQL:
		db = testutil.SetupMySQLDB(t)
		cfg.DBConnectionString = testutil.GetMySQLTestDSN()
	}

	container := app.NewContainer(cfg)

	httpSrv, err := container.HTTPServer()
	require.NoError(t, err, "failed to get HTTP server")

	ctx := &integrationTestContext{
		container: container,
		db:        db,
		server:    httptest.NewServer(httpSrv.Handler()),
		driver:    driver,
	}
	t.Cleanup(func() { teardownIntegrationTest(t, ctx) })

	return ctx
}

// teardownIntegrationTest cleans up all resources.
func teardownIntegrationTest(t *testing.T, ctx *integrationTestContext) {
	t.Helper()

	if ctx.server != nil {
		ctx.server.Close()
	}

	if ctx.container != nil {
		if err := ctx.container.Shutdown(context.Background()); err != nil {
			t.Logf("Warning: container shutdown error: %v", err)
		}
	}

	if ctx.db != nil {
		testutil.TeardownDB(t, ctx.db)
	}
}

func b64url(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func TestIntegration_Health_BasicChecks(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, driver := range storageDrivers(t) {
		t.Run(driver, func(t *testing.T) {
			ctx := setupIntegrationTest(t, driver, false)

			body := ctx.mustJSON(t, http.MethodGet, "/health", nil, http.StatusOK)
			assert.Equal(t, "healthy", body["status"])

			body = ctx.mustJSON(t, http.MethodGet, "/ready", nil, http.StatusOK)
			assert.Equal(t, "ready", body["status"])
		})
	}
}

func TestIntegration_Auth_CompleteFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t, config.StorageDriverMemory, true)

	// Without a token the vault answers with a challenge
	resp, _ := ctx.makeRequest(t, http.MethodGet, "/secrets", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("WWW-Authenticate"), `authorization="https://vault.test/token"`)

	// A malformed token is rejected too
	ctx.token = "not-a-token"
	resp, _ = ctx.makeRequest(t, http.MethodGet, "/secrets", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	ctx.token = ""

	body := ctx.mustJSON(t, http.MethodGet, "/token?subject=integration&resource=https://vault.test", nil, http.StatusOK)
	assert.Equal(t, "Bearer", body["token_type"])
	assert.Equal(t, "https://vault.test", body["resource"])
	ctx.token = body["access_token"].(string)
	require.NotEmpty(t, ctx.token)

	body = ctx.mustJSON(t, http.MethodGet, "/secrets", nil, http.StatusOK)
	assert.Empty(t, body["value"])
}

func TestIntegration_Secrets_CompleteFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, driver := range storageDrivers(t) {
		t.Run(driver, func(t *testing.T) {
			ctx := setupIntegrationTest(t, driver, false)

			first := ctx.mustJSON(t, http.MethodPut, "/secrets/db-password",
				map[string]any{"value": "first", "tags": map[string]string{"env": "test"}}, http.StatusOK)
			firstID := first["id"].(string)
			assert.Contains(t, firstID, "https://vault.test/secrets/db-password/")

			second := ctx.mustJSON(t, http.MethodPut, "/secrets/db-password",
				map[string]any{"value": "second"}, http.StatusOK)
			assert.NotEqual(t, firstID, second["id"])

			current := ctx.mustJSON(t, http.MethodGet, "/secrets/db-password/", nil, http.StatusOK)
			assert.Equal(t, "second", current["value"])

			version := firstID[len("https://vault.test/secrets/db-password/"):]
			old := ctx.mustJSON(t, http.MethodGet, "/secrets/db-password/"+version, nil, http.StatusOK)
			assert.Equal(t, "first", old["value"])

			versions := ctx.mustJSON(t, http.MethodGet, "/secrets/db-password/versions", nil, http.StatusOK)
			assert.Len(t, versions["value"], 2)

			updated := ctx.mustJSON(t, http.MethodPatch, "/secrets/db-password/"+version,
				map[string]any{"attributes": map[string]any{"enabled": false}}, http.StatusOK)
			assert.Equal(t, false, updated["attributes"].(map[string]any)["enabled"])

			listed := ctx.mustJSON(t, http.MethodGet, "/secrets?maxresults=1", nil, http.StatusOK)
			assert.Len(t, listed["value"], 1)

			backup := ctx.mustJSON(t, http.MethodPost, "/secrets/db-password/backup", nil, http.StatusOK)
			require.NotEmpty(t, backup["value"])

			deleted := ctx.mustJSON(t, http.MethodDelete, "/secrets/db-password", nil, http.StatusOK)
			assert.Equal(t, "https://vault.test/deletedsecrets/db-password", deleted["recoveryId"])

			resp, _ := ctx.makeRequest(t, http.MethodGet, "/secrets/db-password", nil)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)

			ctx.mustJSON(t, http.MethodGet, "/deletedsecrets/db-password", nil, http.StatusOK)
			ctx.mustJSON(t, http.MethodPost, "/deletedsecrets/db-password/recover", nil, http.StatusOK)
			ctx.mustJSON(t, http.MethodDelete, "/secrets/db-password", nil, http.StatusOK)

			resp, _ = ctx.makeRequest(t, http.MethodDelete, "/deletedsecrets/db-password", nil)
			assert.Equal(t, http.StatusNoContent, resp.StatusCode)

			restored := ctx.mustJSON(t, http.MethodPost, "/secrets/restore",
				map[string]any{"value": backup["value"]}, http.StatusOK)
			assert.Equal(t, "second", restored["value"])

			versions = ctx.mustJSON(t, http.MethodGet, "/secrets/db-password/versions", nil, http.StatusOK)
			assert.Len(t, versions["value"], 2)
		})
	}
}

func TestIntegration_Keys_CompleteFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, driver := range storageDrivers(t) {
		t.Run(driver, func(t *testing.T) {
			ctx := setupIntegrationTest(t, driver, false)

			created := ctx.mustJSON(t, http.MethodPost, "/keys/signing/create",
				map[string]any{"kty": "RSA", "key_size": 2048}, http.StatusOK)
			key := created["key"].(map[string]any)
			assert.Equal(t, "RSA", key["kty"])
			assert.NotEmpty(t, key["n"])
			kid := key["kid"].(string)

			plaintext := []byte("hello vault")
			encrypted := ctx.mustJSON(t, http.MethodPost, "/keys/signing/encrypt",
				map[string]any{"alg": "RSA-OAEP", "value": b64url(plaintext)}, http.StatusOK)
			assert.Equal(t, kid, encrypted["kid"])

			decrypted := ctx.mustJSON(t, http.MethodPost, "/keys/signing/decrypt",
				map[string]any{"alg": "RSA-OAEP", "value": encrypted["value"]}, http.StatusOK)
			assert.Equal(t, b64url(plaintext), decrypted["value"])

			digest := sha256.Sum256(plaintext)
			signed := ctx.mustJSON(t, http.MethodPost, "/keys/signing/sign",
				map[string]any{"alg": "RS256", "value": b64url(digest[:])}, http.StatusOK)

			verified := ctx.mustJSON(t, http.MethodPost, "/keys/signing/verify",
				map[string]any{"alg": "RS256", "digest": b64url(digest[:]), "value": signed["value"]}, http.StatusOK)
			assert.Equal(t, true, verified["value"])

			contentKey := []byte("0123456789abcdef0123456789abcdef")
			wrapped := ctx.mustJSON(t, http.MethodPost, "/keys/signing/wrapkey",
				map[string]any{"alg": "RSA-OAEP-256", "value": b64url(contentKey)}, http.StatusOK)
			unwrapped := ctx.mustJSON(t, http.MethodPost, "/keys/signing/unwrapkey",
				map[string]any{"alg": "RSA-OAEP-256", "value": wrapped["value"]}, http.StatusOK)
			assert.Equal(t, b64url(contentKey), unwrapped["value"])

			rotated := ctx.mustJSON(t, http.MethodPost, "/keys/signing/rotate", nil, http.StatusOK)
			assert.NotEqual(t, kid, rotated["key"].(map[string]any)["kid"])

			// Operations on a named version keep using that version
			version := kid[len("https://vault.test/keys/signing/"):]
			encrypted = ctx.mustJSON(t, http.MethodPost, "/keys/signing/"+version+"/encrypt",
				map[string]any{"alg": "RSA-OAEP", "value": b64url(plaintext)}, http.StatusOK)
			assert.Equal(t, kid, encrypted["kid"])

			versions := ctx.mustJSON(t, http.MethodGet, "/keys/signing/versions", nil, http.StatusOK)
			assert.Len(t, versions["value"], 2)

			random := ctx.mustJSON(t, http.MethodPost, "/rng", map[string]any{"count": 16}, http.StatusOK)
			assert.NotEmpty(t, random["value"])

			ctx.mustJSON(t, http.MethodDelete, "/keys/signing", nil, http.StatusOK)
			resp, _ := ctx.makeRequest(t, http.MethodPost, "/keys/signing/encrypt",
				map[string]any{"alg": "RSA-OAEP", "value": b64url(plaintext)})
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		})
	}
}

func TestIntegration_Certificates_CompleteFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, driver := range storageDrivers(t) {
		t.Run(driver, func(t *testing.T) {
			ctx := setupIntegrationTest(t, driver, false)

			op := ctx.mustJSON(t, http.MethodPost, "/certificates/web/create", map[string]any{
				"policy": map[string]any{
					"x509_props": map[string]any{"subject": "CN=web.local", "validity_months": 12},
				},
			}, http.StatusAccepted)
			assert.Equal(t, "completed", op["status"])

			pending := ctx.mustJSON(t, http.MethodGet, "/certificates/web/pending", nil, http.StatusOK)
			assert.Equal(t, "completed", pending["status"])

			cert := ctx.mustJSON(t, http.MethodGet, "/certificates/web", nil, http.StatusOK)
			assert.NotEmpty(t, cert["cer"])
			assert.NotEmpty(t, cert["x5t"])
			assert.Contains(t, cert["kid"], "https://vault.test/keys/web/")
			assert.Contains(t, cert["sid"], "https://vault.test/secrets/web/")

			// The backing key and secret are managed by the certificate
			key := ctx.mustJSON(t, http.MethodGet, "/keys/web", nil, http.StatusOK)
			assert.Equal(t, true, key["managed"])
			secret := ctx.mustJSON(t, http.MethodGet, "/secrets/web", nil, http.StatusOK)
			assert.Equal(t, true, secret["managed"])
			assert.Equal(t, "application/x-pkcs12", secret["contentType"])
			ctx.mustJSON(t, http.MethodPost, "/secrets/web/backup", nil, http.StatusForbidden)
			ctx.mustJSON(t, http.MethodPost, "/keys/web/backup", nil, http.StatusForbidden)

			policy := ctx.mustJSON(t, http.MethodGet, "/certificates/web/policy", nil, http.StatusOK)
			assert.Equal(t, "CN=web.local", policy["x509_props"].(map[string]any)["subject"])

			ctx.mustJSON(t, http.MethodPut, "/certificates/issuers/internal-ca",
				map[string]any{"provider": "Test"}, http.StatusOK)
			issuers := ctx.mustJSON(t, http.MethodGet, "/certificates/issuers", nil, http.StatusOK)
			assert.Len(t, issuers["value"], 1)

			ctx.mustJSON(t, http.MethodDelete, "/certificates/web", nil, http.StatusOK)
			ctx.mustJSON(t, http.MethodGet, "/deletedcertificates/web", nil, http.StatusOK)
		})
	}
}
