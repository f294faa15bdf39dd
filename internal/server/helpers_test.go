package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"accessdesk/internal/cache"
	"accessdesk/internal/config"
	"accessdesk/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testAPIKey = "test-api-key"

// setupMockDB creates a GORM *gorm.DB backed by sqlmock for unit tests.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	return gormDB, mock
}

// setupTestServer wires a server against an in-memory database with caching
// and rate limiting disabled.
func setupTestServer(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	cache.SetClient(nil)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.Message{}))

	cfg := &config.Config{
		Port:   "8460",
		APIKey: testAPIKey,
		Env:    "test",
	}

	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return app, db
}

// apiRequest performs a request with the shared secret and optional actor
// header, decoding the JSON response body into a map.
func apiRequest(t *testing.T, app *fiber.App, method, path, actor string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(HeaderAPIKey, testAPIKey)
	if actor != "" {
		req.Header.Set(HeaderActorSubject, actor)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	decoded := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

// apiRequestList is apiRequest for endpoints returning a JSON array.
func apiRequestList(t *testing.T, app *fiber.App, method, path, actor string) (int, []map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(HeaderAPIKey, testAPIKey)
	if actor != "" {
		req.Header.Set(HeaderActorSubject, actor)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var decoded []map[string]any
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp.StatusCode, decoded
}

// createApprovedAccount persists an account already granted the given role.
func createApprovedAccount(t *testing.T, db *gorm.DB, subjectID string, role models.Role) *models.Account {
	t.Helper()
	now := time.Now().UTC()
	approver := "some-admin"
	email := subjectID + "@example.com"
	fullName := "Account " + subjectID
	account := &models.Account{
		SubjectID:     subjectID,
		Email:         &email,
		FullName:      &fullName,
		RequestedRole: role,
		ApprovedRole:  &role,
		Status:        models.StatusApproved,
		ApprovedBy:    &approver,
		ApprovedAt:    &now,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}
