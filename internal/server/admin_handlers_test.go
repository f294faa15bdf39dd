package server

import (
	"net/http"
	"testing"

	"accessdesk/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminAccountLifecycle(t *testing.T) {
	app, db := setupTestServer(t)
	createApprovedAccount(t, db, "admin-1", models.RoleAdmin)

	// a user signs in and requests editor access
	status, _ := apiRequest(t, app, http.MethodPost, "/auth/sync", "", map[string]any{
		"subject_id":     "applicant",
		"full_name":      "App Licant",
		"requested_role": "editor",
	})
	require.Equal(t, fiber.StatusOK, status)

	t.Run("PendingQueueListsApplicant", func(t *testing.T) {
		status, pending := apiRequestList(t, app, http.MethodGet, "/admin/accounts/pending", "admin-1")
		require.Equal(t, fiber.StatusOK, status)
		require.Len(t, pending, 1)
		assert.Equal(t, "applicant", pending[0]["subject_id"])
		assert.Equal(t, "editor", pending[0]["requested_role"])
	})

	t.Run("RejectRecordsReason", func(t *testing.T) {
		status, body := apiRequest(t, app, http.MethodPost, "/admin/accounts/applicant/reject", "admin-1", map[string]any{
			"reason": "need manager approval first",
		})
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "rejected", body["status"])
		assert.Equal(t, "need manager approval first", body["rejection_reason"])
		assert.Nil(t, body["approved_role"])
	})

	t.Run("ApproveAfterRejectClearsReason", func(t *testing.T) {
		status, body := apiRequest(t, app, http.MethodPost, "/admin/accounts/applicant/approve", "admin-1", nil)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "approved", body["status"])
		assert.Equal(t, "editor", body["approved_role"])
		assert.Equal(t, "admin-1", body["approved_by"])
		assert.Nil(t, body["rejection_reason"])
	})

	t.Run("ApproveWithOverrideRole", func(t *testing.T) {
		apiRequest(t, app, http.MethodPost, "/auth/sync", "", map[string]any{
			"subject_id":     "second",
			"requested_role": "owner",
		})

		status, body := apiRequest(t, app, http.MethodPost, "/admin/accounts/second/approve", "admin-1", map[string]any{
			"approved_role": "viewer",
		})
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "viewer", body["approved_role"])
		assert.Equal(t, "owner", body["requested_role"])
	})

	t.Run("ApproveUnknownAccount", func(t *testing.T) {
		status, body := apiRequest(t, app, http.MethodPost, "/admin/accounts/ghost/approve", "admin-1", nil)
		assert.Equal(t, fiber.StatusNotFound, status)
		assert.Equal(t, models.CodeNotFound, body["code"])
	})

	t.Run("ApproveInvalidOverrideRole", func(t *testing.T) {
		status, _ := apiRequest(t, app, http.MethodPost, "/admin/accounts/applicant/approve", "admin-1", map[string]any{
			"approved_role": "root",
		})
		assert.Equal(t, fiber.StatusBadRequest, status)
	})
}

func TestCreateAccountAsAdmin(t *testing.T) {
	app, db := setupTestServer(t)
	createApprovedAccount(t, db, "admin-1", models.RoleAdmin)

	t.Run("CreatesPreApproved", func(t *testing.T) {
		status, body := apiRequest(t, app, http.MethodPost, "/admin/accounts", "admin-1", map[string]any{
			"subject_id": "invited",
			"email":      "invited@example.com",
			"role":       "editor",
		})
		require.Equal(t, fiber.StatusCreated, status)
		assert.Equal(t, "approved", body["status"])
		assert.Equal(t, "editor", body["approved_role"])
		assert.Equal(t, "admin-1", body["approved_by"])
	})

	t.Run("DuplicateConflicts", func(t *testing.T) {
		status, body := apiRequest(t, app, http.MethodPost, "/admin/accounts", "admin-1", map[string]any{
			"subject_id": "invited",
		})
		assert.Equal(t, fiber.StatusConflict, status)
		assert.Equal(t, models.CodeConflict, body["code"])
	})

	t.Run("MissingSubjectID", func(t *testing.T) {
		status, _ := apiRequest(t, app, http.MethodPost, "/admin/accounts", "admin-1", map[string]any{
			"role": "viewer",
		})
		assert.Equal(t, fiber.StatusBadRequest, status)
	})
}

func TestDeleteAccount(t *testing.T) {
	app, db := setupTestServer(t)
	createApprovedAccount(t, db, "admin-1", models.RoleAdmin)
	createApprovedAccount(t, db, "admin-2", models.RoleAdmin)
	createApprovedAccount(t, db, "member", models.RoleViewer)

	t.Run("SelfDeleteRefused", func(t *testing.T) {
		status, body := apiRequest(t, app, http.MethodDelete, "/admin/accounts/admin-1", "admin-1", nil)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "Cannot delete your own account", body["error"])
	})

	t.Run("DeleteReportsMessageCascade", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Message{
			SenderSubjectID: "member", RecipientSubjectID: "admin-1", Subject: "s", Body: "b",
		}).Error)
		require.NoError(t, db.Create(&models.Message{
			SenderSubjectID: "admin-2", RecipientSubjectID: "member", Subject: "s2", Body: "b2",
		}).Error)

		status, body := apiRequest(t, app, http.MethodDelete, "/admin/accounts/member", "admin-1", nil)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "member", body["subject_id"])
		assert.Equal(t, float64(2), body["deleted_messages_count"])
	})

	t.Run("DeleteOtherAdmin", func(t *testing.T) {
		status, body := apiRequest(t, app, http.MethodDelete, "/admin/accounts/admin-2", "admin-1", nil)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "admin-2", body["subject_id"])
	})

	t.Run("UnknownAccount", func(t *testing.T) {
		status, _ := apiRequest(t, app, http.MethodDelete, "/admin/accounts/ghost", "admin-1", nil)
		assert.Equal(t, fiber.StatusNotFound, status)
	})
}
