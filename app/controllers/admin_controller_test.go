package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrgoonie/docobo/app/models"
	"github.com/mrgoonie/docobo/internal/pkg/middleware"
)

const testAdminKey = "admin-test-key"

func newAdminApp(events *stubEventRepo) *fiber.App {
	app := fiber.New()
	admin := app.Group("/admin", middleware.APIKeyAuthMiddleware(testAdminKey))
	admin.Get("/failed-events", NewAdminController(events).HandleFailedEvents)
	return app
}

func adminRequest(path, key string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	return req
}

func TestHandleFailedEvents_ListsBacklog(t *testing.T) {
	events := &stubEventRepo{failed: []models.WebhookEvent{
		{ExternalEventID: "42", Provider: models.PaymentProviderSepay, ErrorMessage: "insufficient payment: received 3.50, expected 5.00"},
	}}
	app := newAdminApp(events)

	resp, err := app.Test(adminRequest("/admin/failed-events", testAdminKey))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Count  int                   `json:"count"`
		Events []models.WebhookEvent `json:"events"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "42", body.Events[0].ExternalEventID)
}

func TestHandleFailedEvents_LimitApplied(t *testing.T) {
	events := &stubEventRepo{failed: []models.WebhookEvent{
		{ExternalEventID: "1"}, {ExternalEventID: "2"}, {ExternalEventID: "3"},
	}}
	app := newAdminApp(events)

	resp, err := app.Test(adminRequest("/admin/failed-events?limit=2", testAdminKey))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
}

func TestHandleFailedEvents_BadLimit(t *testing.T) {
	app := newAdminApp(&stubEventRepo{})

	resp, err := app.Test(adminRequest("/admin/failed-events?limit=zero", testAdminKey))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleFailedEvents_MissingKey(t *testing.T) {
	app := newAdminApp(&stubEventRepo{})

	resp, err := app.Test(adminRequest("/admin/failed-events", ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHandleFailedEvents_WrongKey(t *testing.T) {
	app := newAdminApp(&stubEventRepo{})

	resp, err := app.Test(adminRequest("/admin/failed-events", "wrong"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHandleFailedEvents_DisabledWithoutConfiguredKey(t *testing.T) {
	app := fiber.New()
	admin := app.Group("/admin", middleware.APIKeyAuthMiddleware(""))
	admin.Get("/failed-events", NewAdminController(&stubEventRepo{}).HandleFailedEvents)

	resp, err := app.Test(adminRequest("/admin/failed-events", "anything"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
