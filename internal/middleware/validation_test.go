package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"studyhub/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historyApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Get("/history", middleware.NewValidationMiddleware().ValidateHistoryParams(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"requester_id": c.Locals(middleware.LocalRequesterID),
			"limit":        c.Locals(middleware.LocalLimit),
		})
	})
	return app
}

func TestValidateHistoryParams(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLimit  float64
		wantFields []string
	}{
		{name: "defaults limit", query: "?requester_id=user-1", wantStatus: http.StatusOK, wantLimit: 0},
		{name: "explicit limit", query: "?requester_id=user-1&limit=5", wantStatus: http.StatusOK, wantLimit: 5},
		{name: "missing requester", query: "?limit=5", wantStatus: http.StatusBadRequest, wantFields: []string{"requester_id"}},
		{name: "bad limit", query: "?requester_id=user-1&limit=ten", wantStatus: http.StatusBadRequest, wantFields: []string{"limit"}},
		{name: "limit out of range", query: "?requester_id=user-1&limit=500", wantStatus: http.StatusBadRequest, wantFields: []string{"limit"}},
		{name: "both invalid", query: "?limit=0", wantStatus: http.StatusBadRequest, wantFields: []string{"requester_id", "limit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := historyApp().Test(httptest.NewRequest(http.MethodGet, "/history"+tt.query, nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == http.StatusOK {
				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, "user-1", body["requester_id"])
				assert.Equal(t, tt.wantLimit, body["limit"])
				return
			}

			var body middleware.ValidationErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			fields := make([]string, 0, len(body.Errors))
			for _, e := range body.Errors {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}
