package routes

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"taskhive/utils"
)

// The status and health endpoints must resolve; only unknown paths fall
// through to the 404 handler registered last.
func TestStatusRoutesResolveBeforeNotFound(t *testing.T) {
	app := fiber.New()
	SetupRoutes(app, nil, utils.NewHub(), utils.NewNotifier(nil, nil), utils.NewInviteMailer("", "587", "", "", ""))

	for _, path := range []string{"/", "/health"} {
		req := httptest.NewRequest("GET", path, nil)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("GET %s: status %d, want %d", path, resp.StatusCode, fiber.StatusOK)
		}
	}

	req := httptest.NewRequest("GET", "/no-such-route", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("GET /no-such-route: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("GET /no-such-route: status %d, want %d", resp.StatusCode, fiber.StatusNotFound)
	}
}
