package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/iobuilds/print-lanka-sub001/internal/models"
	"github.com/iobuilds/print-lanka-sub001/internal/otp"
)

type noopNotifier struct {
	lastMessage string
}

func (n *noopNotifier) Send(_ context.Context, _, message string) error {
	n.lastMessage = message
	return nil
}

func newOTPTestApp(accounts *otp.MemoryAccountDirectory) (*fiber.App, *otp.MemorySessionRepository, *noopNotifier) {
	sessions := otp.NewMemorySessionRepository()
	notifier := &noopNotifier{}
	svc := otp.NewService(sessions, accounts, notifier)
	coordinator := otp.NewResetCoordinator(sessions, accounts, nopUpdater{})
	h := NewOTPHandler(svc, coordinator)

	app := fiber.New()
	app.Post("/api/otp/issue", h.IssueOTP)
	app.Post("/api/otp/verify", h.VerifyOTP)
	app.Post("/api/auth/reset-password", h.ResetPassword)
	return app, sessions, notifier
}

type nopUpdater struct{}

func (nopUpdater) UpdatePassword(context.Context, uuid.UUID, string) error { return nil }

func postJSON(t *testing.T, app *fiber.App, path string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	var parsed map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&parsed)
	return resp, parsed
}

func TestIssueOTPMissingFields(t *testing.T) {
	app, _, _ := newOTPTestApp(otp.NewMemoryAccountDirectory())

	resp, _ := postJSON(t, app, "/api/otp/issue", map[string]string{"phone": "0771234567"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestIssueOTPForgotPasswordUnknownPhone(t *testing.T) {
	app, _, _ := newOTPTestApp(otp.NewMemoryAccountDirectory())

	resp, _ := postJSON(t, app, "/api/otp/issue", map[string]string{
		"phone":   "0771234567",
		"purpose": "forgot_password",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestIssueOTPRegistrationConflict(t *testing.T) {
	app, _, _ := newOTPTestApp(otp.NewMemoryAccountDirectory(models.User{Phone: "94771234567"}))

	resp, _ := postJSON(t, app, "/api/otp/issue", map[string]string{
		"phone":   "0771234567",
		"purpose": "registration",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestIssueThenVerifyRoundTrip(t *testing.T) {
	app, sessions, _ := newOTPTestApp(otp.NewMemoryAccountDirectory())

	resp, body := postJSON(t, app, "/api/otp/issue", map[string]string{
		"phone":   "0771234567",
		"purpose": "registration",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("issue status = %d, want 200", resp.StatusCode)
	}
	if body["phone"] != "94771234567" {
		t.Fatalf("phone = %v, want canonical", body["phone"])
	}

	session, err := sessions.PendingByPhone(context.Background(), "94771234567")
	if err != nil || session == nil {
		t.Fatalf("pending session missing: %v", err)
	}

	resp, body = postJSON(t, app, "/api/otp/verify", map[string]string{
		"phone":    "0771234567",
		"otp_code": session.Code,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify status = %d, want 200: %v", resp.StatusCode, body)
	}
	if body["session_id"] == nil || body["session_id"] == "" {
		t.Fatalf("no session_id in response: %v", body)
	}
}

func TestVerifyOTPWrongCodeReportsRemaining(t *testing.T) {
	app, sessions, _ := newOTPTestApp(otp.NewMemoryAccountDirectory())

	postJSON(t, app, "/api/otp/issue", map[string]string{
		"phone":   "0771234567",
		"purpose": "registration",
	})

	session, _ := sessions.PendingByPhone(context.Background(), "94771234567")
	wrong := "000000"
	if session.Code == wrong {
		wrong = "000001"
	}

	resp, body := postJSON(t, app, "/api/otp/verify", map[string]string{
		"phone":    "0771234567",
		"otp_code": wrong,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if remaining, ok := body["remaining_attempts"].(float64); !ok || remaining != 4 {
		t.Fatalf("remaining_attempts = %v, want 4", body["remaining_attempts"])
	}
}

func TestVerifyOTPNoSession(t *testing.T) {
	app, _, _ := newOTPTestApp(otp.NewMemoryAccountDirectory())

	resp, _ := postJSON(t, app, "/api/otp/verify", map[string]string{
		"phone":    "0771234567",
		"otp_code": "123456",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestResetPasswordShortPassword(t *testing.T) {
	app, _, _ := newOTPTestApp(otp.NewMemoryAccountDirectory())

	resp, _ := postJSON(t, app, "/api/auth/reset-password", map[string]string{
		"phone":        "0771234567",
		"new_password": "12345",
		"session_id":   "8d5a7e0e-26b9-4a5c-9a63-0e8a3f1b2c4d",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
