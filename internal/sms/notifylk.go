package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/iobuilds/print-lanka-sub001/internal/models"
)

const defaultNotifyLKBaseURL = "https://app.notify.lk/api/v1"

// NotifyLK sends through the Notify.lk gateway. The API takes form-encoded
// parameters and always answers JSON with a "status" field; HTTP 200 with
// status != "success" is still a failure. Config mapping: APISecret carries
// the Notify.lk user id, APIKey the API key.
type NotifyLK struct{}

func (NotifyLK) Name() string { return "notifylk" }

func (NotifyLK) Send(ctx context.Context, cfg *models.SMSProviderConfig, to, message string) (string, error) {
	form := url.Values{}
	form.Set("user_id", cfg.APISecret)
	form.Set("api_key", cfg.APIKey)
	form.Set("sender_id", cfg.SenderID)
	form.Set("to", to)
	form.Set("message", message)

	endpoint := notifyLKBaseURL(cfg) + "/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("notifylk request build: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("notifylk send: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	raw := string(body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return raw, fmt.Errorf("notifylk send: status %d", resp.StatusCode)
	}

	var parsed struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return raw, fmt.Errorf("notifylk send: unexpected response shape: %w", err)
	}
	if parsed.Status != "success" {
		return raw, fmt.Errorf("notifylk send: vendor status %q", parsed.Status)
	}

	return raw, nil
}

// Balance queries the Notify.lk account status endpoint.
func (NotifyLK) Balance(ctx context.Context, cfg *models.SMSProviderConfig) (float64, string, error) {
	query := url.Values{}
	query.Set("user_id", cfg.APISecret)
	query.Set("api_key", cfg.APIKey)

	endpoint := notifyLKBaseURL(cfg) + "/status?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, "", fmt.Errorf("notifylk balance request build: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("notifylk balance: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	raw := string(body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, raw, fmt.Errorf("notifylk balance: status %d", resp.StatusCode)
	}

	var parsed struct {
		Status string `json:"status"`
		Data   struct {
			AccBalance json.Number `json:"acc_balance"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, raw, fmt.Errorf("notifylk balance: unexpected response shape: %w", err)
	}
	if parsed.Status != "success" {
		return 0, raw, fmt.Errorf("notifylk balance: vendor status %q", parsed.Status)
	}

	balance, err := strconv.ParseFloat(parsed.Data.AccBalance.String(), 64)
	if err != nil {
		return 0, raw, fmt.Errorf("notifylk balance: parse %q: %w", parsed.Data.AccBalance, err)
	}
	return balance, raw, nil
}

func notifyLKBaseURL(cfg *models.SMSProviderConfig) string {
	if cfg.APIURL != "" {
		return strings.TrimRight(cfg.APIURL, "/")
	}
	return defaultNotifyLKBaseURL
}
