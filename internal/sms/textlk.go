package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/iobuilds/print-lanka-sub001/internal/models"
)

const defaultTextLKBaseURL = "https://app.text.lk/api/v3"

// TextLK sends through the Text.lk gateway: JSON body, bearer token auth,
// and a bare 2xx as the success predicate — the vendor does not return a
// machine-readable status field worth trusting.
type TextLK struct{}

func (TextLK) Name() string { return "textlk" }

type textLKRequest struct {
	Recipient string `json:"recipient"`
	SenderID  string `json:"sender_id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
}

func (TextLK) Send(ctx context.Context, cfg *models.SMSProviderConfig, to, message string) (string, error) {
	payload, err := json.Marshal(textLKRequest{
		Recipient: to,
		SenderID:  cfg.SenderID,
		Type:      "plain",
		Message:   message,
	})
	if err != nil {
		return "", fmt.Errorf("textlk request marshal: %w", err)
	}

	base := defaultTextLKBaseURL
	if cfg.APIURL != "" {
		base = strings.TrimRight(cfg.APIURL, "/")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/sms/send", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("textlk request build: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("textlk send: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	raw := string(body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return raw, fmt.Errorf("textlk send: status %d", resp.StatusCode)
	}
	return raw, nil
}
