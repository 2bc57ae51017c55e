package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/iobuilds/print-lanka-sub001/internal/models"
)

const (
	defaultDialogBaseURL = "https://api.ideabiz.lk"
	tokenRefreshLeeway   = 30 * time.Second
)

// Dialog sends through the Dialog ideaBiz gateway. Unlike the other vendors
// it needs an OAuth access token first; the token is cached in-process under
// a mutex and refreshed on expiry or on a 401 from the send call.
type Dialog struct {
	mu          sync.RWMutex
	token       string
	tokenExpiry time.Time
}

func (d *Dialog) Name() string { return "dialog" }

type dialogTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (d *Dialog) accessToken(ctx context.Context, cfg *models.SMSProviderConfig, force bool) (string, error) {
	if !force {
		d.mu.RLock()
		if d.token != "" && time.Now().Before(d.tokenExpiry) {
			t := d.token
			d.mu.RUnlock()
			return t, nil
		}
		d.mu.RUnlock()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Double-check after acquiring the write lock.
	if !force && d.token != "" && time.Now().Before(d.tokenExpiry) {
		return d.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		dialogBaseURL(cfg)+"/apicall/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("dialog token request build: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(cfg.APIKey, cfg.APISecret)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("dialog token request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("dialog token: status %d, body: %s", resp.StatusCode, string(body))
	}

	var parsed dialogTokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("dialog token unmarshal: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("dialog token: empty access token")
	}

	d.token = parsed.AccessToken
	if parsed.ExpiresIn > 0 {
		d.tokenExpiry = time.Now().Add(time.Duration(parsed.ExpiresIn)*time.Second - tokenRefreshLeeway)
	} else {
		d.tokenExpiry = time.Now().Add(55 * time.Minute)
	}

	return d.token, nil
}

type dialogSendRequest struct {
	Message       string   `json:"message"`
	Addresses     []string `json:"destinationAddresses"`
	SourceAddress string   `json:"sourceAddress"`
}

func (d *Dialog) Send(ctx context.Context, cfg *models.SMSProviderConfig, to, message string) (string, error) {
	raw, status, err := d.send(ctx, cfg, to, message, false)
	if status == http.StatusUnauthorized {
		// Token may have been revoked early; refresh once and retry.
		raw, status, err = d.send(ctx, cfg, to, message, true)
	}
	if err != nil {
		return raw, err
	}
	if status < 200 || status >= 300 {
		return raw, fmt.Errorf("dialog send: status %d", status)
	}
	return raw, nil
}

func (d *Dialog) send(ctx context.Context, cfg *models.SMSProviderConfig, to, message string, forceToken bool) (string, int, error) {
	token, err := d.accessToken(ctx, cfg, forceToken)
	if err != nil {
		return "", 0, err
	}

	payload, err := json.Marshal(dialogSendRequest{
		Message:       message,
		Addresses:     []string{"tel:" + to},
		SourceAddress: cfg.SenderID,
	})
	if err != nil {
		return "", 0, fmt.Errorf("dialog request marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		dialogBaseURL(cfg)+"/sms/send", bytes.NewReader(payload))
	if err != nil {
		return "", 0, fmt.Errorf("dialog request build: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("dialog send: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return string(body), resp.StatusCode, nil
}

func dialogBaseURL(cfg *models.SMSProviderConfig) string {
	if cfg.APIURL != "" {
		return strings.TrimRight(cfg.APIURL, "/")
	}
	return defaultDialogBaseURL
}
