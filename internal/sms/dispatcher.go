package sms

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/iobuilds/print-lanka-sub001/internal/models"
	"github.com/iobuilds/print-lanka-sub001/internal/phone"
)

// ErrNotConfigured is returned when no provider configuration row exists.
var ErrNotConfigured = errors.New("sms provider is not configured")

// Dispatch result statuses.
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

const lowBalanceThreshold = 100

// ConfigSource yields the active provider configuration, or (nil, nil) when
// none has been saved.
type ConfigSource interface {
	Active(ctx context.Context) (*models.SMSProviderConfig, error)
}

// RecordStore persists notification audit records.
type RecordStore interface {
	Create(ctx context.Context, record *models.NotificationRecord) error
	Update(ctx context.Context, record *models.NotificationRecord) error
}

// SendRequest is one outbound SMS.
type SendRequest struct {
	Phone   string
	Message string
	OrderID *uuid.UUID
	UserID  *uuid.UUID
}

// DispatchResult summarizes one dispatch attempt for the caller. Raw holds
// the vendor payload verbatim.
type DispatchResult struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Raw     string `json:"raw,omitempty"`
}

// BalanceResult is the vendor account balance snapshot.
type BalanceResult struct {
	Balance float64 `json:"balance"`
	Raw     string  `json:"raw"`
	Low     bool    `json:"lowBalance"`
}

// Dispatcher sends SMS through the configured vendor and records every
// attempt. A pending audit record is written before the network call so an
// attempt is captured even if the process dies mid-dispatch.
type Dispatcher struct {
	configs   ConfigSource
	records   RecordStore
	providers map[string]Provider
}

// NewDispatcher constructs a dispatcher over the built-in vendor adapters.
func NewDispatcher(configs ConfigSource, records RecordStore) *Dispatcher {
	providers := map[string]Provider{}
	for _, p := range []Provider{NotifyLK{}, TextLK{}, &Dialog{}} {
		providers[p.Name()] = p
	}
	return &Dispatcher{configs: configs, records: records, providers: providers}
}

// Send dispatches one SMS. Vendor failures are recorded and reported in the
// result, not raised; only missing configuration or storage failures error.
func (d *Dispatcher) Send(ctx context.Context, req SendRequest) (*DispatchResult, error) {
	cfg, err := d.configs.Active(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, ErrNotConfigured
	}
	if !cfg.Enabled {
		return &DispatchResult{Success: false, Status: StatusDisabled, Detail: "sms sending is disabled"}, nil
	}

	to := phone.Normalize(req.Phone)

	record := &models.NotificationRecord{
		Phone:    to,
		Message:  req.Message,
		OrderID:  req.OrderID,
		UserID:   req.UserID,
		Status:   models.NotificationPending,
		Provider: cfg.Provider,
	}
	if err := d.records.Create(ctx, record); err != nil {
		return nil, err
	}

	provider, ok := d.providers[cfg.Provider]
	if !ok {
		detail := fmt.Sprintf("unknown sms provider %q", cfg.Provider)
		d.finish(ctx, record, models.NotificationFailed, detail)
		return &DispatchResult{Success: false, Status: StatusFailed, Detail: detail}, nil
	}

	raw, sendErr := provider.Send(ctx, cfg, to, req.Message)
	if sendErr != nil {
		response := raw
		if response == "" {
			response = sendErr.Error()
		}
		d.finish(ctx, record, models.NotificationFailed, response)
		return &DispatchResult{Success: false, Status: StatusFailed, Detail: sendErr.Error(), Raw: raw}, nil
	}

	d.finish(ctx, record, models.NotificationSent, raw)
	return &DispatchResult{Success: true, Status: StatusSent, Raw: raw}, nil
}

// Configured reports whether a provider configuration row exists.
func (d *Dispatcher) Configured(ctx context.Context) (bool, error) {
	cfg, err := d.configs.Active(ctx)
	if err != nil {
		return false, err
	}
	return cfg != nil, nil
}

// Balance queries the configured vendor's account balance. Vendors without a
// balance API report an error result rather than ErrNotConfigured.
func (d *Dispatcher) Balance(ctx context.Context) (*BalanceResult, error) {
	cfg, err := d.configs.Active(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil || cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	provider, ok := d.providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown sms provider %q", cfg.Provider)
	}
	checker, ok := provider.(BalanceProvider)
	if !ok {
		return nil, fmt.Errorf("provider %q does not expose a balance API", cfg.Provider)
	}

	balance, raw, err := checker.Balance(ctx, cfg)
	if err != nil {
		return &BalanceResult{Raw: raw}, err
	}
	return &BalanceResult{Balance: balance, Raw: raw, Low: balance < lowBalanceThreshold}, nil
}

func (d *Dispatcher) finish(ctx context.Context, record *models.NotificationRecord, status, response string) {
	record.Status = status
	record.ProviderResponse = response
	if err := d.records.Update(ctx, record); err != nil {
		log.Printf("sms: failed to update notification record %s: %v", record.ID, err)
	}
}

// CodeNotifier adapts the dispatcher to the single-message interface the otp
// service consumes. A dispatch that completes with a failure status is
// surfaced as an error so issuance can log the delivery failure.
type CodeNotifier struct {
	Dispatcher *Dispatcher
}

func (n CodeNotifier) Send(ctx context.Context, to, message string) error {
	result, err := n.Dispatcher.Send(ctx, SendRequest{Phone: to, Message: message})
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("sms dispatch %s: %s", result.Status, result.Detail)
	}
	return nil
}
