package sms

import (
	"context"
	"net/http"
	"time"

	"github.com/iobuilds/print-lanka-sub001/internal/models"
)

// Outbound vendor calls share one bounded-timeout client; a hung gateway
// becomes a failed dispatch, never a stuck request.
var httpClient = &http.Client{Timeout: 10 * time.Second}

// Provider is the uniform surface over one SMS vendor's HTTP API. Each
// implementation maps the (phone, message, sender) triple onto its vendor's
// request shape and applies the vendor's own success predicate. Send returns
// the raw vendor payload verbatim in both outcomes so the dispatcher can
// record it for audit.
type Provider interface {
	Name() string
	Send(ctx context.Context, cfg *models.SMSProviderConfig, to, message string) (raw string, err error)
}

// BalanceProvider is implemented by vendors that expose an account balance
// query.
type BalanceProvider interface {
	Balance(ctx context.Context, cfg *models.SMSProviderConfig) (balance float64, raw string, err error)
}
