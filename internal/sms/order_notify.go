package sms

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Notification types accepted by SendOrderNotifications.
const (
	NotifyNewOrder = "new_order"
	NotifyThankYou = "thank_you"
	NotifyAll      = "all"
)

// fallbackAdminPhone is used when no admin phone is configured; a misplaced
// setting should not take the whole dispatch down.
const fallbackAdminPhone = "94770000000"

// OrderNotification carries the resolved order and customer details used to
// compose the two order messages.
type OrderNotification struct {
	OrderID       uuid.UUID
	UserID        *uuid.UUID
	OrderNumber   string
	OrderType     string
	CustomerName  string
	CustomerPhone string
	TotalAmount   float64
	Currency      string
}

// RecipientResult reports the dispatch outcome for one recipient.
type RecipientResult struct {
	Recipient string `json:"recipient"`
	Phone     string `json:"phone"`
	Success   bool   `json:"success"`
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
}

// SendOrderNotifications composes and sends the order messages selected by
// notificationType: "new_order" to the admin phone, "thank_you" to the
// customer, "all" for both. Recipients are independent; one failure never
// blocks the other.
func (d *Dispatcher) SendOrderNotifications(ctx context.Context, n OrderNotification, notificationType, adminPhone string) []RecipientResult {
	var results []RecipientResult

	if notificationType == NotifyNewOrder || notificationType == NotifyAll {
		to := adminPhone
		if to == "" {
			to = fallbackAdminPhone
		}
		results = append(results, d.sendTo(ctx, "admin", to, newOrderMessage(n), n))
	}

	if notificationType == NotifyThankYou || notificationType == NotifyAll {
		results = append(results, d.sendTo(ctx, "customer", n.CustomerPhone, thankYouMessage(n), n))
	}

	return results
}

func (d *Dispatcher) sendTo(ctx context.Context, recipient, to, message string, n OrderNotification) RecipientResult {
	result, err := d.Send(ctx, SendRequest{
		Phone:   to,
		Message: message,
		OrderID: &n.OrderID,
		UserID:  n.UserID,
	})
	if err != nil {
		return RecipientResult{Recipient: recipient, Phone: to, Success: false, Status: StatusFailed, Detail: err.Error()}
	}
	return RecipientResult{Recipient: recipient, Phone: to, Success: result.Success, Status: result.Status, Detail: result.Detail}
}

func newOrderMessage(n OrderNotification) string {
	kind := "shop order"
	if n.OrderType == "print" {
		kind = "print order"
	}
	return fmt.Sprintf("New %s %s from %s (%s). Total: %s.",
		kind, n.OrderNumber, n.CustomerName, n.CustomerPhone,
		FormatPrice(n.TotalAmount, n.Currency))
}

func thankYouMessage(n OrderNotification) string {
	return fmt.Sprintf("Thank you for your order %s! Total: %s. We will update you once it is on its way. - Print Lanka",
		n.OrderNumber, FormatPrice(n.TotalAmount, n.Currency))
}

// FormatPrice renders an amount with thousand separators and a currency
// suffix, defaulting to LKR.
func FormatPrice(amount float64, currency string) string {
	if currency == "" {
		currency = "LKR"
	}
	intAmount := int64(amount)
	str := fmt.Sprintf("%d", intAmount)

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return result.String() + " " + currency
}
