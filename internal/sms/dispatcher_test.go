package sms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/iobuilds/print-lanka-sub001/internal/models"
)

func notifyLKConfig(url string, enabled bool) *models.SMSProviderConfig {
	return &models.SMSProviderConfig{
		Provider:  "notifylk",
		APIKey:    "key-123",
		APISecret: "user-1",
		SenderID:  "PrintLanka",
		APIURL:    url,
		Enabled:   enabled,
	}
}

func TestSendNotConfigured(t *testing.T) {
	d := NewDispatcher(StaticConfigSource{Cfg: nil}, NewMemoryRecordStore())

	if _, err := d.Send(context.Background(), SendRequest{Phone: "0771234567", Message: "hi"}); err != ErrNotConfigured {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestSendDisabledSkipsNetworkAndRecords(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	records := NewMemoryRecordStore()
	d := NewDispatcher(StaticConfigSource{Cfg: notifyLKConfig(server.URL, false)}, records)

	result, err := d.Send(context.Background(), SendRequest{Phone: "0771234567", Message: "hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.Success || result.Status != StatusDisabled {
		t.Fatalf("result = %+v, want disabled failure", result)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatal("disabled dispatch still hit the network")
	}
	if len(records.Records()) != 0 {
		t.Fatal("disabled dispatch created an audit record")
	}
}

func TestSendNotifyLKSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.Form.Get("to") != "94771234567" || r.Form.Get("api_key") != "key-123" || r.Form.Get("user_id") != "user-1" {
			t.Errorf("unexpected form: %v", r.Form)
		}
		w.Write([]byte(`{"status":"success","data":{"id":42}}`))
	}))
	defer server.Close()

	records := NewMemoryRecordStore()
	d := NewDispatcher(StaticConfigSource{Cfg: notifyLKConfig(server.URL, true)}, records)

	result, err := d.Send(context.Background(), SendRequest{Phone: "0771234567", Message: "hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !result.Success || result.Status != StatusSent {
		t.Fatalf("result = %+v, want sent", result)
	}

	stored := records.Records()
	if len(stored) != 1 {
		t.Fatalf("records = %d, want 1", len(stored))
	}
	if stored[0].Status != models.NotificationSent {
		t.Fatalf("record status = %q, want sent", stored[0].Status)
	}
	if !strings.Contains(stored[0].ProviderResponse, `"status":"success"`) {
		t.Fatalf("raw response not preserved: %q", stored[0].ProviderResponse)
	}
}

func TestSendNotifyLKVendorFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"error","message":"invalid api key"}`))
	}))
	defer server.Close()

	records := NewMemoryRecordStore()
	d := NewDispatcher(StaticConfigSource{Cfg: notifyLKConfig(server.URL, true)}, records)

	result, err := d.Send(context.Background(), SendRequest{Phone: "0771234567", Message: "hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.Success {
		t.Fatal("vendor-declared failure reported as success")
	}

	stored := records.Records()
	if len(stored) != 1 || stored[0].Status != models.NotificationFailed {
		t.Fatalf("records = %+v, want one failed", stored)
	}
	if !strings.Contains(stored[0].ProviderResponse, "invalid api key") {
		t.Fatalf("raw vendor payload not preserved: %q", stored[0].ProviderResponse)
	}
}

func TestSendMalformedVendorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html>gateway error</html>`))
	}))
	defer server.Close()

	records := NewMemoryRecordStore()
	d := NewDispatcher(StaticConfigSource{Cfg: notifyLKConfig(server.URL, true)}, records)

	result, err := d.Send(context.Background(), SendRequest{Phone: "0771234567", Message: "hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.Success {
		t.Fatal("malformed response reported as success")
	}

	stored := records.Records()
	if len(stored) != 1 || stored[0].Status != models.NotificationFailed {
		t.Fatalf("records = %+v, want one failed", stored)
	}
	if !strings.Contains(stored[0].ProviderResponse, "gateway error") {
		t.Fatalf("raw body not preserved: %q", stored[0].ProviderResponse)
	}
}

func TestSendTextLK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key-123" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		var body struct {
			Recipient string `json:"recipient"`
			Message   string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Recipient != "94771234567" {
			t.Errorf("recipient = %q", body.Recipient)
		}
		// Text.lk success is bare 2xx; the body shape is not inspected.
		w.Write([]byte(`{"data":{"uid":"abc"}}`))
	}))
	defer server.Close()

	cfg := &models.SMSProviderConfig{Provider: "textlk", APIKey: "key-123", SenderID: "PrintLanka", APIURL: server.URL, Enabled: true}
	d := NewDispatcher(StaticConfigSource{Cfg: cfg}, NewMemoryRecordStore())

	result, err := d.Send(context.Background(), SendRequest{Phone: "0771234567", Message: "hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !result.Success {
		t.Fatalf("result = %+v, want success", result)
	}
}

func TestSendDialogFetchesAndCachesToken(t *testing.T) {
	var tokenCalls, sendCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/apicall/token"):
			atomic.AddInt32(&tokenCalls, 1)
			user, pass, _ := r.BasicAuth()
			if user != "client-id" || pass != "client-secret" {
				t.Errorf("basic auth = %q/%q", user, pass)
			}
			w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
		case strings.HasSuffix(r.URL.Path, "/sms/send"):
			atomic.AddInt32(&sendCalls, 1)
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				t.Errorf("authorization = %q", r.Header.Get("Authorization"))
			}
			w.Write([]byte(`{"deliveryInfoList":[]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	cfg := &models.SMSProviderConfig{Provider: "dialog", APIKey: "client-id", APISecret: "client-secret", SenderID: "PrintLanka", APIURL: server.URL, Enabled: true}
	d := NewDispatcher(StaticConfigSource{Cfg: cfg}, NewMemoryRecordStore())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := d.Send(ctx, SendRequest{Phone: "0771234567", Message: "hi"})
		if err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
		if !result.Success {
			t.Fatalf("send %d result = %+v", i, result)
		}
	}

	if atomic.LoadInt32(&tokenCalls) != 1 {
		t.Fatalf("token fetched %d times, want 1 (cached)", tokenCalls)
	}
	if atomic.LoadInt32(&sendCalls) != 2 {
		t.Fatalf("send called %d times, want 2", sendCalls)
	}
}

func TestSendUnknownProvider(t *testing.T) {
	cfg := &models.SMSProviderConfig{Provider: "carrier-pigeon", Enabled: true}
	records := NewMemoryRecordStore()
	d := NewDispatcher(StaticConfigSource{Cfg: cfg}, records)

	result, err := d.Send(context.Background(), SendRequest{Phone: "0771234567", Message: "hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.Success || result.Status != StatusFailed {
		t.Fatalf("result = %+v, want failed", result)
	}

	stored := records.Records()
	if len(stored) != 1 || stored[0].Status != models.NotificationFailed {
		t.Fatalf("records = %+v, want one failed", stored)
	}
}

func TestBalanceNotifyLK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/status") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"success","data":{"acc_balance":"42.50"}}`))
	}))
	defer server.Close()

	d := NewDispatcher(StaticConfigSource{Cfg: notifyLKConfig(server.URL, true)}, NewMemoryRecordStore())

	result, err := d.Balance(context.Background())
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if result.Balance != 42.5 {
		t.Fatalf("balance = %v, want 42.5", result.Balance)
	}
	if !result.Low {
		t.Fatal("42.50 should be flagged as low balance")
	}
}

func TestBalanceVendorError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"error"}`))
	}))
	defer server.Close()

	d := NewDispatcher(StaticConfigSource{Cfg: notifyLKConfig(server.URL, true)}, NewMemoryRecordStore())

	result, err := d.Balance(context.Background())
	if err == nil {
		t.Fatal("vendor error not surfaced")
	}
	if result == nil || !strings.Contains(result.Raw, "error") {
		t.Fatalf("raw payload not preserved: %+v", result)
	}
}

func TestSendOrderNotificationsRecipientsIndependent(t *testing.T) {
	// The gateway rejects the admin number but accepts the customer's; the
	// customer message must still go out.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.Form.Get("to") == "94711111111" {
			w.Write([]byte(`{"status":"error","message":"blocked number"}`))
			return
		}
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer server.Close()

	records := NewMemoryRecordStore()
	d := NewDispatcher(StaticConfigSource{Cfg: notifyLKConfig(server.URL, true)}, records)

	notification := OrderNotification{
		OrderNumber:   "PL-1001",
		OrderType:     "print",
		CustomerName:  "Nimal Perera",
		CustomerPhone: "0772222222",
		TotalAmount:   12500,
		Currency:      "LKR",
	}

	results := d.SendOrderNotifications(context.Background(), notification, NotifyAll, "0711111111")
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}

	byRecipient := map[string]RecipientResult{}
	for _, r := range results {
		byRecipient[r.Recipient] = r
	}
	if byRecipient["admin"].Success {
		t.Fatal("admin dispatch should have failed")
	}
	if !byRecipient["customer"].Success {
		t.Fatalf("customer dispatch failed: %+v", byRecipient["customer"])
	}
}

func TestSendOrderNotificationsAdminFallbackPhone(t *testing.T) {
	var adminTo string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		adminTo = r.Form.Get("to")
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer server.Close()

	d := NewDispatcher(StaticConfigSource{Cfg: notifyLKConfig(server.URL, true)}, NewMemoryRecordStore())

	results := d.SendOrderNotifications(context.Background(), OrderNotification{OrderNumber: "PL-1"}, NotifyNewOrder, "")
	if len(results) != 1 || !results[0].Success {
		t.Fatalf("results = %+v", results)
	}
	if adminTo != fallbackAdminPhone {
		t.Fatalf("admin to = %q, want fallback %q", adminTo, fallbackAdminPhone)
	}
}

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice(1234567, ""); got != "1,234,567 LKR" {
		t.Fatalf("FormatPrice = %q", got)
	}
}

func TestCodeNotifierSurfacesFailure(t *testing.T) {
	d := NewDispatcher(StaticConfigSource{Cfg: notifyLKConfig("", false)}, NewMemoryRecordStore())
	n := CodeNotifier{Dispatcher: d}

	if err := n.Send(context.Background(), "0771234567", "code"); err == nil {
		t.Fatal("disabled dispatch should surface as an error")
	}
}
