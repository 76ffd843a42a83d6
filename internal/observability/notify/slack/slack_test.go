package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartbin/portal/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when webhook url missing")
	}
}

func TestFormatMessageIncludesFields(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL: "https://hooks.slack.com/services/test",
		Channel:    "#accounts",
		Username:   "bot",
		Timeout:    time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := client.formatMessage(notify.AccountEvent{
		Kind:     notify.EventRegistered,
		UserID:   "3",
		Username: "new_user",
		Contact:  "new@example.com",
		Metadata: map[string]string{"surface": "web"},
	})

	if msg["username"] != "bot" {
		t.Fatalf("expected username to be preserved, got %v", msg["username"])
	}
	if msg["channel"] != "#accounts" {
		t.Fatalf("expected channel to be set, got %v", msg["channel"])
	}

	text, ok := msg["text"].(string)
	if !ok {
		t.Fatalf("expected text field")
	}
	if !containsAll(
		text,
		[]string{"New account registered", "registered", "new_user (3)", "n*w@example.com", "surface: web"},
	) {
		t.Fatalf("message text missing fields: %s", text)
	}
	if strings.Contains(text, "new@example.com") {
		t.Fatalf("contact should be masked: %s", text)
	}
}

func TestFormatMessagePortalLink(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL: "https://hooks.slack.com/services/test",
		PortalURL:  "https://portal.smartbin.local",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, _ := client.formatMessage(notify.AccountEvent{Kind: notify.EventPasswordChanged, UserID: "1"})["text"].(string)
	if !strings.Contains(text, "<https://portal.smartbin.local|Open portal>") {
		t.Fatalf("expected portal link, got %s", text)
	}
}

func TestFormatMessageEscapesUsername(t *testing.T) {
	client, err := NewClient(Config{WebhookURL: "https://hooks.slack.com/services/test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, _ := client.formatMessage(notify.AccountEvent{Username: "<script>&"})["text"].(string)
	if !strings.Contains(text, "&lt;script&gt;&amp;") {
		t.Fatalf("expected escaped username, got %s", text)
	}
	if !strings.Contains(text, "*Account event*") {
		t.Fatalf("expected fallback title, got %s", text)
	}
}

func TestMaskContact(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		"ab":                 "**",
		"admin@smartbin.com": "a***n@smartbin.com",
		"13800138000":        "138******00",
	}
	for in, want := range cases {
		if got := MaskContact(in); got != want {
			t.Fatalf("MaskContact(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSendAccountEventRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if hits.Add(1) == 1 {
			http.Error(w, "try again", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(Config{WebhookURL: srv.URL, RetryLimit: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := client.SendAccountEvent(context.Background(), notify.AccountEvent{Kind: notify.EventRegistered}); err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", hits.Load())
	}
}

func TestSendAccountEventError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	client, err := NewClient(Config{WebhookURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = client.SendAccountEvent(context.Background(), notify.AccountEvent{})
	if err == nil || !strings.Contains(err.Error(), "invalid_payload") {
		t.Fatalf("expected webhook error, got %v", err)
	}
}

func containsAll(text string, parts []string) bool {
	for _, p := range parts {
		if !strings.Contains(text, p) {
			return false
		}
	}
	return true
}
