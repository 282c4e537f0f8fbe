package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/officelunch/attendance-api/internal/core/domain"
)

func headcountMsg() domain.Message {
	return domain.Message{
		Title: "Daily Lunch Count",
		Body:  "12 employees working from office today",
		Data:  map[string]string{"type": domain.NotificationTypeLunchCount, "count": "12", "date": "2026-02-16"},
	}
}

// ---------------------------------------------------------------------------
// Email
// ---------------------------------------------------------------------------

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  string
	auth smtp.Auth
}

func newTestEmailSender(t *testing.T, cfg SMTPConfig, captured *capturedMail, sendErr error) *EmailSender {
	t.Helper()
	s, err := NewEmailSender(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEmailSender: %v", err)
	}
	s.now = func() time.Time { return time.Date(2026, time.February, 16, 9, 30, 0, 0, time.UTC) }
	s.send = func(_ context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		*captured = capturedMail{addr: addr, from: from, to: to, msg: string(msg), auth: auth}
		return sendErr
	}
	return s
}

func TestEmailSender_SendsHeadcountTemplate(t *testing.T) {
	var got capturedMail
	s := newTestEmailSender(t, SMTPConfig{
		Host: "smtp.example.com", Port: 587, Username: "bot", Password: "pw",
		From: "lunch@example.com", FromName: "Office Lunch",
	}, &got, nil)

	if err := s.Send(context.Background(), "chef@example.com", headcountMsg()); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if got.addr != "smtp.example.com:587" || got.from != "lunch@example.com" {
		t.Fatalf("unexpected envelope: %+v", got)
	}
	if len(got.to) != 1 || got.to[0] != "chef@example.com" {
		t.Fatalf("unexpected recipients: %v", got.to)
	}
	if got.auth == nil {
		t.Fatalf("expected auth when username is set")
	}
	for _, want := range []string{
		"To: chef@example.com\r\n",
		"Subject: Daily Lunch Count\r\n",
		"Content-Type: text/html",
		"Message-ID: <",
		"<strong>12</strong>",
		"Headcount for 2026-02-16",
	} {
		if !strings.Contains(got.msg, want) {
			t.Fatalf("message missing %q:\n%s", want, got.msg)
		}
	}
}

func TestEmailSender_GenericTemplateEscapesHTML(t *testing.T) {
	var got capturedMail
	s := newTestEmailSender(t, SMTPConfig{Host: "smtp.example.com", Port: 25, From: "lunch@example.com"}, &got, nil)

	err := s.Send(context.Background(), "a@example.com", domain.Message{Title: "Hi", Body: "<script>x</script>"})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if strings.Contains(got.msg, "<script>") {
		t.Fatalf("expected body to be escaped")
	}
	if got.auth != nil {
		t.Fatalf("expected no auth without username")
	}
}

func TestEmailSender_NotConfigured(t *testing.T) {
	var got capturedMail
	s := newTestEmailSender(t, SMTPConfig{}, &got, nil)

	if err := s.Send(context.Background(), "a@example.com", headcountMsg()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestEmailSender_TransportError(t *testing.T) {
	var got capturedMail
	s := newTestEmailSender(t, SMTPConfig{Host: "smtp.example.com", Port: 25, From: "x@example.com"}, &got, errors.New("550 mailbox unavailable"))

	if err := s.Send(context.Background(), "a@example.com", headcountMsg()); err == nil {
		t.Fatalf("expected error")
	}
}

// ---------------------------------------------------------------------------
// Push
// ---------------------------------------------------------------------------

func TestPushSender_PostsFCMMessage(t *testing.T) {
	var body fcmRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"name":"projects/p/messages/1"}`))
	}))
	defer srv.Close()

	s := newPushSender(srv.Client(), srv.URL, zerolog.Nop())
	if err := s.Send(context.Background(), "device-token", headcountMsg()); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if body.Message.Token != "device-token" {
		t.Fatalf("unexpected token: %q", body.Message.Token)
	}
	if body.Message.Notification.Title != "Daily Lunch Count" || body.Message.Data["count"] != "12" {
		t.Fatalf("unexpected payload: %+v", body.Message)
	}
}

func TestPushSender_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND"}}`))
	}))
	defer srv.Close()

	s := newPushSender(srv.Client(), srv.URL, zerolog.Nop())
	err := s.Send(context.Background(), "stale-token", headcountMsg())
	if err == nil || !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Fatalf("expected NOT_FOUND error, got %v", err)
	}
}

func TestNewPushSender_RequiresProject(t *testing.T) {
	if _, err := NewPushSender(context.Background(), FCMConfig{}, zerolog.Nop()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
