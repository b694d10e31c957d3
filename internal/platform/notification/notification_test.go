package notification

import (
	"context"
	"strings"
	"testing"
)

func TestTemplateEngine_RenderBuiltIn(t *testing.T) {
	e := NewTemplateEngine()

	subject, body, err := e.Render("booking-status-changed", map[string]string{
		"patient_name": "Amira Hassan",
		"doctor_name":  "Dr. Salem",
		"date":         "2026-09-03",
		"time":         "10:30",
		"status":       "confirmed",
	})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(subject, "2026-09-03") {
		t.Errorf("subject missing date: %q", subject)
	}
	if !strings.Contains(body, "Amira Hassan") || !strings.Contains(body, "confirmed") {
		t.Errorf("body missing substitutions: %q", body)
	}
}

func TestTemplateEngine_MissingDataLeftAsIs(t *testing.T) {
	e := NewTemplateEngine()

	_, body, err := e.Render("booking-created", map[string]string{
		"patient_name": "Omar",
	})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(body, "{{date}}") {
		t.Errorf("expected unfilled placeholder to remain, got %q", body)
	}
}

func TestTemplateEngine_UnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	if _, _, err := e.Render("no-such-template", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestManager_SendEmail(t *testing.T) {
	email := &MockEmailSender{}
	sms := &MockSMSSender{}
	mgr := NewManager(email, sms, NewTemplateEngine())

	n := &Notification{
		Type:      TypeEmail,
		Recipient: "patient@example.com",
		Subject:   "hello",
		Body:      "body",
	}
	if err := mgr.Send(context.Background(), n); err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	if n.Status != "sent" {
		t.Errorf("expected status sent, got %s", n.Status)
	}
	if n.SentAt == nil {
		t.Error("expected SentAt to be set")
	}
	if calls := email.Calls(); len(calls) != 1 || calls[0].To != "patient@example.com" {
		t.Errorf("unexpected email calls: %+v", calls)
	}
}

func TestManager_SendFailure(t *testing.T) {
	email := &MockEmailSender{ShouldFail: true, FailError: "smtp down"}
	mgr := NewManager(email, &MockSMSSender{}, NewTemplateEngine())

	n := &Notification{Type: TypeEmail, Recipient: "x@example.com", Body: "b"}
	if err := mgr.Send(context.Background(), n); err == nil {
		t.Fatal("expected send error")
	}
	if n.Status != "failed" {
		t.Errorf("expected status failed, got %s", n.Status)
	}
	if n.Error != "smtp down" {
		t.Errorf("expected recorded error, got %q", n.Error)
	}
}

func TestManager_SendFromTemplate(t *testing.T) {
	sms := &MockSMSSender{}
	mgr := NewManager(&MockEmailSender{}, sms, NewTemplateEngine())

	n, err := mgr.SendFromTemplate(context.Background(), "appointment-reminder", map[string]string{
		"patient_name": "Lina",
		"date":         "2026-09-03",
		"time":         "09:00",
		"doctor_name":  "Dr. Farouk",
	}, "+201000000000")
	if err != nil {
		t.Fatalf("SendFromTemplate() error: %v", err)
	}
	if n.Type != TypeSMS {
		t.Errorf("expected SMS type from template, got %s", n.Type)
	}
	if calls := sms.Calls(); len(calls) != 1 || !strings.Contains(calls[0].Body, "Dr. Farouk") {
		t.Errorf("unexpected sms calls: %+v", calls)
	}
}

func TestManager_Retry(t *testing.T) {
	email := &MockEmailSender{ShouldFail: true, FailError: "smtp down"}
	mgr := NewManager(email, &MockSMSSender{}, NewTemplateEngine())

	n := &Notification{Type: TypeEmail, Recipient: "x@example.com", Body: "b"}
	_ = mgr.Send(context.Background(), n)

	email.ShouldFail = false
	if err := mgr.Retry(context.Background(), n.ID); err != nil {
		t.Fatalf("Retry() error: %v", err)
	}

	got, err := mgr.Get(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Status != "sent" {
		t.Errorf("expected status sent after retry, got %s", got.Status)
	}
	if got.Error != "" {
		t.Errorf("expected error cleared after retry, got %q", got.Error)
	}
}

func TestManager_RetryNonFailed(t *testing.T) {
	mgr := NewManager(&MockEmailSender{}, &MockSMSSender{}, NewTemplateEngine())

	n := &Notification{Type: TypeEmail, Recipient: "x@example.com", Body: "b"}
	_ = mgr.Send(context.Background(), n)

	if err := mgr.Retry(context.Background(), n.ID); err == nil {
		t.Error("expected error retrying a sent notification")
	}
}

func TestManager_Stats(t *testing.T) {
	email := &MockEmailSender{}
	mgr := NewManager(email, &MockSMSSender{}, NewTemplateEngine())

	_ = mgr.Send(context.Background(), &Notification{Type: TypeEmail, Recipient: "a@example.com", Body: "b"})
	email.ShouldFail = true
	email.FailError = "down"
	_ = mgr.Send(context.Background(), &Notification{Type: TypeEmail, Recipient: "b@example.com", Body: "b"})

	stats := mgr.Stats(context.Background())
	if stats["sent"] != 1 || stats["failed"] != 1 {
		t.Errorf("unexpected stats: %v", stats)
	}
}
