package security

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"
)

const testSecret = "whsec_dGhpcy1pcy1hLXRlc3Qtc2lnbmluZy1rZXk=" // base64("this-is-a-test-signing-key")

func newTestVerifier(t *testing.T, at time.Time) *WebhookVerifier {
	t.Helper()
	v, err := NewWebhookVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewWebhookVerifier: %v", err)
	}
	v.now = func() time.Time { return at }
	return v
}

func TestWebhookVerify_ValidSignature(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	v := newTestVerifier(t, now)

	body := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	ts, sig := v.Sign(body, "msg_1", now)

	if err := v.Verify(body, "msg_1", ts, sig); err != nil {
		t.Fatalf("valid webhook rejected: %v", err)
	}
}

func TestWebhookVerify_TamperedBody(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	v := newTestVerifier(t, now)

	body := []byte(`{"type":"user.created"}`)
	ts, sig := v.Sign(body, "msg_1", now)

	tampered := []byte(`{"type":"user.deleted"}`)
	if err := v.Verify(tampered, "msg_1", ts, sig); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("error = %v, want ErrInvalidSignature", err)
	}
}

func TestWebhookVerify_WrongSecret(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	v := newTestVerifier(t, now)

	other, err := NewWebhookVerifier("whsec_" + base64.StdEncoding.EncodeToString([]byte("another-key")))
	if err != nil {
		t.Fatalf("NewWebhookVerifier: %v", err)
	}

	body := []byte(`{}`)
	ts, sig := other.Sign(body, "msg_1", now)

	if err := v.Verify(body, "msg_1", ts, sig); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("error = %v, want ErrInvalidSignature", err)
	}
}

func TestWebhookVerify_StaleTimestamp(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	v := newTestVerifier(t, now)

	body := []byte(`{}`)

	tests := []struct {
		name string
		at   time.Time
	}{
		{"too old", now.Add(-6 * time.Minute)},
		{"too far in the future", now.Add(6 * time.Minute)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, sig := v.Sign(body, "msg_1", tt.at)
			if err := v.Verify(body, "msg_1", ts, sig); !errors.Is(err, ErrTimestampTolerance) {
				t.Fatalf("error = %v, want ErrTimestampTolerance", err)
			}
		})
	}
}

func TestWebhookVerify_WithinTolerance(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	v := newTestVerifier(t, now)

	body := []byte(`{}`)
	ts, sig := v.Sign(body, "msg_1", now.Add(-4*time.Minute))

	if err := v.Verify(body, "msg_1", ts, sig); err != nil {
		t.Fatalf("signature within tolerance rejected: %v", err)
	}
}

func TestWebhookVerify_MissingHeaders(t *testing.T) {
	v := newTestVerifier(t, time.Now())

	if err := v.Verify([]byte(`{}`), "", "123", "v1,abc"); !errors.Is(err, ErrMissingHeaders) {
		t.Fatalf("error = %v, want ErrMissingHeaders", err)
	}
	if err := v.Verify([]byte(`{}`), "msg_1", "", "v1,abc"); !errors.Is(err, ErrMissingHeaders) {
		t.Fatalf("error = %v, want ErrMissingHeaders", err)
	}
	if err := v.Verify([]byte(`{}`), "msg_1", "123", ""); !errors.Is(err, ErrMissingHeaders) {
		t.Fatalf("error = %v, want ErrMissingHeaders", err)
	}
}

func TestWebhookVerify_MultipleCandidates(t *testing.T) {
	// Rotation de secret : le header porte plusieurs signatures, une seule
	// doit matcher
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	v := newTestVerifier(t, now)

	body := []byte(`{}`)
	ts, good := v.Sign(body, "msg_1", now)
	header := "v1,Zm9yZ2Vk " + good

	if err := v.Verify(body, "msg_1", ts, header); err != nil {
		t.Fatalf("rotated-secret header rejected: %v", err)
	}
}

func TestNewWebhookVerifier_RejectsMalformedSecret(t *testing.T) {
	if _, err := NewWebhookVerifier("whsec_%%%not-base64%%%"); err == nil {
		t.Fatal("malformed secret should be rejected at construction")
	}
}
