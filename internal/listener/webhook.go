package listener

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body when the
// webhook has a secret.
const SignatureHeader = "X-Gof-Signature"

const defaultWebhookTimeout = 10 * time.Second

// Webhook POSTs each payload as JSON to a URL.
type Webhook struct {
	name   string
	url    string
	secret string
	client *http.Client
	now    func() time.Time
}

type webhookBody struct {
	Listener string    `json:"listener"`
	Payload  string    `json:"payload"`
	SentAt   time.Time `json:"sent_at"`
}

// NewWebhook creates a Webhook. A non-positive timeout falls back to 10s.
func NewWebhook(name, url, secret string, timeout time.Duration) (*Webhook, error) {
	if url == "" {
		return nil, fmt.Errorf("url is required for webhook listener")
	}
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &Webhook{
		name:   name,
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}, nil
}

func (w *Webhook) Name() string { return w.name }

func (w *Webhook) Act(payload string) error {
	body, err := json.Marshal(webhookBody{
		Listener: w.name,
		Payload:  payload,
		SentAt:   w.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal webhook body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.secret != "" {
		req.Header.Set(SignatureHeader, Sign(w.secret, body))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of body keyed with secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
