package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	boterrors "github.com/ducminhle1904/crypto-signal-bot/internal/errors"
)

const (
	defaultTelegramAPI     = "https://api.telegram.org"
	defaultTelegramTimeout = 10 * time.Second
)

type TelegramNotifier struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
}

// TelegramOption customises a TelegramNotifier
type TelegramOption func(*TelegramNotifier)

// WithBaseURL points the notifier at another Bot API host
func WithBaseURL(baseURL string) TelegramOption {
	return func(t *TelegramNotifier) {
		t.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewTelegramNotifier creates a notifier that posts through proxyURL when it is set
func NewTelegramNotifier(token, chatID string, timeout time.Duration, proxyURL string, opts ...TelegramOption) (*TelegramNotifier, error) {
	if token == "" || chatID == "" {
		return nil, boterrors.NewConfigurationError("telegram", "new", "bot token and chat id are required")
	}
	if timeout <= 0 {
		timeout = defaultTelegramTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		proxy, err := url.Parse(proxyURL)
		if err != nil || proxy.Host == "" {
			return nil, boterrors.NewConfigurationError("telegram", "new",
				fmt.Sprintf("invalid proxy url %q", proxyURL))
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	t := &TelegramNotifier{
		token:   token,
		chatID:  chatID,
		baseURL: defaultTelegramAPI,
		client:  &http.Client{Timeout: timeout, Transport: transport},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *TelegramNotifier) SendAlert(ctx context.Context, level, message string) error {
	text := fmt.Sprintf("%s <b>Signal Bot</b>\n\n%s", levelEmoji(level), message)
	return t.send(ctx, text)
}

func (t *TelegramNotifier) send(ctx context.Context, text string) error {
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)

	data := url.Values{}
	data.Set("chat_id", t.chatID)
	data.Set("text", text)
	data.Set("parse_mode", "HTML")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(data.Encode()))
	if err != nil {
		return boterrors.NewNotificationError("telegram", "send", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		// the request error embeds the URL, which carries the token
		return boterrors.NewNotificationError("telegram", "send", redact(err, t.token))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Description string `json:"description"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)
		return boterrors.NewNotificationError("telegram", "send",
			fmt.Errorf("telegram API returned status %d: %s", resp.StatusCode, body.Description)).
			WithContext("status", resp.StatusCode)
	}

	return nil
}

// SendTestMessage posts a connectivity check showing the effective settings
func (t *TelegramNotifier) SendTestMessage(ctx context.Context, proxyURL string) error {
	text := fmt.Sprintf("🧪 <b>Telegram connectivity test</b>\n\n"+
		"✅ Settings:\n- Bot token: %s...\n- Chat ID: %s\n- Proxy: %s\n\n"+
		"📊 If you can read this, alerts will be delivered here when a signal is detected.",
		tokenPrefix(t.token), escape(t.chatID), escape(displayProxy(proxyURL)))
	return t.send(ctx, text)
}

// displayProxy drops the userinfo so proxy credentials never reach a chat
func displayProxy(proxyURL string) string {
	if proxyURL == "" {
		return "not used"
	}
	u, err := url.Parse(proxyURL)
	if err != nil || u.Host == "" {
		return "configured"
	}
	u.User = nil
	return u.String()
}

func tokenPrefix(token string) string {
	if len(token) > 10 {
		return escape(token[:10])
	}
	return "***"
}

func redact(err error, token string) error {
	msg := err.Error()
	if token == "" || !strings.Contains(msg, token) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(msg, token, "<redacted>"))
}
