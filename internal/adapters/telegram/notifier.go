package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/calummacrae/buswatch/internal/core/domain"
)

// DefaultBaseURL is the Telegram Bot API host.
const DefaultBaseURL = "https://api.telegram.org"

// Config holds the bot credentials and endpoint.
type Config struct {
	BaseURL  string
	BotToken string
	ChatID   string
	Timeout  time.Duration
}

// Notifier delivers proximity alerts through the Telegram Bot API.
type Notifier struct {
	baseURL    string
	botToken   string
	chatID     string
	httpClient *http.Client
}

// NewNotifier creates a new Notifier.
func NewNotifier(cfg Config) *Notifier {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Notifier{
		baseURL:    baseURL,
		botToken:   cfg.BotToken,
		chatID:     cfg.ChatID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Notify sends one sendMessage call for the match. Single attempt, no
// retry: the caller decides what a failed send means.
func (n *Notifier) Notify(ctx context.Context, m domain.Match) error {
	q := url.Values{}
	q.Set("chat_id", n.chatID)
	q.Set("text", formatMessage(m))

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage?%s", n.baseURL, n.botToken, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		// Never wrap the URL here, it carries the bot token.
		return fmt.Errorf("sendMessage: %w", unwrapURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sendMessage: HTTP %d", resp.StatusCode)
	}

	return nil
}

// formatMessage renders the alert text. The asterisks are literal; the
// message is sent without a parse mode.
func formatMessage(m domain.Match) string {
	return fmt.Sprintf("Bus (%s) %s is near **%s**!",
		m.Vehicle.ServiceNumber, m.Vehicle.ServiceDescription, m.Waypoint.Name)
}

// unwrapURLError strips the *url.Error layer so the token-bearing URL
// never reaches a log line.
func unwrapURLError(err error) error {
	if uerr, ok := err.(*url.Error); ok {
		return uerr.Err
	}
	return err
}
