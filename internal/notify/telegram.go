// Package notify delivers report text to a Telegram chat via the Bot API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lp-yield-reporter/internal/observability"
)

// MaxMessageLen keeps a margin under Telegram's ~4096 character limit.
const MaxMessageLen = 3800

// Notifier sends reports to Telegram chats. Notifications are enabled only
// when both botToken and a default chatID are configured.
type Notifier struct {
	botToken      string
	defaultChatID string
	httpClient    *http.Client
	enabled       bool
	baseURL       string // overridable for testing; defaults to Telegram API
	maxLen        int
}

// NewNotifier creates a Notifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken:      botToken,
		defaultChatID: chatID,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		enabled:       botToken != "" && chatID != "",
		maxLen:        MaxMessageLen,
	}
}

// Enabled reports whether the notifier is active.
func (n *Notifier) Enabled() bool { return n.enabled }

// Send posts a message to chatID, falling back to the default chat when
// chatID is empty. Messages over the size limit are split on line boundaries
// and delivered as consecutive parts.
func (n *Notifier) Send(ctx context.Context, chatID, text string) error {
	if !n.enabled {
		return nil
	}
	if chatID == "" {
		chatID = n.defaultChatID
	}

	for _, chunk := range SplitMessage(text, n.maxLen) {
		if err := n.sendOne(ctx, chatID, chunk); err != nil {
			observability.RecordNotification("error")
			return err
		}
		observability.RecordNotification("sent")
	}
	return nil
}

func (n *Notifier) sendOne(ctx context.Context, chatID, text string) error {
	endpoint := n.baseURL
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	}

	payload, err := json.Marshal(map[string]any{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	})
	if err != nil {
		return fmt.Errorf("notify: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Description string `json:"description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return fmt.Errorf("notify: telegram %d: %s", resp.StatusCode, body.Description)
	}
	return nil
}

// SplitMessage splits text into chunks of at most maxLen characters,
// breaking on line boundaries. A single line longer than maxLen is the only
// case that gets hard-split mid-line.
func SplitMessage(text string, maxLen int) []string {
	if maxLen <= 0 || len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	var buf string

	for _, line := range strings.Split(text, "\n") {
		candidate := line
		if buf != "" {
			candidate = buf + "\n" + line
		}
		if len(candidate) > maxLen {
			if buf != "" {
				chunks = append(chunks, buf)
			}
			for len(line) > maxLen {
				chunks = append(chunks, line[:maxLen])
				line = line[maxLen:]
			}
			buf = line
		} else {
			buf = candidate
		}
	}
	if buf != "" {
		chunks = append(chunks, buf)
	}
	return chunks
}
