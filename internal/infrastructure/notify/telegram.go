package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramBot delivers notifications through the Telegram Bot API sendMessage
// method. Only the bot token is secret; chat IDs come from the /start linking
// flow on the webhook.
type TelegramBot struct {
	token  string
	base   string
	client *http.Client
}

func NewTelegramBot(token string) *TelegramBot {
	return &TelegramBot{
		token:  token,
		base:   telegramAPIBase,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type telegramSendRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (b *TelegramBot) Send(ctx context.Context, chatID, text string) error {
	payload, err := json.Marshal(telegramSendRequest{ChatID: chatID, Text: text})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", b.base, b.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("telegram response: %w", err)
	}

	var out telegramResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("telegram decode: %w", err)
	}
	if !out.OK {
		return fmt.Errorf("telegram sendMessage: %s", out.Description)
	}
	return nil
}
