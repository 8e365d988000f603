package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/scribehub/writing-marketplace/internal/api/metrics"
	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
	"github.com/scribehub/writing-marketplace/internal/infrastructure/notify"
)

const maxWebhookBody = 1 << 20

// WebhookHandler terminates inbound callbacks from Paystack and Telegram.
// Both endpoints are unauthenticated at the HTTP layer; Paystack is
// authenticated by its HMAC signature, Telegram by the secrecy of the
// webhook path.
type WebhookHandler struct {
	payments ports.PaymentService
	users    ports.UserRepository
	telegram notify.TelegramSender
	log      zerolog.Logger
}

func NewWebhookHandler(payments ports.PaymentService, users ports.UserRepository, telegram notify.TelegramSender, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{payments: payments, users: users, telegram: telegram, log: log}
}

// Paystack handles POST /v1/paystack/webhook. The signature is an HMAC-SHA512
// of the raw body; validation must happen before any parsing.
//
// @Summary      Paystack event webhook
// @Tags         payments
// @Accept       json
// @Param        x-paystack-signature  header  string  true  "HMAC-SHA512 of the request body"
// @Success      200
// @Failure      401  {object}  map[string]string
// @Router       /v1/paystack/webhook [post]
func (h *WebhookHandler) Paystack(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	signature := c.Request().Header.Get("x-paystack-signature")
	if err := h.payments.HandleWebhook(c.Request().Context(), body, signature); err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) {
			metrics.WebhookEventsTotal.WithLabelValues("invalid_signature").Inc()
			return err
		}
		metrics.WebhookEventsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.WebhookEventsTotal.WithLabelValues("applied").Inc()
	return c.NoContent(http.StatusOK)
}

// telegramUpdate is the slice of the Bot API update we care about.
type telegramUpdate struct {
	Message struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// Telegram handles POST /v1/telegram/webhook. A writer links their account by
// sending "/start <email>" to the bot; the chat ID is stored for notification
// delivery. Always answers 200 so Telegram does not retry.
//
// @Summary      Telegram bot webhook
// @Tags         notifications
// @Accept       json
// @Success      200
// @Router       /v1/telegram/webhook [post]
func (h *WebhookHandler) Telegram(c echo.Context) error {
	var update telegramUpdate
	if err := c.Bind(&update); err != nil {
		return c.NoContent(http.StatusOK)
	}

	text := strings.TrimSpace(update.Message.Text)
	if !strings.HasPrefix(text, "/start") || update.Message.Chat.ID == 0 {
		return c.NoContent(http.StatusOK)
	}
	chatID := strconv.FormatInt(update.Message.Chat.ID, 10)

	email := strings.TrimSpace(strings.TrimPrefix(text, "/start"))
	if email == "" {
		h.reply(c, chatID, "Send /start followed by your account email to link notifications.")
		return c.NoContent(http.StatusOK)
	}

	ctx := c.Request().Context()
	user, err := h.users.FindByEmail(ctx, email)
	if err != nil {
		h.log.Warn().Str("email", email).Msg("telegram link attempt for unknown email")
		h.reply(c, chatID, "No account found for that email.")
		return c.NoContent(http.StatusOK)
	}

	if err := h.users.SetTelegramChat(ctx, user.ID, chatID); err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("telegram chat link failed")
		return c.NoContent(http.StatusOK)
	}

	h.reply(c, chatID, "Linked. You will now receive notifications here.")
	return c.NoContent(http.StatusOK)
}

func (h *WebhookHandler) reply(c echo.Context, chatID, text string) {
	if h.telegram == nil {
		return
	}
	if err := h.telegram.Send(c.Request().Context(), chatID, text); err != nil {
		h.log.Warn().Err(err).Msg("telegram reply failed")
	}
}
