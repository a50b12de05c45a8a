package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/glimmerline/jewelry-api/config"
	"github.com/glimmerline/jewelry-api/models"
)

// Service delivers order notifications to a Telegram chat via the Bot API.
// All delivery paths are best-effort: a missing token, a missing chat id or
// a failed HTTP call yields false, never an error for the caller.
type Service struct {
	token   string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewService(cfg config.TelegramConfig, logger *zap.Logger) *Service {
	host := strings.TrimSuffix(cfg.APIHost, "/")
	return &Service{
		token:   cfg.Token,
		baseURL: fmt.Sprintf("%s/bot%s", host, cfg.Token),
		client:  &http.Client{Timeout: cfg.SendTimeout},
		logger:  logger,
	}
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage posts a message to the given chat. Returns false without
// calling the network when no token or chat id is configured.
func (s *Service) SendMessage(ctx context.Context, chatID int64, text string) bool {
	if s.token == "" || chatID == 0 {
		s.logger.Warn("telegram token or chat id not configured, skipping send")
		return false
	}

	payload, err := json.Marshal(sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		s.logger.Error("failed to encode telegram payload", zap.Error(err))
		return false
	}

	url := s.baseURL + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		s.logger.Error("failed to build telegram request", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("failed to send telegram message", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Error("telegram API returned non-2xx status",
			zap.Int("status", resp.StatusCode),
			zap.Int64("chat_id", chatID))
		return false
	}
	return true
}

// FormatOrderMessage renders the operator-facing order summary. Unmapped
// status or payment-method values fall back to their raw form.
func FormatOrderMessage(order *models.Order) string {
	var b strings.Builder

	b.WriteString("🎉 <b>New order created!</b>\n\n")
	fmt.Fprintf(&b, "📦 <b>Order number:</b> %s\n", order.OrderNumber)
	fmt.Fprintf(&b, "👤 <b>Customer:</b> %s\n", order.CustomerName)
	fmt.Fprintf(&b, "📞 <b>Phone:</b> %s\n", order.CustomerPhone)
	fmt.Fprintf(&b, "📧 <b>Email:</b> %s\n", order.CustomerEmail)
	fmt.Fprintf(&b, "📍 <b>Address:</b> %s\n\n", order.DeliveryAddress)
	fmt.Fprintf(&b, "💰 <b>Total:</b> %s\n", order.TotalAmount.StringFixed(2))
	fmt.Fprintf(&b, "💳 <b>Payment method:</b> %s\n", models.PaymentMethodLabel(order.PaymentMethod))
	fmt.Fprintf(&b, "🔄 <b>Order status:</b> %s\n\n", models.StatusLabel(order.Status))
	b.WriteString("<i>The order is waiting in the admin panel</i>")

	return b.String()
}

// SendOrderNotification formats and delivers the notification for one
// order. Orders without a chat id are skipped.
func (s *Service) SendOrderNotification(ctx context.Context, order *models.Order) bool {
	if order.TelegramChatID == nil {
		s.logger.Warn("order has no telegram chat id", zap.String("order_number", order.OrderNumber))
		return false
	}
	return s.SendMessage(ctx, *order.TelegramChatID, FormatOrderMessage(order))
}
