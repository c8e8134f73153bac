package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/polkiloo/prisonmarket/internal/domain/model"
)

// Bot is the staff chat: new order notices and replies to inline-button presses.
type Bot interface {
	SendOrder(ctx context.Context, order *model.Order) error
	EditOrder(ctx context.Context, chatID string, messageID int64, order *model.Order) error
	SendText(ctx context.Context, chatID, text string) error
}

// Client talks to the Telegram bot API.
type Client struct {
	baseURL    *url.URL
	chatID     string
	httpClient *http.Client
	logger     *slog.Logger
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type replyMarkup struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type sendMessagePayload struct {
	ChatID      string       `json:"chat_id"`
	MessageID   int64        `json:"message_id,omitempty"`
	Text        string       `json:"text"`
	ParseMode   string       `json:"parse_mode,omitempty"`
	ReplyMarkup *replyMarkup `json:"reply_markup,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

var buttonLabels = map[model.OrderStatus]string{
	model.OrderStatusPending:   "Accept",
	model.OrderStatusProcessed: "Mark delivered",
}

// NewClient builds a client for apiURL, the bot base URL including the token path.
func NewClient(apiURL, chatID string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	parsed, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse telegram url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("telegram url must be absolute")
	}
	if chatID == "" {
		return nil, fmt.Errorf("telegram chat id must be provided")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: parsed, chatID: chatID, httpClient: httpClient, logger: logger}, nil
}

// SendOrder posts the order summary to the staff chat with its next-step button.
func (c *Client) SendOrder(ctx context.Context, order *model.Order) error {
	return c.call(ctx, "sendMessage", sendMessagePayload{
		ChatID:      c.chatID,
		Text:        FormatOrder(order),
		ParseMode:   "HTML",
		ReplyMarkup: keyboard(order),
	})
}

// EditOrder rewrites a posted order message after its status changed.
func (c *Client) EditOrder(ctx context.Context, chatID string, messageID int64, order *model.Order) error {
	return c.call(ctx, "editMessageText", sendMessagePayload{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        FormatOrder(order),
		ParseMode:   "HTML",
		ReplyMarkup: keyboard(order),
	})
}

// SendText posts a plain notice to chatID.
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	return c.call(ctx, "sendMessage", sendMessagePayload{ChatID: chatID, Text: text})
}

func (c *Client) call(ctx context.Context, method string, payload sendMessagePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("read telegram response: %w", err)
	}

	var decoded apiResponse
	_ = json.Unmarshal(raw, &decoded)
	if resp.StatusCode != http.StatusOK || !decoded.OK {
		return fmt.Errorf("telegram %s: status %d: %s", method, resp.StatusCode, decoded.Description)
	}
	return nil
}

// keyboard returns the single button that advances order, or an empty keyboard
// once it is delivered.
func keyboard(order *model.Order) *replyMarkup {
	data, ok := model.FulfilmentCallback(*order)
	if !ok {
		return &replyMarkup{InlineKeyboard: [][]inlineButton{}}
	}
	return &replyMarkup{InlineKeyboard: [][]inlineButton{{
		{Text: buttonLabels[order.Status], CallbackData: data},
	}}}
}

// FormatOrder renders the HTML message body shown to staff.
func FormatOrder(order *model.Order) string {
	var b strings.Builder
	b.WriteString("<b>New order!</b>\n")
	fmt.Fprintf(&b, "Order ID: <code>%d</code>\n", order.ID)
	fmt.Fprintf(&b, "Total: <b>%s</b>\n", order.Total.StringFixed(2))
	fmt.Fprintf(&b, "Recipient: <i>%s</i> (ID: <i>%d</i>)\n", html.EscapeString(order.RecipientName), order.RecipientID)
	fmt.Fprintf(&b, "Placed by: <i>%s</i>\n", html.EscapeString(order.PlacerName))
	fmt.Fprintf(&b, "Status: <b>%s</b>\n", html.EscapeString(string(order.Status)))
	b.WriteString("Items:\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "<b>%dx %s</b> (each <b>%s</b>)\n", item.Quantity, html.EscapeString(item.ProductName), item.PriceAtOrder.StringFixed(2))
	}
	return b.String()
}

// LogSender writes bot traffic to the structured log when no bot is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendOrder(_ context.Context, order *model.Order) error {
	s.logger.Info("new order",
		slog.Int64("order_id", order.ID),
		slog.String("total", order.Total.StringFixed(2)),
		slog.String("recipient", order.RecipientName),
		slog.String("placer", order.PlacerName),
		slog.Int("items", len(order.Items)),
	)
	return nil
}

func (s *LogSender) EditOrder(_ context.Context, chatID string, messageID int64, order *model.Order) error {
	s.logger.Info("order message updated",
		slog.String("chat_id", chatID),
		slog.Int64("message_id", messageID),
		slog.Int64("order_id", order.ID),
		slog.String("status", string(order.Status)),
	)
	return nil
}

func (s *LogSender) SendText(_ context.Context, chatID, text string) error {
	s.logger.Info("bot notice", slog.String("chat_id", chatID), slog.String("text", text))
	return nil
}
