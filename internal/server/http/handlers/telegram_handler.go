package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/prisonmarket/internal/domain/errors"
	"github.com/polkiloo/prisonmarket/internal/domain/model"
	"github.com/polkiloo/prisonmarket/internal/server/http/dto"
)

const (
	invalidActionMessage  = "Invalid action."
	unknownOrderMessage   = "Order does not exist."
	staleButtonMessage    = "Order was already moved past this step."
	callbackFailedMessage = "Could not update the order, try again."
)

// BotReplier answers staff in the chat the button was pressed in.
type BotReplier interface {
	EditOrder(ctx context.Context, chatID string, messageID int64, order *model.Order) error
	SendText(ctx context.Context, chatID, text string) error
}

// TelegramHandler turns inline-button presses in the staff chat into status changes.
type TelegramHandler struct {
	facade StaffFacade
	bot    BotReplier
	logger *slog.Logger
}

func NewTelegramHandler(facade StaffFacade, bot BotReplier, logger *slog.Logger) *TelegramHandler {
	return &TelegramHandler{facade: facade, bot: bot, logger: logger}
}

// Webhook handles POST /telegram/webhook. Telegram retries anything but 200,
// so every update is acknowledged and problems are reported in the chat.
func (h *TelegramHandler) Webhook(c *gin.Context) {
	var update dto.TelegramUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		h.logger.Warn("malformed telegram update", slog.String("error", err.Error()))
	} else if query := update.CallbackQuery; query != nil && query.Message != nil {
		h.handleCallback(c.Request.Context(), query)
	}
	c.JSON(http.StatusOK, dto.WebhookAck{OK: true})
}

func (h *TelegramHandler) handleCallback(ctx context.Context, query *dto.CallbackQuery) {
	chatID := strconv.FormatInt(query.Message.Chat.ID, 10)

	orderID, next, err := model.ParseFulfilmentCallback(query.Data)
	if err != nil {
		h.reply(ctx, chatID, invalidActionMessage)
		return
	}

	order, err := h.facade.AdvanceOrderStatus(ctx, orderID, next)
	switch {
	case err == nil:
	case errors.Is(err, domainErrors.ErrNotFound):
		h.reply(ctx, chatID, unknownOrderMessage)
		return
	case errors.Is(err, domainErrors.ErrInvalidTransition):
		h.reply(ctx, chatID, staleButtonMessage)
		return
	default:
		h.logger.Error("telegram status change failed",
			slog.Int64("order_id", orderID),
			slog.String("status", string(next)),
			slog.String("error", err.Error()),
		)
		h.reply(ctx, chatID, callbackFailedMessage)
		return
	}

	if err := h.bot.EditOrder(ctx, chatID, query.Message.MessageID, order); err != nil {
		h.logger.Warn("failed to update order message",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (h *TelegramHandler) reply(ctx context.Context, chatID, text string) {
	if err := h.bot.SendText(ctx, chatID, text); err != nil {
		h.logger.Warn("failed to reply in staff chat", slog.String("error", err.Error()))
	}
}
