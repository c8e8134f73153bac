package telegram

import (
	"log/slog"
	"net/http"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/prisonmarket/internal/config"
	"github.com/polkiloo/prisonmarket/internal/worker"
)

// Module exposes the staff chat bot to the fx graph, both as the webhook
// replier and as the order notice sender.
var Module = fx.Provide(
	newBot,
	func(b Bot) worker.Sender { return b },
)

type botParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newBot(p botParams) (Bot, error) {
	if p.Config.TelegramAPIURL == "" {
		p.Logger.Warn("telegram api url not configured, bot traffic goes to the log")
		return NewLogSender(p.Logger), nil
	}
	return NewClient(p.Config.TelegramAPIURL, p.Config.TelegramChatID, &http.Client{Timeout: 10 * time.Second}, p.Logger)
}
