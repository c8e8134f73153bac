package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/prisonmarket/internal/adapter/gateway"
	"github.com/polkiloo/prisonmarket/internal/adapter/telegram"
	"github.com/polkiloo/prisonmarket/internal/app"
	"github.com/polkiloo/prisonmarket/internal/config"
	"github.com/polkiloo/prisonmarket/internal/domain/repository"
	"github.com/polkiloo/prisonmarket/internal/logger"
	"github.com/polkiloo/prisonmarket/internal/metrics"
	"github.com/polkiloo/prisonmarket/internal/pkg/auth"
	"github.com/polkiloo/prisonmarket/internal/server/http/handlers"
	"github.com/polkiloo/prisonmarket/internal/server/http/middleware"
	"github.com/polkiloo/prisonmarket/internal/server/http/router"
	"github.com/polkiloo/prisonmarket/internal/storage/postgres"
	"github.com/polkiloo/prisonmarket/internal/usecase"
	"github.com/polkiloo/prisonmarket/internal/worker"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		auth.Module,
		postgres.Module,
		gateway.Module,
		telegram.Module,
		usecase.Module,
		fx.Provide(
			func(c gateway.Client) usecase.PaymentGateway { return c },
			func(d *worker.NotificationDispatcher) usecase.OrderNotifier { return d },
			func(r repository.OrderRepository) worker.OrderSource { return r },
			func(a *auth.ContactAuthenticator) app.ContactAuthenticator { return a },
			func(s *postgres.Storage) app.HealthChecker { return s },
			func(f *app.MarketFacade) handlers.MarketFacade { return f },
			func(v *auth.StaffVerifier) middleware.StaffVerifier { return v },
			func(v *auth.WebhookVerifier) middleware.WebhookVerifier { return v },
			func(b telegram.Bot) handlers.BotReplier { return b },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
