package gateway

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"

	"github.com/polkiloo/prisonmarket/internal/config"
	"github.com/polkiloo/prisonmarket/internal/metrics"
)

// Module exposes the payment gateway client to the fx graph.
var Module = fx.Options(
	fx.Provide(newTokenStore, newTokenCache, newClient),
)

type storeParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newTokenStore(p storeParams) TokenStore {
	if p.Config.RedisAddr == "" {
		return NewMemoryTokenStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     p.Config.RedisAddr,
		Password: p.Config.RedisPassword,
		DB:       p.Config.RedisDB,
	})
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	p.Logger.Info("gateway token cache uses redis", slog.String("addr", p.Config.RedisAddr))
	return NewRedisTokenStore(client)
}

type cacheParams struct {
	fx.In

	Config *config.Config
	Store  TokenStore
	Logger *slog.Logger
}

func newTokenCache(p cacheParams) (*TokenCache, error) {
	g := p.Config.Gateway
	creds := Credentials{
		TokenURL:  g.TokenURL,
		BasicAuth: g.BasicAuth,
		Username:  g.Username,
		Password:  g.Password,
	}
	return NewTokenCache(creds, g.TokenTTL, p.Store, &http.Client{Timeout: g.Timeout}, p.Logger)
}

type clientParams struct {
	fx.In

	Config  *config.Config
	Tokens  *TokenCache
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

func newClient(p clientParams) (Client, error) {
	g := p.Config.Gateway
	settings := Settings{
		Username:   g.Username,
		ClientID:   g.ClientID,
		MerchantID: g.MerchantID,
		Currency:   g.Currency,
		SaltHold:   g.SaltHold,
		SaltPay:    g.SaltPay,
		HoldURL:    g.HoldURL,
		PayURL:     g.PayURL,
		StatusURL:  g.StatusURL,
	}
	return NewHTTPClient(settings, p.Tokens, &http.Client{Timeout: g.Timeout}, p.Logger, p.Metrics)
}
