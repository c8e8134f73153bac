package auth

import (
	"go.uber.org/fx"

	"github.com/polkiloo/prisonmarket/internal/config"
	"github.com/polkiloo/prisonmarket/internal/domain/repository"
)

// Module provides contact authentication and shared-secret checks via fx.
var Module = fx.Options(
	fx.Provide(newTokenVerifier),
	fx.Provide(newContactAuthenticator),
	fx.Provide(newStaffVerifier),
	fx.Provide(newWebhookVerifier),
)

type configParams struct {
	fx.In

	Config *config.Config
}

func newTokenVerifier(p configParams) *TokenVerifier {
	return NewTokenVerifier(p.Config.JWTSecret)
}

type authenticatorParams struct {
	fx.In

	Tokens   *TokenVerifier
	Contacts repository.ContactRepository
}

func newContactAuthenticator(p authenticatorParams) *ContactAuthenticator {
	return NewContactAuthenticator(p.Tokens, p.Contacts)
}

func newStaffVerifier(p configParams) *StaffVerifier {
	return NewStaffVerifier(p.Config.StaffToken)
}

func newWebhookVerifier(p configParams) *WebhookVerifier {
	return NewWebhookVerifier(p.Config.TelegramWebhookSecret)
}
