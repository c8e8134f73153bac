package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/prisonmarket/internal/domain/errors"
	pkgAuth "github.com/polkiloo/prisonmarket/internal/pkg/auth"
)

const (
	// ContactIDContextKey is a gin context key for the authenticated contact.
	ContactIDContextKey = "contactID"
	// StaffTokenHeader carries the shared staff token.
	StaffTokenHeader = "X-Staff-Token"
	// WebhookSecretHeader carries the secret registered with setWebhook.
	WebhookSecretHeader = "X-Telegram-Bot-Api-Secret-Token"
	authCookieName      = "prisonmarket_token"
)

// ContactAuthenticator resolves a contact token to an approved contact ID.
type ContactAuthenticator interface {
	Authenticate(ctx context.Context, token string) (int64, error)
}

// StaffVerifier accepts or rejects a staff token.
type StaffVerifier interface {
	Verify(token string) bool
}

// WebhookVerifier accepts or rejects the bot webhook secret.
type WebhookVerifier interface {
	Verify(secret string) bool
}

// AuthRequired ensures the caller is an approved contact.
func AuthRequired(contacts ContactAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		contactID, err := contacts.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, pkgAuth.ErrInvalidToken):
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		case errors.Is(err, domainErrors.ErrContactNotApproved):
			c.AbortWithStatus(http.StatusForbidden)
			return
		default:
			_ = c.Error(err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(ContactIDContextKey, contactID)
		c.Next()
	}
}

// StaffRequired guards fulfilment endpoints with the shared staff token.
func StaffRequired(verifier StaffVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !verifier.Verify(c.GetHeader(StaffTokenHeader)) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

// WebhookSecretRequired guards the bot webhook with the secret Telegram echoes back.
func WebhookSecretRequired(verifier WebhookVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !verifier.Verify(c.GetHeader(WebhookSecretHeader)) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}
