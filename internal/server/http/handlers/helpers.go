package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/prisonmarket/internal/domain/errors"
	"github.com/polkiloo/prisonmarket/internal/server/http/middleware"
)

const (
	genericErrorMessage     = "internal server error"
	unavailableErrorMessage = "payment service unavailable"
)

// CurrentContactID extracts the authenticated contact identifier from context.
func CurrentContactID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.ContactIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

// statusFor maps domain errors of the order endpoints to HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrInvalidInput),
		errors.Is(err, domainErrors.ErrLimitExceeded),
		errors.Is(err, domainErrors.ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrContactNotApproved):
		return http.StatusForbidden
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrConflict),
		errors.Is(err, domainErrors.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
