package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/prisonmarket/internal/domain/errors"
	"github.com/polkiloo/prisonmarket/internal/domain/model"
	"github.com/polkiloo/prisonmarket/internal/server/http/dto"
	"github.com/polkiloo/prisonmarket/internal/usecase"
)

// PaymentHandler exposes hold, confirm and status endpoints.
type PaymentHandler struct {
	facade PaymentFacade
	logger *slog.Logger
}

func NewPaymentHandler(facade PaymentFacade, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{facade: facade, logger: logger}
}

// Hold handles POST /pay-hold/.
func (h *PaymentHandler) Hold(c *gin.Context) {
	var req dto.HoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.PaymentError{Status: "error", ErrorMessage: "invalid request body"})
		return
	}

	res, err := h.facade.Hold(c.Request.Context(), usecase.HoldInput{
		PAN:           req.PAN.String(),
		Expire:        req.Expire.String(),
		Amount:        req.Amount.Text.String(),
		NumericAmount: req.Amount.Number,
		OrderID:       req.OrderID.String(),
		ContactID:     CurrentContactID(c),
	})
	if err != nil {
		h.fail(c, "hold", err)
		return
	}
	c.JSON(http.StatusCreated, dto.HoldResponse{TransactionID: res.TransactionID, Phone: res.Phone})
}

// Confirm handles POST /pay-transaction/.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req dto.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.PaymentError{Status: "error", ErrorMessage: "invalid request body"})
		return
	}

	res, err := h.facade.Confirm(c.Request.Context(), usecase.ConfirmInput{
		TransactionID: req.TransactionID.String(),
		SMSCode:       req.SMSCode.String(),
	})
	if err != nil {
		h.fail(c, "confirm", err)
		return
	}
	c.JSON(http.StatusOK, dto.ConfirmResponse{
		TransactionID: res.TransactionID,
		Status:        string(res.Status),
		Phone:         res.Phone,
		QRCodeURL:     res.QRCodeURL,
	})
}

// CheckStatus handles GET /check-status/:transactionId/ and relays the gateway answer.
func (h *PaymentHandler) CheckStatus(c *gin.Context) {
	res, err := h.facade.CheckStatus(c.Request.Context(), strings.TrimSpace(c.Param("transactionId")))
	if err != nil {
		var rejected *domainErrors.GatewayRejectedError
		if errors.As(err, &rejected) && json.Valid(rejected.Body) {
			c.Data(gatewayStatus(rejected.StatusCode), "application/json", rejected.Body)
			return
		}
		h.fail(c, "check_status", err)
		return
	}
	c.Data(res.StatusCode, "application/json", res.Raw)
}

// Transactions handles GET /api/transactions.
func (h *PaymentHandler) Transactions(c *gin.Context) {
	list, err := h.facade.Transactions(c.Request.Context(), CurrentContactID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response := make([]dto.TransactionResponse, 0, len(list))
	for _, tx := range list {
		response = append(response, toTransactionResponse(tx))
	}
	c.JSON(http.StatusOK, dto.StandardResponse{Status: "success", Message: "Items retrieved", Data: response})
}

// Transaction handles GET /api/transactions/:id.
func (h *PaymentHandler) Transaction(c *gin.Context) {
	id, ok := pathID(c, "transaction")
	if !ok {
		return
	}
	tx, err := h.facade.Transaction(c.Request.Context(), CurrentContactID(c), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StandardResponse{Status: "success", Message: "Item retrieved", Data: toTransactionResponse(*tx)})
}

func toTransactionResponse(tx model.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:            tx.ID,
		User:          tx.ContactID,
		TransactionID: tx.TransactionID,
		PhoneNumber:   tx.Phone,
		Amount:        tx.Amount.StringFixed(2),
		Status:        string(tx.Status),
		CreatedAt:     tx.CreatedAt,
	}
}

func (h *PaymentHandler) fail(c *gin.Context, operation string, err error) {
	var rejected *domainErrors.GatewayRejectedError
	switch {
	case errors.As(err, &rejected):
		c.JSON(gatewayStatus(rejected.StatusCode), dto.PaymentError{ErrorMessage: rejected.Message})
	case errors.Is(err, domainErrors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, dto.PaymentError{Status: "error", ErrorMessage: err.Error()})
	case errors.Is(err, domainErrors.ErrConflict):
		c.JSON(http.StatusConflict, dto.PaymentError{Status: "error", ErrorMessage: err.Error()})
	case errors.Is(err, domainErrors.ErrAuth), errors.Is(err, domainErrors.ErrGatewayUnavailable):
		h.logger.Error("payment gateway unreachable", slog.String("operation", operation), slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, dto.PaymentError{Status: "error", ErrorMessage: unavailableErrorMessage})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.PaymentError{Status: "error", ErrorMessage: genericErrorMessage})
	}
}

// gatewayStatus keeps gateway error codes but never turns a failure into a success code.
func gatewayStatus(code int) int {
	if code < http.StatusBadRequest || code > 599 {
		return http.StatusBadGateway
	}
	return code
}
