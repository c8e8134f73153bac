package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/prisonmarket/internal/domain/errors"
	"github.com/polkiloo/prisonmarket/internal/domain/model"
	"github.com/polkiloo/prisonmarket/internal/metrics"
	"github.com/polkiloo/prisonmarket/internal/pkg/integrity"
)

const maxBodySize = 1 << 20

const (
	defaultHoldError    = "An error occurred"
	defaultConfirmError = "An error occurred during the payment process"
	defaultStatusError  = "An error occurred while checking the transaction status"
)

// Client exposes the three remote payment operations.
type Client interface {
	Hold(ctx context.Context, req model.HoldRequest) (*model.HoldResult, error)
	Confirm(ctx context.Context, transactionID, smsCode string) (*model.ConfirmResult, error)
	CheckStatus(ctx context.Context, transactionID string) (*model.StatusResult, error)
}

type tokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate(ctx context.Context) error
}

// Settings are the merchant identifiers, salts and endpoints of the gateway.
type Settings struct {
	Username   string
	ClientID   string
	MerchantID string
	Currency   string
	SaltHold   string
	SaltPay    string
	HoldURL    string
	PayURL     string
	StatusURL  string
}

// HTTPClient implements Client over the gateway's JSON API.
type HTTPClient struct {
	settings   Settings
	tokens     tokenSource
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Recorder
}

type holdPayload struct {
	PAN        string `json:"pan"`
	Expire     string `json:"expire"`
	MerchantID string `json:"merchantId"`
	// Amount is a json.Number or a string, matching what the payer sent.
	Amount   any    `json:"amount"`
	Currency string `json:"currency"`
	HashKey  string `json:"hashKey"`
}

type confirmPayload struct {
	TransactionID string `json:"transactionId"`
	SMSCode       string `json:"smsCode"`
	HashKey       string `json:"hashKey"`
}

// looseString accepts both JSON strings and numbers.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = looseString(n.String())
	return nil
}

type holdResponse struct {
	Data struct {
		TransactionID looseString `json:"transactionId"`
		Phone         looseString `json:"phone"`
	} `json:"data"`
}

type confirmResponse struct {
	Data struct {
		Phone     looseString `json:"phone"`
		QRCodeURL looseString `json:"qrCodeUrl"`
	} `json:"data"`
}

type statusResponse struct {
	Status looseString `json:"status"`
}

type errorResponse struct {
	ErrorMessage string `json:"errorMessage"`
}

// NewHTTPClient validates gateway endpoints and builds the client.
func NewHTTPClient(settings Settings, tokens tokenSource, httpClient *http.Client, logger *slog.Logger, rec *metrics.Recorder) (*HTTPClient, error) {
	for name, raw := range map[string]string{"hold": settings.HoldURL, "pay": settings.PayURL, "status": settings.StatusURL} {
		parsed, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s url: %w", name, err)
		}
		if !parsed.IsAbs() {
			return nil, fmt.Errorf("%s url must be absolute", name)
		}
	}
	return &HTTPClient{
		settings:   settings,
		tokens:     tokens,
		httpClient: httpClient,
		logger:     logger,
		metrics:    rec,
	}, nil
}

func holdAmount(req model.HoldRequest) any {
	if req.NumericAmount {
		return json.Number(req.Amount)
	}
	return req.Amount
}

// Hold reserves funds on the payer's card.
func (c *HTTPClient) Hold(ctx context.Context, req model.HoldRequest) (*model.HoldResult, error) {
	hash := integrity.ComputeHash(c.settings.Username, req.PAN, c.settings.SaltHold, req.Amount, c.settings.ClientID)
	payload := holdPayload{
		PAN:        req.PAN,
		Expire:     req.Expire,
		MerchantID: c.settings.MerchantID,
		Amount:     holdAmount(req),
		Currency:   c.settings.Currency,
		HashKey:    hash,
	}

	status, body, err := c.do(ctx, "hold", http.MethodPost, c.settings.HoldURL, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, rejected(status, body, defaultHoldError)
	}

	var resp holdResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, malformed("hold", err.Error())
	}
	if resp.Data.TransactionID == "" {
		return nil, malformed("hold", "response is missing transactionId")
	}
	return &model.HoldResult{
		TransactionID: string(resp.Data.TransactionID),
		Phone:         string(resp.Data.Phone),
	}, nil
}

// Confirm finalizes a held payment with the one-time SMS code.
func (c *HTTPClient) Confirm(ctx context.Context, transactionID, smsCode string) (*model.ConfirmResult, error) {
	hash := integrity.ComputeHash(c.settings.ClientID, c.settings.SaltPay, smsCode, transactionID)
	payload := confirmPayload{TransactionID: transactionID, SMSCode: smsCode, HashKey: hash}

	status, body, err := c.do(ctx, "confirm", http.MethodPost, c.settings.PayURL, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, rejected(status, body, defaultConfirmError)
	}

	var resp confirmResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, malformed("confirm", err.Error())
	}
	if resp.Data.QRCodeURL == "" {
		return nil, malformed("confirm", "response is missing qrCodeUrl")
	}
	return &model.ConfirmResult{
		TransactionID: transactionID,
		Status:        model.TransactionStatusCompleted,
		Phone:         string(resp.Data.Phone),
		QRCodeURL:     string(resp.Data.QRCodeURL),
	}, nil
}

// CheckStatus asks the gateway for the current state of a transaction.
func (c *HTTPClient) CheckStatus(ctx context.Context, transactionID string) (*model.StatusResult, error) {
	endpoint := strings.TrimRight(c.settings.StatusURL, "/") + "/" + url.PathEscape(transactionID)

	status, body, err := c.do(ctx, "status", http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, rejected(status, body, defaultStatusError)
	}

	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, malformed("status", err.Error())
	}
	reported := string(resp.Status)
	if reported == "" {
		reported = "Unknown"
	}
	return &model.StatusResult{StatusCode: status, Status: reported, Raw: json.RawMessage(body)}, nil
}

func (c *HTTPClient) do(ctx context.Context, operation, method, endpoint string, payload any) (int, []byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.metrics.ObserveGateway(operation, "auth_error", 0)
		return 0, nil, err
	}

	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveGateway(operation, "unavailable", time.Since(start))
		c.logger.Error("gateway request failed", slog.String("operation", operation), slog.String("error", err.Error()))
		return 0, nil, fmt.Errorf("%w: %s: %v", domainErrors.ErrGatewayUnavailable, operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.metrics.ObserveGateway(operation, "unavailable", time.Since(start))
		return 0, nil, fmt.Errorf("%w: %s: read response: %v", domainErrors.ErrGatewayUnavailable, operation, err)
	}

	outcome := "ok"
	if resp.StatusCode != http.StatusOK {
		outcome = "rejected"
		c.logger.Warn("gateway rejected request",
			slog.String("operation", operation),
			slog.Int("status", resp.StatusCode),
		)
	}
	c.metrics.ObserveGateway(operation, outcome, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.tokens.Invalidate(ctx); err != nil {
			c.logger.Warn("token invalidation failed", slog.String("error", err.Error()))
		}
	}

	return resp.StatusCode, body, nil
}

func rejected(status int, body []byte, fallback string) error {
	message := fallback
	var data errorResponse
	if err := json.Unmarshal(body, &data); err == nil && data.ErrorMessage != "" {
		message = data.ErrorMessage
	}
	return &domainErrors.GatewayRejectedError{StatusCode: status, Message: message, Body: body}
}

func malformed(operation, reason string) error {
	return &domainErrors.GatewayRejectedError{
		StatusCode: http.StatusBadGateway,
		Message:    fmt.Sprintf("unexpected %s response from payment gateway: %s", operation, reason),
	}
}
