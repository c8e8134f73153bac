package dto

import "time"

// HoldRequest is the body of POST /pay-hold/.
type HoldRequest struct {
	PAN     Text    `json:"pan"`
	Expire  Text    `json:"expire"`
	Amount  Literal `json:"amount"`
	OrderID Text    `json:"orderId"`
}

// HoldResponse is returned after the gateway reserved funds.
type HoldResponse struct {
	TransactionID string `json:"transactionId"`
	Phone         string `json:"phone"`
}

// ConfirmRequest is the body of POST /pay-transaction/.
type ConfirmRequest struct {
	TransactionID Text `json:"transactionId"`
	SMSCode       Text `json:"smsCode"`
}

type ConfirmResponse struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Phone         string `json:"phone"`
	QRCodeURL     string `json:"qrCodeUrl"`
}

// PaymentError is the error shape of the payment endpoints.
type PaymentError struct {
	Status       string `json:"status,omitempty"`
	ErrorMessage string `json:"errorMessage"`
}

// TransactionResponse is one entry of GET /api/transactions.
type TransactionResponse struct {
	ID            int64     `json:"id"`
	User          *int64    `json:"user"`
	TransactionID string    `json:"transaction_id"`
	PhoneNumber   string    `json:"phone_number"`
	Amount        string    `json:"amount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
