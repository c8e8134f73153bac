package dto

import "time"

// OrderItemRequest is one line of an order request.
type OrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// PlaceOrderRequest is the body of POST /api/orders.
type PlaceOrderRequest struct {
	PrisonerID int64              `json:"prisoner_id"`
	Products   []OrderItemRequest `json:"products"`
}

// OrderProductRequest is the body of POST /api/order-product.
type OrderProductRequest struct {
	PrisonerID int64 `json:"prisoner_id"`
	ProductID  int64 `json:"product_id"`
	Quantity   int   `json:"quantity"`
}

// StatusUpdateRequest is the body of PATCH /api/staff/orders/:id/status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type OrderItemResponse struct {
	ID                 int64  `json:"id"`
	ProductID          int64  `json:"product_id"`
	ProductName        string `json:"product_name"`
	Quantity           int    `json:"quantity"`
	PriceAtTimeOfOrder string `json:"price_at_time_of_order"`
}

type OrderResponse struct {
	ID                 int64               `json:"id"`
	PrisonerID         int64               `json:"prisoner_id"`
	PrisonerName       string              `json:"prisoner_name,omitempty"`
	OrderedBy          int64               `json:"ordered_by"`
	OrderedByName      string              `json:"ordered_by_name,omitempty"`
	Status             string              `json:"status"`
	PaymentStatus      string              `json:"payment_status"`
	Total              string              `json:"total"`
	TransactionID      *int64              `json:"transaction,omitempty"`
	DeliveryProofImage *string             `json:"delivery_proof_image,omitempty"`
	Items              []OrderItemResponse `json:"items"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// StandardResponse wraps every order endpoint answer.
type StandardResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}
