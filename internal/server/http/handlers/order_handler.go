package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/prisonmarket/internal/domain/model"
	"github.com/polkiloo/prisonmarket/internal/server/http/dto"
	"github.com/polkiloo/prisonmarket/internal/usecase"
)

const orderPlacedMessage = "Order placed successfully"

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Place handles POST /api/orders.
func (h *OrderHandler) Place(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]usecase.ItemInput, 0, len(req.Products))
	for _, p := range req.Products {
		items = append(items, usecase.ItemInput{ProductID: p.ProductID, Quantity: p.Quantity})
	}

	order, err := h.facade.PlaceOrder(c.Request.Context(), usecase.PlaceOrderInput{
		RecipientID: req.PrisonerID,
		PlacerID:    CurrentContactID(c),
		Items:       items,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.StandardResponse{Status: "success", Message: orderPlacedMessage, Data: toOrderResponse(*order)})
}

// PlaceSingle handles POST /api/order-product.
func (h *OrderHandler) PlaceSingle(c *gin.Context) {
	var req dto.OrderProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.facade.PlaceSingle(c.Request.Context(), req.PrisonerID, CurrentContactID(c), req.ProductID, req.Quantity)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.StandardResponse{Status: "success", Message: orderPlacedMessage, Data: toOrderResponse(*order)})
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.Orders(c.Request.Context(), CurrentContactID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, dto.StandardResponse{Status: "success", Message: "Items retrieved", Data: response})
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := pathID(c, "order")
	if !ok {
		return
	}
	order, err := h.facade.Order(c.Request.Context(), CurrentContactID(c), orderID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StandardResponse{Status: "success", Message: "Item retrieved", Data: toOrderResponse(*order)})
}

// Items handles GET /api/orders/:id/items.
func (h *OrderHandler) Items(c *gin.Context) {
	orderID, ok := pathID(c, "order")
	if !ok {
		return
	}
	order, err := h.facade.Order(c.Request.Context(), CurrentContactID(c), orderID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StandardResponse{Status: "success", Message: "Items retrieved", Data: toOrderResponse(*order).Items})
}

func respondDomainError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		respondError(c, status, genericErrorMessage)
		return
	}
	respondError(c, status, err.Error())
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, dto.StandardResponse{Status: "error", Message: message, Data: gin.H{}})
}

func pathID(c *gin.Context, kind string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid "+kind+" id")
		return 0, false
	}
	return id, true
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{
			ID:                 item.ID,
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			Quantity:           item.Quantity,
			PriceAtTimeOfOrder: item.PriceAtOrder.StringFixed(2),
		})
	}
	return dto.OrderResponse{
		ID:                 order.ID,
		PrisonerID:         order.RecipientID,
		PrisonerName:       order.RecipientName,
		OrderedBy:          order.PlacerID,
		OrderedByName:      order.PlacerName,
		Status:             string(order.Status),
		PaymentStatus:      string(order.PaymentStatus),
		Total:              order.Total.StringFixed(2),
		TransactionID:      order.TransactionID,
		DeliveryProofImage: order.DeliveryProofImage,
		Items:              items,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
	}
}
