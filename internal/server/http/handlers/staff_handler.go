package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/prisonmarket/internal/domain/model"
	"github.com/polkiloo/prisonmarket/internal/server/http/dto"
)

// StaffHandler serves fulfilment staff tools.
type StaffHandler struct {
	facade StaffFacade
}

func NewStaffHandler(facade StaffFacade) *StaffHandler {
	return &StaffHandler{facade: facade}
}

// AdvanceStatus handles PATCH /api/staff/orders/:id/status.
func (h *StaffHandler) AdvanceStatus(c *gin.Context) {
	orderID, ok := pathID(c, "order")
	if !ok {
		return
	}
	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		respondError(c, http.StatusBadRequest, "status is required")
		return
	}

	order, err := h.facade.AdvanceOrderStatus(c.Request.Context(), orderID, model.OrderStatus(req.Status))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StandardResponse{Status: "success", Message: "Order status updated", Data: toOrderResponse(*order)})
}
