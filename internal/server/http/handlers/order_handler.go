package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rmawad/partsync/internal/server/http/dto"
)

// OrderHandler manages order read endpoints and the open/view flow.
type OrderHandler struct {
	facade   OrderFacade
	validity time.Duration
	now      func() time.Time
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade, validity time.Duration) *OrderHandler {
	return &OrderHandler{facade: facade, validity: validity, now: time.Now}
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders := h.facade.Orders()
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	now := h.now()
	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, dto.NewOrderResponse(o, now, h.validity))
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/orders/:number.
func (h *OrderHandler) Get(c *gin.Context) {
	order, ok := h.facade.Order(c.Param("number"))
	if !ok {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "order not found"})
		return
	}

	c.JSON(http.StatusOK, dto.NewOrderResponse(order, h.now(), h.validity))
}

// Open handles POST /api/orders/:number/open. Opening an order marks its
// quotes as viewed and notifies providers whose quotes were seen first.
func (h *OrderHandler) Open(c *gin.Context) {
	if err := h.facade.OpenOrder(c.Request.Context(), c.Param("number")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
