package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quickbites/dispatch/internal/domain/model"
	"github.com/quickbites/dispatch/internal/domain/repository"
	"github.com/quickbites/dispatch/internal/server/http/dto"
)

// OrderHandler manages order lifecycle endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Place handles POST /orders.
func (h *OrderHandler) Place(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Envelope{Success: false, Error: err.Error()})
		return
	}

	order := model.Order{
		ID:                 req.OrderID,
		RestaurantID:       req.RestaurantID,
		RestaurantName:     req.RestaurantName,
		RestaurantLocation: req.RestaurantLocation,
		Customer:           req.Customer,
		Items:              req.Items,
		TotalAmount:        req.TotalAmount,
		PaymentMethod:      req.PaymentMethod,
	}

	placed, err := h.facade.PlaceOrder(c.Request.Context(), &order)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.Envelope{Success: true, Order: dto.FromOrder(placed)})
}

// Get handles GET /orders/:orderId.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Order: dto.FromOrder(order)})
}

// ReadyForPickup handles GET /orders/ready-for-pickup.
func (h *OrderHandler) ReadyForPickup(c *gin.Context) {
	orders, err := h.facade.ReadyForPickupOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	payload := make([]dto.OrderPayload, 0, len(orders))
	for i := range orders {
		payload = append(payload, dto.FromOrder(&orders[i]))
	}

	c.JSON(http.StatusOK, dto.ReadyForPickupResponse{Success: true, Count: len(payload), Orders: payload})
}

// UpdateStatus handles PUT /orders/update-status/:orderId.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Envelope{Success: false, Error: err.Error()})
		return
	}

	order, err := h.facade.UpdateOrderStatus(c.Request.Context(), c.Param("orderId"), model.OrderStatus(req.NewStatus))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Envelope{Success: true, Order: dto.FromOrder(order)})
}

// Cancel handles PUT /orders/cancel/:orderId.
func (h *OrderHandler) Cancel(c *gin.Context) {
	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Envelope{Success: false, Error: err.Error()})
		return
	}

	order, err := h.facade.CancelOrder(c.Request.Context(), c.Param("orderId"), model.Cancellation{
		Reason:         req.Reason,
		CancelledBy:    req.CancelledBy,
		AdditionalInfo: req.AdditionalInfo,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Envelope{Success: true, Order: dto.FromOrder(order)})
}

// DriverAssignment handles PUT /orders/:orderId/driver-assignment.
func (h *OrderHandler) DriverAssignment(c *gin.Context) {
	var req dto.DriverAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Envelope{Success: false, Error: err.Error()})
		return
	}

	update := repository.AssignmentUpdate{
		DriverID:     req.DriverID,
		Status:       model.AssignmentStatus(req.AssignmentStatus),
		HistoryEntry: req.AssignmentHistoryUpdate,
		DriverInfo:   req.DriverInfo,
	}

	order, err := h.facade.ApplyAssignment(c.Request.Context(), c.Param("orderId"), update)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Envelope{Success: true, Order: dto.FromOrder(order)})
}

// DriverLocation handles PUT /orders/:orderId/driver-location.
func (h *OrderHandler) DriverLocation(c *gin.Context) {
	var req dto.DriverLocationPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Envelope{Success: false, Error: err.Error()})
		return
	}

	order, err := h.facade.ApplyDriverLocation(c.Request.Context(), c.Param("orderId"), req.Latitude, req.Longitude)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Envelope{Success: true, Order: dto.FromOrder(order)})
}
