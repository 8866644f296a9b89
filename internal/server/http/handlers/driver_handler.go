package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quickbites/dispatch/internal/domain/model"
	"github.com/quickbites/dispatch/internal/server/http/dto"
)

// DriverHandler manages driver registry endpoints.
type DriverHandler struct {
	facade DriverFacade
}

// NewDriverHandler constructs DriverHandler.
func NewDriverHandler(facade DriverFacade) *DriverHandler {
	return &DriverHandler{facade: facade}
}

// Register handles POST /drivers.
func (h *DriverHandler) Register(c *gin.Context) {
	var req dto.RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Envelope{Success: false, Error: err.Error()})
		return
	}

	driver := model.Driver{
		ID:           req.DriverID,
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		VehicleType:  req.VehicleType,
		LicensePlate: req.LicensePlate,
	}

	registered, err := h.facade.RegisterDriver(c.Request.Context(), &driver)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.Envelope{Success: true, Driver: dto.FromDriver(registered)})
}

// Get handles GET /drivers/:driverId.
func (h *DriverHandler) Get(c *gin.Context) {
	driver, err := h.facade.Driver(c.Request.Context(), c.Param("driverId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Driver: dto.FromDriver(driver)})
}

// Availability handles PUT /drivers/:driverId/availability.
func (h *DriverHandler) Availability(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Envelope{Success: false, Error: err.Error()})
		return
	}

	driver, err := h.facade.SetDriverAvailability(c.Request.Context(), c.Param("driverId"), *req.IsAvailable)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Envelope{Success: true, Driver: dto.FromDriver(driver)})
}

// Location handles PUT /drivers/:driverId/location.
func (h *DriverHandler) Location(c *gin.Context) {
	var req dto.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Envelope{Success: false, Error: err.Error()})
		return
	}

	driver, err := h.facade.SetDriverLocation(c.Request.Context(), c.Param("driverId"), req.Latitude, req.Longitude)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Envelope{Success: true, Driver: dto.FromDriver(driver)})
}

// Accept handles POST /drivers/:driverId/accept-order/:orderId. The local
// registry commit wins: a failed order-service sync still returns 200, with a
// message flagging the divergence.
func (h *DriverHandler) Accept(c *gin.Context) {
	driver, syncErr, err := h.facade.AcceptOrder(c.Request.Context(), c.Param("driverId"), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.Envelope{Success: true, Driver: dto.FromDriver(driver)}
	if syncErr != nil {
		resp.Message = "order accepted locally, order service sync pending"
	}
	c.JSON(http.StatusOK, resp)
}

// Reject handles POST /drivers/:driverId/reject-order/:orderId.
func (h *DriverHandler) Reject(c *gin.Context) {
	var req dto.RejectOrderRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.Envelope{Success: false, Error: err.Error()})
			return
		}
	}

	driver, syncErr, err := h.facade.RejectOrder(c.Request.Context(), c.Param("driverId"), c.Param("orderId"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.Envelope{Success: true, Driver: dto.FromDriver(driver)}
	if syncErr != nil {
		resp.Message = "order rejected locally, order service sync pending"
	}
	c.JSON(http.StatusOK, resp)
}

// Complete handles POST /drivers/:driverId/complete-order/:orderId.
func (h *DriverHandler) Complete(c *gin.Context) {
	driver, err := h.facade.CompleteDelivery(c.Request.Context(), c.Param("driverId"), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Driver: dto.FromDriver(driver)})
}
