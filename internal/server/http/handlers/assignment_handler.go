package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quickbites/dispatch/internal/server/http/dto"
)

// AssignmentHandler controls the background assignment engine.
type AssignmentHandler struct {
	control AssignmentControl
}

// NewAssignmentHandler constructs AssignmentHandler.
func NewAssignmentHandler(control AssignmentControl) *AssignmentHandler {
	return &AssignmentHandler{control: control}
}

// Start handles POST /assignment/start. An optional interval restarts the
// sweep loop on the new cadence.
func (h *AssignmentHandler) Start(c *gin.Context) {
	var req dto.StartAssignmentRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.Envelope{Success: false, Error: err.Error()})
			return
		}
	}

	if req.IntervalMs > 0 {
		h.control.Stop()
		h.control.SetInterval(time.Duration(req.IntervalMs) * time.Millisecond)
	}
	h.control.Start()

	c.JSON(http.StatusOK, dto.Envelope{Success: true, Message: "assignment engine running"})
}

// Stop handles POST /assignment/stop.
func (h *AssignmentHandler) Stop(c *gin.Context) {
	h.control.Stop()
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Message: "assignment engine stopped"})
}

// Trigger handles POST /assignment/trigger, running one sweep synchronously.
func (h *AssignmentHandler) Trigger(c *gin.Context) {
	if err := h.control.Sweep(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Message: "sweep completed"})
}
