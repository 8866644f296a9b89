package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/quickbites/dispatch/internal/domain/errors"
	"github.com/quickbites/dispatch/internal/server/http/dto"
)

// respondError maps domain errors onto HTTP statuses and writes the failure
// envelope.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, domainErrors.ErrInvalidTransition),
		errors.Is(err, domainErrors.ErrAlreadyTerminal),
		errors.Is(err, domainErrors.ErrValidation),
		errors.Is(err, domainErrors.ErrDriverInactive):
		status = http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrUpstreamUnavailable):
		status = http.StatusBadGateway
	}

	c.JSON(status, dto.Envelope{Success: false, Error: err.Error()})
}
