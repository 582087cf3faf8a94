package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/domain/shared"
	"github.com/clinicfin/backend/internal/infrastructure/logger"
	"github.com/clinicfin/backend/internal/interfaces/http/dto"
	"github.com/clinicfin/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Accepted sends a 202 response
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// Error sends an error response with the status derived from code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 validation error
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeValidation, message)
}

// HandleError maps err onto a response. DomainErrors keep their code and
// message; deadlines become retryable; anything else is logged and hidden.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var domainErr *shared.DomainError
	switch {
	case errors.As(err, &domainErr):
		h.Error(c, domainErr.Code, domainErr.Message)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		h.Error(c, dto.ErrCodeInternalRetryable, "request did not complete in time")
	default:
		logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
		h.Error(c, dto.ErrCodeInternal, "an unexpected error occurred")
	}
}

// bindMonthPath parses :clinic_id and :month, answering 400 on failure
func (h *BaseHandler) bindMonthPath(c *gin.Context) (uuid.UUID, time.Time, bool) {
	var path dto.MonthPath
	if err := c.ShouldBindUri(&path); err != nil {
		h.BadRequest(c, "clinic_id must be a uuid and month is required")
		return uuid.Nil, time.Time{}, false
	}
	clinicID, err := uuid.Parse(path.ClinicID)
	if err != nil {
		h.BadRequest(c, "clinic_id must be a uuid")
		return uuid.Nil, time.Time{}, false
	}
	month, err := ledger.ParseMonth(path.Month)
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, time.Time{}, false
	}
	return clinicID, month, true
}
