package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/trunghai04/webmoi-sub001/internal/dto"
	"github.com/trunghai04/webmoi-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError единственное место, где доменные ошибки превращаются в HTTP-ответ.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	var (
		verr *service.ValidationError
		serr *service.StockError
		terr *service.TransitionError
		perr *service.ProductError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, dto.NewValidationError("validation failed", []dto.FieldError{
			{Field: verr.Field, Message: verr.Message},
		}))
	case errors.As(err, &serr):
		c.JSON(http.StatusConflict, dto.NewInsufficientStockError(serr.Error(), dto.StockInfo{
			ProductID: serr.ProductID.String(),
			Requested: serr.Requested,
			Available: serr.Available,
		}))
	case errors.As(err, &terr):
		c.JSON(http.StatusConflict, dto.NewInvalidTransitionError(terr.Error()))
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("authentication required"))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.NewForbiddenError("operation is not allowed for this role"))
	case errors.Is(err, service.ErrProductUnavailable):
		pid := ""
		if errors.As(err, &perr) {
			pid = perr.ProductID.String()
		}
		c.JSON(http.StatusNotFound, dto.NewProductUnavailableError("product is not available for purchase", pid))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError(err.Error()))
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("Запрос не уложился в таймаут", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusGatewayTimeout, dto.NewTimeoutError("request timed out"))
	default:
		log.Error("Внутренняя ошибка при обработке запроса", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
	}
}

func badRequest(c *gin.Context, field, msg string) {
	c.JSON(http.StatusBadRequest, dto.NewValidationError("validation failed", []dto.FieldError{
		{Field: field, Message: msg},
	}))
}
