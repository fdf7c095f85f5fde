package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Kariqs/storefront-api/logging"
	"github.com/Kariqs/storefront-api/services"
	"github.com/Kariqs/storefront-api/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgInvalidInput        = "invalid input"
	msgInternalServerError = "Internal server error"
)

func sendJSONResponse(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"message": message})
}

func respondWithError(ctx *gin.Context, statusCode int, message string, err error) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	ctx.JSON(statusCode, gin.H{
		"message": message,
		"error":   errMsg,
	})
}

// statusFor maps service and store errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrProductUnavailable),
		errors.Is(err, services.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, services.ErrPaymentGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError writes err with its mapped status. Internal failures are
// logged and their cause is not echoed to the client.
func respondWithServiceError(ctx *gin.Context, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(ctx.Request.Context()).Error(message, zap.Error(err))
		_ = ctx.Error(err)
		public := errors.New("internal error")
		if errors.Is(err, services.ErrTransactionFailed) {
			public = services.ErrTransactionFailed
		}
		respondWithError(ctx, status, msgInternalServerError, public)
		return
	}

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		ctx.JSON(status, gin.H{"message": message, "error": err.Error(), "fields": verr.Fields})
		return
	}
	respondWithError(ctx, status, message, err)
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondWithError(ctx, http.StatusBadRequest, "Failed to parse "+name, err)
		return 0, false
	}
	return uint(id), true
}
