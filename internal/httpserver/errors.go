package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tableorder/internal/domain"
)

const (
	kindNotFound           = "NotFound"
	kindInvalidInput       = "InvalidInput"
	kindOrderNotOpen       = "OrderNotOpen"
	kindProductUnavailable = "ProductUnavailable"
	kindInvalidReference   = "InvalidReference"
	kindInvalidTransition  = "InvalidTransition"
	kindAlreadyExists      = "AlreadyExists"
	kindUnauthorized       = "Unauthorized"
	kindRateLimited        = "RateLimited"
	kindInternal           = "Internal"
)

type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func respondKind(c *gin.Context, status int, kind, message string) {
	c.JSON(status, errorResponse{Kind: kind, Message: message})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, kindNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, kindInvalidInput
	case errors.Is(err, domain.ErrOrderNotOpen):
		return http.StatusConflict, kindOrderNotOpen
	case errors.Is(err, domain.ErrProductUnavailable):
		return http.StatusConflict, kindProductUnavailable
	case errors.Is(err, domain.ErrInvalidReference):
		return http.StatusBadRequest, kindInvalidReference
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, kindInvalidTransition
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, kindAlreadyExists
	}
	return http.StatusInternalServerError, kindInternal
}

// writeError maps a service error onto the error body. Unclassified errors
// are logged and hidden behind a generic message.
func (h *handlers) writeError(c *gin.Context, err error) {
	status, kind := classify(err)
	if kind == kindInternal {
		h.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Error(err))
		respondKind(c, status, kind, "internal error")
		return
	}
	respondKind(c, status, kind, err.Error())
}

func badRequest(c *gin.Context, message string) {
	respondKind(c, http.StatusBadRequest, kindInvalidInput, message)
}

// pathID parses a positive integer path parameter. It writes a 400 and
// returns false when the value is malformed.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}
