package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tableorder/internal/domain"
)

type paymentRequest struct {
	OrderID int64         `json:"orderId"`
	Method  string        `json:"method"`
	Amount  domain.Amount `json:"amount"`
}

func (h *handlers) paymentList(c *gin.Context) {
	payments, err := h.deps.Payments.ListAll(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPayments(payments))
}

func (h *handlers) paymentsByOrder(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	payments, err := h.deps.Payments.ListPayments(c.Request.Context(), orderID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPayments(payments))
}

func (h *handlers) paymentGet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.deps.Payments.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPayment(*p))
}

func (h *handlers) paymentCreate(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payment body: "+err.Error())
		return
	}
	if !req.Amount.Set {
		badRequest(c, "amount is required")
		return
	}
	p, err := h.deps.Payments.RecordPayment(c.Request.Context(), req.OrderID, req.Method, req.Amount.Cents)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPayment(*p))
}

func (h *handlers) paymentDelete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deps.Payments.DeletePayment(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
