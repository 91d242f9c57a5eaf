package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tableorder/internal/domain"
)

// orderUpdateRequest mirrors the order shape staff tools send. The total is
// derived from the items, so TotalAmount is accepted and ignored.
type orderUpdateRequest struct {
	Status      string        `json:"status"`
	TotalAmount domain.Amount `json:"totalAmount"`
}

func (h *handlers) orderList(c *gin.Context) {
	views, err := h.deps.Query.Orders(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]orderResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toOrderView(v))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) orderGet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.deps.Query.OrderDetail(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(*view))
}

func (h *handlers) orderCreate(c *gin.Context) {
	order, err := h.deps.Sessions.StartSession(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrder(*order))
}

func (h *handlers) orderUpdate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req orderUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid order body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		badRequest(c, "status is required")
		return
	}
	order, err := h.deps.Sessions.CloseSession(c.Request.Context(), id, req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrder(*order))
}

func (h *handlers) orderDelete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deps.Sessions.Purge(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
