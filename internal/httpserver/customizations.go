package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type customizationRequest struct {
	OrderItemID int64  `json:"orderItemId"`
	Note        string `json:"note"`
}

func (h *handlers) customizationList(c *gin.Context) {
	list, err := h.deps.Cart.ListCustomizations(c.Request.Context(), 0)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomizations(list))
}

func (h *handlers) customizationsByItem(c *gin.Context) {
	itemID, ok := pathID(c, "orderItemId")
	if !ok {
		return
	}
	list, err := h.deps.Cart.ListCustomizations(c.Request.Context(), itemID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomizations(list))
}

func (h *handlers) customizationGet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cz, err := h.deps.Cart.GetCustomization(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomization(*cz))
}

func (h *handlers) customizationCreate(c *gin.Context) {
	var req customizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid customization body: "+err.Error())
		return
	}
	if req.OrderItemID <= 0 {
		badRequest(c, "orderItemId is required")
		return
	}
	cz, err := h.deps.Cart.AddOrUpdateCustomization(c.Request.Context(), req.OrderItemID, 0, req.Note)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCustomization(*cz))
}

func (h *handlers) customizationUpdate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req customizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid customization body: "+err.Error())
		return
	}
	if _, err := h.deps.Cart.AddOrUpdateCustomization(c.Request.Context(), req.OrderItemID, id, req.Note); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) customizationDelete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deps.Cart.RemoveCustomization(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
