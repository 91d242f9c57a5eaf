package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tableorder/internal/domain"
	"tableorder/internal/service/cart"
)

type orderItemCreateRequest struct {
	OrderID   int64         `json:"orderId"`
	ProductID int64         `json:"productId"`
	Quantity  int           `json:"quantity"`
	Price     domain.Amount `json:"price"`
	Note      string        `json:"note"`
}

type orderItemUpdateRequest struct {
	OrderID   int64         `json:"orderId"`
	ProductID *int64        `json:"productId"`
	Quantity  *int          `json:"quantity"`
	Price     domain.Amount `json:"price"`
}

func (r orderItemCreateRequest) price() *int64 {
	if !r.Price.Set {
		return nil
	}
	return &r.Price.Cents
}

func (h *handlers) orderItemList(c *gin.Context) {
	items, err := h.deps.Cart.ListAllItems(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderItems(items))
}

func (h *handlers) orderItemGet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.deps.Cart.GetItem(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderItem(*item))
}

func (h *handlers) orderItemsByOrder(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	items, err := h.deps.Cart.ListItems(c.Request.Context(), orderID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderItems(items))
}

func (h *handlers) orderItemCreate(c *gin.Context) {
	var req orderItemCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid order item body: "+err.Error())
		return
	}
	item, err := h.deps.Cart.AddItem(c.Request.Context(), cart.AddItemInput{
		OrderID:    req.OrderID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		PriceCents: req.price(),
		Note:       req.Note,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderItem(*item))
}

func (h *handlers) orderItemUpdate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req orderItemUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid order item body: "+err.Error())
		return
	}
	if req.OrderID == 0 {
		item, err := h.deps.Cart.GetItem(c.Request.Context(), id)
		if err != nil {
			h.writeError(c, err)
			return
		}
		req.OrderID = item.OrderID
	}
	in := cart.UpdateItemInput{
		OrderID:   req.OrderID,
		ItemID:    id,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}
	if req.Price.Set {
		in.PriceCents = &req.Price.Cents
	}
	if err := h.deps.Cart.UpdateItem(c.Request.Context(), in); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// orderItemDelete removes the item from the order it belongs to.
func (h *handlers) orderItemDelete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.deps.Cart.GetItem(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if err := h.deps.Cart.RemoveItem(c.Request.Context(), item.OrderID, id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
