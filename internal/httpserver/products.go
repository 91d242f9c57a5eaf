package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tableorder/internal/domain"
	"tableorder/internal/service/catalog"
)

type productUpdateRequest struct {
	Name        string        `json:"name"`
	Price       domain.Amount `json:"price"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
	SpecialTag  string        `json:"specialTag"`
	ImageURL    string        `json:"imageUrl"`
	IsAvailable *bool         `json:"isAvailable"`
}

func (h *handlers) productList(c *gin.Context) {
	products, err := h.deps.Query.Catalog(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProducts(products))
}

func (h *handlers) productGet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.deps.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProduct(*p))
}

// productCreate accepts multipart form fields plus the image under "file".
func (h *handlers) productCreate(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "image file is required")
		return
	}
	price, err := domain.ParseCents(c.PostForm("price"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	available := true
	if raw := strings.TrimSpace(c.PostForm("isAvailable")); raw != "" {
		available, err = strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "isAvailable must be true or false")
			return
		}
	}
	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "image file is unreadable")
		return
	}
	defer file.Close()

	p, err := h.deps.Catalog.Create(c.Request.Context(), catalog.Input{
		Name:        c.PostForm("name"),
		PriceCents:  price,
		Category:    c.PostForm("category"),
		Description: c.PostForm("description"),
		SpecialTag:  c.PostForm("tag"),
		IsAvailable: available,
	}, &catalog.Image{Filename: fileHeader.Filename, Body: file})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProduct(*p))
}

func (h *handlers) productUpdate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req productUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid product body: "+err.Error())
		return
	}
	if !req.Price.Set {
		badRequest(c, "price is required")
		return
	}
	var available bool
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	} else {
		// Omitted availability keeps the stored value.
		current, err := h.deps.Catalog.Get(c.Request.Context(), id)
		if err != nil {
			h.writeError(c, err)
			return
		}
		available = current.IsAvailable
	}
	err := h.deps.Catalog.Update(c.Request.Context(), id, catalog.Input{
		Name:        req.Name,
		PriceCents:  req.Price.Cents,
		Category:    req.Category,
		Description: req.Description,
		SpecialTag:  req.SpecialTag,
		ImageURL:    req.ImageURL,
		IsAvailable: available,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) productDelete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deps.Catalog.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrInvalidReference) {
			respondKind(c, http.StatusConflict, kindInvalidReference, "product is referenced by order items")
			return
		}
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
