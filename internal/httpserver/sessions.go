package httpserver

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

// orderingURL appends the session token to the configured front end URL.
func orderingURL(base, token string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func (h *handlers) sessionStartRedirect(c *gin.Context) {
	order, err := h.deps.Sessions.StartSession(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, orderingURL(h.deps.Settings.OrderingURL, order.SessionToken))
}

func (h *handlers) sessionCreate(c *gin.Context) {
	order, err := h.deps.Sessions.StartSession(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse{
		Token:   order.SessionToken,
		URL:     orderingURL(h.deps.Settings.OrderingURL, order.SessionToken),
		OrderID: order.ID,
	})
}

func (h *handlers) sessionGet(c *gin.Context) {
	order, err := h.deps.Sessions.ResolveSession(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	view, err := h.deps.Query.SessionView(c.Request.Context(), *order)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(*view))
}

// qrStart renders a PNG QR code pointing at /sessions/start for table cards.
func (h *handlers) qrStart(c *gin.Context) {
	target := h.deps.Settings.PublicBaseURL + "/sessions/start"
	png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}
