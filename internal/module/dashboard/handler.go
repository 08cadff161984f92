package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopconsole/internal/middleware"
	"github.com/simp-lee/shopconsole/internal/pkg"
)

// Handler serves the dashboard API and page.
type Handler struct {
	svc *Service
}

// NewHandler creates a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Summary handles GET /api/v1/dashboard.
func (h *Handler) Summary(c *gin.Context) {
	sum, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, sum)
}

// Page renders GET /dashboard. A failed load renders the page with the error.
func (h *Handler) Page(c *gin.Context) {
	sum, err := h.svc.Summary(c.Request.Context())
	data := gin.H{
		"Title":     "Dashboard",
		"Summary":   sum,
		"BaseURL":   "/dashboard",
		"CSRFToken": middleware.GetCSRFToken(c),
	}
	if err != nil {
		data["Error"] = err.Error()
	}
	c.HTML(http.StatusOK, "dashboard/index.html", data)
}
