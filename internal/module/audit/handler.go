package audit

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopconsole/internal/domain"
	"github.com/simp-lee/shopconsole/internal/pkg"
)

// Handler serves the audit log API.
type Handler struct {
	repo domain.AuditRepository
}

// NewHandler creates a Handler.
func NewHandler(repo domain.AuditRepository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /api/v1/audit.
// Query: page, page_size, sort (field:asc|desc), and filters such as
// entity=brands or target_id__like=42.
func (h *Handler) List(c *gin.Context) {
	req := pkg.ParsePageRequest(c)
	result, err := h.repo.List(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}
