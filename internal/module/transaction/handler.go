package transaction

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopconsole/internal/domain"
	"github.com/simp-lee/shopconsole/internal/middleware"
	"github.com/simp-lee/shopconsole/internal/pkg"
	"github.com/simp-lee/shopconsole/internal/session"
)

// Handler serves the transaction review API.
type Handler struct {
	screens     *session.Store[*Screen]
	maxPageSize int
}

// NewHandler creates a Handler over screens.
func NewHandler(screens *session.Store[*Screen], maxPageSize int) *Handler {
	return &Handler{screens: screens, maxPageSize: maxPageSize}
}

func (h *Handler) screen(c *gin.Context) *Screen {
	return h.screens.Get(middleware.GetSessionID(c))
}

// load applies the query's filter and page. A changed filter starts again
// from page 1.
func (h *Handler) load(c *gin.Context, s *Screen, q ListQuery) error {
	f, err := q.Filter()
	if err != nil {
		if domain.IsValidation(err) {
			return err
		}
		return domain.NewAppError(domain.CodeValidation, "invalid date", err)
	}

	st := s.List.State()
	page, size := st.CurrentPage, st.PageSize
	if q.Page > 0 {
		page = q.Page
	}
	if q.PageSize > 0 {
		size = q.PageSize
	}
	if h.maxPageSize > 0 && size > h.maxPageSize {
		size = h.maxPageSize
	}
	if s.SetFilter(f) && q.Page == 0 {
		page = 1
	}
	return s.List.Load(c.Request.Context(), page, size)
}

// List handles GET /api/v1/console/transactions.
// Query: status, from, to (YYYY-MM-DD), page, page_size.
func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		pkg.ValidationError(c, err)
		return
	}
	s := h.screen(c)
	if err := h.load(c, s, q); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, s.View())
}

// Search handles POST /api/v1/console/transactions/search.
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	s := h.screen(c)
	s.List.Search(req.Query)
	pkg.Success(c, s.View())
}

// Refresh handles POST /api/v1/console/transactions/refresh.
func (h *Handler) Refresh(c *gin.Context) {
	s := h.screen(c)
	if err := s.List.TriggerRefresh(c.Request.Context()); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, s.View())
}

// Approve handles POST /api/v1/console/transactions/:id/approve.
func (h *Handler) Approve(c *gin.Context) {
	h.act(c, (*Screen).Approve)
}

// Reject handles POST /api/v1/console/transactions/:id/reject.
func (h *Handler) Reject(c *gin.Context) {
	h.act(c, (*Screen).Reject)
}

func (h *Handler) act(c *gin.Context, fn func(*Screen, context.Context, string) error) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		pkg.Error(c, domain.ErrNotFound)
		return
	}
	s := h.screen(c)
	if err := fn(s, c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, s.View())
}
