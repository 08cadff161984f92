package catalog

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopconsole/internal/domain"
	"github.com/simp-lee/shopconsole/internal/middleware"
)

// Row is one rendered table row.
type Row struct {
	ID    string
	Cells []string
}

// PageHandler renders the server-side list page of one entity.
type PageHandler[T domain.Entity] struct {
	h *Handler[T]
}

// NewPageHandler creates a PageHandler sharing h's session screens.
func NewPageHandler[T domain.Entity](h *Handler[T]) *PageHandler[T] {
	return &PageHandler[T]{h: h}
}

// ListPage renders the list page.
// GET /console/{entity}?page=&page_size=&q=
func (p *PageHandler[T]) ListPage(c *gin.Context) {
	s := p.h.screen(c)
	page, size := pageParams(c, s.List.State(), p.h.maxPageSize)

	// A failed load keeps the last good page; the error is shown above it.
	loadErr := s.List.Load(c.Request.Context(), page, size)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		s.List.Search(q)
	}
	st := s.List.State()

	d := p.h.desc
	headers := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		headers[i] = col.Header
	}
	rows := make([]Row, 0, len(st.Buffer))
	for _, item := range st.Buffer {
		cells := make([]string, len(d.Columns))
		for i, col := range d.Columns {
			cells[i] = col.Value(item)
		}
		rows = append(rows, Row{ID: item.EntityID(), Cells: cells})
	}

	errMsg := ""
	if loadErr != nil {
		errMsg = st.Error
	}

	c.HTML(http.StatusOK, "console/list.html", gin.H{
		"Title":      d.Title,
		"Entity":     d.Name,
		"Headers":    headers,
		"Rows":       rows,
		"List":       st,
		"Pagination": st.Remote,
		"Query":      st.Query,
		"HasImage":   d.Image != nil,
		"Error":      errMsg,
		"BaseURL":    "/console/" + d.Name,
		"APIBase":    "/api/v1/console/" + d.Name,
		"CSRFToken":  middleware.GetCSRFToken(c),
	})
}
