package transaction

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopconsole/internal/domain"
	"github.com/simp-lee/shopconsole/internal/middleware"
)

// Row is one rendered transaction row.
type Row struct {
	domain.Transaction
	Created string
	Pending bool
}

// PageHandler renders the transaction review page.
type PageHandler struct {
	h *Handler
}

// NewPageHandler creates a PageHandler sharing h's session screens.
func NewPageHandler(h *Handler) *PageHandler {
	return &PageHandler{h: h}
}

// ListPage renders the review page.
// GET /console/transactions?status=&from=&to=&page=&page_size=&q=
func (p *PageHandler) ListPage(c *gin.Context) {
	s := p.h.screen(c)

	var q ListQuery
	errMsg := ""
	if err := c.ShouldBindQuery(&q); err != nil {
		c.HTML(http.StatusBadRequest, "errors/400.html", gin.H{"Message": "Invalid filter"})
		return
	}
	// A failed load keeps the last good page; the error is shown above it.
	if err := p.h.load(c, s, q); err != nil {
		errMsg = s.List.State().Error
		if domain.IsValidation(err) {
			errMsg = err.Error()
		}
	}
	if query := strings.TrimSpace(c.Query("q")); query != "" {
		s.List.Search(query)
	}

	st := s.List.State()
	rows := make([]Row, 0, len(st.Buffer))
	for _, t := range st.Buffer {
		r := Row{Transaction: t, Pending: t.Status == domain.TransactionPending}
		if !t.CreatedAt.IsZero() {
			r.Created = t.CreatedAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, r)
	}

	c.HTML(http.StatusOK, "console/transactions.html", gin.H{
		"Title":      "Transactions",
		"Rows":       rows,
		"List":       st,
		"Pagination": st.Remote,
		"Filter":     newFilterView(s.Filter()),
		"Statuses":   []domain.TransactionStatus{domain.TransactionPending, domain.TransactionApproved, domain.TransactionRejected},
		"Query":      st.Query,
		"Error":      errMsg,
		"BaseURL":    "/console/transactions",
		"APIBase":    "/api/v1/console/transactions",
		"CSRFToken":  middleware.GetCSRFToken(c),
	})
}
