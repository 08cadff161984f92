package transaction

import (
	"time"

	"github.com/simp-lee/shopconsole/internal/domain"
	"github.com/simp-lee/shopconsole/internal/listview"
)

const dateLayout = "2006-01-02"

// ListQuery is the query string of GET /api/v1/console/transactions.
type ListQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=Pending Approved Rejected"`
	From     string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1"`
}

// Filter converts q to a domain filter. Dates were validated by binding.
func (q ListQuery) Filter() (domain.TransactionFilter, error) {
	f := domain.TransactionFilter{Status: domain.TransactionStatus(q.Status)}
	var err error
	if q.From != "" {
		if f.From, err = time.Parse(dateLayout, q.From); err != nil {
			return f, err
		}
	}
	if q.To != "" {
		if f.To, err = time.Parse(dateLayout, q.To); err != nil {
			return f, err
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, domain.NewValidationError(map[string]string{"to": "Must be on or after from"})
	}
	return f, nil
}

// SearchRequest is the body of POST .../search.
type SearchRequest struct {
	Query string `json:"query" form:"query" binding:"max=200"`
}

// FilterView is the JSON shape of the active filter.
type FilterView struct {
	Status string `json:"status,omitempty"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
}

// View is the JSON shape of a Screen.
type View struct {
	List   listview.State[domain.Transaction] `json:"list"`
	Filter FilterView                         `json:"filter"`
}

func newFilterView(f domain.TransactionFilter) FilterView {
	v := FilterView{Status: string(f.Status)}
	if !f.From.IsZero() {
		v.From = f.From.Format(dateLayout)
	}
	if !f.To.IsZero() {
		v.To = f.To.Format(dateLayout)
	}
	return v
}

// View snapshots the screen.
func (s *Screen) View() View {
	return View{List: s.List.State(), Filter: newFilterView(s.Filter())}
}
