package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/simp-lee/shopconsole/internal/domain"
)

// dateLayout is the format of fromDate and toDate.
const dateLayout = "2006-01-02"

// Transactions is the transaction endpoint, including the status workflow.
type Transactions struct {
	*Resource[domain.Transaction]
}

// NewTransactions returns the /transactions endpoint on c.
func NewTransactions(c *Client) *Transactions {
	return &Transactions{Resource: NewResource[domain.Transaction](c, "/transactions")}
}

// ListFiltered fetches a page filtered server-side by status and date range.
func (t *Transactions) ListFiltered(ctx context.Context, f domain.TransactionFilter, page, pageSize int) (*domain.PagedResult[domain.Transaction], error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if !f.From.IsZero() {
		q.Set("fromDate", f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		q.Set("toDate", f.To.Format(dateLayout))
	}
	return t.ListWith(ctx, page, pageSize, q)
}

// UpdateStatus sends PUT /transactions/status.
func (t *Transactions) UpdateStatus(ctx context.Context, change domain.StatusChange) error {
	_, err := t.client.do(ctx, http.MethodPut, t.path+"/status", nil, change)
	return err
}
