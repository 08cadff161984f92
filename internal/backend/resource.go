package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/simp-lee/shopconsole/internal/domain"
)

// Resource is the CRUD endpoint of one entity type, e.g. "/brands".
type Resource[T any] struct {
	client *Client
	path   string
}

// NewResource returns the resource rooted at path on c.
func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{client: c, path: "/" + strings.Trim(path, "/")}
}

// Path returns the resource path.
func (r *Resource[T]) Path() string { return r.path }

// List fetches one page: GET /{entity}?page=n&pageSize=m.
func (r *Resource[T]) List(ctx context.Context, page, pageSize int) (*domain.PagedResult[T], error) {
	return r.ListWith(ctx, page, pageSize, nil)
}

// ListWith is List with extra query parameters.
func (r *Resource[T]) ListWith(ctx context.Context, page, pageSize int, extra url.Values) (*domain.PagedResult[T], error) {
	q := url.Values{}
	for k, v := range extra {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))

	raw, err := r.client.do(ctx, http.MethodGet, r.path, q, nil)
	if err != nil {
		return nil, err
	}
	return decodePage[T](raw, page, pageSize)
}

// Create sends POST /{entity}. When the backend answers without a body the
// submitted item is returned.
func (r *Resource[T]) Create(ctx context.Context, item T) (T, error) {
	raw, err := r.client.do(ctx, http.MethodPost, r.path, nil, item)
	if err != nil {
		var zero T
		return zero, err
	}
	return echo(raw, item), nil
}

// Update sends PUT /{entity}/{id}.
func (r *Resource[T]) Update(ctx context.Context, id string, item T) (T, error) {
	raw, err := r.client.do(ctx, http.MethodPut, r.itemPath(id), nil, item)
	if err != nil {
		var zero T
		return zero, err
	}
	return echo(raw, item), nil
}

// Delete sends DELETE /{entity}/{id}.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.client.do(ctx, http.MethodDelete, r.itemPath(id), nil, nil)
	return err
}

func (r *Resource[T]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

// echo returns the record in a write response, or sent when the body is
// empty or not a record.
func echo[T any](raw []byte, sent T) T {
	item, ok, err := decodeItem[T](raw)
	if err != nil || !ok {
		return sent
	}
	return item
}
