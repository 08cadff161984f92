package listview

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/simp-lee/shopconsole/internal/domain"
)

// Fetcher requests one page from the backend.
type Fetcher[T any] func(ctx context.Context, page, pageSize int) (*domain.PagedResult[T], error)

// LoadResult tells the caller what LoadPage did.
type LoadResult int

const (
	// Loaded means a request was issued (successfully or not).
	Loaded LoadResult = iota
	// Reset means the requested page was past the end, the list moved to
	// page 1 and no request was issued.
	Reset
)

// Config configures a Controller.
type Config[T any] struct {
	// Fetch loads a page. Required.
	Fetch Fetcher[T]
	// SearchFields returns the values matched by Search for one item.
	SearchFields func(T) []string
	// PageSize is used when LoadPage is called with a non-positive size.
	PageSize int
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Name labels log records, e.g. "brands".
	Name string
}

// Controller keeps one page of entities in sync with the backend and exposes
// a locally searchable view of it.
//
// Requests are not cancelled when superseded: the store lock is released
// while a fetch is in flight, so the response that arrives last wins.
type Controller[T any] struct {
	store  *Store[T]
	fetch  Fetcher[T]
	fields func(T) []string
	logger *slog.Logger
	name   string
}

// New creates a Controller. It panics if cfg.Fetch is nil.
func New[T any](cfg Config[T]) *Controller[T] {
	if cfg.Fetch == nil {
		panic("listview.New: fetcher must not be nil")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SearchFields == nil {
		cfg.SearchFields = func(T) []string { return nil }
	}
	return &Controller[T]{
		store:  NewStore[T](cfg.PageSize),
		fetch:  cfg.Fetch,
		fields: cfg.SearchFields,
		logger: cfg.Logger,
		name:   cfg.Name,
	}
}

// State returns a snapshot of the list state.
func (c *Controller[T]) State() State[T] {
	return c.store.State()
}

// LoadPage requests page with pageSize and, on success, replaces the remote
// page and resets the buffer from it.
//
// If the last fetched result reports TotalPages > 0 and page lies beyond it,
// the list is moved to page 1 without a request and Reset is returned.
// A response showing that page no longer exists upstream is dropped the same
// way. On failure the error is recorded and the last good data is kept.
func (c *Controller[T]) LoadPage(ctx context.Context, page, pageSize int) (LoadResult, error) {
	res, _, err := c.loadPage(ctx, page, pageSize)
	return res, err
}

// loadPage implements LoadPage and also returns the page count it based an
// out-of-range decision on.
func (c *Controller[T]) loadPage(ctx context.Context, page, pageSize int) (LoadResult, int, error) {
	st := c.store.State()
	if pageSize <= 0 {
		pageSize = st.PageSize
	}
	if page < 1 {
		page = 1
	}

	if st.Remote != nil {
		totalPages := st.Remote.TotalPages
		if pageSize != st.Remote.PageSize {
			totalPages = domain.TotalPages(st.Remote.TotalCount, pageSize)
		}
		if totalPages > 0 && page > totalPages {
			c.store.Dispatch(PageReset[T]{Page: 1})
			c.logger.DebugContext(ctx, "page out of range, reset to first page",
				slog.String("list", c.name),
				slog.Int("page", page),
				slog.Int("total_pages", totalPages),
			)
			return Reset, totalPages, nil
		}
	}

	c.store.Dispatch(FetchStarted[T]{Page: page, PageSize: pageSize})

	result, err := c.fetch(ctx, page, pageSize)
	if err == nil && result == nil {
		err = errors.New("backend returned no page")
	}
	if err != nil {
		fetchErr := domain.NewFetchError(err)
		c.store.Dispatch(FetchFailed[T]{Err: fetchErr})
		c.logger.WarnContext(ctx, "list fetch failed",
			slog.String("list", c.name),
			slog.Int("page", page),
			slog.Any("error", err),
		)
		return Loaded, 0, fetchErr
	}

	// The set shrank below page while the request was built.
	if page > max(result.TotalPages, 1) {
		c.store.Dispatch(FetchDiscarded[T]{Page: 1})
		c.logger.DebugContext(ctx, "page no longer exists, reset to first page",
			slog.String("list", c.name),
			slog.Int("page", page),
			slog.Int("total_pages", result.TotalPages),
		)
		return Reset, result.TotalPages, nil
	}

	c.store.Dispatch(FetchSucceeded[T]{Result: result})
	return Loaded, result.TotalPages, nil
}

// Load loads page and follows a Reset by loading page 1, the way a page change
// re-triggers the fetch.
func (c *Controller[T]) Load(ctx context.Context, page, pageSize int) error {
	res, err := c.LoadPage(ctx, page, pageSize)
	if err != nil {
		return err
	}
	if res == Reset {
		_, err = c.LoadPage(ctx, 1, pageSize)
	}
	return err
}

// TriggerRefresh flips the refresh token and reloads the current page.
//
// When the current page no longer exists, or comes back empty, and it is not
// the first page, the list steps back one page. If the set shrank further it
// lands on the last page that still exists, and on page 1 when that fails too.
func (c *Controller[T]) TriggerRefresh(ctx context.Context) error {
	st := c.store.Dispatch(RefreshToggled[T]{})
	page, size := st.CurrentPage, st.PageSize

	res, totalPages, err := c.loadPage(ctx, page, size)
	if err != nil {
		return err
	}

	var target int
	switch {
	case res == Reset:
		target = max(min(page-1, totalPages), 1)
	case page > 1 && isEmpty(c.store.State().Remote):
		target = page - 1
	default:
		return nil
	}

	res, _, err = c.loadPage(ctx, target, size)
	if err == nil && res == Reset && target > 1 {
		_, _, err = c.loadPage(ctx, 1, size)
	}
	return err
}

// Search replaces the buffer with the remote items whose search fields contain
// query, ignoring case. It never touches the remote page or fetches.
// An empty query restores the full page.
func (c *Controller[T]) Search(query string) State[T] {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return c.store.Dispatch(SearchApplied[T]{})
	}
	return c.store.Dispatch(SearchApplied[T]{
		Query: query,
		Match: func(item T) bool {
			return matchesAny(c.fields(item), needle)
		},
	})
}

// Find returns the item with the given id from the current remote page.
func (c *Controller[T]) Find(id string, idOf func(T) string) (T, bool) {
	st := c.store.State()
	var zero T
	if st.Remote == nil {
		return zero, false
	}
	for _, item := range st.Remote.Items {
		if idOf(item) == id {
			return item, true
		}
	}
	return zero, false
}

func isEmpty[T any](r *domain.PagedResult[T]) bool {
	return r != nil && len(r.Items) == 0
}

func matchesAny(values []string, needle string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}
