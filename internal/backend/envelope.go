package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/simp-lee/shopconsole/internal/domain"
)

// pageData is the union of the page shapes the backend emits.
type pageData[T any] struct {
	Results     []T    `json:"results"`
	Items       []T    `json:"items"`
	RowCount    *int64 `json:"rowCount"`
	TotalCount  *int64 `json:"totalCount"`
	PageCount   *int   `json:"pageCount"`
	TotalPages  *int   `json:"totalPages"`
	PageNumber  *int   `json:"pageNumber"`
	CurrentPage *int   `json:"currentPage"`
	PageSize    *int   `json:"pageSize"`
}

// decodePage normalizes a list response into a PagedResult. It accepts
// {data:{...}}, a bare page object or a bare array. page and pageSize are the
// requested values, used for anything the response leaves out.
func decodePage[T any](raw []byte, page, pageSize int) (*domain.PagedResult[T], error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("empty list response")
	}

	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("failed to decode list: %w", err)
		}
		return domain.NewPagedResult(items, 1, max(len(items), 1), int64(len(items))), nil
	}

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	body := raw
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		body = env.Data
	}
	if body[0] == '[' {
		return decodePage[T](body, page, pageSize)
	}

	var d pageData[T]
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}

	items := d.Results
	if items == nil {
		items = d.Items
	}
	if p := firstInt(d.PageNumber, d.CurrentPage); p > 0 {
		page = p
	}
	if s := firstInt(d.PageSize); s > 0 {
		pageSize = s
	}

	var total int64
	switch {
	case d.RowCount != nil:
		total = *d.RowCount
	case d.TotalCount != nil:
		total = *d.TotalCount
	default:
		// Only a page count: assume every earlier page is full.
		if pages := firstInt(d.PageCount, d.TotalPages); pages > 0 && pageSize > 0 {
			total = int64((min(page, pages)-1)*pageSize + len(items))
			if page < pages {
				total = int64(pages * pageSize)
			}
		}
	}
	return domain.NewPagedResult(items, page, pageSize, total), nil
}

// decodeItem decodes a single record from {data: T} or a bare T. An empty
// body yields ok == false.
func decodeItem[T any](raw []byte) (item T, ok bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return item, false, nil
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	body := raw
	if raw[0] == '{' && json.Unmarshal(raw, &env) == nil && len(env.Data) > 0 {
		if bytes.Equal(env.Data, []byte("null")) {
			return item, false, nil
		}
		body = env.Data
	}
	if err := json.Unmarshal(body, &item); err != nil {
		return item, false, fmt.Errorf("failed to decode record: %w", err)
	}
	return item, true, nil
}

func firstInt(vals ...*int) int {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}
