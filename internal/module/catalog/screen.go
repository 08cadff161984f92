package catalog

import (
	"context"
	"log/slog"

	"github.com/simp-lee/shopconsole/internal/confirm"
	"github.com/simp-lee/shopconsole/internal/domain"
	"github.com/simp-lee/shopconsole/internal/form"
	"github.com/simp-lee/shopconsole/internal/listview"
	"github.com/simp-lee/shopconsole/internal/session"
)

// Backend is the REST resource behind one screen.
type Backend[T any] interface {
	List(ctx context.Context, page, pageSize int) (*domain.PagedResult[T], error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id string, item T) (T, error)
	Delete(ctx context.Context, id string) error
}

// Shared holds the dependencies common to every catalog screen.
type Shared struct {
	Uploader    domain.ImageUploader
	Audit       domain.AuditRecorder
	Validator   *form.Validator
	Logger      *slog.Logger
	Sessions    session.Config
	PageSize    int
	MaxPageSize int
}

// Deps holds the dependencies of one catalog module.
type Deps[T domain.Entity] struct {
	Backend Backend[T]
	Shared
}

// Screen bundles the list, form and delete dialog of one entity for one
// console session.
type Screen[T domain.Entity] struct {
	List   *listview.Controller[T]
	Form   *form.Controller[T]
	Delete *confirm.Dialog[T]
}

// ScreenView is the JSON shape of a Screen.
type ScreenView[T any] struct {
	List   listview.State[T] `json:"list"`
	Form   form.State[T]     `json:"form"`
	Delete confirm.State[T]  `json:"delete"`
}

// View snapshots the three controllers.
func (s *Screen[T]) View() ScreenView[T] {
	return ScreenView[T]{
		List:   s.List.State(),
		Form:   s.Form.State(),
		Delete: s.Delete.State(),
	}
}

// NewScreen wires a list, form and dialog against deps. Form submits and
// confirmed deletes refresh the list.
func NewScreen[T domain.Entity](d Descriptor[T], deps Deps[T]) *Screen[T] {
	list := listview.New(listview.Config[T]{
		Fetch:        deps.Backend.List,
		SearchFields: d.SearchFields,
		PageSize:     deps.PageSize,
		Logger:       deps.Logger,
		Name:         d.Name,
	})
	return &Screen[T]{
		List: list,
		Form: form.New(form.Config[T]{
			Entity:    d.Name,
			Backend:   deps.Backend,
			Refresher: list,
			Image:     d.Image,
			Uploader:  deps.Uploader,
			Validator: deps.Validator,
			Audit:     deps.Audit,
			Logger:    deps.Logger,
		}),
		Delete: confirm.New[T](confirm.Config{
			Entity:    d.Name,
			Deleter:   deps.Backend,
			Refresher: list,
			Audit:     deps.Audit,
			Logger:    deps.Logger,
		}),
	}
}

func idOf[T domain.Entity](item T) string { return item.EntityID() }
