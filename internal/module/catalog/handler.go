package catalog

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopconsole/internal/domain"
	"github.com/simp-lee/shopconsole/internal/form"
	"github.com/simp-lee/shopconsole/internal/listview"
	"github.com/simp-lee/shopconsole/internal/middleware"
	"github.com/simp-lee/shopconsole/internal/pkg"
	"github.com/simp-lee/shopconsole/internal/session"
)

// Handler serves the JSON console API of one entity. Every endpoint answers
// with the full ScreenView of the caller's session.
type Handler[T domain.Entity] struct {
	desc        Descriptor[T]
	screens     *session.Store[*Screen[T]]
	maxPageSize int
}

// NewHandler creates a Handler over screens.
func NewHandler[T domain.Entity](d Descriptor[T], screens *session.Store[*Screen[T]], maxPageSize int) *Handler[T] {
	return &Handler[T]{desc: d, screens: screens, maxPageSize: maxPageSize}
}

func (h *Handler[T]) screen(c *gin.Context) *Screen[T] {
	return h.screens.Get(middleware.GetSessionID(c))
}

// List handles GET /api/v1/console/{entity}.
// page and page_size default to the session's current position.
func (h *Handler[T]) List(c *gin.Context) {
	s := h.screen(c)
	page, size := pageParams(c, s.List.State(), h.maxPageSize)
	if err := s.List.Load(c.Request.Context(), page, size); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, s.View())
}

// Search handles POST /api/v1/console/{entity}/search.
func (h *Handler[T]) Search(c *gin.Context) {
	var req SearchRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	s := h.screen(c)
	s.List.Search(req.Query)
	pkg.Success(c, s.View())
}

// Refresh handles POST /api/v1/console/{entity}/refresh.
func (h *Handler[T]) Refresh(c *gin.Context) {
	s := h.screen(c)
	if err := s.List.TriggerRefresh(c.Request.Context()); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, s.View())
}

// OpenForm handles POST /api/v1/console/{entity}/form/open.
// Edit and view take their seed from the session's current page.
func (h *Handler[T]) OpenForm(c *gin.Context) {
	var req OpenFormRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	mode, _ := form.ParseMode(req.Mode)
	s := h.screen(c)

	var seed *T
	if mode != form.ModeAdd {
		item, ok := s.List.Find(req.ID, idOf[T])
		if !ok {
			pkg.Error(c, domain.ErrNotFound)
			return
		}
		seed = &item
	}
	if _, err := s.Form.Open(mode, seed); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, s.View())
}

// GetForm handles GET /api/v1/console/{entity}/form.
func (h *Handler[T]) GetForm(c *gin.Context) {
	pkg.Success(c, h.screen(c).Form.State())
}

// SubmitForm handles POST /api/v1/console/{entity}/form/submit.
// The body is either the record as JSON or multipart/form-data with the
// record as JSON in "values" and an optional "image" file.
func (h *Handler[T]) SubmitForm(c *gin.Context) {
	values, blob, closeBlob, err := bindSubmission[T](c)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	defer closeBlob()

	s := h.screen(c)
	if _, err := s.Form.Submit(c.Request.Context(), values, blob); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, s.View())
}

// CloseForm handles POST /api/v1/console/{entity}/form/close.
func (h *Handler[T]) CloseForm(c *gin.Context) {
	s := h.screen(c)
	s.Form.Close()
	pkg.Success(c, s.View())
}

// RequestDelete handles POST /api/v1/console/{entity}/delete/request.
func (h *Handler[T]) RequestDelete(c *gin.Context) {
	var req DeleteRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	s := h.screen(c)
	item, ok := s.List.Find(req.ID, idOf[T])
	if !ok {
		pkg.Error(c, domain.ErrNotFound)
		return
	}
	s.Delete.RequestDelete(item)
	pkg.Success(c, s.View())
}

// ConfirmDelete handles POST /api/v1/console/{entity}/delete/confirm.
func (h *Handler[T]) ConfirmDelete(c *gin.Context) {
	s := h.screen(c)
	if err := s.Delete.Confirm(c.Request.Context()); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, s.View())
}

// CancelDelete handles POST /api/v1/console/{entity}/delete/cancel.
func (h *Handler[T]) CancelDelete(c *gin.Context) {
	s := h.screen(c)
	s.Delete.Cancel()
	pkg.Success(c, s.View())
}

// pageParams reads page and page_size, falling back to the list's position.
func pageParams[T any](c *gin.Context, st listview.State[T], maxPageSize int) (int, int) {
	page, size := st.CurrentPage, st.PageSize
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil && v > 0 {
		size = v
	}
	if maxPageSize > 0 && size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func bindSubmission[T any](c *gin.Context) (T, *domain.Blob, func(), error) {
	var values T
	noop := func() {}

	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBindJSON(&values); err != nil {
			return values, nil, noop, domain.NewAppError(domain.CodeValidation, "invalid request body", err)
		}
		return values, nil, noop, nil
	}

	raw := c.PostForm("values")
	if raw == "" {
		return values, nil, noop, domain.NewValidationError(map[string]string{"values": "This field is required"})
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return values, nil, noop, domain.NewAppError(domain.CodeValidation, "invalid values", err)
	}

	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return values, nil, noop, nil
	}
	if err != nil {
		return values, nil, noop, domain.NewAppError(domain.CodeValidation, "invalid image", err)
	}
	return openBlob(values, fh)
}

func openBlob[T any](values T, fh *multipart.FileHeader) (T, *domain.Blob, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return values, nil, func() {}, domain.NewUploadError(err)
	}
	blob := &domain.Blob{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}
	return values, blob, func() { _ = f.Close() }, nil
}
