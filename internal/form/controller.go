package form

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/simp-lee/shopconsole/internal/domain"
)

// Mode is the purpose a form was opened for.
type Mode string

const (
	ModeAdd  Mode = "add"
	ModeEdit Mode = "edit"
	ModeView Mode = "view"
)

// ParseMode converts s to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAdd, ModeEdit, ModeView:
		return m, true
	default:
		return "", false
	}
}

// Backend persists entities of type T.
type Backend[T any] interface {
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id string, item T) (T, error)
}

// Refresher reloads the list that owns a form.
type Refresher interface {
	TriggerRefresh(ctx context.Context) error
}

// State is the view state of a modal form.
type State[T any] struct {
	Open         bool              `json:"open"`
	Mode         Mode              `json:"mode,omitempty"`
	Values       T                 `json:"values"`
	Errors       map[string]string `json:"errors,omitempty"`
	Error        string            `json:"error,omitempty"`
	Submitting   bool              `json:"submitting"`
	PendingImage string            `json:"pendingImage,omitempty"`
}

// Config configures a Controller.
type Config[T domain.Entity] struct {
	// Entity names the record type in object keys, audit entries and logs.
	Entity  string
	Backend Backend[T]
	// Refresher is triggered after every successful submit.
	Refresher Refresher
	// Image returns a pointer to the image URL field of an item, or nil when
	// the entity has no image. Leave unset for entities without images.
	Image     func(*T) *string
	Uploader  domain.ImageUploader
	Validator *Validator
	Audit     domain.AuditRecorder
	Logger    *slog.Logger
}

// Controller drives one add/edit/view dialog.
type Controller[T domain.Entity] struct {
	cfg Config[T]

	mu    sync.Mutex
	state State[T]
	seed  *T
	// gen increments on every Open and Close so that a submit finishing after
	// the form was closed or reopened does not write into the new state.
	gen uint64
}

// New creates a Controller. Backend and Refresher are required.
func New[T domain.Entity](cfg Config[T]) *Controller[T] {
	if cfg.Backend == nil {
		panic("form.New: backend must not be nil")
	}
	if cfg.Refresher == nil {
		panic("form.New: refresher must not be nil")
	}
	if cfg.Validator == nil {
		cfg.Validator = NewValidator()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Controller[T]{cfg: cfg}
}

// State returns a copy of the form state.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Open shows the form. Add starts from empty values; Edit and View are
// hydrated from seed, which is required for them.
func (c *Controller[T]) Open(mode Mode, seed *T) (State[T], error) {
	if _, ok := ParseMode(string(mode)); !ok {
		return State[T]{}, domain.NewAppError(domain.CodeValidation, "unknown form mode", nil)
	}
	if mode != ModeAdd && seed == nil {
		return State[T]{}, domain.NewAppError(domain.CodeValidation, "a record is required to "+string(mode), nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.state = State[T]{Open: true, Mode: mode}
	c.seed = nil
	if mode != ModeAdd {
		s := *seed
		c.seed = &s
		c.state.Values = s
	}
	return c.snapshot(), nil
}

// Close hides the form and discards values, errors and the pending image.
// Closing a closed form is a no-op.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Open {
		return
	}
	c.gen++
	c.state = State[T]{}
	c.seed = nil
}

// Submit validates values, uploads blob if present, and creates or updates the
// record. On success the form closes and the owning list is refreshed.
// On failure the form stays open with the error.
func (c *Controller[T]) Submit(ctx context.Context, values T, blob *domain.Blob) (T, error) {
	var zero T

	c.mu.Lock()
	if !c.state.Open {
		c.mu.Unlock()
		return zero, domain.ErrFormClosed
	}
	if c.state.Mode == ModeView {
		c.mu.Unlock()
		return zero, domain.ErrReadOnly
	}
	if c.state.Submitting {
		c.mu.Unlock()
		return zero, domain.NewAppError(domain.CodeValidation, "form is already being submitted", nil)
	}
	mode, gen := c.state.Mode, c.gen
	var id string
	if c.seed != nil {
		id = (*c.seed).EntityID()
	}
	c.state.Values = values
	c.state.Errors = nil
	c.state.Error = ""

	if fields := c.cfg.Validator.Struct(values); len(fields) > 0 {
		c.state.Errors = fields
		c.mu.Unlock()
		return zero, domain.NewValidationError(fields)
	}
	c.state.Submitting = true
	if blob != nil {
		c.state.PendingImage = blob.Filename
	}
	c.mu.Unlock()

	if blob != nil {
		var field *string
		if c.cfg.Image != nil {
			field = c.cfg.Image(&values)
		}
		url, err := c.upload(ctx, blob, field)
		if err != nil {
			c.fail(gen, err, nil)
			return zero, err
		}
		*field = url
	}

	var (
		saved  T
		err    error
		action string
	)
	switch mode {
	case ModeAdd:
		action = domain.AuditCreate
		saved, err = c.cfg.Backend.Create(ctx, values)
	default:
		action = domain.AuditUpdate
		saved, err = c.cfg.Backend.Update(ctx, id, values)
	}
	if err != nil {
		c.cfg.Logger.WarnContext(ctx, "form submit failed",
			slog.String("entity", c.cfg.Entity),
			slog.String("action", action),
			slog.String("id", id),
			slog.Any("error", err),
		)
		mutErr := domain.NewMutationError(action, err)
		// Values keep the stored image URL, if any.
		c.fail(gen, mutErr, &values)
		return zero, mutErr
	}

	c.mu.Lock()
	if c.gen == gen {
		c.gen++
		c.state = State[T]{}
		c.seed = nil
	}
	c.mu.Unlock()

	targetID := saved.EntityID()
	if targetID == "" {
		targetID = id
	}
	if c.cfg.Audit != nil {
		c.cfg.Audit.Record(ctx, domain.AuditEntry{
			SessionID: domain.SessionIDFrom(ctx),
			Entity:    c.cfg.Entity,
			Action:    action,
			TargetID:  targetID,
		})
	}

	if err := c.cfg.Refresher.TriggerRefresh(ctx); err != nil {
		// The list keeps the fetch error in its own state.
		c.cfg.Logger.WarnContext(ctx, "refresh after submit failed",
			slog.String("entity", c.cfg.Entity),
			slog.Any("error", err),
		)
	}
	return saved, nil
}

func (c *Controller[T]) upload(ctx context.Context, blob *domain.Blob, field *string) (string, error) {
	if field == nil {
		return "", domain.NewUploadError(errors.New(c.cfg.Entity + " has no image field"))
	}
	if c.cfg.Uploader == nil {
		return "", domain.NewUploadError(errors.New("image storage is not configured"))
	}
	key := ObjectKey(c.cfg.Entity, blob.Filename)
	url, err := c.cfg.Uploader.Upload(ctx, blob, key)
	if err != nil {
		c.cfg.Logger.WarnContext(ctx, "image upload failed",
			slog.String("entity", c.cfg.Entity),
			slog.String("key", key),
			slog.Any("error", err),
		)
		return "", domain.NewUploadError(err)
	}
	return url, nil
}

// fail records err on the form if it is still the one the submit started on.
func (c *Controller[T]) fail(gen uint64, err error, values *T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.state.Submitting = false
	c.state.PendingImage = ""
	c.state.Error = err.Error()
	if values != nil {
		c.state.Values = *values
	}
}

func (c *Controller[T]) snapshot() State[T] {
	st := c.state
	if c.state.Errors != nil {
		st.Errors = make(map[string]string, len(c.state.Errors))
		for k, v := range c.state.Errors {
			st.Errors[k] = v
		}
	}
	return st
}

// ObjectKey returns the storage key for an uploaded image of entity:
// "<entity>/<uuid><ext>".
func ObjectKey(entity, filename string) string {
	return entity + "/" + uuid.NewString() + strings.ToLower(path.Ext(filename))
}
