package confirm

import (
	"context"
	"log/slog"
	"sync"

	"github.com/simp-lee/shopconsole/internal/domain"
)

// Deleter removes a record by id.
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// Refresher reloads the list the dialog belongs to.
type Refresher interface {
	TriggerRefresh(ctx context.Context) error
}

// State is the view state of a delete confirmation.
type State[T any] struct {
	Open   bool `json:"open"`
	Target *T   `json:"target,omitempty"`
}

// Config configures a Dialog.
type Config struct {
	Entity    string
	Deleter   Deleter
	Refresher Refresher
	Audit     domain.AuditRecorder
	Logger    *slog.Logger
}

// Dialog is a yes/no gate in front of a delete.
type Dialog[T domain.Entity] struct {
	cfg Config

	mu     sync.Mutex
	target *T
}

// New creates a Dialog. Deleter and Refresher are required.
func New[T domain.Entity](cfg Config) *Dialog[T] {
	if cfg.Deleter == nil || cfg.Refresher == nil {
		panic("confirm.New: deleter and refresher must not be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Dialog[T]{cfg: cfg}
}

// State returns the current dialog state.
func (d *Dialog[T]) State() State[T] {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshot()
}

// RequestDelete opens the dialog for target, replacing any earlier target.
func (d *Dialog[T]) RequestDelete(target T) State[T] {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.target = &target
	return d.snapshot()
}

// Cancel closes the dialog without deleting.
func (d *Dialog[T]) Cancel() {
	d.mu.Lock()
	d.target = nil
	d.mu.Unlock()
}

// Confirm deletes the target, closes the dialog and refreshes the list once.
// The dialog closes whether or not the delete succeeds; a failed delete is
// returned as a mutation error and nothing is refreshed.
func (d *Dialog[T]) Confirm(ctx context.Context) error {
	d.mu.Lock()
	target := d.target
	d.target = nil
	d.mu.Unlock()

	if target == nil {
		return domain.ErrNoDeleteTarget
	}
	id := (*target).EntityID()

	if err := d.cfg.Deleter.Delete(ctx, id); err != nil {
		d.cfg.Logger.WarnContext(ctx, "delete failed",
			slog.String("entity", d.cfg.Entity),
			slog.String("id", id),
			slog.Any("error", err),
		)
		return domain.NewMutationError(domain.AuditDelete, err)
	}

	if d.cfg.Audit != nil {
		d.cfg.Audit.Record(ctx, domain.AuditEntry{
			SessionID: domain.SessionIDFrom(ctx),
			Entity:    d.cfg.Entity,
			Action:    domain.AuditDelete,
			TargetID:  id,
		})
	}

	if err := d.cfg.Refresher.TriggerRefresh(ctx); err != nil {
		d.cfg.Logger.WarnContext(ctx, "refresh after delete failed",
			slog.String("entity", d.cfg.Entity),
			slog.Any("error", err),
		)
	}
	return nil
}

func (d *Dialog[T]) snapshot() State[T] {
	if d.target == nil {
		return State[T]{}
	}
	t := *d.target
	return State[T]{Open: true, Target: &t}
}
