package transaction

import (
	"context"
	"log/slog"
	"sync"

	"github.com/simp-lee/shopconsole/internal/domain"
	"github.com/simp-lee/shopconsole/internal/listview"
)

// Backend is the transaction endpoint of the upstream API.
type Backend interface {
	ListFiltered(ctx context.Context, f domain.TransactionFilter, page, pageSize int) (*domain.PagedResult[domain.Transaction], error)
	UpdateStatus(ctx context.Context, change domain.StatusChange) error
}

// Config configures a Screen.
type Config struct {
	Backend  Backend
	Audit    domain.AuditRecorder
	Logger   *slog.Logger
	PageSize int
}

// Screen is one session's transaction review list: a server-side filtered
// page plus the approve/reject actions on its Pending rows.
type Screen struct {
	List *listview.Controller[domain.Transaction]

	backend Backend
	audit   domain.AuditRecorder
	logger  *slog.Logger

	mu     sync.Mutex
	filter domain.TransactionFilter
}

// NewScreen creates a Screen. It panics if cfg.Backend is nil.
func NewScreen(cfg Config) *Screen {
	if cfg.Backend == nil {
		panic("transaction.NewScreen: backend must not be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Screen{backend: cfg.Backend, audit: cfg.Audit, logger: cfg.Logger}
	s.List = listview.New(listview.Config[domain.Transaction]{
		Fetch: func(ctx context.Context, page, pageSize int) (*domain.PagedResult[domain.Transaction], error) {
			return cfg.Backend.ListFiltered(ctx, s.Filter(), page, pageSize)
		},
		SearchFields: func(t domain.Transaction) []string {
			return []string{t.ID, t.OrderID, t.CustomerName, t.PaymentMethod}
		},
		PageSize: cfg.PageSize,
		Logger:   cfg.Logger,
		Name:     "transactions",
	})
	return s
}

// Filter returns the active server-side filter.
func (s *Screen) Filter() domain.TransactionFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetFilter replaces the filter and reports whether it changed.
func (s *Screen) SetFilter(f domain.TransactionFilter) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.filter.Status != f.Status || !s.filter.From.Equal(f.From) || !s.filter.To.Equal(f.To)
	s.filter = f
	return changed
}

// Approve moves a Pending transaction to Approved.
func (s *Screen) Approve(ctx context.Context, id string) error {
	return s.transition(ctx, id, domain.TransactionApproved, domain.AuditApprove)
}

// Reject moves a Pending transaction to Rejected.
func (s *Screen) Reject(ctx context.Context, id string) error {
	return s.transition(ctx, id, domain.TransactionRejected, domain.AuditReject)
}

// transition applies next to the row with id on the fetched page. The row
// must be Pending there; the backend decides the rest. On success the whole
// list is re-fetched.
func (s *Screen) transition(ctx context.Context, id string, next domain.TransactionStatus, action string) error {
	tx, ok := s.List.Find(id, func(t domain.Transaction) string { return t.ID })
	if !ok {
		return domain.ErrNotFound
	}
	if !tx.Status.CanTransitionTo(next) {
		return domain.ErrInvalidTransition
	}

	err := s.backend.UpdateStatus(ctx, domain.StatusChange{TransactionID: id, Status: next})
	if err != nil {
		s.logger.WarnContext(ctx, "transaction status change failed",
			slog.String("id", id),
			slog.String("status", string(next)),
			slog.Any("error", err),
		)
		return domain.NewMutationError(action, err)
	}

	if s.audit != nil {
		s.audit.Record(ctx, domain.AuditEntry{
			SessionID: domain.SessionIDFrom(ctx),
			Entity:    "transactions",
			Action:    action,
			TargetID:  id,
			Detail:    string(tx.Status) + " -> " + string(next),
		})
	}
	s.logger.InfoContext(ctx, "transaction status changed",
		slog.String("id", id),
		slog.String("status", string(next)),
	)

	if err := s.List.TriggerRefresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "refresh after status change failed", slog.Any("error", err))
	}
	return nil
}
