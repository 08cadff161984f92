package audit

import (
	"context"
	"log/slog"

	"github.com/simp-lee/shopconsole/internal/domain"
)

// Recorder writes audit entries to a repository. A failed write is logged and
// never reaches the mutation that produced it.
type Recorder struct {
	repo   domain.AuditRepository
	logger *slog.Logger
}

var _ domain.AuditRecorder = (*Recorder)(nil)

// NewRecorder creates a Recorder.
func NewRecorder(repo domain.AuditRepository, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{repo: repo, logger: logger}
}

// Record stores entry.
func (r *Recorder) Record(ctx context.Context, entry domain.AuditEntry) {
	// Entries are written even when the request was cancelled.
	ctx = context.WithoutCancel(ctx)
	if err := r.repo.Create(ctx, &entry); err != nil {
		r.logger.ErrorContext(ctx, "audit write failed",
			slog.String("entity", entry.Entity),
			slog.String("action", entry.Action),
			slog.String("target_id", entry.TargetID),
			slog.Any("error", err),
		)
		return
	}
	r.logger.InfoContext(ctx, "console mutation",
		slog.String("entity", entry.Entity),
		slog.String("action", entry.Action),
		slog.String("target_id", entry.TargetID),
	)
}
