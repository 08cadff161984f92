package audit

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/simp-lee/shopconsole/internal/domain"
	"github.com/simp-lee/shopconsole/internal/pkg"
)

// Allowed fields for sorting and filtering in List queries.
var (
	allowedSortFields   = []string{"id", "entity", "action", "created_at"}
	allowedFilterFields = []string{"session_id", "entity", "action", "target_id"}
)

// repository implements domain.AuditRepository using GORM.
type repository struct {
	db *gorm.DB
}

// NewRepository creates an AuditRepository backed by db.
func NewRepository(db *gorm.DB) domain.AuditRepository {
	return &repository{db: db}
}

// Create inserts an audit entry.
func (r *repository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// List returns a paginated, sorted, and filtered list of entries.
func (r *repository) List(ctx context.Context, req domain.PageRequest) (*domain.PagedResult[domain.AuditEntry], error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&domain.AuditEntry{}).
		Scopes(pkg.Filter(req, allowedFilterFields))

	if err := base.Count(&total).Error; err != nil {
		return nil, mapError(err)
	}

	var entries []domain.AuditEntry
	if err := base.Scopes(
		pkg.Paginate(req),
		pkg.Sort(req, allowedSortFields),
	).Find(&entries).Error; err != nil {
		return nil, mapError(err)
	}

	return domain.NewPagedResult(entries, req.Page, req.PageSize, total), nil
}

// mapError converts GORM errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}
