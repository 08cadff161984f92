package domain

import (
	"context"
)

// Audit actions.
const (
	AuditCreate  = "create"
	AuditUpdate  = "update"
	AuditDelete  = "delete"
	AuditApprove = "approve"
	AuditReject  = "reject"
)

// AuditEntry records one successful mutation performed through the console.
type AuditEntry struct {
	BaseModel
	SessionID string `gorm:"size:64;index" json:"session_id"`
	Entity    string `gorm:"size:64;index;not null" json:"entity"`
	Action    string `gorm:"size:32;index;not null" json:"action"`
	TargetID  string `gorm:"size:128" json:"target_id"`
	Detail    string `gorm:"size:1024" json:"detail"`
}

// AuditRepository defines the data access interface for audit entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *AuditEntry) error
	List(ctx context.Context, req PageRequest) (*PagedResult[AuditEntry], error)
}

// AuditRecorder records console mutations. Implementations must not fail the
// mutation they describe; recording errors are logged and dropped.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type (
	sessionKey   struct{}
	requestIDKey struct{}
)

// WithSessionID stores the console session id in ctx.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionIDFrom returns the console session id stored in ctx, or "".
func SessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// WithRequestID stores the request id in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id stored in ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
