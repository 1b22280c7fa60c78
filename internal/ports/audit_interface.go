package ports

import (
	"context"

	"doctrust-server/internal/model"
	"github.com/jmoiron/sqlx"
)

// AuditInfo : что операция кладёт в журнал о вызывающем.
// IPHash — уже готовый дайджест, сырой IP до сервисов не доходит.
type AuditInfo struct {
	IPHash    string
	UserAgent string
}

// AuditRepository : append-only, никаких update и delete
type AuditRepository interface {
	Record(ctx context.Context, exec sqlx.ExtContext, entry *model.AuditLogEntry) error
	ListByDocument(ctx context.Context, exec sqlx.ExtContext, documentUUID string, limit int) ([]model.AuditLogEntry, error)
}

type AuditService interface {
	ListByDocument(ctx context.Context, documentUUID string, callerUUID string, limit int) ([]model.AuditLogEntry, error)
}
