package repository

import (
	"context"

	"doctrust-server/config"
	"doctrust-server/internal/model"
	"doctrust-server/internal/util"

	"github.com/jmoiron/sqlx"
)

// AuditRepository : только INSERT и SELECT. Записи не меняются и не удаляются,
// кроме каскада при удалении документа.
type AuditRepository struct {
	*config.Database
}

func NewAuditRepository(database *config.Database) *AuditRepository {
	return &AuditRepository{database}
}

func (r *AuditRepository) Record(ctx context.Context, exec sqlx.ExtContext, entry *model.AuditLogEntry) error {
	query := `
		INSERT INTO audit_log (uuid, action, document_uuid, link_uuid, ip_hash, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := exec.ExecContext(
		ctx,
		query,
		entry.UUID,
		entry.Action,
		entry.DocumentUUID,
		entry.LinkUUID,
		entry.IPHash,
		entry.UserAgent)

	if err != nil {
		return util.LogError("[AuditRepo] не удалось записать событие аудита", err)
	}
	return nil
}

func (r *AuditRepository) ListByDocument(ctx context.Context, exec sqlx.ExtContext, documentUUID string, limit int) ([]model.AuditLogEntry, error) {
	query := `
		SELECT uuid, action, document_uuid, link_uuid, ip_hash, user_agent, created_at
		FROM audit_log
		WHERE document_uuid = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	entries := []model.AuditLogEntry{}
	if err := sqlx.SelectContext(ctx, exec, &entries, query, documentUUID, limit); err != nil {
		return nil, util.LogError("[AuditRepo] не удалось получить журнал аудита", err)
	}
	return entries, nil
}
