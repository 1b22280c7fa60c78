package service

import (
	"context"

	"doctrust-server/config"
	"doctrust-server/internal/apperr"
	"doctrust-server/internal/model"
	"doctrust-server/internal/ports"
)

type AuditService struct {
	auditRepository ports.AuditRepository
	grantRepository ports.GrantDocumentRepository
}

func NewAuditService(auditRepository ports.AuditRepository, grantRepository ports.GrantDocumentRepository) *AuditService {
	return &AuditService{
		auditRepository: auditRepository,
		grantRepository: grantRepository,
	}
}

// ListByDocument : журнал действий над документом, только для владельца
func (s *AuditService) ListByDocument(ctx context.Context, documentUUID string, callerUUID string, limit int) ([]model.AuditLogEntry, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return nil, apperr.Internal(nil, "database connection не найден в context")
	}

	isOwner, err := s.grantRepository.CheckOwner(ctx, db, documentUUID, callerUUID)
	if err != nil {
		return nil, apperr.Storage(err, "[AuditService] ошибка проверки владельца")
	}
	if isOwner == false {
		return nil, apperr.Forbidden("журнал доступен только владельцу документа")
	}

	entries, err := s.auditRepository.ListByDocument(ctx, db, documentUUID, limit)
	if err != nil {
		return nil, apperr.Storage(err, "[AuditService] не удалось получить журнал")
	}

	return entries, nil
}
