package service

import (
	"context"
	"log"
	"time"

	"doctrust-server/config"
	"doctrust-server/internal/apperr"
	"doctrust-server/internal/model"
	"doctrust-server/internal/ports"
	"doctrust-server/internal/security"

	"github.com/google/uuid"
)

type DocumentService struct {
	documentRepository ports.DocumentRepository
	cacheRepository    ports.CacheRepository
	grantRepository    ports.GrantDocumentRepository
	auditRepository    ports.AuditRepository
	storageInterface   ports.S3Storage
	ttl                time.Duration
}

func NewDocumentService(
	documentRepository ports.DocumentRepository,
	cacheRepository ports.CacheRepository,
	grantRepository ports.GrantDocumentRepository,
	auditRepository ports.AuditRepository,
	storageInterface ports.S3Storage,
	ttl time.Duration,
) *DocumentService {
	return &DocumentService{
		documentRepository: documentRepository,
		cacheRepository:    cacheRepository,
		grantRepository:    grantRepository,
		auditRepository:    auditRepository,
		storageInterface:   storageInterface,
		ttl:                ttl,
	}
}

// CreateDocument : создаёт документ, возвращает pre-signed PUT URL для загрузки
func (s *DocumentService) CreateDocument(ctx context.Context, document *model.Document, audit ports.AuditInfo) (string, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return "", apperr.Internal(nil, "database connection не найден в context")
	}

	putURL, err := s.storageInterface.GeneratePresignedPutURL(ctx, document.StoragePath, s.ttl)
	if err != nil {
		return "", apperr.Storage(err, "[DocumentService] не удалось сгенерировать pre-signed PUT URL")
	}

	if err := s.documentRepository.Create(ctx, db, document); err != nil {
		return "", apperr.Storage(err, "[DocumentService] не удалось сохранить документ в БД")
	}

	s.recordAudit(ctx, db, model.AuditDocumentCreated, document.UUID, audit)

	log.Printf("[DocumentService] документ %s успешно создан", document.FilenameOriginal)

	return putURL, nil
}

// GetDocumentByUUID : возвращает документ для авторизованного пользователя
// (владелец или по grants); метаданные кэшируются в Redis
func (s *DocumentService) GetDocumentByUUID(ctx context.Context, documentUUID string) (*model.GetDocumentResult, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, apperr.Internal(nil, "database connection не найден в context")
	}

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil || claims == nil {
		return nil, apperr.Unauthenticated("пользователь не авторизован")
	}

	document, err := s.cacheRepository.GetDocument(ctx, documentUUID)
	if err != nil {
		log.Printf("[DocumentService] ошибка кэширования: %v", err)
	}

	if document == nil {
		document, err = s.documentRepository.GetByUUID(ctx, db, documentUUID)
		if err != nil {
			return nil, apperr.Storage(err, "[DocumentService] не удалось получить документ")
		}
		if document == nil {
			return nil, apperr.NotFound("документ не найден")
		}

		if err := s.cacheRepository.SetDocument(ctx, document); err != nil {
			log.Printf("[DocumentService] ошибка кэширования документа: %v", err)
		}

		log.Printf("[DocumentService] документ %s взят из БД и кэширован в Redis", document.FilenameOriginal)
	} else {
		log.Printf("[DocumentService] документ %s взят из кэша Redis", document.FilenameOriginal)
	}

	if document.OwnerUUID != claims.UserUUID {
		hasAccess, err := s.grantRepository.HasAccess(ctx, db, documentUUID, claims.UserUUID)
		if err != nil {
			return nil, apperr.Storage(err, "[DocumentService] ошибка проверки доступа")
		}
		if hasAccess == false {
			return nil, apperr.Forbidden("доступ запрещён")
		}
	}

	var getURL string
	if document.StoragePath != "" {
		getURL, err = s.storageInterface.GeneratePresignedGetURL(ctx, document.StoragePath, s.ttl)
		if err != nil {
			return nil, apperr.Storage(err, "[DocumentService] не удалось сгенерировать pre-signed GET URL")
		}
	}

	return &model.GetDocumentResult{
		Document: document,
		GetURL:   getURL,
	}, nil
}

// ListDocuments : список документов владельца
func (s *DocumentService) ListDocuments(ctx context.Context, ownerUUID string, limit int) ([]model.Document, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, apperr.Internal(nil, "database connection не найден в context")
	}

	docs, err := s.documentRepository.ListByOwner(ctx, db, ownerUUID, limit)
	if err != nil {
		return nil, apperr.Storage(err, "[DocumentService] не удалось получить список документов")
	}

	return docs, nil
}

// DeleteDocument : удаляет документ вместе со ссылками, сертификатами,
// полями и подписями. Документ с собранными подписями неизменяем и не
// удаляется. Блобы подчищаются из S3 после удаления метаданных.
func (s *DocumentService) DeleteDocument(ctx context.Context, documentUUID string, userUUID string, audit ports.AuditInfo) error {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return apperr.Internal(nil, "database connection не найден в context")
	}

	document, err := s.documentRepository.GetByUUID(ctx, db, documentUUID)
	if err != nil {
		return apperr.Storage(err, "[DocumentService] не удалось получить документ")
	}
	if document == nil {
		return apperr.NotFound("документ не найден")
	}
	if document.OwnerUUID != userUUID {
		return apperr.Forbidden("только владелец может удалить документ")
	}

	hasSignatures, err := s.documentRepository.HasSignatures(ctx, db, documentUUID)
	if err != nil {
		return apperr.Storage(err, "[DocumentService] ошибка проверки подписей")
	}
	if hasSignatures {
		return apperr.Forbidden("документ с собранными подписями неизменяем")
	}

	keys, err := s.documentRepository.Delete(ctx, db, documentUUID, userUUID)
	if err != nil {
		return apperr.Storage(err, "[DocumentService] ошибка удаления документа из БД")
	}

	if err := s.cacheRepository.DeleteDocument(ctx, documentUUID); err != nil {
		log.Printf("[DocumentService] ошибка удаления из кэша: %v", err)
	}

	if err := s.storageInterface.DeleteObjects(ctx, keys); err != nil {
		return apperr.Storage(err, "[DocumentService] ошибка удаления файлов из S3")
	}

	s.recordAudit(ctx, db, model.AuditDocumentDeleted, documentUUID, audit)

	log.Printf("[DocumentService] документ %s успешно удален", document.FilenameOriginal)
	return nil
}

// AddGrant : добавляет пользователя к документу для совместного доступа
// и инвалидирует кэш
func (s *DocumentService) AddGrant(ctx context.Context, documentUUID, ownerUUID, targetUserUUID string) error {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return apperr.Internal(nil, "database connection не найден в context")
	}

	exists, err := s.grantRepository.CheckOwner(ctx, db, documentUUID, ownerUUID)
	if err != nil {
		return apperr.Storage(err, "[DocumentService] ошибка проверки владельца")
	}
	if exists == false {
		return apperr.Forbidden("доступ запрещён: документ не принадлежит владельцу")
	}

	if err := s.grantRepository.AddGrant(ctx, db, documentUUID, targetUserUUID); err != nil {
		return apperr.Storage(err, "[DocumentService] не удалось добавить доступ к документу")
	}

	if err := s.cacheRepository.DeleteDocument(ctx, documentUUID); err != nil {
		log.Printf("[DocumentService] ошибка удаления документа из кэша: %v", err)
	}

	return nil
}

// RemoveGrant : удаляет пользователя из доступа к документу и инвалидирует кэш
func (s *DocumentService) RemoveGrant(ctx context.Context, documentUUID, ownerUUID, targetUserUUID string) error {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return apperr.Internal(nil, "database connection не найден в context")
	}

	exists, err := s.grantRepository.CheckOwner(ctx, db, documentUUID, ownerUUID)
	if err != nil {
		return apperr.Storage(err, "[DocumentService] ошибка проверки владельца")
	}
	if exists == false {
		return apperr.Forbidden("доступ запрещён: документ не принадлежит владельцу")
	}

	if err := s.grantRepository.RemoveGrant(ctx, db, documentUUID, targetUserUUID); err != nil {
		return apperr.Storage(err, "[DocumentService] не удалось удалить доступ")
	}

	if err := s.cacheRepository.DeleteDocument(ctx, documentUUID); err != nil {
		log.Printf("[DocumentService] ошибка удаления документа из кэша: %v", err)
	}

	return nil
}

func (s *DocumentService) recordAudit(ctx context.Context, db *config.Database, action string, documentUUID string, audit ports.AuditInfo) {
	entry := &model.AuditLogEntry{
		UUID:         uuid.New().String(),
		Action:       action,
		DocumentUUID: documentUUID,
		IPHash:       audit.IPHash,
		UserAgent:    audit.UserAgent,
	}
	if err := s.auditRepository.Record(ctx, db, entry); err != nil {
		log.Printf("[DocumentService] ошибка записи аудита: %v", err)
	}
}
