package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"doctrust-server/config"
	"doctrust-server/internal/apperr"
	"doctrust-server/internal/model"
	"doctrust-server/internal/ports"
	"doctrust-server/internal/util"

	"github.com/google/uuid"
)

type LinkService struct {
	linkRepository      ports.LinkRepository
	documentRepository  ports.DocumentRepository
	signatureRepository ports.SignatureRepository
	auditRepository     ports.AuditRepository
	storageInterface    ports.S3Storage
	tokenLength         int
	presignTTL          time.Duration
}

func NewLinkService(
	linkRepository ports.LinkRepository,
	documentRepository ports.DocumentRepository,
	signatureRepository ports.SignatureRepository,
	auditRepository ports.AuditRepository,
	storageInterface ports.S3Storage,
	tokenLength int,
	presignTTL time.Duration,
) *LinkService {
	return &LinkService{
		linkRepository:      linkRepository,
		documentRepository:  documentRepository,
		signatureRepository: signatureRepository,
		auditRepository:     auditRepository,
		storageInterface:    storageInterface,
		tokenLength:         tokenLength,
		presignTTL:          presignTTL,
	}
}

// IssueLink : выпускает ссылку доступа. Только владелец документа.
func (s *LinkService) IssueLink(ctx context.Context, params ports.IssueLinkParams) (*model.AccessLink, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return nil, apperr.Internal(nil, "database connection не найден в context")
	}

	if params.Scope != model.LinkScopeView && params.Scope != model.LinkScopeDownload {
		return nil, apperr.Validation(fmt.Sprintf("недопустимый scope: %s", params.Scope))
	}
	if params.TTL <= 0 {
		return nil, apperr.Validation("срок действия ссылки должен быть положительным")
	}
	if params.MaxUses != nil && *params.MaxUses <= 0 {
		return nil, apperr.Validation("max_uses должен быть положительным")
	}
	if params.RestrictedEmail != "" && !strings.Contains(params.RestrictedEmail, "@") {
		return nil, apperr.Validation("некорректный email получателя")
	}

	document, err := s.documentRepository.GetByUUID(ctx, db, params.DocumentUUID)
	if err != nil {
		return nil, apperr.Storage(err, "[LinkService] не удалось получить документ")
	}
	if document == nil {
		return nil, apperr.NotFound("документ не найден")
	}
	if document.OwnerUUID != params.CallerUUID {
		return nil, apperr.Forbidden("только владелец может выпускать ссылки")
	}

	token, err := util.GenerateUniqueLinkToken(ctx, db, s.tokenLength)
	if err != nil {
		return nil, apperr.Internal(err, "[LinkService] не удалось сгенерировать токен")
	}

	link := &model.AccessLink{
		UUID:            uuid.New().String(),
		Token:           token,
		DocumentUUID:    params.DocumentUUID,
		Scope:           params.Scope,
		ExpiresAt:       time.Now().Add(params.TTL),
		MaxUses:         params.MaxUses,
		UsedCount:       0,
		RestrictedEmail: strings.ToLower(params.RestrictedEmail),
		CreatedAt:       time.Now(),
	}

	if err := s.linkRepository.Create(ctx, db, link); err != nil {
		return nil, apperr.Storage(err, "[LinkService] не удалось сохранить ссылку")
	}

	s.recordAudit(ctx, db, model.AuditLinkCreated, link.DocumentUUID, &link.UUID, params.Audit)

	log.Printf("[LinkService] ссылка для документа %s выпущена, scope=%s", params.DocumentUUID, params.Scope)
	return link, nil
}

// ResolveLink : резолв токена. Порядок проверок фиксирован и значим для клиента:
// не найдена → отозвана → истекла → исчерпана → чужой email.
func (s *LinkService) ResolveLink(ctx context.Context, token string, callerEmail string, audit ports.AuditInfo) (*model.ResolveLinkResult, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return nil, apperr.Internal(nil, "database connection не найден в context")
	}

	link, err := s.linkRepository.GetByToken(ctx, db, token)
	if err != nil {
		return nil, apperr.Storage(err, "[LinkService] не удалось получить ссылку")
	}
	if link == nil {
		return nil, apperr.NotFound("ссылка не найдена")
	}

	if link.RevokedAt != nil {
		return nil, apperr.LinkRevoked("ссылка отозвана владельцем")
	}
	if !time.Now().Before(link.ExpiresAt) {
		return nil, apperr.LinkExpired("срок действия ссылки истёк")
	}
	if link.MaxUses != nil && link.UsedCount >= *link.MaxUses {
		return nil, apperr.LinkExhausted("лимит использований ссылки исчерпан")
	}
	if link.RestrictedEmail != "" && !strings.EqualFold(link.RestrictedEmail, callerEmail) {
		return nil, apperr.Forbidden("ссылка выпущена для другого получателя")
	}

	document, err := s.documentRepository.GetByUUID(ctx, db, link.DocumentUUID)
	if err != nil {
		return nil, apperr.Storage(err, "[LinkService] не удалось получить документ")
	}
	if document == nil {
		return nil, apperr.NotFound("документ не найден")
	}

	certifiers, err := s.signatureRepository.ListCertifiers(ctx, db, link.DocumentUUID)
	if err != nil {
		return nil, apperr.Storage(err, "[LinkService] не удалось получить список подписантов")
	}

	// read-then-write: счётчик пишется тем значением, которое мы прочитали выше.
	// Два конкурентных резолва у границы лимита могут пройти оба — известная
	// гонка, чинится только условным UPDATE на стороне БД.
	link.UsedCount++
	if err := s.linkRepository.UpdateUsedCount(ctx, db, link.UUID, link.UsedCount); err != nil {
		return nil, apperr.Storage(err, "[LinkService] не удалось обновить счётчик")
	}

	var getURL string
	if document.StoragePath != "" {
		getURL, err = s.storageInterface.GeneratePresignedGetURL(ctx, document.StoragePath, s.presignTTL)
		if err != nil {
			return nil, apperr.Storage(err, "[LinkService] не удалось сгенерировать pre-signed GET URL")
		}
	}

	s.recordAudit(ctx, db, model.AuditLinkResolved, link.DocumentUUID, &link.UUID, audit)

	return &model.ResolveLinkResult{
		Link:       link,
		Document:   document,
		Certifiers: certifiers,
		GetURL:     getURL,
	}, nil
}

// RevokeLink : идемпотентный отзыв ссылки владельцем документа
func (s *LinkService) RevokeLink(ctx context.Context, token string, callerUUID string, audit ports.AuditInfo) error {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return apperr.Internal(nil, "database connection не найден в context")
	}

	link, err := s.linkRepository.GetByToken(ctx, db, token)
	if err != nil {
		return apperr.Storage(err, "[LinkService] не удалось получить ссылку")
	}
	if link == nil {
		return apperr.NotFound("ссылка не найдена")
	}

	document, err := s.documentRepository.GetByUUID(ctx, db, link.DocumentUUID)
	if err != nil {
		return apperr.Storage(err, "[LinkService] не удалось получить документ")
	}
	if document == nil || document.OwnerUUID != callerUUID {
		return apperr.Forbidden("только владелец может отзывать ссылки")
	}

	if err := s.linkRepository.Revoke(ctx, db, token); err != nil {
		return apperr.Storage(err, "[LinkService] не удалось отозвать ссылку")
	}

	s.recordAudit(ctx, db, model.AuditLinkRevoked, link.DocumentUUID, &link.UUID, audit)

	log.Printf("[LinkService] ссылка %s отозвана", link.UUID)
	return nil
}

/// recordAudit : ошибка записи аудита не валит операцию, только логируется
func (s *LinkService) recordAudit(ctx context.Context, db *config.Database, action string, documentUUID string, linkUUID *string, audit ports.AuditInfo) {
	entry := &model.AuditLogEntry{
		UUID:         uuid.New().String(),
		Action:       action,
		DocumentUUID: documentUUID,
		LinkUUID:     linkUUID,
		IPHash:       audit.IPHash,
		UserAgent:    audit.UserAgent,
	}
	if err := s.auditRepository.Record(ctx, db, entry); err != nil {
		log.Printf("[LinkService] ошибка записи аудита: %v", err)
	}
}
