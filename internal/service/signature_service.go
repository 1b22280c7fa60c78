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
	"doctrust-server/internal/pdfrender"
	"doctrust-server/internal/ports"

	"github.com/google/uuid"
)

// Подписи рисуются полупрозрачными, чтобы визуально отличаться
// от криптографической подписи, которой здесь нет
const signatureAlpha = 0.95

const composeDisclaimer = "Visual rendering of collected signatures. Not a cryptographic signature."

type SignatureService struct {
	signatureRepository ports.SignatureRepository
	documentRepository  ports.DocumentRepository
	grantRepository     ports.GrantDocumentRepository
	auditRepository     ports.AuditRepository
	storageInterface    ports.S3Storage
	fetcher             ports.BlobFetcher
	fetchTTL            time.Duration
	presignTTL          time.Duration
}

func NewSignatureService(
	signatureRepository ports.SignatureRepository,
	documentRepository ports.DocumentRepository,
	grantRepository ports.GrantDocumentRepository,
	auditRepository ports.AuditRepository,
	storageInterface ports.S3Storage,
	fetcher ports.BlobFetcher,
	fetchTTL time.Duration,
	presignTTL time.Duration,
) *SignatureService {
	return &SignatureService{
		signatureRepository: signatureRepository,
		documentRepository:  documentRepository,
		grantRepository:     grantRepository,
		auditRepository:     auditRepository,
		storageInterface:    storageInterface,
		fetcher:             fetcher,
		fetchTTL:            fetchTTL,
		presignTTL:          presignTTL,
	}
}

// CreateField : владелец размечает, где должна встать подпись.
// Прямоугольник приходит в координатах от верхнего левого угла страницы.
func (s *SignatureService) CreateField(ctx context.Context, field *model.SignatureField, callerUUID string) error {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return apperr.Internal(nil, "database connection не найден в context")
	}

	if field.Page < 1 {
		return apperr.Validation("номер страницы должен начинаться с 1")
	}
	if field.Width <= 0 || field.Height <= 0 {
		return apperr.Validation("размеры поля должны быть положительными")
	}
	if !strings.Contains(field.AssignedEmail, "@") {
		return apperr.Validation("некорректный email подписанта")
	}

	document, err := s.documentRepository.GetByUUID(ctx, db, field.DocumentUUID)
	if err != nil {
		return apperr.Storage(err, "[SignatureService] не удалось получить документ")
	}
	if document == nil {
		return apperr.NotFound("документ не найден")
	}
	if document.OwnerUUID != callerUUID {
		return apperr.Forbidden("только владелец может размечать поля подписей")
	}

	field.UUID = uuid.New().String()
	field.AssignedEmail = strings.ToLower(field.AssignedEmail)

	if err := s.signatureRepository.CreateField(ctx, db, field); err != nil {
		return apperr.Storage(err, "[SignatureService] не удалось сохранить поле")
	}

	return nil
}

func (s *SignatureService) ListFields(ctx context.Context, documentUUID string, callerUUID string) ([]model.SignatureField, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return nil, apperr.Internal(nil, "database connection не найден в context")
	}

	hasAccess, err := s.grantRepository.HasAccess(ctx, db, documentUUID, callerUUID)
	if err != nil {
		return nil, apperr.Storage(err, "[SignatureService] ошибка проверки доступа")
	}
	if hasAccess == false {
		return nil, apperr.Forbidden("доступ запрещён")
	}

	fields, err := s.signatureRepository.ListFields(ctx, db, documentUUID)
	if err != nil {
		return nil, apperr.Storage(err, "[SignatureService] не удалось получить поля")
	}
	return fields, nil
}

// Submit : приём подписи. Не больше одной на пару (документ, email) —
// check-then-insert, настоящего constraint в БД нет. Картинка грузится
// до вставки метаданных; если вставка упала, блоб удаляется (компенсация).
func (s *SignatureService) Submit(ctx context.Context, params ports.SubmitSignatureParams) (*model.Signature, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return nil, apperr.Internal(nil, "database connection не найден в context")
	}

	if params.SignerName == "" {
		return nil, apperr.Validation("имя подписанта не заполнено")
	}
	if !strings.Contains(params.SignerEmail, "@") {
		return nil, apperr.Validation("некорректный email подписанта")
	}
	if len(params.ImageBytes) == 0 {
		return nil, apperr.Validation("картинка подписи не приложена")
	}

	document, err := s.documentRepository.GetByUUID(ctx, db, params.DocumentUUID)
	if err != nil {
		return nil, apperr.Storage(err, "[SignatureService] не удалось получить документ")
	}
	if document == nil {
		return nil, apperr.NotFound("документ не найден")
	}

	existing, err := s.signatureRepository.GetByDocumentAndEmail(ctx, db, params.DocumentUUID, params.SignerEmail)
	if err != nil {
		return nil, apperr.Storage(err, "[SignatureService] ошибка проверки дубликата")
	}
	if existing != nil {
		return nil, apperr.Conflict("подпись от этого email уже принята")
	}

	signatureUUID := uuid.New().String()
	storagePath := fmt.Sprintf("documents/%s/signatures/%s%s", params.DocumentUUID, signatureUUID, params.ImageExt)

	contentType := "image/png"
	if params.ImageExt == ".jpg" || params.ImageExt == ".jpeg" {
		contentType = "image/jpeg"
	}

	if err := s.storageInterface.UploadObject(ctx, storagePath, params.ImageBytes, contentType); err != nil {
		return nil, apperr.Storage(err, "[SignatureService] не удалось загрузить картинку подписи")
	}

	signature := &model.Signature{
		UUID:         signatureUUID,
		DocumentUUID: params.DocumentUUID,
		SignerName:   params.SignerName,
		SignerEmail:  strings.ToLower(params.SignerEmail),
		StoragePath:  storagePath,
		CreatorUUID:  params.CreatorUUID,
		IPHash:       params.Audit.IPHash,
		SignedAt:     time.Now(),
		Metadata:     params.Metadata,
	}

	if err := s.signatureRepository.CreateSignature(ctx, db, signature); err != nil {
		// компенсация: метаданные не записались — подчищаем загруженный блоб
		if delErr := s.storageInterface.DeleteObject(ctx, storagePath); delErr != nil {
			log.Printf("[SignatureService] не удалось удалить блоб после сбоя вставки: %v", delErr)
		}
		return nil, apperr.Storage(err, "[SignatureService] не удалось сохранить подпись")
	}

	s.recordAudit(ctx, db, model.AuditSignatureSubmitted, params.DocumentUUID, params.Audit)

	log.Printf("[SignatureService] подпись %s для документа %s принята", signatureUUID, params.DocumentUUID)
	return signature, nil
}

// Compose : собирает визуально подписанную копию документа.
// Композиция толерантна к пробелам: поле без подписи или с нечитаемой
// картинкой просто пропускается. Каждый вызов создаёт новый объект
// под свежим ключом — повторные вызовы никогда не переиспользуют результат.
func (s *SignatureService) Compose(ctx context.Context, documentUUID string, callerUUID string, audit ports.AuditInfo) (*model.ComposeResult, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return nil, apperr.Internal(nil, "database connection не найден в context")
	}

	document, err := s.documentRepository.GetByUUID(ctx, db, documentUUID)
	if err != nil {
		return nil, apperr.Storage(err, "[SignatureService] не удалось получить документ")
	}
	if document == nil {
		return nil, apperr.NotFound("документ не найден")
	}

	if document.OwnerUUID != callerUUID {
		hasAccess, err := s.grantRepository.HasAccess(ctx, db, documentUUID, callerUUID)
		if err != nil {
			return nil, apperr.Storage(err, "[SignatureService] ошибка проверки доступа")
		}
		if hasAccess == false {
			return nil, apperr.Forbidden("доступ запрещён")
		}
	}

	fields, err := s.signatureRepository.ListFields(ctx, db, documentUUID)
	if err != nil {
		return nil, apperr.Storage(err, "[SignatureService] не удалось получить поля")
	}

	signatures, err := s.signatureRepository.ListSignatures(ctx, db, documentUUID)
	if err != nil {
		return nil, apperr.Storage(err, "[SignatureService] не удалось получить подписи")
	}

	srcBytes, err := s.storageInterface.DownloadObject(ctx, document.StoragePath)
	if err != nil {
		return nil, apperr.Storage(err, "[SignatureService] не удалось скачать оригинал")
	}

	renderer, err := pdfrender.OpenStream(srcBytes)
	if err != nil {
		return nil, apperr.Internal(err, "[SignatureService] не удалось открыть документ для отрисовки")
	}

	// картинки кэшируются на время одного вызова: несколько полей
	// могут ссылаться на подпись одного и того же человека
	imageCache := make(map[string][]byte)

	for _, field := range fields {
		signature := matchSignature(signatures, field.AssignedEmail)
		if signature == nil {
			continue // подпись ещё не собрана — поле остаётся пустым
		}

		imageBytes, ok := imageCache[signature.StoragePath]
		if ok == false {
			fetchURL, err := s.storageInterface.GeneratePresignedGetURL(ctx, signature.StoragePath, s.fetchTTL)
			if err != nil {
				log.Printf("[SignatureService] не удалось сгенерировать URL картинки %s: %v", signature.StoragePath, err)
				continue
			}
			imageBytes, err = s.fetcher.Fetch(ctx, fetchURL)
			if err != nil {
				log.Printf("[SignatureService] не удалось скачать картинку %s: %v", signature.StoragePath, err)
				continue
			}
			imageCache[signature.StoragePath] = imageBytes
		}

		format, ok := pdfrender.DetectImageFormat(imageBytes)
		if ok == false {
			log.Printf("[SignatureService] картинка %s не распознана ни как PNG, ни как JPEG, поле пропущено", signature.StoragePath)
			continue
		}

		_, pageHeight := renderer.PageSize(field.Page)
		if pageHeight == 0 {
			log.Printf("[SignatureService] поле %s ссылается на несуществующую страницу %d", field.UUID, field.Page)
			continue
		}

		// поле задано от верхнего края, отрисовка идёт от нижнего
		yRender := pdfrender.FromTopLeft(pageHeight, field.Y, field.Height)

		imageName := fmt.Sprintf("sig-%s", signature.UUID)
		if err := renderer.DrawImage(field.Page, imageName, imageBytes, format, field.X, yRender, field.Width, field.Height, signatureAlpha); err != nil {
			log.Printf("[SignatureService] не удалось отрисовать подпись в поле %s: %v", field.UUID, err)
			continue
		}
	}

	disclaimer := fmt.Sprintf("%s Generated at %s.", composeDisclaimer, time.Now().UTC().Format(time.RFC3339))
	renderer.DrawText(1, 40, 24, 7, false, disclaimer)

	outBytes, err := renderer.Bytes()
	if err != nil {
		return nil, apperr.Internal(err, "[SignatureService] не удалось сериализовать результат")
	}

	// свежий ключ на каждый вызов: прежние результаты никогда не перезаписываются
	outKey := fmt.Sprintf("documents/%s/signed/%s.pdf", documentUUID, uuid.New().String())

	if err := s.storageInterface.UploadObject(ctx, outKey, outBytes, "application/pdf"); err != nil {
		return nil, apperr.Storage(err, "[SignatureService] не удалось загрузить подписанную копию")
	}

	s.recordAudit(ctx, db, model.AuditSignedCopyComposed, documentUUID, audit)

	getURL, err := s.storageInterface.GeneratePresignedGetURL(ctx, outKey, s.presignTTL)
	if err != nil {
		return nil, apperr.Storage(err, "[SignatureService] не удалось сгенерировать pre-signed GET URL")
	}

	log.Printf("[SignatureService] подписанная копия документа %s собрана: %s", documentUUID, outKey)

	return &model.ComposeResult{
		StoragePath: outKey,
		GetURL:      getURL,
	}, nil
}

// matchSignature : подпись подбирается к полю по email без учёта регистра
func matchSignature(signatures []model.Signature, assignedEmail string) *model.Signature {
	for i := range signatures {
		if strings.EqualFold(signatures[i].SignerEmail, assignedEmail) {
			return &signatures[i]
		}
	}
	return nil
}

func (s *SignatureService) recordAudit(ctx context.Context, db *config.Database, action string, documentUUID string, audit ports.AuditInfo) {
	entry := &model.AuditLogEntry{
		UUID:         uuid.New().String(),
		Action:       action,
		DocumentUUID: documentUUID,
		IPHash:       audit.IPHash,
		UserAgent:    audit.UserAgent,
	}
	if err := s.auditRepository.Record(ctx, db, entry); err != nil {
		log.Printf("[SignatureService] ошибка записи аудита: %v", err)
	}
}
