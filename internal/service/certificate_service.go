package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"doctrust-server/config"
	"doctrust-server/internal/apperr"
	"doctrust-server/internal/model"
	"doctrust-server/internal/pdfrender"
	"doctrust-server/internal/ports"
	"doctrust-server/internal/util"

	"github.com/google/uuid"
)

// Разметка страницы сертификата: один лист A4, отступы в пунктах,
// строки идут сверху вниз с постоянным шагом
const (
	certMarginLeft = 72.0
	certTopY       = 760.0 // первая строка, от нижнего края
	certLinePitch  = 24.0
	certBodySize   = 11.0
	certTitleSize  = 16.0
)

type CertificateService struct {
	certificateRepository ports.CertificateRepository
	documentRepository    ports.DocumentRepository
	auditRepository       ports.AuditRepository
	storageInterface      ports.S3Storage
	signerKeyID           string
	presignTTL            time.Duration
}

func NewCertificateService(
	certificateRepository ports.CertificateRepository,
	documentRepository ports.DocumentRepository,
	auditRepository ports.AuditRepository,
	storageInterface ports.S3Storage,
	signerKeyID string,
	presignTTL time.Duration,
) *CertificateService {
	return &CertificateService{
		certificateRepository: certificateRepository,
		documentRepository:    documentRepository,
		auditRepository:       auditRepository,
		storageInterface:      storageInterface,
		signerKeyID:           signerKeyID,
		presignTTL:            presignTTL,
	}
}

type certLine struct {
	text string
	bold bool
}

// Generate : строит сертификат подлинности документа, считает хэш его байтов
// и загружает в S3 под детерминированным ключом (docUUID, certUUID).
// Уникальности сертификатов на документ нет: каждый вызов создаёт новый.
func (s *CertificateService) Generate(ctx context.Context, documentUUID string, audit ports.AuditInfo) (*model.GenerateCertificateResult, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return nil, apperr.Internal(nil, "database connection не найден в context")
	}

	document, err := s.documentRepository.GetByUUID(ctx, db, documentUUID)
	if err != nil {
		return nil, apperr.Storage(err, "[CertificateService] не удалось получить документ")
	}
	if document == nil {
		return nil, apperr.NotFound("документ не найден")
	}

	certUUID := uuid.New().String()
	generatedAt := time.Now().UTC()

	certBytes, err := renderCertificate(document, certUUID, generatedAt)
	if err != nil {
		return nil, apperr.Internal(err, "[CertificateService] не удалось отрисовать сертификат")
	}

	// хэш байтов самого сертификата — намеренно не совпадает с sha256 документа
	digest := sha256.Sum256(certBytes)
	certSha256 := hex.EncodeToString(digest[:])

	storagePath := fmt.Sprintf("certificates/%s/%s.pdf", document.UUID, certUUID)

	// Порядок фиксированный: сначала блоб, потом строка метаданных.
	// Если упадёт вставка метаданных, загруженный блоб останется в S3 —
	// компенсирующего удаления здесь нет (в отличие от приёма подписи).
	// Ключ детерминированный и нигде не публикуется, осиротевший объект безвреден.
	if err := s.storageInterface.UploadObject(ctx, storagePath, certBytes, "application/pdf"); err != nil {
		return nil, apperr.Storage(err, "[CertificateService] не удалось загрузить сертификат")
	}

	cert := &model.Certificate{
		UUID:         certUUID,
		DocumentUUID: document.UUID,
		CertSha256:   certSha256,
		StoragePath:  storagePath,
		SignerKeyID:  s.signerKeyID,
		CreatedAt:    generatedAt,
	}

	if err := s.certificateRepository.Create(ctx, db, cert); err != nil {
		return nil, apperr.Storage(err, "[CertificateService] не удалось сохранить сертификат")
	}

	getURL, err := s.storageInterface.GeneratePresignedGetURL(ctx, storagePath, s.presignTTL)
	if err != nil {
		return nil, apperr.Storage(err, "[CertificateService] не удалось сгенерировать pre-signed GET URL")
	}

	s.recordAudit(ctx, db, document.UUID, audit)

	log.Printf("[CertificateService] сертификат %s для документа %s сгенерирован", certUUID, document.UUID)

	return &model.GenerateCertificateResult{
		Certificate: cert,
		GetURL:      getURL,
	}, nil
}

// GetLatest : самый свежий сертификат документа со свежей ссылкой на скачивание
func (s *CertificateService) GetLatest(ctx context.Context, documentUUID string) (*model.GenerateCertificateResult, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return nil, apperr.Internal(nil, "database connection не найден в context")
	}

	cert, err := s.certificateRepository.GetLatestByDocument(ctx, db, documentUUID)
	if err != nil {
		return nil, apperr.Storage(err, "[CertificateService] не удалось получить сертификат")
	}
	if cert == nil {
		return nil, apperr.NotFound("сертификат не найден")
	}

	getURL, err := s.storageInterface.GeneratePresignedGetURL(ctx, cert.StoragePath, s.presignTTL)
	if err != nil {
		return nil, apperr.Storage(err, "[CertificateService] не удалось сгенерировать pre-signed GET URL")
	}

	return &model.GenerateCertificateResult{
		Certificate: cert,
		GetURL:      getURL,
	}, nil
}

// renderCertificate : каноническое содержимое сертификата на одной странице.
// Имя файла нормализуется до безопасного ASCII, строки с хэшем и id
// сертификата выделяются жирным.
func renderCertificate(document *model.Document, certUUID string, generatedAt time.Time) ([]byte, error) {
	lines := []certLine{
		{text: "CERTIFICATE OF AUTHENTICITY", bold: true},
		{},
		{text: fmt.Sprintf("Document ID:   %s", document.UUID)},
		{text: fmt.Sprintf("Filename:      %s", util.NormalizeFilename(document.FilenameOriginal))},
		{text: fmt.Sprintf("SHA-256:       %s", document.Sha256), bold: true},
		{text: fmt.Sprintf("Size:          %d bytes", document.SizeBytes)},
		{text: fmt.Sprintf("MIME type:     %s", document.MimeType)},
		{},
		{text: fmt.Sprintf("Certificate:   %s", certUUID), bold: true},
		{text: fmt.Sprintf("Generated at:  %s", generatedAt.Format(time.RFC3339))},
	}

	renderer := pdfrender.NewSinglePage()

	y := certTopY
	for i, line := range lines {
		size := certBodySize
		if i == 0 {
			size = certTitleSize
		}
		if line.text != "" {
			renderer.DrawText(1, certMarginLeft, y, size, line.bold, line.text)
		}
		y -= certLinePitch
	}

	return renderer.Bytes()
}

func (s *CertificateService) recordAudit(ctx context.Context, db *config.Database, documentUUID string, audit ports.AuditInfo) {
	entry := &model.AuditLogEntry{
		UUID:         uuid.New().String(),
		Action:       model.AuditCertificateGenerated,
		DocumentUUID: documentUUID,
		IPHash:       audit.IPHash,
		UserAgent:    audit.UserAgent,
	}
	if err := s.auditRepository.Record(ctx, db, entry); err != nil {
		log.Printf("[CertificateService] ошибка записи аудита: %v", err)
	}
}
