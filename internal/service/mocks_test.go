package service_test

import (
	"context"
	"time"

	"doctrust-server/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

// ===== Моки репозиториев и хранилища, общие для тестов сервисов =====

type MockDocumentRepository struct{ mock.Mock }

func (m *MockDocumentRepository) Create(ctx context.Context, exec sqlx.ExtContext, doc *model.Document) error {
	return m.Called(ctx, exec, doc).Error(0)
}

func (m *MockDocumentRepository) GetByUUID(ctx context.Context, exec sqlx.ExtContext, documentUUID string) (*model.Document, error) {
	args := m.Called(ctx, exec, documentUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByOwner(ctx context.Context, exec sqlx.ExtContext, ownerUUID string, limit int) ([]model.Document, error) {
	args := m.Called(ctx, exec, ownerUUID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, documentUUID string, ownerUUID string) ([]string, error) {
	args := m.Called(ctx, exec, documentUUID, ownerUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDocumentRepository) HasSignatures(ctx context.Context, exec sqlx.ExtContext, documentUUID string) (bool, error) {
	args := m.Called(ctx, exec, documentUUID)
	return args.Bool(0), args.Error(1)
}

type MockLinkRepository struct{ mock.Mock }

func (m *MockLinkRepository) Create(ctx context.Context, exec sqlx.ExtContext, link *model.AccessLink) error {
	return m.Called(ctx, exec, link).Error(0)
}

func (m *MockLinkRepository) GetByToken(ctx context.Context, exec sqlx.ExtContext, token string) (*model.AccessLink, error) {
	args := m.Called(ctx, exec, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessLink), args.Error(1)
}

func (m *MockLinkRepository) UpdateUsedCount(ctx context.Context, exec sqlx.ExtContext, linkUUID string, usedCount int) error {
	return m.Called(ctx, exec, linkUUID, usedCount).Error(0)
}

func (m *MockLinkRepository) Revoke(ctx context.Context, exec sqlx.ExtContext, token string) error {
	return m.Called(ctx, exec, token).Error(0)
}

type MockSignatureRepository struct{ mock.Mock }

func (m *MockSignatureRepository) CreateField(ctx context.Context, exec sqlx.ExtContext, field *model.SignatureField) error {
	return m.Called(ctx, exec, field).Error(0)
}

func (m *MockSignatureRepository) ListFields(ctx context.Context, exec sqlx.ExtContext, documentUUID string) ([]model.SignatureField, error) {
	args := m.Called(ctx, exec, documentUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SignatureField), args.Error(1)
}

func (m *MockSignatureRepository) CreateSignature(ctx context.Context, exec sqlx.ExtContext, signature *model.Signature) error {
	return m.Called(ctx, exec, signature).Error(0)
}

func (m *MockSignatureRepository) ListSignatures(ctx context.Context, exec sqlx.ExtContext, documentUUID string) ([]model.Signature, error) {
	args := m.Called(ctx, exec, documentUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Signature), args.Error(1)
}

func (m *MockSignatureRepository) GetByDocumentAndEmail(ctx context.Context, exec sqlx.ExtContext, documentUUID, signerEmail string) (*model.Signature, error) {
	args := m.Called(ctx, exec, documentUUID, signerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Signature), args.Error(1)
}

func (m *MockSignatureRepository) ListCertifiers(ctx context.Context, exec sqlx.ExtContext, documentUUID string) ([]model.Certifier, error) {
	args := m.Called(ctx, exec, documentUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Certifier), args.Error(1)
}

type MockCertificateRepository struct{ mock.Mock }

func (m *MockCertificateRepository) Create(ctx context.Context, exec sqlx.ExtContext, cert *model.Certificate) error {
	return m.Called(ctx, exec, cert).Error(0)
}

func (m *MockCertificateRepository) GetLatestByDocument(ctx context.Context, exec sqlx.ExtContext, documentUUID string) (*model.Certificate, error) {
	args := m.Called(ctx, exec, documentUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Certificate), args.Error(1)
}

type MockAuditRepository struct{ mock.Mock }

func (m *MockAuditRepository) Record(ctx context.Context, exec sqlx.ExtContext, entry *model.AuditLogEntry) error {
	return m.Called(ctx, exec, entry).Error(0)
}

func (m *MockAuditRepository) ListByDocument(ctx context.Context, exec sqlx.ExtContext, documentUUID string, limit int) ([]model.AuditLogEntry, error) {
	args := m.Called(ctx, exec, documentUUID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditLogEntry), args.Error(1)
}

type MockGrantRepository struct{ mock.Mock }

func (m *MockGrantRepository) AddGrant(ctx context.Context, exec sqlx.ExtContext, documentUUID string, targetUserUUID string) error {
	return m.Called(ctx, exec, documentUUID, targetUserUUID).Error(0)
}

func (m *MockGrantRepository) RemoveGrant(ctx context.Context, exec sqlx.ExtContext, documentUUID, userUUID string) error {
	return m.Called(ctx, exec, documentUUID, userUUID).Error(0)
}

func (m *MockGrantRepository) CheckOwner(ctx context.Context, exec sqlx.ExtContext, documentUUID, ownerUUID string) (bool, error) {
	args := m.Called(ctx, exec, documentUUID, ownerUUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGrantRepository) HasAccess(ctx context.Context, exec sqlx.ExtContext, documentUUID, userUUID string) (bool, error) {
	args := m.Called(ctx, exec, documentUUID, userUUID)
	return args.Bool(0), args.Error(1)
}

type MockCacheRepository struct{ mock.Mock }

func (m *MockCacheRepository) SetDocument(ctx context.Context, document *model.Document) error {
	return m.Called(ctx, document).Error(0)
}

func (m *MockCacheRepository) GetDocument(ctx context.Context, uuid string) (*model.Document, error) {
	args := m.Called(ctx, uuid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockCacheRepository) DeleteDocument(ctx context.Context, uuid string) error {
	return m.Called(ctx, uuid).Error(0)
}

type MockS3Storage struct{ mock.Mock }

func (m *MockS3Storage) GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}

func (m *MockS3Storage) GeneratePresignedPutURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}

func (m *MockS3Storage) UploadObject(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(ctx, key, data, contentType).Error(0)
}

func (m *MockS3Storage) DownloadObject(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockS3Storage) DeleteObject(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockS3Storage) DeleteObjects(ctx context.Context, keys []string) error {
	return m.Called(ctx, keys).Error(0)
}

type MockBlobFetcher struct{ mock.Mock }

func (m *MockBlobFetcher) Fetch(ctx context.Context, presignedURL string) ([]byte, error) {
	args := m.Called(ctx, presignedURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
