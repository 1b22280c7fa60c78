package service_test

import (
	"context"
	"testing"
	"time"

	"doctrust-server/config"
	"doctrust-server/internal/apperr"
	"doctrust-server/internal/model"
	"doctrust-server/internal/ports"
	"doctrust-server/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestLinkService() (*service.LinkService, *MockLinkRepository, *MockDocumentRepository, *MockSignatureRepository, *MockAuditRepository, *MockS3Storage) {
	linkRepo := new(MockLinkRepository)
	docRepo := new(MockDocumentRepository)
	sigRepo := new(MockSignatureRepository)
	auditRepo := new(MockAuditRepository)
	storage := new(MockS3Storage)

	svc := service.NewLinkService(linkRepo, docRepo, sigRepo, auditRepo, storage, 32, time.Hour)
	return svc, linkRepo, docRepo, sigRepo, auditRepo, storage
}

func testCtx() context.Context {
	return context.WithValue(context.Background(), "db", &config.Database{})
}

func intPtr(v int) *int { return &v }

// ===== Тесты IssueLink =====

func TestIssueLink_InvalidScope(t *testing.T) {
	svc, _, _, _, _, _ := newTestLinkService()

	_, err := svc.IssueLink(testCtx(), ports.IssueLinkParams{
		DocumentUUID: "doc1",
		CallerUUID:   "owner1",
		Scope:        "edit",
		TTL:          time.Hour,
	})

	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.TextCode(err))
}

func TestIssueLink_NonPositiveTTL(t *testing.T) {
	svc, _, _, _, _, _ := newTestLinkService()

	_, err := svc.IssueLink(testCtx(), ports.IssueLinkParams{
		DocumentUUID: "doc1",
		CallerUUID:   "owner1",
		Scope:        model.LinkScopeView,
		TTL:          0,
	})

	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.TextCode(err))
}

func TestIssueLink_NotOwner(t *testing.T) {
	svc, _, docRepo, _, _, _ := newTestLinkService()
	ctx := testCtx()

	docRepo.On("GetByUUID", ctx, mock.Anything, "doc1").
		Return(&model.Document{UUID: "doc1", OwnerUUID: "owner1"}, nil)

	_, err := svc.IssueLink(ctx, ports.IssueLinkParams{
		DocumentUUID: "doc1",
		CallerUUID:   "intruder",
		Scope:        model.LinkScopeView,
		TTL:          time.Hour,
	})

	require.Error(t, err)
	assert.Equal(t, apperr.CodeForbidden, apperr.TextCode(err))
}

func TestIssueLink_Success(t *testing.T) {
	// генератор токена ходит в БД за проверкой уникальности — подставляем sqlmock
	mockDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db := &config.Database{DB: sqlx.NewDb(mockDB, "sqlmock")}
	ctx := context.WithValue(context.Background(), "db", db)

	sqlMock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	svc, linkRepo, docRepo, _, auditRepo, _ := newTestLinkService()

	docRepo.On("GetByUUID", ctx, mock.Anything, "doc1").
		Return(&model.Document{UUID: "doc1", OwnerUUID: "owner1"}, nil)
	linkRepo.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)
	auditRepo.On("Record", ctx, mock.Anything, mock.Anything).Return(nil)

	link, err := svc.IssueLink(ctx, ports.IssueLinkParams{
		DocumentUUID:    "doc1",
		CallerUUID:      "owner1",
		Scope:           model.LinkScopeDownload,
		TTL:             time.Hour,
		MaxUses:         intPtr(3),
		RestrictedEmail: "Signer@Example.com",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, link.Token)
	assert.Equal(t, 0, link.UsedCount)
	assert.Equal(t, "signer@example.com", link.RestrictedEmail)
	linkRepo.AssertExpectations(t)
}

// ===== Тесты ResolveLink: порядок проверок фиксирован =====

func TestResolveLink_NotFound(t *testing.T) {
	svc, linkRepo, _, _, _, _ := newTestLinkService()
	ctx := testCtx()

	linkRepo.On("GetByToken", ctx, mock.Anything, "absent").Return(nil, nil)

	_, err := svc.ResolveLink(ctx, "absent", "", ports.AuditInfo{})

	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.TextCode(err))
}

func TestResolveLink_RevokedWinsOverExpired(t *testing.T) {
	svc, linkRepo, _, _, _, _ := newTestLinkService()
	ctx := testCtx()

	revokedAt := time.Now().Add(-2 * time.Hour)
	link := &model.AccessLink{
		UUID:      "link1",
		Token:     "tok",
		ExpiresAt: time.Now().Add(-time.Hour), // одновременно истекла и отозвана
		RevokedAt: &revokedAt,
	}
	linkRepo.On("GetByToken", ctx, mock.Anything, "tok").Return(link, nil)

	_, err := svc.ResolveLink(ctx, "tok", "", ports.AuditInfo{})

	require.Error(t, err)
	assert.Equal(t, apperr.CodeLinkRevoked, apperr.TextCode(err))
}

func TestResolveLink_Expired(t *testing.T) {
	svc, linkRepo, _, _, _, _ := newTestLinkService()
	ctx := testCtx()

	link := &model.AccessLink{
		UUID:      "link1",
		Token:     "tok",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	linkRepo.On("GetByToken", ctx, mock.Anything, "tok").Return(link, nil)

	_, err := svc.ResolveLink(ctx, "tok", "", ports.AuditInfo{})

	require.Error(t, err)
	assert.Equal(t, apperr.CodeLinkExpired, apperr.TextCode(err))
}

func TestResolveLink_Exhausted(t *testing.T) {
	svc, linkRepo, _, _, _, _ := newTestLinkService()
	ctx := testCtx()

	link := &model.AccessLink{
		UUID:      "link1",
		Token:     "tok",
		ExpiresAt: time.Now().Add(time.Hour),
		MaxUses:   intPtr(2),
		UsedCount: 2,
	}
	linkRepo.On("GetByToken", ctx, mock.Anything, "tok").Return(link, nil)

	_, err := svc.ResolveLink(ctx, "tok", "", ports.AuditInfo{})

	require.Error(t, err)
	assert.Equal(t, apperr.CodeLinkExhausted, apperr.TextCode(err))
}

func TestResolveLink_RestrictedEmailMismatch(t *testing.T) {
	svc, linkRepo, _, _, _, _ := newTestLinkService()
	ctx := testCtx()

	link := &model.AccessLink{
		UUID:            "link1",
		Token:           "tok",
		ExpiresAt:       time.Now().Add(time.Hour),
		RestrictedEmail: "signer@example.com",
	}
	linkRepo.On("GetByToken", ctx, mock.Anything, "tok").Return(link, nil)

	_, err := svc.ResolveLink(ctx, "tok", "other@example.com", ports.AuditInfo{})

	require.Error(t, err)
	assert.Equal(t, apperr.CodeForbidden, apperr.TextCode(err))
}

func TestResolveLink_Success_IncrementsUsedCount(t *testing.T) {
	svc, linkRepo, docRepo, sigRepo, auditRepo, storage := newTestLinkService()
	ctx := testCtx()

	link := &model.AccessLink{
		UUID:            "link1",
		Token:           "tok",
		DocumentUUID:    "doc1",
		Scope:           model.LinkScopeView,
		ExpiresAt:       time.Now().Add(time.Hour),
		MaxUses:         intPtr(5),
		UsedCount:       2,
		RestrictedEmail: "signer@example.com",
	}
	linkRepo.On("GetByToken", ctx, mock.Anything, "tok").Return(link, nil)
	docRepo.On("GetByUUID", ctx, mock.Anything, "doc1").
		Return(&model.Document{UUID: "doc1", OwnerUUID: "owner1", StoragePath: "documents/doc1/original.pdf"}, nil)
	sigRepo.On("ListCertifiers", ctx, mock.Anything, "doc1").
		Return([]model.Certifier{{SignerName: "Ivan", SignerEmail: "signer@example.com"}}, nil)
	// счётчик пишется значением прочитано+1
	linkRepo.On("UpdateUsedCount", ctx, mock.Anything, "link1", 3).Return(nil)
	storage.On("GeneratePresignedGetURL", ctx, "documents/doc1/original.pdf", time.Hour).
		Return("http://get-url", nil)
	auditRepo.On("Record", ctx, mock.Anything, mock.Anything).Return(nil)

	// email сравнивается без учёта регистра
	result, err := svc.ResolveLink(ctx, "tok", "SIGNER@example.com", ports.AuditInfo{IPHash: "hash", UserAgent: "ua"})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Link.UsedCount)
	assert.Equal(t, "http://get-url", result.GetURL)
	assert.Len(t, result.Certifiers, 1)
	linkRepo.AssertExpectations(t)
}

// Демонстрация известной гонки read-then-write: оба конкурентных резолва
// читают одно значение счётчика, оба проходят проверку лимита и оба пишут
// одно и то же новое значение. Лимит оказывается превышен.
func TestResolveLink_ReadThenWriteOverrun(t *testing.T) {
	svc, linkRepo, docRepo, sigRepo, auditRepo, storage := newTestLinkService()
	ctx := testCtx()

	makeLink := func() *model.AccessLink {
		return &model.AccessLink{
			UUID:         "link1",
			Token:        "tok",
			DocumentUUID: "doc1",
			ExpiresAt:    time.Now().Add(time.Hour),
			MaxUses:      intPtr(1),
			UsedCount:    0, // оба вызова видят снимок до инкремента
		}
	}
	linkRepo.On("GetByToken", ctx, mock.Anything, "tok").Return(makeLink(), nil).Once()
	linkRepo.On("GetByToken", ctx, mock.Anything, "tok").Return(makeLink(), nil).Once()
	docRepo.On("GetByUUID", ctx, mock.Anything, "doc1").
		Return(&model.Document{UUID: "doc1", OwnerUUID: "owner1"}, nil)
	sigRepo.On("ListCertifiers", ctx, mock.Anything, "doc1").Return([]model.Certifier{}, nil)
	linkRepo.On("UpdateUsedCount", ctx, mock.Anything, "link1", 1).Return(nil).Twice()
	storage.On("GeneratePresignedGetURL", ctx, mock.Anything, mock.Anything).Return("http://get-url", nil).Maybe()
	auditRepo.On("Record", ctx, mock.Anything, mock.Anything).Return(nil)

	_, err1 := svc.ResolveLink(ctx, "tok", "", ports.AuditInfo{})
	_, err2 := svc.ResolveLink(ctx, "tok", "", ports.AuditInfo{})

	// одноразовая ссылка использована дважды
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	linkRepo.AssertExpectations(t)
}

// Сквозной сценарий одноразовой ссылки: первый резолв проходит и двигает
// счётчик, второй упирается в лимит, последующий отзыв ничего не меняет.
func TestSingleUseLinkLifecycle(t *testing.T) {
	svc, linkRepo, docRepo, sigRepo, auditRepo, storage := newTestLinkService()
	ctx := testCtx()

	doc := &model.Document{UUID: "doc1", OwnerUUID: "owner1", StoragePath: "documents/doc1/original.pdf"}
	docRepo.On("GetByUUID", ctx, mock.Anything, "doc1").Return(doc, nil)
	sigRepo.On("ListCertifiers", ctx, mock.Anything, "doc1").Return([]model.Certifier{}, nil)
	storage.On("GeneratePresignedGetURL", ctx, mock.Anything, mock.Anything).Return("http://get-url", nil)
	auditRepo.On("Record", ctx, mock.Anything, mock.Anything).Return(nil)

	fresh := &model.AccessLink{
		UUID:         "link1",
		Token:        "tok",
		DocumentUUID: "doc1",
		ExpiresAt:    time.Now().Add(time.Hour),
		MaxUses:      intPtr(1),
		UsedCount:    0,
	}
	used := &model.AccessLink{
		UUID:         "link1",
		Token:        "tok",
		DocumentUUID: "doc1",
		ExpiresAt:    fresh.ExpiresAt,
		MaxUses:      intPtr(1),
		UsedCount:    1,
	}

	linkRepo.On("GetByToken", ctx, mock.Anything, "tok").Return(fresh, nil).Once()
	linkRepo.On("UpdateUsedCount", ctx, mock.Anything, "link1", 1).Return(nil).Once()
	linkRepo.On("GetByToken", ctx, mock.Anything, "tok").Return(used, nil)
	linkRepo.On("Revoke", ctx, mock.Anything, "tok").Return(nil)

	result, err := svc.ResolveLink(ctx, "tok", "", ports.AuditInfo{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Link.UsedCount)

	_, err = svc.ResolveLink(ctx, "tok", "", ports.AuditInfo{})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeLinkExhausted, apperr.TextCode(err))

	err = svc.RevokeLink(ctx, "tok", "owner1", ports.AuditInfo{})
	assert.NoError(t, err)
	linkRepo.AssertExpectations(t)
}

// ===== Тесты RevokeLink =====

func TestRevokeLink_NotOwner(t *testing.T) {
	svc, linkRepo, docRepo, _, _, _ := newTestLinkService()
	ctx := testCtx()

	link := &model.AccessLink{UUID: "link1", Token: "tok", DocumentUUID: "doc1"}
	linkRepo.On("GetByToken", ctx, mock.Anything, "tok").Return(link, nil)
	docRepo.On("GetByUUID", ctx, mock.Anything, "doc1").
		Return(&model.Document{UUID: "doc1", OwnerUUID: "owner1"}, nil)

	err := svc.RevokeLink(ctx, "tok", "intruder", ports.AuditInfo{})

	require.Error(t, err)
	assert.Equal(t, apperr.CodeForbidden, apperr.TextCode(err))
}

func TestRevokeLink_Idempotent(t *testing.T) {
	svc, linkRepo, docRepo, _, auditRepo, _ := newTestLinkService()
	ctx := testCtx()

	revokedAt := time.Now().Add(-time.Hour)
	link := &model.AccessLink{
		UUID:         "link1",
		Token:        "tok",
		DocumentUUID: "doc1",
		RevokedAt:    &revokedAt, // уже отозвана
	}
	linkRepo.On("GetByToken", ctx, mock.Anything, "tok").Return(link, nil)
	docRepo.On("GetByUUID", ctx, mock.Anything, "doc1").
		Return(&model.Document{UUID: "doc1", OwnerUUID: "owner1"}, nil)
	linkRepo.On("Revoke", ctx, mock.Anything, "tok").Return(nil)
	auditRepo.On("Record", ctx, mock.Anything, mock.Anything).Return(nil)

	err := svc.RevokeLink(ctx, "tok", "owner1", ports.AuditInfo{})

	assert.NoError(t, err)
}
