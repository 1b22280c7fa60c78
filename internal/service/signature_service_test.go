package service_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"doctrust-server/internal/apperr"
	"doctrust-server/internal/model"
	"doctrust-server/internal/pdfrender"
	"doctrust-server/internal/ports"
	"doctrust-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestSignatureService() (*service.SignatureService, *MockSignatureRepository, *MockDocumentRepository, *MockGrantRepository, *MockAuditRepository, *MockS3Storage, *MockBlobFetcher) {
	sigRepo := new(MockSignatureRepository)
	docRepo := new(MockDocumentRepository)
	grantRepo := new(MockGrantRepository)
	auditRepo := new(MockAuditRepository)
	storage := new(MockS3Storage)
	fetcher := new(MockBlobFetcher)

	svc := service.NewSignatureService(sigRepo, docRepo, grantRepo, auditRepo, storage, fetcher, time.Minute, time.Hour)
	return svc, sigRepo, docRepo, grantRepo, auditRepo, storage, fetcher
}

// pngBytes : маленькая валидная PNG-картинка для тестов
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		img.Set(x, 0, color.Black)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// sourcePDF : одностраничный PDF, который дальше пойдёт в композицию
func sourcePDF(t *testing.T) []byte {
	t.Helper()
	renderer := pdfrender.NewSinglePage()
	renderer.DrawText(1, 72, 760, 12, false, "Agreement body text")
	data, err := renderer.Bytes()
	require.NoError(t, err)
	return data
}

// ===== Тесты CreateField =====

func TestCreateField_InvalidPage(t *testing.T) {
	svc, _, _, _, _, _, _ := newTestSignatureService()

	field := &model.SignatureField{
		DocumentUUID:  "doc1",
		AssignedEmail: "signer@example.com",
		Page:          0,
		Width:         100,
		Height:        40,
	}

	err := svc.CreateField(testCtx(), field, "owner1")

	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.TextCode(err))
}

func TestCreateField_NotOwner(t *testing.T) {
	svc, _, docRepo, _, _, _, _ := newTestSignatureService()
	ctx := testCtx()

	docRepo.On("GetByUUID", ctx, mock.Anything, "doc1").
		Return(&model.Document{UUID: "doc1", OwnerUUID: "owner1"}, nil)

	field := &model.SignatureField{
		DocumentUUID:  "doc1",
		AssignedEmail: "signer@example.com",
		Page:          1,
		Width:         100,
		Height:        40,
	}

	err := svc.CreateField(ctx, field, "intruder")

	require.Error(t, err)
	assert.Equal(t, apperr.CodeForbidden, apperr.TextCode(err))
}

func TestCreateField_LowercasesEmail(t *testing.T) {
	svc, sigRepo, docRepo, _, _, _, _ := newTestSignatureService()
	ctx := testCtx()

	docRepo.On("GetByUUID", ctx, mock.Anything, "doc1").
		Return(&model.Document{UUID: "doc1", OwnerUUID: "owner1"}, nil)
	sigRepo.On("CreateField", ctx, mock.Anything, mock.Anything).Return(nil)

	field := &model.SignatureField{
		DocumentUUID:  "doc1",
		AssignedEmail: "Signer@Example.COM",
		Page:          1,
		X:             72, Y: 680, Width: 160, Height: 48,
	}

	require.NoError(t, svc.CreateField(ctx, field, "owner1"))
	assert.Equal(t, "signer@example.com", field.AssignedEmail)
	assert.NotEmpty(t, field.UUID)
}

// ===== Тесты Submit =====

func submitParams(t *testing.T) ports.SubmitSignatureParams {
	return ports.SubmitSignatureParams{
		DocumentUUID: "doc1",
		SignerName:   "Ivan Petrov",
		SignerEmail:  "signer@example.com",
		ImageBytes:   pngBytes(t),
		ImageExt:     ".png",
		Audit:        ports.AuditInfo{IPHash: "hash", UserAgent: "ua"},
	}
}

func TestSubmitSignature_DuplicateEmail(t *testing.T) {
	svc, sigRepo, docRepo, _, _, storage, _ := newTestSignatureService()
	ctx := testCtx()

	docRepo.On("GetByUUID", ctx, mock.Anything, "doc1").
		Return(&model.Document{UUID: "doc1", OwnerUUID: "owner1"}, nil)
	sigRepo.On("GetByDocumentAndEmail", ctx, mock.Anything, "doc1", "signer@example.com").
		Return(&model.Signature{UUID: "existing"}, nil)

	_, err := svc.Submit(ctx, submitParams(t))

	require.Error(t, err)
	assert.Equal(t, apperr.CodeConflict, apperr.TextCode(err))
	storage.AssertNotCalled(t, "UploadObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitSignature_Success(t *testing.T) {
	svc, sigRepo, docRepo, _, auditRepo, storage, _ := newTestSignatureService()
	ctx := testCtx()

	docRepo.On("GetByUUID", ctx, mock.Anything, "doc1").
		Return(&model.Document{UUID: "doc1", OwnerUUID: "owner1"}, nil)
	sigRepo.On("GetByDocumentAndEmail", ctx, mock.Anything, "doc1", "signer@example.com").
		Return(nil, nil)
	storage.On("UploadObject", ctx, mock.Anything, mock.Anything, "image/png").Return(nil)
	sigRepo.On("CreateSignature", ctx, mock.Anything, mock.Anything).Return(nil)
	auditRepo.On("Record", ctx, mock.Anything, mock.Anything).Return(nil)

	signature, err := svc.Submit(ctx, submitParams(t))

	require.NoError(t, err)
	assert.Equal(t, "signer@example.com", signature.SignerEmail)
	assert.Equal(t, "hash", signature.IPHash)
	assert.Contains(t, signature.StoragePath, "documents/doc1/signatures/")
	assert.True(t, strings.HasSuffix(signature.StoragePath, ".png"))
}

func TestSubmitSignature_InsertFailureCompensatesBlob(t *testing.T) {
	svc, sigRepo, docRepo, _, _, storage, _ := newTestSignatureService()
	ctx := testCtx()

	docRepo.On("GetByUUID", ctx, mock.Anything, "doc1").
		Return(&model.Document{UUID: "doc1", OwnerUUID: "owner1"}, nil)
	sigRepo.On("GetByDocumentAndEmail", ctx, mock.Anything, "doc1", "signer@example.com").
		Return(nil, nil)

	var uploadedKey string
	storage.On("UploadObject", ctx, mock.Anything, mock.Anything, "image/png").
		Run(func(args mock.Arguments) { uploadedKey = args.String(1) }).Return(nil)
	sigRepo.On("CreateSignature", ctx, mock.Anything, mock.Anything).Return(assert.AnError)
	storage.On("DeleteObject", ctx, mock.Anything).Return(nil)

	_, err := svc.Submit(ctx, submitParams(t))

	require.Error(t, err)
	assert.Equal(t, apperr.CodeStorage, apperr.TextCode(err))
	// загруженный блоб подчищен после сбоя вставки
	storage.AssertCalled(t, "DeleteObject", ctx, uploadedKey)
}

// ===== Тесты Compose =====

func TestCompose_Forbidden(t *testing.T) {
	svc, _, docRepo, grantRepo, _, _, _ := newTestSignatureService()
	ctx := testCtx()

	docRepo.On("GetByUUID", ctx, mock.Anything, "doc1").
		Return(&model.Document{UUID: "doc1", OwnerUUID: "owner1"}, nil)
	grantRepo.On("HasAccess", ctx, mock.Anything, "doc1", "intruder").Return(false, nil)

	_, err := svc.Compose(ctx, "doc1", "intruder", ports.AuditInfo{})

	require.Error(t, err)
	assert.Equal(t, apperr.CodeForbidden, apperr.TextCode(err))
}

func TestCompose_SkipsUnsignedFieldsAndUploadsFreshCopy(t *testing.T) {
	svc, sigRepo, docRepo, _, auditRepo, storage, fetcher := newTestSignatureService()
	ctx := testCtx()

	doc := &model.Document{UUID: "doc1", OwnerUUID: "owner1", StoragePath: "documents/doc1/original.pdf"}
	docRepo.On("GetByUUID", ctx, mock.Anything, "doc1").Return(doc, nil)

	fields := []model.SignatureField{
		{UUID: "f1", DocumentUUID: "doc1", AssignedEmail: "signer@example.com", Page: 1, X: 72, Y: 680, Width: 160, Height: 48, OrderIndex: 0},
		{UUID: "f2", DocumentUUID: "doc1", AssignedEmail: "pending@example.com", Page: 1, X: 72, Y: 600, Width: 160, Height: 48, OrderIndex: 1},
	}
	signatures := []model.Signature{
		{UUID: "sig1", DocumentUUID: "doc1", SignerName: "Ivan", SignerEmail: "signer@example.com", StoragePath: "documents/doc1/signatures/sig1.png"},
	}
	sigRepo.On("ListFields", ctx, mock.Anything, "doc1").Return(fields, nil)
	sigRepo.On("ListSignatures", ctx, mock.Anything, "doc1").Return(signatures, nil)

	storage.On("DownloadObject", ctx, "documents/doc1/original.pdf").Return(sourcePDF(t), nil)
	storage.On("GeneratePresignedGetURL", ctx, "documents/doc1/signatures/sig1.png", time.Minute).
		Return("http://sig-url", nil)
	fetcher.On("Fetch", ctx, "http://sig-url").Return(pngBytes(t), nil)

	var outKey string
	storage.On("UploadObject", ctx, mock.Anything, mock.Anything, "application/pdf").
		Run(func(args mock.Arguments) { outKey = args.String(1) }).Return(nil)
	storage.On("GeneratePresignedGetURL", ctx, mock.Anything, time.Hour).Return("http://out-url", nil)
	auditRepo.On("Record", ctx, mock.Anything, mock.Anything).Return(nil)

	result, err := svc.Compose(ctx, "doc1", "owner1", ports.AuditInfo{})

	require.NoError(t, err)
	assert.Contains(t, outKey, "documents/doc1/signed/")
	assert.Equal(t, outKey, result.StoragePath)
	assert.Equal(t, "http://out-url", result.GetURL)
	// поле без подписи не ломает композицию
	fetcher.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestCompose_TwoCallsUseDistinctKeys(t *testing.T) {
	svc, sigRepo, docRepo, _, auditRepo, storage, _ := newTestSignatureService()
	ctx := testCtx()

	doc := &model.Document{UUID: "doc1", OwnerUUID: "owner1", StoragePath: "documents/doc1/original.pdf"}
	docRepo.On("GetByUUID", ctx, mock.Anything, "doc1").Return(doc, nil)
	sigRepo.On("ListFields", ctx, mock.Anything, "doc1").Return([]model.SignatureField{}, nil)
	sigRepo.On("ListSignatures", ctx, mock.Anything, "doc1").Return([]model.Signature{}, nil)
	storage.On("DownloadObject", ctx, "documents/doc1/original.pdf").Return(sourcePDF(t), nil)

	var keys []string
	storage.On("UploadObject", ctx, mock.Anything, mock.Anything, "application/pdf").
		Run(func(args mock.Arguments) { keys = append(keys, args.String(1)) }).Return(nil)
	storage.On("GeneratePresignedGetURL", ctx, mock.Anything, time.Hour).Return("http://out-url", nil)
	auditRepo.On("Record", ctx, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Compose(ctx, "doc1", "owner1", ports.AuditInfo{})
	require.NoError(t, err)
	_, err = svc.Compose(ctx, "doc1", "owner1", ports.AuditInfo{})
	require.NoError(t, err)

	require.Len(t, keys, 2)
	// композиция не идемпотентна: старый результат никогда не перезаписывается
	assert.NotEqual(t, keys[0], keys[1])
}

func TestCompose_UnreadableImageSkipped(t *testing.T) {
	svc, sigRepo, docRepo, _, auditRepo, storage, fetcher := newTestSignatureService()
	ctx := testCtx()

	doc := &model.Document{UUID: "doc1", OwnerUUID: "owner1", StoragePath: "documents/doc1/original.pdf"}
	docRepo.On("GetByUUID", ctx, mock.Anything, "doc1").Return(doc, nil)

	fields := []model.SignatureField{
		{UUID: "f1", DocumentUUID: "doc1", AssignedEmail: "signer@example.com", Page: 1, X: 72, Y: 680, Width: 160, Height: 48},
	}
	signatures := []model.Signature{
		{UUID: "sig1", DocumentUUID: "doc1", SignerEmail: "signer@example.com", StoragePath: "documents/doc1/signatures/sig1.png"},
	}
	sigRepo.On("ListFields", ctx, mock.Anything, "doc1").Return(fields, nil)
	sigRepo.On("ListSignatures", ctx, mock.Anything, "doc1").Return(signatures, nil)
	storage.On("DownloadObject", ctx, "documents/doc1/original.pdf").Return(sourcePDF(t), nil)
	storage.On("GeneratePresignedGetURL", ctx, "documents/doc1/signatures/sig1.png", time.Minute).
		Return("http://sig-url", nil)
	// мусор вместо картинки — поле пропускается, композиция продолжается
	fetcher.On("Fetch", ctx, "http://sig-url").Return([]byte("not an image"), nil)

	storage.On("UploadObject", ctx, mock.Anything, mock.Anything, "application/pdf").Return(nil)
	storage.On("GeneratePresignedGetURL", ctx, mock.Anything, time.Hour).Return("http://out-url", nil)
	auditRepo.On("Record", ctx, mock.Anything, mock.Anything).Return(nil)

	result, err := svc.Compose(ctx, "doc1", "owner1", ports.AuditInfo{})

	require.NoError(t, err)
	assert.NotEmpty(t, result.StoragePath)
}
