package repository

import (
	"context"
	"database/sql"
	"errors"

	"doctrust-server/config"
	"doctrust-server/internal/model"
	"doctrust-server/internal/util"

	"github.com/jmoiron/sqlx"
)

type DocumentRepository struct {
	*config.Database
}

func NewDocumentRepository(database *config.Database) *DocumentRepository {
	return &DocumentRepository{database}
}

// Create : сохраняем новый документ
func (r *DocumentRepository) Create(ctx context.Context, exec sqlx.ExtContext, document *model.Document) error {
	query := `
		INSERT INTO documents (uuid, owner_uuid, filename_original, size_bytes, mime_type, sha256, storage_path, created_at)
    	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := exec.ExecContext(
		ctx,
		query,
		document.UUID,
		document.OwnerUUID,
		document.FilenameOriginal,
		document.SizeBytes,
		document.MimeType,
		document.Sha256,
		document.StoragePath)

	return err
}

// GetByUUID : документ без проверки прав — права проверяет сервис
func (r *DocumentRepository) GetByUUID(ctx context.Context, exec sqlx.ExtContext, documentUUID string) (*model.Document, error) {
	query := `
		SELECT uuid, owner_uuid, filename_original, size_bytes, mime_type,
		       sha256, storage_path, created_at, deleted_at
		FROM documents
		WHERE uuid = $1 AND deleted_at IS NULL
	`

	var document model.Document
	err := sqlx.GetContext(ctx, exec, &document, query, documentUUID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &document, nil
}

// ListByOwner : документы владельца, свежие первыми
func (r *DocumentRepository) ListByOwner(ctx context.Context, exec sqlx.ExtContext, ownerUUID string, limit int) ([]model.Document, error) {
	query := `
		SELECT uuid, owner_uuid, filename_original, size_bytes, mime_type,
			   sha256, storage_path, created_at, deleted_at
		FROM documents
		WHERE owner_uuid = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2
	`

	docs := []model.Document{}
	err := sqlx.SelectContext(ctx, exec, &docs, query, ownerUUID, limit)
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// HasSignatures : есть ли у документа хоть одна собранная подпись.
// Документ с подписями становится неизменяемым и не удаляется.
func (r *DocumentRepository) HasSignatures(ctx context.Context, exec sqlx.ExtContext, documentUUID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM signatures WHERE document_uuid = $1)`
	err := sqlx.GetContext(ctx, exec, &exists, query, documentUUID)
	if err != nil {
		return false, util.LogError("[DocumentRepo] не удалось проверить подписи", err)
	}
	return exists, nil
}

// Delete : удаляет документ; ссылки, сертификаты, поля и подписи уходят
// каскадом по FK. Возвращает storage-ключи всех блобов документа для зачистки S3.
func (r *DocumentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, documentUUID string, ownerUUID string) ([]string, error) {
	var keys []string

	err := sqlx.SelectContext(ctx, exec, &keys, `
		SELECT storage_path FROM documents WHERE uuid = $1 AND owner_uuid = $2
		UNION ALL
		SELECT storage_path FROM certificates WHERE document_uuid = $1
		UNION ALL
		SELECT storage_path FROM signatures WHERE document_uuid = $1
	`, documentUUID, ownerUUID)
	if err != nil {
		return nil, util.LogError("[DocumentRepo] не удалось собрать storage-ключи", err)
	}
	if len(keys) == 0 {
		return nil, sql.ErrNoRows
	}

	_, err = exec.ExecContext(ctx, `
		DELETE FROM documents WHERE uuid = $1 AND owner_uuid = $2
	`, documentUUID, ownerUUID)
	if err != nil {
		return nil, util.LogError("[DocumentRepo] не удалось удалить документ", err)
	}

	return keys, nil
}
