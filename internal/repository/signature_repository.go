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

type SignatureRepository struct {
	*config.Database
}

func NewSignatureRepository(database *config.Database) *SignatureRepository {
	return &SignatureRepository{database}
}

func (r *SignatureRepository) CreateField(ctx context.Context, exec sqlx.ExtContext, field *model.SignatureField) error {
	query := `
		INSERT INTO signature_fields (uuid, document_uuid, assigned_email, page, x, y, width, height, order_index, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`
	_, err := exec.ExecContext(
		ctx,
		query,
		field.UUID,
		field.DocumentUUID,
		field.AssignedEmail,
		field.Page,
		field.X,
		field.Y,
		field.Width,
		field.Height,
		field.OrderIndex)

	if err != nil {
		return util.LogError("[SignatureRepo] не удалось сохранить поле подписи", err)
	}
	return nil
}

// ListFields : поля в порядке их order_index — в этом порядке идёт композиция
func (r *SignatureRepository) ListFields(ctx context.Context, exec sqlx.ExtContext, documentUUID string) ([]model.SignatureField, error) {
	query := `
		SELECT uuid, document_uuid, assigned_email, page, x, y, width, height, order_index, created_at
		FROM signature_fields
		WHERE document_uuid = $1
		ORDER BY order_index ASC
	`

	fields := []model.SignatureField{}
	if err := sqlx.SelectContext(ctx, exec, &fields, query, documentUUID); err != nil {
		return nil, util.LogError("[SignatureRepo] не удалось получить поля подписей", err)
	}
	return fields, nil
}

func (r *SignatureRepository) CreateSignature(ctx context.Context, exec sqlx.ExtContext, signature *model.Signature) error {
	query := `
		INSERT INTO signatures (uuid, document_uuid, signer_name, signer_email, storage_path, creator_uuid, ip_hash, signed_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), $8)
	`
	_, err := exec.ExecContext(
		ctx,
		query,
		signature.UUID,
		signature.DocumentUUID,
		signature.SignerName,
		signature.SignerEmail,
		signature.StoragePath,
		signature.CreatorUUID,
		signature.IPHash,
		signature.Metadata)

	if err != nil {
		return util.LogError("[SignatureRepo] не удалось сохранить подпись", err)
	}
	return nil
}

func (r *SignatureRepository) ListSignatures(ctx context.Context, exec sqlx.ExtContext, documentUUID string) ([]model.Signature, error) {
	query := `
		SELECT uuid, document_uuid, signer_name, signer_email, storage_path, creator_uuid, ip_hash, signed_at, COALESCE(metadata, '') AS metadata
		FROM signatures
		WHERE document_uuid = $1
		ORDER BY signed_at ASC
	`

	signatures := []model.Signature{}
	if err := sqlx.SelectContext(ctx, exec, &signatures, query, documentUUID); err != nil {
		return nil, util.LogError("[SignatureRepo] не удалось получить подписи", err)
	}
	return signatures, nil
}

// GetByDocumentAndEmail : первая половина check-then-insert при приёме подписи.
// Сравнение email без учёта регистра.
func (r *SignatureRepository) GetByDocumentAndEmail(ctx context.Context, exec sqlx.ExtContext, documentUUID, signerEmail string) (*model.Signature, error) {
	query := `
		SELECT uuid, document_uuid, signer_name, signer_email, storage_path, creator_uuid, ip_hash, signed_at, COALESCE(metadata, '') AS metadata
		FROM signatures
		WHERE document_uuid = $1 AND LOWER(signer_email) = LOWER($2)
	`

	var signature model.Signature
	err := sqlx.GetContext(ctx, exec, &signature, query, documentUUID, signerEmail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &signature, nil
}

// ListCertifiers : кто уже подписал документ, в порядке подписания
func (r *SignatureRepository) ListCertifiers(ctx context.Context, exec sqlx.ExtContext, documentUUID string) ([]model.Certifier, error) {
	query := `
		SELECT signer_name, signer_email, signed_at
		FROM signatures
		WHERE document_uuid = $1
		ORDER BY signed_at ASC
	`

	certifiers := []model.Certifier{}
	if err := sqlx.SelectContext(ctx, exec, &certifiers, query, documentUUID); err != nil {
		return nil, util.LogError("[SignatureRepo] не удалось получить список подписантов", err)
	}
	return certifiers, nil
}
