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

type CertificateRepository struct {
	*config.Database
}

func NewCertificateRepository(database *config.Database) *CertificateRepository {
	return &CertificateRepository{database}
}

func (r *CertificateRepository) Create(ctx context.Context, exec sqlx.ExtContext, cert *model.Certificate) error {
	query := `
		INSERT INTO certificates (uuid, document_uuid, cert_sha256, storage_path, signer_key_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := exec.ExecContext(
		ctx,
		query,
		cert.UUID,
		cert.DocumentUUID,
		cert.CertSha256,
		cert.StoragePath,
		cert.SignerKeyID)

	if err != nil {
		return util.LogError("[CertificateRepo] не удалось сохранить сертификат", err)
	}
	return nil
}

// GetLatestByDocument : уникальности сертификатов на документ нет,
// читатели берут самый свежий
func (r *CertificateRepository) GetLatestByDocument(ctx context.Context, exec sqlx.ExtContext, documentUUID string) (*model.Certificate, error) {
	query := `
		SELECT uuid, document_uuid, cert_sha256, storage_path, signer_key_id, created_at
		FROM certificates
		WHERE document_uuid = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var cert model.Certificate
	err := sqlx.GetContext(ctx, exec, &cert, query, documentUUID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &cert, nil
}
