package ports

import (
	"context"

	"doctrust-server/internal/model"
	"github.com/jmoiron/sqlx"
)

type CertificateRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, cert *model.Certificate) error
	GetLatestByDocument(ctx context.Context, exec sqlx.ExtContext, documentUUID string) (*model.Certificate, error)
}

type CertificateService interface {
	Generate(ctx context.Context, documentUUID string, audit AuditInfo) (*model.GenerateCertificateResult, error)
	GetLatest(ctx context.Context, documentUUID string) (*model.GenerateCertificateResult, error)
}
