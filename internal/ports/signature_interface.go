package ports

import (
	"context"

	"doctrust-server/internal/model"
	"github.com/jmoiron/sqlx"
)

type SignatureRepository interface {
	CreateField(ctx context.Context, exec sqlx.ExtContext, field *model.SignatureField) error
	ListFields(ctx context.Context, exec sqlx.ExtContext, documentUUID string) ([]model.SignatureField, error)
	CreateSignature(ctx context.Context, exec sqlx.ExtContext, signature *model.Signature) error
	ListSignatures(ctx context.Context, exec sqlx.ExtContext, documentUUID string) ([]model.Signature, error)
	GetByDocumentAndEmail(ctx context.Context, exec sqlx.ExtContext, documentUUID, signerEmail string) (*model.Signature, error)
	ListCertifiers(ctx context.Context, exec sqlx.ExtContext, documentUUID string) ([]model.Certifier, error)
}

type SubmitSignatureParams struct {
	DocumentUUID string
	SignerName   string
	SignerEmail  string
	ImageBytes   []byte
	ImageExt     string
	CreatorUUID  string
	Metadata     string
	Audit        AuditInfo
}

type SignatureService interface {
	CreateField(ctx context.Context, field *model.SignatureField, callerUUID string) error
	ListFields(ctx context.Context, documentUUID string, callerUUID string) ([]model.SignatureField, error)
	Submit(ctx context.Context, params SubmitSignatureParams) (*model.Signature, error)
	Compose(ctx context.Context, documentUUID string, callerUUID string, audit AuditInfo) (*model.ComposeResult, error)
}
