package ports

import (
	"context"
	"doctrust-server/internal/model"
	"github.com/jmoiron/sqlx"
)

// DocumentRepository : SQL слой
type DocumentRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, document *model.Document) error
	GetByUUID(ctx context.Context, exec sqlx.ExtContext, documentUUID string) (*model.Document, error)
	ListByOwner(ctx context.Context, exec sqlx.ExtContext, ownerUUID string, limit int) ([]model.Document, error)
	Delete(ctx context.Context, exec sqlx.ExtContext, documentUUID string, ownerUUID string) ([]string, error)
	HasSignatures(ctx context.Context, exec sqlx.ExtContext, documentUUID string) (bool, error)
}

type GrantDocumentRepository interface {
	AddGrant(ctx context.Context, exec sqlx.ExtContext, documentUUID string, targetUserUUID string) error
	RemoveGrant(ctx context.Context, exec sqlx.ExtContext, documentUUID, userUUID string) error
	CheckOwner(ctx context.Context, exec sqlx.ExtContext, documentUUID, ownerUUID string) (bool, error)
	HasAccess(ctx context.Context, exec sqlx.ExtContext, documentUUID, userUUID string) (bool, error)
}

type DocumentService interface {
	CreateDocument(ctx context.Context, document *model.Document, audit AuditInfo) (string, error)
	GetDocumentByUUID(ctx context.Context, documentUUID string) (*model.GetDocumentResult, error)
	ListDocuments(ctx context.Context, ownerUUID string, limit int) ([]model.Document, error)
	DeleteDocument(ctx context.Context, documentUUID string, userUUID string, audit AuditInfo) error
	AddGrant(ctx context.Context, documentUUID, ownerUUID, targetUserUUID string) error
	RemoveGrant(ctx context.Context, documentUUID, ownerUUID, targetUserUUID string) error
}
