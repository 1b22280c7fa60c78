package ports

import (
	"context"
	"time"

	"doctrust-server/internal/model"
	"github.com/jmoiron/sqlx"
)

type LinkRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, link *model.AccessLink) error
	GetByToken(ctx context.Context, exec sqlx.ExtContext, token string) (*model.AccessLink, error)
	UpdateUsedCount(ctx context.Context, exec sqlx.ExtContext, linkUUID string, usedCount int) error
	Revoke(ctx context.Context, exec sqlx.ExtContext, token string) error
}

type IssueLinkParams struct {
	DocumentUUID    string
	CallerUUID      string
	Scope           string
	TTL             time.Duration
	MaxUses         *int
	RestrictedEmail string
	Audit           AuditInfo
}

type LinkService interface {
	IssueLink(ctx context.Context, params IssueLinkParams) (*model.AccessLink, error)
	ResolveLink(ctx context.Context, token string, callerEmail string, audit AuditInfo) (*model.ResolveLinkResult, error)
	RevokeLink(ctx context.Context, token string, callerUUID string, audit AuditInfo) error
}
