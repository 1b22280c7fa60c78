package model

import "time"

const (
	LinkScopeView     = "view"
	LinkScopeDownload = "download"
)

// AccessLink : токен временного доступа к документу.
// Строка создаётся один раз, дальше меняются только used_count и revoked_at.
type AccessLink struct {
	UUID            string     `db:"uuid" json:"uuid"`
	Token           string     `db:"token" json:"token"`
	DocumentUUID    string     `db:"document_uuid" json:"document_uuid"`
	Scope           string     `db:"scope" json:"scope"`
	ExpiresAt       time.Time  `db:"expires_at" json:"expires_at"`
	MaxUses         *int       `db:"max_uses" json:"max_uses,omitempty"` // nil = без лимита
	UsedCount       int        `db:"used_count" json:"used_count"`
	RevokedAt       *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	RestrictedEmail string     `db:"restricted_email" json:"restricted_email,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// IsActive : ссылка жива, если не отозвана, не истекла и лимит не исчерпан
func (l *AccessLink) IsActive(now time.Time) bool {
	if l.RevokedAt != nil {
		return false
	}
	if !now.Before(l.ExpiresAt) {
		return false
	}
	if l.MaxUses != nil && l.UsedCount >= *l.MaxUses {
		return false
	}
	return true
}

// Certifier : тот, кто уже подписал документ (для выдачи при резолве ссылки)
type Certifier struct {
	SignerName  string    `db:"signer_name" json:"signer_name"`
	SignerEmail string    `db:"signer_email" json:"signer_email"`
	SignedAt    time.Time `db:"signed_at" json:"signed_at"`
}

type ResolveLinkResult struct {
	Link       *AccessLink
	Document   *Document
	Certifiers []Certifier
	GetURL     string // pre-signed URL в зависимости от scope
}
