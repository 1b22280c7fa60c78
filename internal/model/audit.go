package model

import "time"

const (
	AuditDocumentCreated      = "document_created"
	AuditDocumentDeleted      = "document_deleted"
	AuditLinkCreated          = "link_created"
	AuditLinkResolved         = "link_resolved"
	AuditLinkRevoked          = "link_revoked"
	AuditCertificateGenerated = "certificate_generated"
	AuditSignatureSubmitted   = "signature_submitted"
	AuditSignedCopyComposed   = "signed_copy_composed"
)

// AuditLogEntry : append-only запись. IP сюда попадает только в виде хэша.
type AuditLogEntry struct {
	UUID         string    `db:"uuid" json:"uuid"`
	Action       string    `db:"action" json:"action"`
	DocumentUUID string    `db:"document_uuid" json:"document_uuid"`
	LinkUUID     *string   `db:"link_uuid" json:"link_uuid,omitempty"`
	IPHash       string    `db:"ip_hash" json:"ip_hash"`
	UserAgent    string    `db:"user_agent" json:"user_agent"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
