package requestresponse

import (
	"time"

	"doctrust-server/internal/model"
)

// AuditEntryResponse : запись журнала действий для JSON-ответа
type AuditEntryResponse struct {
	UUID         string  `json:"id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	Action       string  `json:"action" example:"link_resolved"`
	DocumentUUID string  `json:"document_uuid" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	LinkUUID     *string `json:"link_uuid,omitempty"`
	IPHash       string  `json:"ip_hash" example:"9f86d081884c7d65..."`
	UserAgent    string  `json:"user_agent" example:"Mozilla/5.0"`
	CreatedAt    string  `json:"created" example:"2025-08-23T12:34:56Z"`
}

// ListAuditResponse : журнал действий над документом
type ListAuditResponse struct {
	Data []AuditEntryResponse `json:"data"`
}

// AuditEntryResponseFromModel : конвертирует model.AuditLogEntry в AuditEntryResponse
func AuditEntryResponseFromModel(entry *model.AuditLogEntry) AuditEntryResponse {
	return AuditEntryResponse{
		UUID:         entry.UUID,
		Action:       entry.Action,
		DocumentUUID: entry.DocumentUUID,
		LinkUUID:     entry.LinkUUID,
		IPHash:       entry.IPHash,
		UserAgent:    entry.UserAgent,
		CreatedAt:    entry.CreatedAt.Format(time.RFC3339),
	}
}
