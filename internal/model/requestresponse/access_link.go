package requestresponse

import (
	"time"

	"doctrust-server/internal/model"
)

// IssueLinkRequest : тело запроса на выпуск ссылки доступа
type IssueLinkRequest struct {
	Scope           string `json:"scope" example:"download"`
	TTLSeconds      int64  `json:"ttl_seconds" example:"86400"`
	MaxUses         *int   `json:"max_uses,omitempty" example:"1"`
	RestrictedEmail string `json:"restricted_email,omitempty" example:"signer@example.com"`
}

// LinkResponse : описывает ссылку доступа для JSON-ответа
type LinkResponse struct {
	UUID            string `json:"id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	Token           string `json:"token" example:"3f9c0a1b2d4e5f60718293a4b5c6d7e8"`
	DocumentUUID    string `json:"document_uuid" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	Scope           string `json:"scope" example:"view"`
	ExpiresAt       string `json:"expires_at" example:"2025-08-24T12:34:56Z"`
	MaxUses         *int   `json:"max_uses,omitempty" example:"1"`
	UsedCount       int    `json:"used_count" example:"0"`
	RestrictedEmail string `json:"restricted_email,omitempty"`
	CreatedAt       string `json:"created" example:"2025-08-23T12:34:56Z"`
}

// LinkResponseFromModel : конвертирует model.AccessLink в LinkResponse
func LinkResponseFromModel(link *model.AccessLink) LinkResponse {
	return LinkResponse{
		UUID:            link.UUID,
		Token:           link.Token,
		DocumentUUID:    link.DocumentUUID,
		Scope:           link.Scope,
		ExpiresAt:       link.ExpiresAt.Format(time.RFC3339),
		MaxUses:         link.MaxUses,
		UsedCount:       link.UsedCount,
		RestrictedEmail: link.RestrictedEmail,
		CreatedAt:       link.CreatedAt.Format(time.RFC3339),
	}
}

// IssueLinkResponse : ответ на выпуск ссылки
type IssueLinkResponse struct {
	Data LinkResponse `json:"data"`
}

// CertifierResponse : подписант в ответе резолва ссылки
type CertifierResponse struct {
	SignerName  string `json:"signer_name" example:"Ivan Petrov"`
	SignerEmail string `json:"signer_email" example:"signer@example.com"`
	SignedAt    string `json:"signed_at" example:"2025-08-23T12:34:56Z"`
}

// ResolveLinkResponse : ответ на резолв ссылки доступа
type ResolveLinkResponse struct {
	Data ResolveLinkData `json:"data"`
}

type ResolveLinkData struct {
	Document   DocumentResponse    `json:"document"`
	Scope      string              `json:"scope" example:"view"`
	Certifiers []CertifierResponse `json:"certifiers"`
	GetURL     string              `json:"get_url,omitempty"`
}

// ResolveLinkResponseFromModel : конвертирует результат резолва в JSON-ответ
func ResolveLinkResponseFromModel(result *model.ResolveLinkResult) ResolveLinkResponse {
	certifiers := make([]CertifierResponse, 0, len(result.Certifiers))
	for _, c := range result.Certifiers {
		certifiers = append(certifiers, CertifierResponse{
			SignerName:  c.SignerName,
			SignerEmail: c.SignerEmail,
			SignedAt:    c.SignedAt.Format(time.RFC3339),
		})
	}
	return ResolveLinkResponse{
		Data: ResolveLinkData{
			Document:   DocumentResponseFromModel(result.Document, ""),
			Scope:      result.Link.Scope,
			Certifiers: certifiers,
			GetURL:     result.GetURL,
		},
	}
}
