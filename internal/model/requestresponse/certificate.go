package requestresponse

import (
	"time"

	"doctrust-server/internal/model"
)

// CertificateResponse : описывает сертификат подлинности для JSON-ответа
type CertificateResponse struct {
	UUID         string `json:"id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	DocumentUUID string `json:"document_uuid" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	CertSha256   string `json:"cert_sha256" example:"9f86d081884c7d659a2feaa0c55ad015..."`
	SignerKeyID  string `json:"signer_key_id" example:"doctrust-2025"`
	CreatedAt    string `json:"created" example:"2025-08-23T12:34:56Z"`
	GetURL       string `json:"get_url,omitempty"`
}

// GenerateCertificateResponse : ответ на генерацию или получение сертификата
type GenerateCertificateResponse struct {
	Data CertificateResponse `json:"data"`
}

// CertificateResponseFromModel : конвертирует model.Certificate в CertificateResponse
func CertificateResponseFromModel(cert *model.Certificate, getURL string) CertificateResponse {
	return CertificateResponse{
		UUID:         cert.UUID,
		DocumentUUID: cert.DocumentUUID,
		CertSha256:   cert.CertSha256,
		SignerKeyID:  cert.SignerKeyID,
		CreatedAt:    cert.CreatedAt.Format(time.RFC3339),
		GetURL:       getURL,
	}
}
