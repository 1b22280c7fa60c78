package model

import "time"

// Certificate : сгенерированный сертификат подлинности документа.
// CertSha256 — хэш байтов самого сертификата, не хэш исходного документа.
type Certificate struct {
	UUID         string    `db:"uuid" json:"uuid"`
	DocumentUUID string    `db:"document_uuid" json:"document_uuid"`
	CertSha256   string    `db:"cert_sha256" json:"cert_sha256"`
	StoragePath  string    `db:"storage_path" json:"storage_path"`
	SignerKeyID  string    `db:"signer_key_id" json:"signer_key_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type GenerateCertificateResult struct {
	Certificate *Certificate
	GetURL      string
}
