package requestresponse

import (
	"time"

	"doctrust-server/internal/model"
)

// CreateFieldRequest : тело запроса на создание поля подписи
type CreateFieldRequest struct {
	AssignedEmail string  `json:"assigned_email" example:"signer@example.com"`
	Page          int     `json:"page" example:"1"`
	X             float64 `json:"x" example:"72.0"`
	Y             float64 `json:"y" example:"680.0"`
	Width         float64 `json:"width" example:"160.0"`
	Height        float64 `json:"height" example:"48.0"`
	OrderIndex    int     `json:"order_index" example:"0"`
}

// FieldResponse : описывает поле подписи для JSON-ответа
type FieldResponse struct {
	UUID          string  `json:"id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	DocumentUUID  string  `json:"document_uuid" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	AssignedEmail string  `json:"assigned_email" example:"signer@example.com"`
	Page          int     `json:"page" example:"1"`
	X             float64 `json:"x" example:"72.0"`
	Y             float64 `json:"y" example:"680.0"`
	Width         float64 `json:"width" example:"160.0"`
	Height        float64 `json:"height" example:"48.0"`
	OrderIndex    int     `json:"order_index" example:"0"`
	CreatedAt     string  `json:"created" example:"2025-08-23T12:34:56Z"`
}

// FieldResponseFromModel : конвертирует model.SignatureField в FieldResponse
func FieldResponseFromModel(field *model.SignatureField) FieldResponse {
	return FieldResponse{
		UUID:          field.UUID,
		DocumentUUID:  field.DocumentUUID,
		AssignedEmail: field.AssignedEmail,
		Page:          field.Page,
		X:             field.X,
		Y:             field.Y,
		Width:         field.Width,
		Height:        field.Height,
		OrderIndex:    field.OrderIndex,
		CreatedAt:     field.CreatedAt.Format(time.RFC3339),
	}
}

// CreateFieldResponse : ответ на создание поля подписи
type CreateFieldResponse struct {
	Data FieldResponse `json:"data"`
}

// ListFieldsResponse : список полей подписи документа
type ListFieldsResponse struct {
	Data []FieldResponse `json:"data"`
}

// SignatureResponse : описывает принятую подпись для JSON-ответа
type SignatureResponse struct {
	UUID         string `json:"id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	DocumentUUID string `json:"document_uuid" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	SignerName   string `json:"signer_name" example:"Ivan Petrov"`
	SignerEmail  string `json:"signer_email" example:"signer@example.com"`
	SignedAt     string `json:"signed_at" example:"2025-08-23T12:34:56Z"`
}

// SubmitSignatureResponse : ответ на приём подписи
type SubmitSignatureResponse struct {
	Data SignatureResponse `json:"data"`
}

// SignatureResponseFromModel : конвертирует model.Signature в SignatureResponse
func SignatureResponseFromModel(sig *model.Signature) SignatureResponse {
	return SignatureResponse{
		UUID:         sig.UUID,
		DocumentUUID: sig.DocumentUUID,
		SignerName:   sig.SignerName,
		SignerEmail:  sig.SignerEmail,
		SignedAt:     sig.SignedAt.Format(time.RFC3339),
	}
}

// ComposeResponse : ответ на сборку подписанной копии
type ComposeResponse struct {
	Data ComposeData `json:"data"`
}

type ComposeData struct {
	StoragePath string `json:"storage_path" example:"documents/doc-uuid/signed/out-uuid.pdf"`
	GetURL      string `json:"get_url" example:"https://s3.example.com/documents/..."`
}
