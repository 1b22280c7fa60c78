package requestresponse

import (
	"time"

	"doctrust-server/internal/model"
)

// CreateDocumentRequest : представляет мета-данные документа
type CreateDocumentRequest struct {
	Name string `json:"name" example:"contract.pdf"`
	Mime string `json:"mime" example:"application/pdf"`
}

// CreateDocumentResponse : описывает ответ при создании документа
type CreateDocumentResponse struct {
	Data CreateDocumentData `json:"data"`
}

type CreateDocumentData struct {
	Document DocumentResponse `json:"document"`
	PutURL   string           `json:"put_url" example:"https://s3.example.com/documents/..."`
}

// GetDocumentResponse : описывает ответ для одного документа
type GetDocumentResponse struct {
	Data DocumentResponse `json:"data"`
}

// ListDocumentsResponse : список документов владельца
type ListDocumentsResponse struct {
	Data []DocumentResponse `json:"data"`
}

// DocumentResponse : описывает документ для JSON-ответа
type DocumentResponse struct {
	UUID             string `json:"id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	FilenameOriginal string `json:"name" example:"contract.pdf"`
	MimeType         string `json:"mime" example:"application/pdf"`
	SizeBytes        int64  `json:"size" example:"102400"`
	Sha256           string `json:"sha256" example:"9f86d081884c7d659a2feaa0c55ad015..."`
	CreatedAt        string `json:"created" example:"2025-08-23T12:34:56Z"`
	GetURL           string `json:"get_url,omitempty"`
}

// DocumentResponseFromModel : конвертирует model.Document в DocumentResponse
func DocumentResponseFromModel(doc *model.Document, getURL string) DocumentResponse {
	return DocumentResponse{
		UUID:             doc.UUID,
		FilenameOriginal: doc.FilenameOriginal,
		MimeType:         doc.MimeType,
		SizeBytes:        doc.SizeBytes,
		Sha256:           doc.Sha256,
		CreatedAt:        doc.CreatedAt.Format(time.RFC3339),
		GetURL:           getURL,
	}
}

// ShareDocumentRequest : представляет тело запроса для предоставления доступа
type ShareDocumentRequest struct {
	TargetUserUUID string `json:"target_user_uuid" example:"user-uuid-1234"`
}

// RemoveGrantRequest : представляет тело запроса для удаления гранта доступа к документу
type RemoveGrantRequest struct {
	TargetUserUUID string `json:"target_user_uuid" validate:"required,uuid"`
}

// ErrorResponse : описывает тело ошибки
type ErrorResponse struct {
	Code int    `json:"code" example:"404"`
	Text string `json:"text" example:"документ не найден"`
}

// ResponseMessage : общий ответ для подтверждения действий
type ResponseMessage struct {
	Response map[string]interface{} `json:"response,omitempty"`
	Error    *ErrorResponse         `json:"error,omitempty"`
	Data     interface{}            `json:"data,omitempty"`
}
