package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	requestresponse "doctrust-server/internal/model/requestresponse"
	"doctrust-server/internal/ports"
	"doctrust-server/internal/security"
	"doctrust-server/internal/util"

	"github.com/go-chi/chi/v5"
)

type CertificateHandler struct {
	ports.CertificateService
	ipHasher *security.IPHasher
}

func NewCertificateHandler(certificateService ports.CertificateService, ipHasher *security.IPHasher) *CertificateHandler {
	return &CertificateHandler{certificateService, ipHasher}
}

// GenerateCertificate godoc
// @Summary Генерация сертификата подлинности
// @Description Строит PDF-сертификат с мета-данными документа, загружает в S3 и сохраняет запись. Каждый вызов создаёт новый сертификат.
// @Tags Certificates
// @Accept json
// @Produce json
// @Param doc_id path string true "UUID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.GenerateCertificateResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id}/certificate [post]
func (h *CertificateHandler) GenerateCertificate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	docUUID := chi.URLParam(r, "doc_id")
	if docUUID == "" {
		util.HandleError(w, "ID документа обязателен", http.StatusBadRequest)
		return
	}

	result, err := h.CertificateService.Generate(ctx, docUUID, auditInfo(r, h.ipHasher))
	if err != nil {
		log.Println(err)
		util.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(requestresponse.GenerateCertificateResponse{
		Data: requestresponse.CertificateResponseFromModel(result.Certificate, result.GetURL),
	})
}

// GetLatestCertificate godoc
// @Summary Последний сертификат документа
// @Description Возвращает самый свежий сертификат со свежей pre-signed ссылкой.
// @Tags Certificates
// @Accept json
// @Produce json
// @Param doc_id path string true "UUID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.GenerateCertificateResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id}/certificate [get]
func (h *CertificateHandler) GetLatestCertificate(w http.ResponseWriter, r *http.Request) {
	docUUID := chi.URLParam(r, "doc_id")
	if docUUID == "" {
		util.HandleError(w, "ID документа обязателен", http.StatusBadRequest)
		return
	}

	result, err := h.CertificateService.GetLatest(r.Context(), docUUID)
	if err != nil {
		log.Println(err)
		util.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requestresponse.GenerateCertificateResponse{
		Data: requestresponse.CertificateResponseFromModel(result.Certificate, result.GetURL),
	})
}
