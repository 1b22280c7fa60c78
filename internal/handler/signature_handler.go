package handler

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"doctrust-server/internal/model"
	requestresponse "doctrust-server/internal/model/requestresponse"
	"doctrust-server/internal/ports"
	"doctrust-server/internal/security"
	"doctrust-server/internal/util"

	"github.com/go-chi/chi/v5"
)

// Подписи собираются с внешних устройств, картинки маленькие
const maxSignatureImageBytes = 5 << 20

type SignatureHandler struct {
	ports.SignatureService
	ipHasher *security.IPHasher
}

func NewSignatureHandler(signatureService ports.SignatureService, ipHasher *security.IPHasher) *SignatureHandler {
	return &SignatureHandler{signatureService, ipHasher}
}

// CreateField godoc
// @Summary Создание поля подписи
// @Description Владелец размечает место подписи: страница, прямоугольник от левого верхнего угла, назначенный email.
// @Tags Signatures
// @Accept json
// @Produce json
// @Param doc_id path string true "UUID документа"
// @Param request body requestresponse.CreateFieldRequest true "Параметры поля"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.CreateFieldResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id}/fields [post]
func (h *SignatureHandler) CreateField(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	docUUID := chi.URLParam(r, "doc_id")
	if docUUID == "" {
		util.HandleError(w, "ID документа обязателен", http.StatusBadRequest)
		return
	}

	claims, ok := ctx.Value(security.UserContextKey).(*security.Claims)
	if ok == false || claims == nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var req requestresponse.CreateFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	field := &model.SignatureField{
		DocumentUUID:  docUUID,
		AssignedEmail: req.AssignedEmail,
		Page:          req.Page,
		X:             req.X,
		Y:             req.Y,
		Width:         req.Width,
		Height:        req.Height,
		OrderIndex:    req.OrderIndex,
		CreatedAt:     time.Now(),
	}

	if err := h.SignatureService.CreateField(ctx, field, claims.UserUUID); err != nil {
		log.Println(err)
		util.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(requestresponse.CreateFieldResponse{
		Data: requestresponse.FieldResponseFromModel(field),
	})
}

// ListFields godoc
// @Summary Поля подписи документа
// @Description Возвращает поля подписи в порядке order_index.
// @Tags Signatures
// @Accept json
// @Produce json
// @Param doc_id path string true "UUID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListFieldsResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id}/fields [get]
func (h *SignatureHandler) ListFields(w http.ResponseWriter, r *http.Request) {
	docUUID := chi.URLParam(r, "doc_id")
	if docUUID == "" {
		util.HandleError(w, "ID документа обязателен", http.StatusBadRequest)
		return
	}

	claims, ok := r.Context().Value(security.UserContextKey).(*security.Claims)
	if ok == false || claims == nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	fields, err := h.SignatureService.ListFields(r.Context(), docUUID, claims.UserUUID)
	if err != nil {
		log.Println(err)
		util.HandleServiceError(w, err)
		return
	}

	items := make([]requestresponse.FieldResponse, 0, len(fields))
	for i := range fields {
		items = append(items, requestresponse.FieldResponseFromModel(&fields[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requestresponse.ListFieldsResponse{Data: items})
}

// SubmitSignature godoc
// @Summary Приём подписи
// @Description Принимает картинку подписи (PNG или JPEG) с именем и email подписанта, multipart/form-data. Повторная подпись тем же email отклоняется.
// @Tags Signatures
// @Accept multipart/form-data
// @Produce json
// @Param doc_id path string true "UUID документа"
// @Param signer_name formData string true "Имя подписанта"
// @Param signer_email formData string true "Email подписанта"
// @Param image formData file true "Картинка подписи"
// @Param metadata formData string false "Произвольные мета-данные (JSON)"
// @Success 201 {object} requestresponse.SubmitSignatureResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse "Email уже подписывал документ"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id}/signatures [post]
func (h *SignatureHandler) SubmitSignature(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	docUUID := chi.URLParam(r, "doc_id")
	if docUUID == "" {
		util.HandleError(w, "ID документа обязателен", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxSignatureImageBytes); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		util.HandleError(w, "картинка подписи не найдена в запросе", http.StatusBadRequest)
		return
	}
	defer file.Close()

	imageBytes, err := io.ReadAll(io.LimitReader(file, maxSignatureImageBytes+1))
	if err != nil {
		util.HandleError(w, "ошибка чтения картинки", http.StatusInternalServerError)
		return
	}
	if len(imageBytes) > maxSignatureImageBytes {
		util.HandleError(w, "картинка подписи слишком большая", http.StatusBadRequest)
		return
	}

	var creatorUUID string
	if claims, ok := ctx.Value(security.UserContextKey).(*security.Claims); ok && claims != nil {
		creatorUUID = claims.UserUUID
	}

	signature, err := h.SignatureService.Submit(ctx, ports.SubmitSignatureParams{
		DocumentUUID: docUUID,
		SignerName:   r.FormValue("signer_name"),
		SignerEmail:  r.FormValue("signer_email"),
		ImageBytes:   imageBytes,
		ImageExt:     filepath.Ext(header.Filename),
		CreatorUUID:  creatorUUID,
		Metadata:     r.FormValue("metadata"),
		Audit:        auditInfo(r, h.ipHasher),
	})
	if err != nil {
		log.Println(err)
		util.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(requestresponse.SubmitSignatureResponse{
		Data: requestresponse.SignatureResponseFromModel(signature),
	})
}

// ComposeSignedCopy godoc
// @Summary Сборка подписанной копии
// @Description Накладывает собранные подписи на оригинальный PDF и возвращает ссылку на новую копию. Каждый вызов создаёт новый файл.
// @Tags Signatures
// @Accept json
// @Produce json
// @Param doc_id path string true "UUID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.ComposeResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id}/compose [post]
func (h *SignatureHandler) ComposeSignedCopy(w http.ResponseWriter, r *http.Request) {
	// сборка читает оригинал и все картинки подписей, даём больше времени
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	docUUID := chi.URLParam(r, "doc_id")
	if docUUID == "" {
		util.HandleError(w, "ID документа обязателен", http.StatusBadRequest)
		return
	}

	claims, ok := ctx.Value(security.UserContextKey).(*security.Claims)
	if ok == false || claims == nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	result, err := h.SignatureService.Compose(ctx, docUUID, claims.UserUUID, auditInfo(r, h.ipHasher))
	if err != nil {
		log.Println(err)
		util.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(requestresponse.ComposeResponse{
		Data: requestresponse.ComposeData{
			StoragePath: result.StoragePath,
			GetURL:      result.GetURL,
		},
	})
}
