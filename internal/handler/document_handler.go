package handler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"doctrust-server/config"
	"doctrust-server/internal/model"
	requestresponse "doctrust-server/internal/model/requestresponse"
	"doctrust-server/internal/ports"
	"doctrust-server/internal/security"
	"doctrust-server/internal/util"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type DocumentHandler struct {
	ports.DocumentService
	ipHasher *security.IPHasher
	cfg      *config.TTL
}

func NewDocumentHandler(documentService ports.DocumentService, ipHasher *security.IPHasher, cfg *config.TTL) *DocumentHandler {
	return &DocumentHandler{documentService, ipHasher, cfg}
}

// auditInfo : собирает данные аудита на границе HTTP.
// IP анонимизируется до попадания в слой сервисов, сырой адрес дальше не уходит.
func auditInfo(r *http.Request, ipHasher *security.IPHasher) ports.AuditInfo {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return ports.AuditInfo{
		IPHash:    ipHasher.Hash(host),
		UserAgent: r.UserAgent(),
	}
}

// CreateDocument godoc
// @Summary Загрузка нового документа
// @Description Регистрирует мета-данные файла и возвращает pre-signed PUT URL, поддерживает multipart/form-data.
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Файл документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 202 {object} requestresponse.CreateDocumentResponse "Успешный ответ, содержит данные документа и pre-signed URL"
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный формат запроса или мета-данных"
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/docs [post]
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		util.HandleError(w, "файл не найден в запросе", http.StatusBadRequest)
		return
	}
	defer file.Close()

	claims, ok := ctx.Value(security.UserContextKey).(*security.Claims)
	if ok == false || claims == nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		util.HandleError(w, "ошибка чтения файла", http.StatusInternalServerError)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = util.GetContentType(header.Filename)
	}

	document := &model.Document{
		UUID:             uuid.New().String(),
		OwnerUUID:        claims.UserUUID,
		FilenameOriginal: header.Filename,
		SizeBytes:        int64(len(fileBytes)),
		MimeType:         mimeType,
		Sha256:           sha256Hex(fileBytes),
		CreatedAt:        time.Now(),
	}
	document.StoragePath = fmt.Sprintf("documents/%s/original%s",
		document.UUID,
		filepath.Ext(header.Filename),
	)

	putURL, err := h.DocumentService.CreateDocument(ctx, document, auditInfo(r, h.ipHasher))
	if err != nil {
		log.Println(err)
		util.HandleServiceError(w, err)
		return
	}

	// Тело уже в памяти, загружаем по pre-signed URL асинхронно
	uploader := util.NewS3Uploader()
	uploader.UploadAsync(putURL, fileBytes, mimeType)
	go h.monitorUpload(document.UUID, uploader)

	response := requestresponse.CreateDocumentResponse{
		Data: requestresponse.CreateDocumentData{
			Document: requestresponse.DocumentResponseFromModel(document, ""),
			PutURL:   putURL,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(response)
}

func (h *DocumentHandler) monitorUpload(documentUUID string, uploader *util.S3Uploader) {
	for {
		select {
		case err, ok := <-uploader.Errors():
			if ok == false {
				return
			}
			log.Printf("[DocumentHandler/MonitorUpload] ошибка загрузки документа %s: %v", documentUUID, err)

		case <-time.After(30 * time.Minute):
			log.Printf("[DocumentHandler/MonitorUpload] таймаут загрузки документа %s", documentUUID)
			return
		}
	}
}

// GetDocument godoc
// @Summary Получение документа по ID
// @Description Возвращает мета-данные документа и pre-signed GET URL.
// @Tags Documents
// @Accept json
// @Produce json
// @Param doc_id path string true "UUID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.GetDocumentResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id} [get]
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	docUUID := chi.URLParam(r, "doc_id")
	if docUUID == "" {
		util.HandleError(w, "ID документа обязателен", http.StatusBadRequest)
		return
	}

	result, err := h.DocumentService.GetDocumentByUUID(r.Context(), docUUID)
	if err != nil {
		log.Println(err)
		util.HandleServiceError(w, err)
		return
	}

	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", result.Document.MimeType)
		w.Header().Set("Content-Length", strconv.FormatInt(result.Document.SizeBytes, 10))
		w.WriteHeader(http.StatusOK)
		return
	}

	resp := requestresponse.GetDocumentResponse{
		Data: requestresponse.DocumentResponseFromModel(result.Document, result.GetURL),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetDocumentHead godoc
// @Summary Получение мета-данных документа по ID
// @Description Возвращает только заголовки документа.
// @Tags Documents
// @Accept json
// @Produce json
// @Param doc_id path string true "UUID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.GetDocumentResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id} [head]
func (h *DocumentHandler) GetDocumentHead(w http.ResponseWriter, r *http.Request) {
	h.GetDocument(w, r)
}

// ListDocuments godoc
// @Summary Список документов текущего пользователя
// @Description Возвращает документы владельца, отсортированные по дате создания.
// @Tags Documents
// @Accept json
// @Produce json
// @Param limit query int false "Максимальное количество документов" default(50)
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListDocumentsResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/docs [get]
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(security.UserContextKey).(*security.Claims)
	if ok == false || claims == nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			util.HandleError(w, "неверный формат limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	docs, err := h.DocumentService.ListDocuments(r.Context(), claims.UserUUID, limit)
	if err != nil {
		log.Println(err)
		util.HandleServiceError(w, err)
		return
	}

	items := make([]requestresponse.DocumentResponse, 0, len(docs))
	for i := range docs {
		items = append(items, requestresponse.DocumentResponseFromModel(&docs[i], ""))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requestresponse.ListDocumentsResponse{Data: items})
}

// DeleteDocument godoc
// @Summary Удаление документа
// @Description Удаляет документ вместе со ссылками, сертификатами и полями подписи. Документ с собранными подписями удалить нельзя.
// @Tags Documents
// @Accept json
// @Produce json
// @Param doc_id path string true "UUID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ResponseMessage
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id} [delete]
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
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

	if err := h.DocumentService.DeleteDocument(ctx, docUUID, claims.UserUUID, auditInfo(r, h.ipHasher)); err != nil {
		log.Println(err)
		util.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requestresponse.ResponseMessage{
		Response: map[string]interface{}{docUUID: true},
	})
}

// ShareDocument godoc
// @Summary Предоставление доступа к документу
// @Description Владелец выдаёт доступ другому пользователю.
// @Tags Documents
// @Accept json
// @Produce json
// @Param doc_id path string true "UUID документа"
// @Param request body requestresponse.ShareDocumentRequest true "UUID пользователя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ResponseMessage
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id}/share [post]
func (h *DocumentHandler) ShareDocument(w http.ResponseWriter, r *http.Request) {
	docUUID := chi.URLParam(r, "doc_id")

	claims, ok := r.Context().Value(security.UserContextKey).(*security.Claims)
	if ok == false || claims == nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var req requestresponse.ShareDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.TargetUserUUID) == "" {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.DocumentService.AddGrant(r.Context(), docUUID, claims.UserUUID, req.TargetUserUUID); err != nil {
		log.Println(err)
		util.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requestresponse.ResponseMessage{
		Response: map[string]interface{}{"shared": true},
	})
}

// RemoveGrant godoc
// @Summary Отзыв доступа к документу
// @Description Владелец отзывает доступ у пользователя.
// @Tags Documents
// @Accept json
// @Produce json
// @Param doc_id path string true "UUID документа"
// @Param request body requestresponse.RemoveGrantRequest true "UUID пользователя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ResponseMessage
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id}/share [delete]
func (h *DocumentHandler) RemoveGrant(w http.ResponseWriter, r *http.Request) {
	docUUID := chi.URLParam(r, "doc_id")

	claims, ok := r.Context().Value(security.UserContextKey).(*security.Claims)
	if ok == false || claims == nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var req requestresponse.RemoveGrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.TargetUserUUID) == "" {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.DocumentService.RemoveGrant(r.Context(), docUUID, claims.UserUUID, req.TargetUserUUID); err != nil {
		log.Println(err)
		util.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requestresponse.ResponseMessage{
		Response: map[string]interface{}{"removed": true},
	})
}

// sha256Hex : контрольная сумма содержимого файла
func sha256Hex(data []byte) string {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}
