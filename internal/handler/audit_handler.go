package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	requestresponse "doctrust-server/internal/model/requestresponse"
	"doctrust-server/internal/ports"
	"doctrust-server/internal/security"
	"doctrust-server/internal/util"

	"github.com/go-chi/chi/v5"
)

type AuditHandler struct {
	ports.AuditService
}

func NewAuditHandler(auditService ports.AuditService) *AuditHandler {
	return &AuditHandler{auditService}
}

// ListAudit godoc
// @Summary Журнал действий над документом
// @Description Возвращает записи аудита документа, новые сверху. Доступно только владельцу.
// @Tags Audit
// @Accept json
// @Produce json
// @Param doc_id path string true "UUID документа"
// @Param limit query int false "Максимальное количество записей" default(100)
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListAuditResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id}/audit [get]
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
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

	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			util.HandleError(w, "неверный формат limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := h.AuditService.ListByDocument(r.Context(), docUUID, claims.UserUUID, limit)
	if err != nil {
		log.Println(err)
		util.HandleServiceError(w, err)
		return
	}

	items := make([]requestresponse.AuditEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, requestresponse.AuditEntryResponseFromModel(&entries[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requestresponse.ListAuditResponse{Data: items})
}
