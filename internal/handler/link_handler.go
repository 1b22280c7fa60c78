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

type LinkHandler struct {
	ports.LinkService
	ipHasher *security.IPHasher
}

func NewLinkHandler(linkService ports.LinkService, ipHasher *security.IPHasher) *LinkHandler {
	return &LinkHandler{linkService, ipHasher}
}

// IssueLink godoc
// @Summary Выпуск ссылки доступа к документу
// @Description Владелец выпускает токенизированную ссылку со scope, сроком жизни, лимитом использований и опциональной привязкой к email.
// @Tags Links
// @Accept json
// @Produce json
// @Param doc_id path string true "UUID документа"
// @Param request body requestresponse.IssueLinkRequest true "Параметры ссылки"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.IssueLinkResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id}/links [post]
func (h *LinkHandler) IssueLink(w http.ResponseWriter, r *http.Request) {
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

	var req requestresponse.IssueLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	link, err := h.LinkService.IssueLink(ctx, ports.IssueLinkParams{
		DocumentUUID:    docUUID,
		CallerUUID:      claims.UserUUID,
		Scope:           req.Scope,
		TTL:             time.Duration(req.TTLSeconds) * time.Second,
		MaxUses:         req.MaxUses,
		RestrictedEmail: req.RestrictedEmail,
		Audit:           auditInfo(r, h.ipHasher),
	})
	if err != nil {
		log.Println(err)
		util.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(requestresponse.IssueLinkResponse{
		Data: requestresponse.LinkResponseFromModel(link),
	})
}

// ResolveLink godoc
// @Summary Резолв ссылки доступа
// @Description Проверяет состояние ссылки, инкрементирует счётчик использований и возвращает документ с подписантами. Для ограниченных ссылок email берётся из Bearer токена, иначе из query-параметра email.
// @Tags Links
// @Accept json
// @Produce json
// @Param token path string true "Токен ссылки"
// @Param email query string false "Email для ограниченных ссылок (если нет Bearer токена)"
// @Success 200 {object} requestresponse.ResolveLinkResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Отозвана или чужой email"
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 410 {object} requestresponse.ErrorResponse "Истёк срок действия"
// @Failure 429 {object} requestresponse.ErrorResponse "Исчерпан лимит использований"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/links/{token} [get]
func (h *LinkHandler) ResolveLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	token := chi.URLParam(r, "token")
	if token == "" {
		util.HandleError(w, "токен ссылки обязателен", http.StatusBadRequest)
		return
	}

	callerEmail := r.URL.Query().Get("email")
	if claims, ok := ctx.Value(security.UserContextKey).(*security.Claims); ok && claims != nil {
		callerEmail = claims.Email
	}

	result, err := h.LinkService.ResolveLink(ctx, token, callerEmail, auditInfo(r, h.ipHasher))
	if err != nil {
		log.Println(err)
		util.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requestresponse.ResolveLinkResponseFromModel(result))
}

// RevokeLink godoc
// @Summary Отзыв ссылки доступа
// @Description Владелец документа отзывает ссылку. Повторный отзыв безвреден.
// @Tags Links
// @Accept json
// @Produce json
// @Param token path string true "Токен ссылки"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ResponseMessage
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/links/{token} [delete]
func (h *LinkHandler) RevokeLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	token := chi.URLParam(r, "token")
	if token == "" {
		util.HandleError(w, "токен ссылки обязателен", http.StatusBadRequest)
		return
	}

	claims, ok := ctx.Value(security.UserContextKey).(*security.Claims)
	if ok == false || claims == nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	if err := h.LinkService.RevokeLink(ctx, token, claims.UserUUID, auditInfo(r, h.ipHasher)); err != nil {
		log.Println(err)
		util.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requestresponse.ResponseMessage{
		Response: map[string]interface{}{"revoked": true},
	})
}
