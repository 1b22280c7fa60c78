package apperr

import (
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Текстовые коды, по которым клиент различает причину отказа.
// Сопоставление с HTTP статусом делается здесь и только здесь —
// никакого разбора текста ошибок по подстрокам.
const (
	CodeValidation       = "validation_failed"
	CodeUnauthenticated  = "unauthenticated"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeConflict         = "conflict"
	CodeLinkExpired      = "link_expired"
	CodeLinkRevoked      = "link_revoked"
	CodeLinkExhausted    = "link_exhausted"
	CodeRateLimited      = "rate_limited"
	CodeStorage          = "storage_error"
	CodeInternal         = "internal_error"
)

func Validation(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryValidation).
		WithCode(http.StatusBadRequest).
		WithTextCode(CodeValidation)
}

func Unauthenticated(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(CodeUnauthenticated)
}

func Forbidden(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryAuthz).
		WithCode(http.StatusForbidden).
		WithTextCode(CodeForbidden)
}

func NotFound(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(CodeNotFound)
}

func Conflict(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryConflict).
		WithCode(http.StatusConflict).
		WithTextCode(CodeConflict)
}

// LinkExpired : срок действия ссылки вышел → 410
func LinkExpired(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryAuthz).
		WithCode(http.StatusGone).
		WithTextCode(CodeLinkExpired)
}

// LinkRevoked : ссылка отозвана владельцем → 403
func LinkRevoked(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryAuthz).
		WithCode(http.StatusForbidden).
		WithTextCode(CodeLinkRevoked)
}

// LinkExhausted : лимит использований исчерпан → 429
func LinkExhausted(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryRateLimit).
		WithCode(http.StatusTooManyRequests).
		WithTextCode(CodeLinkExhausted)
}

// RateLimited : превышена частота запросов, retryAfter уходит клиенту в metadata
func RateLimited(message string, retryAfter time.Duration) *goerrors.Error {
	e := goerrors.New(message, goerrors.CategoryRateLimit).
		WithCode(http.StatusTooManyRequests).
		WithTextCode(CodeRateLimited)
	if retryAfter > 0 {
		e = e.WithMetadata(map[string]any{
			"retry_after_ms": retryAfter.Milliseconds(),
		})
	}
	return e
}

func Storage(err error, message string) *goerrors.Error {
	if err == nil {
		return goerrors.New(message, goerrors.CategoryExternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(CodeStorage)
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, message).
		WithCode(http.StatusInternalServerError).
		WithTextCode(CodeStorage)
}

func Internal(err error, message string) *goerrors.Error {
	if err == nil {
		return goerrors.New(message, goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(CodeInternal)
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithCode(http.StatusInternalServerError).
		WithTextCode(CodeInternal)
}

// TextCode : достаёт текстовый код, если ошибка наша
func TextCode(err error) string {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode
	}
	return ""
}

// HTTPStatus : статус для клиента; всё неопознанное — 500
func HTTPStatus(err error) int {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.Code != 0 {
		return rich.Code
	}
	return http.StatusInternalServerError
}

// RetryAfter : подсказка клиенту при 429, ноль если её нет
func RetryAfter(err error) time.Duration {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.Metadata != nil {
		if ms, ok := rich.Metadata["retry_after_ms"].(int64); ok {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return 0
}
