package util

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"doctrust-server/internal/apperr"
)

func LogError(message string, err error) error {
	log.Printf("%s: %v", message, err)
	return fmt.Errorf("%s: %w", message, err)
}

func HandleError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    int    `json:"code"`
	}{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	json.NewEncoder(w).Encode(errorResponse)
}

// HandleServiceError : переводит ошибку сервиса в HTTP ответ по её коду,
// наружу уходит только короткое сообщение без внутренних деталей
func HandleServiceError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if retryAfter := apperr.RetryAfter(err); retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds()+1)))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errorResponse := struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    string `json:"code,omitempty"`
	}{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    apperr.TextCode(err),
	}

	json.NewEncoder(w).Encode(errorResponse)
}
