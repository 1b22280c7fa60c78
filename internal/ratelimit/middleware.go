package ratelimit

import (
	"log"
	"net"
	"net/http"
	"time"

	"doctrust-server/internal/apperr"
	"doctrust-server/internal/ports"
	"doctrust-server/internal/security"
	"doctrust-server/internal/util"
)

// Middleware : проверяет лимит до выполнения операции.
// Авторизованные запросы считаются по uuid пользователя, анонимные — по IP
// (сырой IP живёт только как ключ в памяти и никуда не пишется).
func Middleware(limiter ports.RateLimiter, maxRequests int, window time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := callerIdentifier(r)

			allowed, err := limiter.Allow(r.Context(), identifier, maxRequests, window)
			if err != nil {
				// лимитер недоступен — пропускаем запрос, а не валим сервис
				log.Printf("[RateLimit] ошибка проверки лимита: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			if allowed == false {
				util.HandleServiceError(w, apperr.RateLimited(
					"превышена частота запросов",
					limiter.RetryAfter(identifier),
				))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func callerIdentifier(r *http.Request) string {
	if claims, err := security.GetClaimsFromContext(r.Context()); err == nil {
		return "user:" + claims.UserUUID
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
