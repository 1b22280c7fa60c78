package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"doctrust-server/config"
	_ "doctrust-server/docs"
	"doctrust-server/internal/handler"
	"doctrust-server/internal/ports"
	"doctrust-server/internal/ratelimit"
	"doctrust-server/internal/repository"
	"doctrust-server/internal/security"
	"doctrust-server/internal/service"
	"doctrust-server/internal/util"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Doctrust-server
// @version 1.0
// @description REST API для доверенного обмена документами: ссылки доступа, сертификаты подлинности, сбор подписей

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Ошибка при закрытии Redis: %v", err)
		}
	}()

	ipHasher, err := security.NewIPHasher(cfg.Security.IPHashKey)
	if err != nil {
		log.Fatalf("Ошибка инициализации хэширования IP: %v", err)
	}

	srv, router := config.SetupServer(cfg.ServerAddr)

	docRepo := repository.NewDocumentRepository(db)
	grantRepo := repository.NewGrantDocumentRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	certRepo := repository.NewCertificateRepository(db)
	sigRepo := repository.NewSignatureRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, time.Duration(cfg.TTL.S3AndRedis)*time.Second)

	s3Service, err := service.NewS3Service(ctx, &cfg.S3Config)
	if err != nil {
		log.Fatalf("Ошибка создания S3 сервиса: %v", err)
	}

	presignTTL := time.Duration(cfg.TTL.PresignDefaultS) * time.Second
	fetchTTL := time.Duration(cfg.TTL.SignatureFetchS) * time.Second

	docService := service.NewDocumentService(docRepo, cacheRepo, grantRepo, auditRepo, s3Service, time.Duration(cfg.TTL.S3AndRedis)*time.Second)
	linkService := service.NewLinkService(linkRepo, docRepo, sigRepo, auditRepo, s3Service, cfg.Link.TokenLength, presignTTL)
	certService := service.NewCertificateService(certRepo, docRepo, auditRepo, s3Service, cfg.Certificate.SignerKeyID, presignTTL)
	sigService := service.NewSignatureService(sigRepo, docRepo, grantRepo, auditRepo, s3Service, util.NewS3Fetcher(fetchTTL), fetchTTL, presignTTL)
	auditService := service.NewAuditService(auditRepo, grantRepo)

	jwtService := security.NewJWTService(&cfg.JWT)

	docHandler := handler.NewDocumentHandler(docService, ipHasher, &cfg.TTL)
	linkHandler := handler.NewLinkHandler(linkService, ipHasher)
	certHandler := handler.NewCertificateHandler(certService, ipHasher)
	sigHandler := handler.NewSignatureHandler(sigService, ipHasher)
	auditHandler := handler.NewAuditHandler(auditService)

	limiter := setupRateLimiter(cfg, redisClient)

	router.Use(config.DBMiddleware(db))
	router.Use(ratelimit.Middleware(limiter, cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMs)*time.Millisecond))
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	setupDocumentRoutes(router, docHandler, auditHandler, jwtService, cfg)
	setupLinkRoutes(router, linkHandler, jwtService, cfg)
	setupTrustRoutes(router, certHandler, sigHandler, jwtService, cfg)

	runServer(ctx, srv)
}

// setupRateLimiter : memory для одного инстанса, redis для нескольких
func setupRateLimiter(cfg *config.AppConfig, redisClient *config.RedisClient) ports.RateLimiter {
	if cfg.RateLimit.Backend == "redis" {
		log.Println("rate limiter: redis")
		return ratelimit.NewRedisLimiter(redisClient)
	}
	log.Println("rate limiter: memory")
	return ratelimit.NewMemoryLimiter()
}

func setupDocumentRoutes(r chi.Router, h *handler.DocumentHandler, ah *handler.AuditHandler, jwtService *security.JWTService, cfg *config.AppConfig) {
	r.Route("/api/docs", func(r chi.Router) {
		r.Use(security.JWTMiddleware([]byte(cfg.JWT.SecretKey), jwtService))
		r.Get("/", h.ListDocuments)
		r.Post("/", h.CreateDocument)

		r.Route("/{doc_id}", func(r chi.Router) {
			r.Get("/", h.GetDocument)
			r.Head("/", h.GetDocumentHead)
			r.Delete("/", h.DeleteDocument)
			r.Post("/share", h.ShareDocument)
			r.Delete("/share", h.RemoveGrant)
			r.Get("/audit", ah.ListAudit)
		})
	})
}

func setupLinkRoutes(r chi.Router, h *handler.LinkHandler, jwtService *security.JWTService, cfg *config.AppConfig) {
	r.Route("/api/docs/{doc_id}/links", func(r chi.Router) {
		r.Use(security.JWTMiddleware([]byte(cfg.JWT.SecretKey), jwtService))
		r.Post("/", h.IssueLink)
	})

	r.Route("/api/links", func(r chi.Router) {
		// резолв публичный: получатель ссылки может не иметь аккаунта,
		// но Bearer токен (если есть) даёт email для ограниченных ссылок
		r.Group(func(r chi.Router) {
			r.Use(security.OptionalJWTMiddleware([]byte(cfg.JWT.SecretKey), jwtService))
			r.Get("/{token}", h.ResolveLink)
		})
		r.Group(func(r chi.Router) {
			r.Use(security.JWTMiddleware([]byte(cfg.JWT.SecretKey), jwtService))
			r.Delete("/{token}", h.RevokeLink)
		})
	})
}

func setupTrustRoutes(r chi.Router, ch *handler.CertificateHandler, sh *handler.SignatureHandler, jwtService *security.JWTService, cfg *config.AppConfig) {
	r.Route("/api/docs/{doc_id}/certificate", func(r chi.Router) {
		r.Use(security.JWTMiddleware([]byte(cfg.JWT.SecretKey), jwtService))
		r.Post("/", ch.GenerateCertificate)
		r.Get("/", ch.GetLatestCertificate)
	})

	r.Route("/api/docs/{doc_id}/fields", func(r chi.Router) {
		r.Use(security.JWTMiddleware([]byte(cfg.JWT.SecretKey), jwtService))
		r.Post("/", sh.CreateField)
		r.Get("/", sh.ListFields)
	})

	// приём подписи публичный: подписант приходит по ссылке доступа
	r.Route("/api/docs/{doc_id}/signatures", func(r chi.Router) {
		r.Use(security.OptionalJWTMiddleware([]byte(cfg.JWT.SecretKey), jwtService))
		r.Post("/", sh.SubmitSignature)
	})

	r.Route("/api/docs/{doc_id}/compose", func(r chi.Router) {
		r.Use(security.JWTMiddleware([]byte(cfg.JWT.SecretKey), jwtService))
		r.Post("/", sh.ComposeSignedCopy)
	})
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
