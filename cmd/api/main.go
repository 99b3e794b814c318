//	@title			Portfolio API
//	@version		1.0
//	@description	CRUD backend for a personal portfolio site with S3-backed media storage.
//
//	@host		localhost:8080
//	@BasePath	/api
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/berkay/portfolio-api/internal/admin"
	"github.com/berkay/portfolio-api/internal/config"
	"github.com/berkay/portfolio-api/internal/db"
	"github.com/berkay/portfolio-api/internal/media"
	appMiddleware "github.com/berkay/portfolio-api/internal/middleware"
	"github.com/berkay/portfolio-api/internal/portfolio"
	"github.com/berkay/portfolio-api/internal/storage"
	"github.com/berkay/portfolio-api/pkg/logger"

	_ "github.com/berkay/portfolio-api/docs/swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(true)
		logger.Sugar.Fatalf("configuration error: %v", err)
	}
	logger.Init(!cfg.IsProduction())
	defer logger.Log.Sync() //nolint:errcheck

	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Sugar.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Sugar.Fatalf("database migration failed: %v", err)
	}

	store, err := storage.NewS3Storage(ctx, storage.S3Options{
		Endpoint:      cfg.StorageEndpoint,
		Region:        cfg.StorageRegion,
		AccessKey:     cfg.StorageAccessKey,
		SecretKey:     cfg.StorageSecretKey,
		Bucket:        cfg.StorageBucket,
		UseSSL:        cfg.StorageUseSSL,
		PresignExpiry: time.Duration(cfg.PresignExpirySec) * time.Second,
	})
	if err != nil {
		logger.Sugar.Fatalf("object storage init failed: %v", err)
	}

	// Wire dependencies: repository → service → handler
	adminRepo := admin.NewRepository(pool)
	if err := admin.EnsureDefaultAdmin(ctx, adminRepo); err != nil {
		logger.Sugar.Fatalf("admin bootstrap failed: %v", err)
	}
	adminSvc := admin.NewService(adminRepo, cfg.JWTSecret, time.Duration(cfg.JWTExpiryH)*time.Hour)
	adminHandler := admin.NewHandler(adminSvc)

	mediaHandler := media.NewHandler(store)
	portfolioHandler := portfolio.NewHandler(pool, store)

	requireAuth := appMiddleware.RequireAuth(cfg.JWTSecret)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", adminHandler.Login)
			r.With(requireAuth).Post("/change-password", adminHandler.ChangePassword)
			r.With(requireAuth).Post("/change-username", adminHandler.ChangeUsername)
		})

		r.Route("/media", func(r chi.Router) {
			// Presigned lookups stay public: the anonymous frontend
			// renders stored media through them.
			r.Get("/presigned-url", mediaHandler.PresignedURL)
			r.With(requireAuth).Post("/upload", mediaHandler.Upload)
			r.With(requireAuth).Delete("/delete", mediaHandler.Delete)
		})

		portfolioHandler.Mount(r, requireAuth)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Sugar.Infof("server listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	logger.Sugar.Info("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar.Fatalf("forced shutdown: %v", err)
	}

	logger.Sugar.Info("server stopped")
}
