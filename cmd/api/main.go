package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/reuben-idan/alx-backend-storage/internal/cache"
	"github.com/reuben-idan/alx-backend-storage/internal/config"
	"github.com/reuben-idan/alx-backend-storage/internal/handler"
	"github.com/reuben-idan/alx-backend-storage/internal/kv"
	"github.com/reuben-idan/alx-backend-storage/internal/repository"
	"github.com/reuben-idan/alx-backend-storage/internal/router"
	"github.com/reuben-idan/alx-backend-storage/internal/service"
	"github.com/reuben-idan/alx-backend-storage/internal/webcache"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting ALX cache API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize the key-value store based on config
	var store kv.Store
	switch cfg.Cache.StoreType {
	case "memory":
		store = kv.NewMemoryStore()
		log.Println("Memory store initialized")
	default: // redis
		redisStore, err := kv.NewRedisStore(kv.RedisConfig{
			Addr:         cfg.Cache.RedisAddress(),
			Password:     cfg.Cache.RedisPassword,
			DB:           cfg.Cache.RedisDB,
			DialTimeout:  cfg.Cache.RedisDialTimeout,
			ReadTimeout:  cfg.Cache.RedisReadTimeout,
			WriteTimeout: cfg.Cache.RedisWriteTimeout,
		})
		if err != nil {
			log.Fatalf("Failed to initialize Redis: %v", err)
		}
		store = redisStore
		log.Println("Redis store initialized")
	}
	defer store.Close()

	// Cache client
	client := cache.NewClient(store)

	// Store wipe happens only on explicit request, never implicitly
	if cfg.Cache.ResetOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := client.Reset(ctx)
		cancel()
		if err != nil {
			log.Fatalf("Failed to reset cache: %v", err)
		}
		log.Println("Cache reset: every key flushed")
	}

	// Initialize the fetch journal based on config (optional)
	var fetchLog repository.FetchLogRepository
	switch cfg.FetchLog.Type {
	case "none":
		log.Println("Fetch journal disabled")
	case "mysql":
		mysqlRepo, err := repository.NewMySQLFetchLogRepository(cfg.FetchLog.MySQLDSN())
		if err != nil {
			log.Printf("Warning: MySQL fetch journal initialization failed: %v", err)
		} else {
			fetchLog = mysqlRepo
			log.Println("MySQL fetch journal initialized")
		}
	default: // sqlite
		if err := os.MkdirAll(filepath.Dir(cfg.FetchLog.Path), 0o755); err != nil {
			log.Printf("Warning: failed to create fetch journal directory: %v", err)
		}
		sqliteRepo, err := repository.NewSQLiteFetchLogRepository(cfg.FetchLog.Path)
		if err != nil {
			log.Printf("Warning: SQLite fetch journal initialization failed: %v", err)
		} else {
			fetchLog = sqliteRepo
			log.Println("SQLite fetch journal initialized")
		}
	}
	if fetchLog != nil {
		defer fetchLog.Close()
	}

	// Web cache
	fetcher := webcache.NewHTTPFetcher(cfg.WebCache.FetchTimeout)
	wcOpts := []webcache.Option{webcache.WithTTL(cfg.WebCache.TTL)}
	if fetchLog != nil {
		wcOpts = append(wcOpts, webcache.WithFetchLog(fetchLog))
	}
	webCache := webcache.New(store, fetcher, wcOpts...)

	// Journal cleanup scheduler
	var cleanupScheduler *service.CleanupScheduler
	if fetchLog != nil {
		cleanupScheduler = service.NewCleanupScheduler(fetchLog, service.CleanupConfig{
			RetentionPeriod: cfg.FetchLog.RetentionPeriod,
			CleanupInterval: cfg.FetchLog.CleanupInterval,
		})
		cleanupScheduler.Start()
	}

	// Initialize handlers
	healthHandler := handler.New(store, cfg.App.Name, cfg.App.Version)
	cacheHandler := handler.NewCacheHandler(client)
	pageHandler := handler.NewPageHandler(webCache)
	adminHandler := handler.NewAdminHandler(webCache, fetchLog, cfg.Cache.StoreType)

	// Create router
	r := router.New(router.Config{
		Handler:      healthHandler,
		CacheHandler: cacheHandler,
		PageHandler:  pageHandler,
		AdminHandler: adminHandler,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if cleanupScheduler != nil {
		cleanupScheduler.Stop()
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}
