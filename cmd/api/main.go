package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"magasin-api/internal/cache"
	"magasin-api/internal/config"
	"magasin-api/internal/engine"
	"magasin-api/internal/handler"
	"magasin-api/internal/repository"
	"magasin-api/internal/router"
	"magasin-api/internal/service"
	"magasin-api/internal/websocket"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Magasin API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize the store repository based on config
	var storeRepo repository.EquipementRepository
	var noteRepo repository.NoteRepository

	switch cfg.StoreDB.Type {
	case "postgres", "postgresql":
		pgStore, err := repository.NewPostgresStore(cfg.StoreDB.PostgresDSN())
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL: %v", err)
		}
		defer pgStore.Close()
		storeRepo = pgStore
		noteRepo = pgStore
		log.Println("PostgreSQL store initialized")
	default: // sqlite
		sqliteStore, err := repository.NewSQLiteStore(cfg.StoreDB.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		defer sqliteStore.Close()
		storeRepo = sqliteStore
		noteRepo = sqliteStore
		log.Println("SQLite store initialized")
	}

	// Initialize the MySQL staff database for the technician roster (optional)
	var technicienRepo engine.TechnicienDirectory

	staffDB, err := sql.Open("mysql", cfg.StaffDB.DSN())
	if err != nil {
		log.Printf("Warning: staff database connection failed: %v", err)
	} else {
		staffDB.SetMaxOpenConns(10)
		staffDB.SetMaxIdleConns(5)
		staffDB.SetConnMaxLifetime(5 * time.Minute)

		if err := staffDB.Ping(); err != nil {
			log.Printf("Warning: staff database ping failed: %v", err)
			staffDB.Close()
			staffDB = nil
		} else {
			technicienRepo = repository.NewMySQLTechnicienRepository(staffDB)
			log.Println("MySQL staff repository initialized")
		}
	}
	if staffDB != nil {
		defer staffDB.Close()
	}

	// Initialize the catalog cache
	var catalogCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisCacheConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Printf("Warning: Redis cache unavailable, falling back to memory: %v", err)
			catalogCache = cache.NewMemoryCache()
		} else {
			defer redisCache.Close()
			catalogCache = redisCache
		}
	default:
		catalogCache = cache.NewMemoryCache()
	}

	// Initialize the reservation engine
	eng := engine.New(engine.Config{
		NotificationTTL:     cfg.Engine.NotificationTTL,
		RequestRemovalDelay: cfg.Engine.RequestRemovalDelay,
		OrderResetDelay:     cfg.Engine.OrderResetDelay,
		AlertInterval:       cfg.Engine.AlertInterval,
		PredictionInterval:  cfg.Engine.PredictionInterval,
		RequestMinInterval:  cfg.Engine.RequestMinInterval,
		RequestMaxInterval:  cfg.Engine.RequestMaxInterval,
		RequestProbability:  cfg.Engine.RequestProbability,
		CartIdleThreshold:   cfg.Engine.CartIdleThreshold,
		CartSweepInterval:   cfg.Engine.CartSweepInterval,
		LowStockThreshold:   cfg.Engine.LowStockThreshold,
		MaintenanceMonths:   cfg.Engine.MaintenanceMonths,
		WarrantyWindowDays:  cfg.Engine.WarrantyWindowDays,
		RandomSeed:          cfg.Engine.RandomSeed,
	}, storeRepo, technicienRepo)

	// Initialize services
	catalogService := service.NewCatalogService(storeRepo, noteRepo, catalogCache, cfg.Cache.TTL, eng)

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := catalogService.LoadLedger(startCtx); err != nil {
		startCancel()
		log.Fatalf("Failed to load catalog: %v", err)
	}
	eng.Start(startCtx)
	startCancel()
	defer eng.Stop()

	// Push live notifications and request changes to connected UIs
	hub := websocket.NewHub()
	eng.Bus.Subscribe(func(n engine.Notification) {
		go hub.Broadcast(websocket.Event{Type: "notification", Payload: n})
	})

	pingStore := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_, err := storeRepo.GetStats(ctx)
		return err
	}

	// Initialize handlers
	healthHandler := handler.New(pingStore)
	catalogHandler := handler.NewCatalogHandler(catalogService, eng)
	cartHandler := handler.NewCartHandler(eng.Carts)
	workflowHandler := handler.NewWorkflowHandler(eng.Workflow)
	insightsHandler := handler.NewInsightsHandler(eng)
	notificationHandler := handler.NewNotificationHandler(eng.Bus)
	exportHandler := handler.NewExportHandler(catalogService)

	// Create router
	r := router.New(router.Config{
		Handler:             healthHandler,
		CatalogHandler:      catalogHandler,
		CartHandler:         cartHandler,
		WorkflowHandler:     workflowHandler,
		InsightsHandler:     insightsHandler,
		NotificationHandler: notificationHandler,
		ExportHandler:       exportHandler,
		Hub:                 hub,
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

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}
