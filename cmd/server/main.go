package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance-service/internal/config"
	"attendance-service/internal/handler"
	"attendance-service/internal/i18n"
	"attendance-service/internal/service"
	"attendance-service/internal/storage"
	"attendance-service/internal/store"
)

func main() {
	cfg := config.Load()

	i18n.Init(cfg.DefaultLocale)

	medium, cleanup, err := openMedium(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage medium: %v", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	// Stores
	attendanceStore, err := store.NewAttendanceStore(medium, store.WithResetLegacyData(cfg.ResetLegacyData))
	if err != nil {
		log.Fatalf("Failed to open attendance store: %v", err)
	}
	educations := store.NewEducationDirectory(nil)

	// Services
	attendanceSvc := service.NewAttendanceService(attendanceStore)
	assignmentSvc := service.NewAssignmentService(educations, nil, service.StaticCapacity{
		Monthly: cfg.DefaultMonthlyCapacity,
		Daily:   cfg.GlobalDailyLimit,
	})

	// Routes
	mux := http.NewServeMux()
	handler.NewAttendanceHandler(attendanceSvc).RegisterRoutes(mux)
	handler.NewAssignmentHandler(assignmentSvc, educations).RegisterRoutes(mux)

	// Health checks
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.LoggingMiddleware(handler.LocaleMiddleware(mux)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Attendance service started on :%s (env: %s, storage: %s)", cfg.Port, cfg.Env, cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}

func openMedium(cfg *config.Config) (storage.Medium, func(), error) {
	switch cfg.StorageBackend {
	case "memory":
		return storage.NewMemoryMedium(cfg.StorageMaxBytes), nil, nil
	case "mongo":
		m, err := storage.NewMongoMedium(cfg.MongoURI, cfg.MongoDB, cfg.StorageMaxBytes)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() { m.Close(context.Background()) }
		return m, cleanup, nil
	default:
		m, err := storage.NewFileMedium(cfg.StorageFile, cfg.StorageMaxBytes)
		return m, nil, err
	}
}
