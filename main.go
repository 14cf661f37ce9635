// Package main provides the main entry point for the SmallBizAgent scheduling engine
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/app/handlers"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/app/router"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/app/scheduler"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/app/services"
	businessflow "github.com/TonyIlliano/SmallBizAgent-Final-sub002/business_flow"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/config"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/repository"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	stopFuncs []func()
}

func main() {
	log.Println("Starting SmallBizAgent scheduling engine...")

	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background timers before the HTTP surface
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.router.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeNotificationService wires SMS and email delivery based on config
func initializeNotificationService(cfg *config.ProductionConfig) services.NotificationService {
	var smsService services.SMSService
	switch cfg.SMS.ProviderDomain {
	case "mock", "":
		smsService = services.NewMockSMSService()
	default:
		smsService = services.NewSMSService(&cfg.SMS)
	}

	var emailProvider services.EmailProvider
	if cfg.Email.Host != "" {
		emailProvider = services.NewSMTPEmailProvider(
			cfg.Email.Host, cfg.Email.Port,
			cfg.Email.Username, cfg.Email.Password,
			cfg.Email.FromEmail)
	} else {
		emailProvider = services.NewMockEmailProvider()
	}

	return services.NewNotificationService(smsService, emailProvider)
}

// initializeApplication wires all application dependencies
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.HealthInterval)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Repositories
	businessRepo := repository.NewBusinessRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	jobRepo := repository.NewJobRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	schedRepo := repository.NewRecurringScheduleRepository(db)
	historyRepo := repository.NewRecurringJobHistoryRepository(db)
	transactor := repository.NewTransactor(db)

	// Scheduling engine
	schedLogger := scheduler.NewSchedulerLogger(cfg.Logging)
	notifier := initializeNotificationService(cfg)

	recurring := scheduler.NewRecurringProcessor(
		schedRepo, historyRepo, jobRepo, invoiceRepo,
		transactor, schedLogger, cfg.Scheduler.RecurringBatchLimit)

	reminders := scheduler.NewReminderDispatcher(
		businessRepo, appointmentRepo, customerRepo, notifier,
		schedLogger, time.Duration(cfg.Scheduler.ReminderLeadHours)*time.Hour)

	supervisor := scheduler.NewSupervisor(recurring, reminders, businessRepo, cfg.Scheduler, schedLogger)

	if cfg.Scheduler.Enabled {
		if err := supervisor.StartAll(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to start scheduler timers: %w", err)
		}
		stopFuncs = append(stopFuncs, supervisor.StopAll)
	} else {
		log.Println("Scheduler disabled by configuration, timers not started")
	}

	// Business flows and HTTP surface
	schedulerFlow := businessflow.NewSchedulerFlow(
		supervisor, recurring, reminders, schedRepo, businessRepo,
		rc, &cfg.Cache, &cfg.Scheduler)

	schedulerHandler := handlers.NewSchedulerHandler(schedulerFlow)
	r := router.NewFiberRouter(schedulerHandler)

	return &Application{
		router:    r,
		config:    cfg,
		stopFuncs: stopFuncs,
	}, nil
}
