package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/config"
	appHTTP "github.com/centralkang-byte/ctr-hr-hub-sub000/internal/handler/http"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/cron"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/database"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/jwt"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/outbox"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/ratetable"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/sse"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/repository/postgresql"
	payrollService "github.com/centralkang-byte/ctr-hr-hub-sub000/internal/service/payroll"
	severanceService "github.com/centralkang-byte/ctr-hr-hub-sub000/internal/service/severance"
	"github.com/go-chi/httplog/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "ctr-hr-hub-payroll"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rates := ratetable.Default()
	if cfg.Payroll.RateTablesPath != "" {
		rates, err = ratetable.LoadFile(cfg.Payroll.RateTablesPath)
		if err != nil {
			slog.Error("Error loading rate tables", "path", cfg.Payroll.RateTablesPath, "error", err)
			os.Exit(1)
		}
	}
	slog.Info("Rate tables loaded", "versions", rates.Versions())

	employeeRepo := postgresql.NewEmployeeRepository(db)
	compensationRepo := postgresql.NewCompensationRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	allowanceRepo := postgresql.NewAllowanceRepository(db)
	benefitRepo := postgresql.NewBenefitRepository(db)
	outboxRepo := postgresql.NewOutboxRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db, outboxRepo, cfg.Kafka.PayrollRunsTopic)

	hub := sse.NewHub()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	calculator := payrollService.NewCalculator(rates, compensationRepo, attendanceRepo, allowanceRepo, benefitRepo)
	orchestrator := payrollService.NewOrchestrator(payrollRepo, employeeRepo, calculator, payrollRepo, hub, payrollService.OrchestratorConfig{
		BatchSize: cfg.Payroll.BatchSize,
		Currency:  cfg.Payroll.Currency,
	})
	payrollSvc := payrollService.NewPayrollService(payrollRepo, employeeRepo, calculator, orchestrator, rates, hub)
	severanceSvc := severanceService.NewSeveranceService(rates, employeeRepo, payrollRepo, compensationRepo, attendanceRepo, allowanceRepo)

	// Background workers
	var workers sync.WaitGroup

	scheduler := cron.NewScheduler(ctx)
	payrollJobs := cron.NewPayrollJobs(
		payrollService.NewStaleRunRecovery(payrollRepo, hub, cfg.Payroll.StaleRunAfter),
		cfg.Payroll.StaleCheckInterval,
	)
	payrollJobs.RegisterJobs(scheduler)
	scheduler.Start()

	if cfg.Kafka.Enabled() {
		writer := outbox.NewKafkaWriter(cfg.Kafka.Brokers)
		relay := outbox.NewRelay(outboxRepo, writer, cfg.Kafka.OutboxPollInterval)
		workers.Add(1)
		go func() {
			defer workers.Done()
			relay.Run(ctx)
			if err := writer.Close(); err != nil {
				slog.Error("Failed to close kafka writer", "error", err)
			}
		}()
	} else {
		slog.Warn("KAFKA_BROKERS not set, outbox relay disabled")
	}

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
			Logger:         logger,
		},
		JWTService,
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewSeveranceHandler(severanceSvc),
		appHTTP.NewEventsHandler(hub, JWTService),
	)

	// No WriteTimeout: event streams stay open.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	// Open event streams would otherwise hold Shutdown until its deadline.
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	scheduler.Stop()
	workers.Wait()
	slog.Info("Server stopped")
}
