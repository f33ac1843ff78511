package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/config"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/hris-workforce-engine/internal/handler/http"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/messaging/kafka"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/hris-workforce-engine/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/hris-workforce-engine/internal/service/leave"
	notificationService "github.com/cmlabs-hris/hris-workforce-engine/internal/service/notification"
	overtimeService "github.com/cmlabs-hris/hris-workforce-engine/internal/service/overtime"
	payrollService "github.com/cmlabs-hris/hris-workforce-engine/internal/service/payroll"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.App.LogLevel)})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repos repositories
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		slog.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		if err := fixtures.SeedMemoryStore(ctx, store); err != nil {
			return fmt.Errorf("error seeding demo tenant: %w", err)
		}
		repos = newMemoryRepositories(store)
	default:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
		})
		if err != nil {
			return fmt.Errorf("error connecting to database: %w", err)
		}
		defer db.Close()
		repos = newPostgresRepositories(db)
	}

	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("error connecting to redis: %w", err)
		}
		locker = lock.NewRedisLocker(rdb)
	}

	var publisher notification.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		writer := kafka.NewWriter(cfg.Kafka.Brokers)
		defer writer.Close()
		publisher = kafka.NewNotificationPublisher(writer, cfg.Kafka.NotificationTopic)
	}

	hub := sse.NewHub()
	notifSvc := notificationService.NewNotificationService(repos.notification, hub, publisher, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.Workers,
		QueueSize:     cfg.Notification.QueueSize,
	})
	defer notifSvc.Stop()

	otSvc := overtimeService.NewOvertimeService(repos.overtimeRule, repos.attendance)
	attSvc := attendanceService.NewAttendanceService(repos.tx, repos.attendance, repos.employee, repos.company, otSvc, notifSvc)
	lvSvc := leaveService.NewLeaveService(
		repos.tx,
		repos.leaveType,
		repos.leaveBalance,
		repos.leaveRequest,
		repos.accrualRule,
		repos.accrualRun,
		repos.employee,
		repos.company,
		repos.attendance,
		locker,
		notifSvc,
	)
	paySvc := payrollService.NewPayrollService(
		repos.tx,
		repos.salaryStructure,
		repos.employeeSalary,
		repos.payrollRun,
		repos.payslip,
		repos.employee,
		repos.company,
		repos.attendance,
		repos.leaveRequest,
		locker,
		notifSvc,
	)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	router := appHTTP.NewRouter(JWTService, appHTTP.Handlers{
		Attendance:   appHTTP.NewAttendanceHandler(attSvc),
		Overtime:     appHTTP.NewOvertimeHandler(otSvc),
		Leave:        appHTTP.NewLeaveHandler(lvSvc),
		Payroll:      appHTTP.NewPayrollHandler(paySvc),
		Notification: appHTTP.NewNotificationHandler(notifSvc, JWTService),
	}, appHTTP.RouterOptions{
		AppName:        cfg.App.Name,
		Version:        cfg.App.Version,
		Env:            cfg.App.Env,
		AllowedOrigins: cfg.App.AllowedOrigins,
		ClockRateLimit: cfg.RateLimit.ClockPerSecond,
		ClockRateBurst: cfg.RateLimit.ClockBurst,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr, "storage", cfg.Storage.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.Scheduler.Enabled {
		scheduler := cron.NewScheduler()
		cron.NewAccrualJobs(repos.company, lvSvc).RegisterJobs(scheduler)
		g.Go(func() error {
			return scheduler.Run(gctx)
		})
	}

	return g.Wait()
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
