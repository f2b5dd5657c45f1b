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
	_ "time/tzdata"

	"github.com/cmlabs-hris/presence-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/presence-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/presence-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/presence-backend-go/internal/service/attendance"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := appHTTP.NewLogger(os.Stdout, cfg.SlogLevel(), cfg.App.Env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	if cfg.App.AutoMigrate {
		if err := postgresql.Migrate(ctx, db); err != nil {
			return err
		}
		slog.Info("Database schema applied")
	}

	userRepo := postgresql.NewUserRepository(db)
	locationRepo := postgresql.NewLocationRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	deviceRepo := postgresql.NewDeviceRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	txManager := postgresql.NewTxManager(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	calendar := attendanceService.NewWorkCalendar(holidayRepo, time.LoadLocation)
	ledger := attendanceService.NewLedger(txManager, attendanceRepo, deviceRepo, cfg.Attendance.TransactionTimeout)
	attendanceSvc := attendanceService.NewAttendanceService(
		userRepo,
		locationRepo,
		calendar,
		ledger,
		clock.System(),
		attendanceService.Policy{
			MarginMinutes:   cfg.Attendance.MarginMinutes,
			ToleranceMeters: cfg.Attendance.ToleranceMeters,
		},
		logger,
	)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         logger,
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
		},
		JWTService,
		attendanceHandler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
