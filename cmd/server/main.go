// @title                       Office Attendance API
// @version                     1.0
// @description                 Daily work-location marking and kitchen lunch headcount.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	_ "github.com/officelunch/attendance-api/docs"
	"github.com/officelunch/attendance-api/internal/api"
	"github.com/officelunch/attendance-api/internal/core/domain"
	"github.com/officelunch/attendance-api/internal/core/ports"
	"github.com/officelunch/attendance-api/internal/core/service"
	"github.com/officelunch/attendance-api/internal/infrastructure/db/mongo"
	"github.com/officelunch/attendance-api/internal/infrastructure/db/redis"
	opshttp "github.com/officelunch/attendance-api/internal/infrastructure/http"
	"github.com/officelunch/attendance-api/internal/infrastructure/http/handlers"
	"github.com/officelunch/attendance-api/internal/infrastructure/notify"
	"github.com/officelunch/attendance-api/internal/infrastructure/queue"
	"github.com/officelunch/attendance-api/internal/infrastructure/scheduler"
	"github.com/officelunch/attendance-api/internal/pkg/config"
	"github.com/officelunch/attendance-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "attendance-api",
		Env:     cfg.Env,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; using an insecure development secret")
		cfg.JWTSecret = "dev-secret-change-me"
	}

	// --- Stores ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	userRepo := mongo.NewUserRepository(db)
	attendanceRepo := mongo.NewAttendanceRepository(db, loc)
	if err := mongo.EnsureIndexes(ctx, userRepo, attendanceRepo); err != nil {
		return err
	}

	checks := map[string]handlers.Checker{"mongo": mongo.NewPinger(mongoClient)}

	var guard ports.DailyGuard
	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable; headcount once-per-day guard disabled")
	} else {
		defer rdb.Close()
		guard = redis.NewDailyGuard(rdb)
		checks["redis"] = redis.NewPinger(rdb)
	}

	// --- Core ---
	attendanceSvc := service.NewAttendanceService(attendanceRepo, loc, logger.Component("attendance"))
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth"))
	reportSvc := service.NewReportService(userRepo, attendanceRepo, loc, logger.Component("reports"))

	senders, err := buildSenders(ctx, cfg, log)
	if err != nil {
		return err
	}
	dispatcher := queue.NewDispatcher(cfg.Headcount.Workers, senders, logger.Component("dispatcher"))
	notifier := service.NewHeadcountNotifier(attendanceSvc, userRepo, dispatcher, guard, logger.Component("headcount"))

	// --- Scheduler ---
	var sched *scheduler.Scheduler
	if cfg.Headcount.Enabled {
		sched, err = scheduler.New(cfg.Headcount.Cron, loc, notifier, logger.Component("scheduler"))
		if err != nil {
			return err
		}
		sched.Start()
	}

	// --- HTTP ---
	apiServer := api.NewRouter(api.Dependencies{
		Auth:       authSvc,
		Attendance: attendanceSvc,
		Reports:    reportSvc,
		Notifier:   notifier,
		Checks:     checks,
		JWTSecret:  cfg.JWTSecret,
		Logger:     logger.Component("http"),
	})
	opsServer := opshttp.NewOpsRouter(checks)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return serve(apiServer, cfg.Port, log) })
	g.Go(func() error { return serve(opsServer, cfg.OpsPort, log) })
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if sched != nil {
			sched.Stop(sctx)
		}
		return errors.Join(apiServer.Shutdown(sctx), opsServer.Shutdown(sctx))
	})
	return g.Wait()
}

func serve(e *echo.Echo, port string, log zerolog.Logger) error {
	addr := net.JoinHostPort("", port)
	log.Info().Str("addr", addr).Msg("listening")
	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// buildSenders wires only the channels that are configured.
func buildSenders(ctx context.Context, cfg *config.Config, log zerolog.Logger) (map[domain.Channel]ports.Sender, error) {
	senders := make(map[domain.Channel]ports.Sender, 2)

	if cfg.SMTP.Host != "" {
		email, err := notify.NewEmailSender(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
		}, logger.Component("email"))
		if err != nil {
			return nil, err
		}
		senders[domain.ChannelEmail] = email
	} else {
		log.Warn().Msg("SMTP_HOST not set; email notifications disabled")
	}

	if cfg.FCM.ProjectID != "" {
		push, err := notify.NewPushSender(ctx, notify.FCMConfig{
			ProjectID:       cfg.FCM.ProjectID,
			CredentialsFile: cfg.FCM.CredentialsFile,
		}, logger.Component("push"))
		if err != nil {
			return nil, err
		}
		senders[domain.ChannelPush] = push
	} else {
		log.Warn().Msg("FCM_PROJECT_ID not set; push notifications disabled")
	}

	return senders, nil
}
