package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/room-booking/internal/api/http"
	"github.com/spec-kit/room-booking/internal/api/http/handlers"
	"github.com/spec-kit/room-booking/internal/auth"
	"github.com/spec-kit/room-booking/internal/config"
	"github.com/spec-kit/room-booking/internal/events"
	"github.com/spec-kit/room-booking/internal/observability"
	"github.com/spec-kit/room-booking/internal/persistence"
	"github.com/spec-kit/room-booking/internal/repository"
	"github.com/spec-kit/room-booking/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	userRepo := repository.NewUserRepository(pool)
	userTypeRepo := repository.NewUserTypeRepository(pool)
	roomRepo := repository.NewRoomRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	configRepo := repository.NewSystemConfigRepository(pool)

	timezoneService := service.NewTimezoneService(configRepo, redis.Cmdable(), cfg.Booking, logger)
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:     userRepo,
		UserTypeRepo: userTypeRepo,
	})
	userService := service.NewUserService(userTypeRepo)
	roomService := service.NewRoomService(roomRepo, logger)
	reservationService := service.NewReservationService(service.ReservationDependencies{
		ReservationRepo: reservationRepo,
		RoomRepo:        roomRepo,
		UserRepo:        userRepo,
		Timezone:        timezoneService,
		Dispatcher:      dispatcher,
		Metrics:         metrics,
		Logger:          logger,
		WeekStart:       cfg.Booking.WeekStart,
	})
	notificationService := service.NewNotificationService(dispatcher, redis.Cmdable(), logger, cfg.Notification)
	notificationService.RegisterHandlers()

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	dependencies := map[string]handlers.Pinger{"postgres": pg}
	if redis.Enabled() {
		dependencies["redis"] = redis
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Users:          handlers.NewUsersHandler(authService, userService, reservationService),
		Rooms:          handlers.NewRoomsHandler(roomService),
		Reservations:   handlers.NewReservationsHandler(reservationService),
		SystemConfig:   handlers.NewSystemConfigHandler(timezoneService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
