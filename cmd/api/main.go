package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"warkop-pos/internal/auth"
	"warkop-pos/internal/config"
	"warkop-pos/internal/events"
	"warkop-pos/internal/gateway"
	"warkop-pos/internal/handler"
	"warkop-pos/internal/model"
	"warkop-pos/internal/redisx"
	"warkop-pos/internal/repository"
	"warkop-pos/internal/service"
	"warkop-pos/internal/ws"
	"warkop-pos/pkg/database"
	"warkop-pos/pkg/jwt"
	"warkop-pos/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// 1. Load Env
	envErr := godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		log.Warn(".env file not found, relying on process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Setup Database
	gormLevel := gormlogger.Warn
	if strings.EqualFold(cfg.LogLevel, "debug") {
		gormLevel = gormlogger.Info
	}
	db, err := database.Connect(database.DSN(), gormLevel)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepo(db)
	productRepo := repository.NewProductRepo(db)
	tableRepo := repository.NewTableRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	otpRepo := repository.NewOTPRepo(db)
	reportRepo := repository.NewReportRepo(db)

	// 3. Seed the first owner
	seedOwner(ctx, userRepo, cfg, log)

	// 4. Setup WebSocket Hub and the order event fan-out
	wsHub := ws.NewHub(log)
	go wsHub.Run(ctx)

	publisher := events.Fanout{events.HubPublisher{Hub: wsHub, Log: log}}
	var kafkaPub *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, 256, log)
		kafkaPub.Start()
		publisher = append(publisher, kafkaPub)
		log.Info("kafka order events enabled", "topic", cfg.KafkaTopic)
	}

	// 5. Per-phone OTP lock
	var locker redisx.Locker = redisx.NewLocalLocker()
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		locker = redisx.NewRedisLocker(rdb, redisx.TTLLock)
	}

	// 6. Dependency Injection (Wiring Layers)
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.StaffTokenTTL, cfg.CustomerSessionTTL)
	snap := gateway.NewClient(gateway.Config{
		ServerKey: cfg.MidtransServerKey,
		BaseURL:   cfg.MidtransBaseURL,
		Timeout:   cfg.MidtransTimeout,
	})

	orderService := service.NewOrderService(orderRepo, productRepo, tableRepo, publisher, log)
	paymentService := service.NewPaymentService(orderRepo, orderService, snap, service.WebhookConfig{
		ServerKey:       cfg.MidtransServerKey,
		VerifySignature: cfg.MidtransVerifySignature,
	}, log)
	otpService := service.NewOTPService(otpRepo, locker, service.LogSender{Log: log}, service.OTPConfig{
		TTL:          cfg.OTPTTL,
		Window:       cfg.OTPWindow,
		MaxPerWindow: cfg.OTPMaxPerWindow,
	}, log)
	productService := service.NewProductService(productRepo, log)
	tableService := service.NewTableService(tableRepo)
	authService := service.NewAuthService(userRepo, tokens)
	userService := service.NewUserService(userRepo)
	dashService := service.NewDashboardService(reportRepo)

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Warkop POS v1.0",
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// 8. Routes
	handler.Register(app, handler.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Users:     handler.NewUserHandler(userService),
		Products:  handler.NewProductHandler(productService, tableService),
		Orders:    handler.NewOrderHandler(orderService, paymentService),
		Customers: handler.NewCustomerHandler(otpService, orderService, paymentService, productService, tableService, tokens, cfg.CustomerSessionTTL),
		Webhooks:  handler.NewWebhookHandler(paymentService, log),
		Dashboard: handler.NewDashboardHandler(dashService),
	}, handler.RouteDeps{Tokens: tokens, UserRepo: userRepo, Hub: wsHub})

	// 9. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	if kafkaPub != nil {
		kafkaPub.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("server exited")
}

// seedOwner creates the first owner account when no user with that username exists.
func seedOwner(ctx context.Context, userRepo repository.UserRepository, cfg config.Config, log *slog.Logger) {
	_, err := userRepo.FindByUsername(ctx, cfg.SeedOwnerUsername)
	if err == nil {
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		log.Warn("failed to look up seed owner", "error", err)
		return
	}

	owner := &model.User{
		Username: cfg.SeedOwnerUsername,
		FullName: "Owner",
		Role:     auth.RoleOwner,
		IsActive: true,
	}
	owner.CreatedBy = "system"
	owner.UpdatedBy = "system"

	if err := owner.SetPassword(cfg.SeedOwnerPassword); err != nil {
		log.Warn("failed to hash owner password", "error", err)
		return
	}
	if err := userRepo.Create(ctx, owner); err != nil {
		log.Warn("failed to create owner user", "error", err)
		return
	}
	log.Info("owner user created", "username", owner.Username)
}
