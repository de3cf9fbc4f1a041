package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"workshop/internal/config"
	"workshop/internal/database"
	"workshop/internal/domain/admin"
	"workshop/internal/domain/booking"
	"workshop/internal/domain/cart"
	"workshop/internal/domain/payment"
	"workshop/internal/domain/schedule"
	"workshop/internal/domain/technician"
	"workshop/internal/middleware"
	jwtsvc "workshop/internal/pkg/jwt"
	"workshop/internal/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatal("invalid configuration", zap.Error(err))
	}

	log := logger.Init(cfg.AppEnv)
	defer log.Sync()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	cartRepo := cart.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	scheduleRepo := schedule.NewRepository(db)
	paymentRepo := payment.NewRepository(db)
	technicianRepo := technician.NewRepository(db)

	scheduleService := schedule.NewService(scheduleRepo, schedule.Config{
		Times:           cfg.SlotTimes,
		DefaultCapacity: cfg.DefaultSlotCapacity,
	})
	cartService := cart.NewService(cartRepo)
	bookingService := booking.NewService(db, bookingRepo, cartRepo, scheduleService)
	gateway := payment.NewSnapClient(cfg.GatewayBaseURL, cfg.GatewayServerKey, cfg.GatewayTimeout)
	paymentService := payment.NewService(db, paymentRepo, bookingRepo, gateway, cfg.GatewayServerKey)
	technicianService := technician.NewService(db, technicianRepo, bookingRepo)

	cartHandler := cart.NewHandler(cartService)
	bookingHandler := booking.NewHandler(bookingService)
	scheduleHandler := schedule.NewHandler(scheduleService)
	paymentHandler := payment.NewHandler(paymentService)
	technicianHandler := technician.NewHandler(technicianService)

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	v1 := r.Group("/api/v1")
	{
		// public: the gateway posts callbacks without a bearer token
		paymentHandler.RegisterWebhookRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			cartHandler.RegisterRoutes(protected)
			scheduleHandler.RegisterRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
			paymentHandler.RegisterProtectedRoutes(protected)

			admin.RegisterRoutes(protected, admin.Handlers{
				Bookings:    bookingHandler,
				Technicians: technicianHandler,
				Slots:       scheduleHandler,
			})
		}
	}

	log.Info("api listening", zap.String("addr", cfg.ListenAddr))
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
