package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"workshop/internal/config"
	"workshop/internal/database"
	"workshop/internal/domain"
	jwtsvc "workshop/internal/pkg/jwt"
	"workshop/internal/pkg/logger"
)

// Seeds the local database with a small catalog, a crew and dev tokens.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatal("invalid configuration", zap.Error(err))
	}
	log := logger.Init(cfg.AppEnv)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	spareparts := []domain.Sparepart{
		{Name: "Brake pad set", Price: 350000, DiscountPercent: 10, Stock: 24},
		{Name: "Oil filter", Price: 45000, Stock: 60},
		{Name: "Spark plug (iridium)", Price: 120000, DiscountPercent: 5, Stock: 40},
		{Name: "Timing belt", Price: 480000, Stock: 12},
	}
	services := []domain.ServiceOffering{
		{Name: "General service", Price: 250000},
		{Name: "Oil change", Price: 50000},
		{Name: "Brake system overhaul", Price: 400000, DiscountPercent: 10},
		{Name: "AC maintenance", Price: 300000},
	}
	technicians := []domain.Technician{
		{Name: "Agus Prasetyo", Phone: "+62-812-0001", Specialties: "engine,transmission", IsAvailable: true},
		{Name: "Budi Santoso", Phone: "+62-812-0002", Specialties: "electrical,ac", IsAvailable: true},
		{Name: "Citra Lestari", Phone: "+62-812-0003", Specialties: "brakes,suspension", IsAvailable: false},
	}

	for i := range spareparts {
		if err := db.FirstOrCreate(&spareparts[i], domain.Sparepart{Name: spareparts[i].Name}).Error; err != nil {
			log.Fatal("seeding spareparts failed", zap.Error(err))
		}
	}
	for i := range services {
		if err := db.FirstOrCreate(&services[i], domain.ServiceOffering{Name: services[i].Name}).Error; err != nil {
			log.Fatal("seeding services failed", zap.Error(err))
		}
	}
	for i := range technicians {
		if err := db.FirstOrCreate(&technicians[i], domain.Technician{Name: technicians[i].Name}).Error; err != nil {
			log.Fatal("seeding technicians failed", zap.Error(err))
		}
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	customerToken, _ := j.GenerateToken(1, "customer")
	adminToken, _ := j.GenerateToken(1000, "admin")

	log.Info("seed complete",
		zap.Int("spareparts", len(spareparts)),
		zap.Int("services", len(services)),
		zap.Int("technicians", len(technicians)))

	fmt.Println("dev customer token:", customerToken)
	fmt.Println("dev admin token:   ", adminToken)
}
