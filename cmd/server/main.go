package main

import (
	"log"
	"log/slog"
	"os"
	"time"

	"accountant-backend/internal/config"
	"accountant-backend/internal/models"
	"accountant-backend/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db := config.InitDB(cfg)

	if err := db.AutoMigrate(
		&models.Receipt{},
		&models.Payment{},
		&models.PaymentMatch{},
		&models.AccountingEntry{},
		&models.Transaction{},
		&models.AnalysisReport{},
	); err != nil {
		log.Fatalf("auto-migration failed: %v", err)
	}

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, cfg, logger)

	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
