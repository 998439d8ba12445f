// Package main is the entry point for the payout engine. It initializes
// configuration, storage and the HTTP server, then serves until killed.
package main

import (
	"log"
	"time"

	"pactify/internal/config"
	"pactify/internal/repositories"
	"pactify/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadEnv()

	db, err := repositories.InitDB(repositories.NewDBConfig())
	if err != nil {
		log.Fatalf("database initialization failed: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("database close failed: %v", err)
			}
		}
	}()

	// Redis is an accelerator, not a dependency: without it balance reads
	// hit postgres and idempotency falls back to the trace key index.
	walletTTL := config.GetDurationEnv("WALLET_CACHE_TTL", 5*time.Minute)
	cache, err := repositories.NewRedisCache(repositories.NewRedisConfig(), walletTTL)
	if err != nil {
		log.Printf("redis unavailable, running without cache: %v", err)
		cache = repositories.NoopCache{}
	}
	defer func() {
		if err := cache.Close(); err != nil {
			log.Printf("cache close failed: %v", err)
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      "pactify-payout-engine",
		ReadTimeout:  config.GetDurationEnv("HTTP_READ_TIMEOUT", 10*time.Second),
		WriteTimeout: config.GetDurationEnv("HTTP_WRITE_TIMEOUT", 30*time.Second),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Service-Token",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.SetupRoutes(app, db, cache)

	log.Fatal(app.Listen(":" + config.GetEnv("PORT", "3000")))
}
