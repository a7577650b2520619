package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/sebaswvv/MazeBank/internal/mockbank"
)

func main() {
	// .env is optional; real env vars win.
	_ = godotenv.Load()

	secret := getEnv("JWT_SECRET", "mazebank-dev-secret")
	if getEnv("GIN_MODE", "") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := mockbank.NewServer(mockbank.NewStore(), secret)

	userID, checkingID, savingsID, err := server.Seed()
	if err != nil {
		log.Fatalf("Failed to seed mock bank: %v", err)
	}
	log.Printf("Seeded user %d (daan@mazebank.nl / password123), checking account %d, savings account %d", userID, checkingID, savingsID)

	port := getEnv("PORT", "8080")
	log.Printf("Mock bank listening on port %s", port)
	if err := server.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
