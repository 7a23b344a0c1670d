package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"artemius/internal/logger"
	"artemius/internal/util"
)

// Prints a Bearer token for the ops API signed with OPS_JWT_SECRET.
func main() {
	subject := flag.String("subject", "ops", "Token subject")
	ttl := flag.Duration("ttl", time.Hour, "Token lifetime")
	flag.Parse()

	log := logger.New(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: no .env file found")
	}

	secret := os.Getenv("OPS_JWT_SECRET")
	if secret == "" {
		log.Fatal().Msg("OPS_JWT_SECRET is not set")
	}

	token, err := util.GenerateJWT(*subject, secret, *ttl)
	if err != nil {
		log.Fatal().Msgf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
