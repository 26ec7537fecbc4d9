package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func Load() {
	/*
		START points at the env file to use: .env-local for a local
		setup, .env.docker inside docker (set by the start script).
	*/
	if err := godotenv.Load(os.Getenv("START")); err != nil {
		log.Fatalf("Env file not found")
	}

	required := []string{
		"JWT_SECRET",
		"MYSQL_DSN",
		"MONGO_URI",
		"MONGO_DB_NAME",
		"REDIS_ADDR",
	}
	for _, key := range required {
		if os.Getenv(key) == "" {
			log.Fatalf("%s is not set in environment", key)
		}
	}
}
