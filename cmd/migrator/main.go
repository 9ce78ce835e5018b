package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"pixelfeed/internal/config"
	"pixelfeed/internal/domain/models"
	"pixelfeed/internal/storage/mongodb"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	var configPath string
	var seedUser bool
	flag.StringVar(&configPath, "config", "", "path to config file (or use CONFIG_PATH env)")
	flag.BoolVar(&seedUser, "seed", false, "seed a demo user into the database")
	flag.Parse()

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	cfg := config.LoadConfig(configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Println("Connecting to MongoDB...")

	storage, err := mongodb.New(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer storage.Close(ctx)

	log.Println("MongoDB connected, indexes created successfully")

	if seedUser {
		log.Println("Seeding demo user...")

		passHash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash demo password: %v", err)
		}

		userID, err := storage.SaveUser(ctx, &models.User{
			Email:    "demo@pixelfeed.local",
			UserName: "demo",
			Credential: models.Credential{
				Kind:     models.CredentialLocal,
				PassHash: passHash,
			},
		})
		if err != nil {
			log.Fatalf("failed to seed demo user: %v", err)
		}
		log.Printf("Demo user seeded (id=%s, email=demo@pixelfeed.local)", userID)
	}

	fmt.Println("Database initialization completed successfully")
}
