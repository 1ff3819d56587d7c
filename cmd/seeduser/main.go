package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kleinmarkt/KleinMarkt/app/models"
	"github.com/kleinmarkt/KleinMarkt/app/repository"
	"github.com/kleinmarkt/KleinMarkt/internal/pkg/database"
	"github.com/kleinmarkt/KleinMarkt/internal/pkg/env"
)

// Creates a seller account with an API key, or rotates the key of an
// existing account. The key is printed exactly once; only its hash is
// stored.
func main() {
	name := flag.String("name", "", "display name of the account")
	email := flag.String("email", "", "login email, unique")
	password := flag.String("password", "", "account password")
	admin := flag.Bool("admin", false, "grant the admin role")
	flag.Parse()

	if *name == "" || *email == "" || *password == "" {
		flag.Usage()
		log.Fatal("name, email and password are required")
	}

	env.SetupEnvFile()
	database.SetupDatabase()
	repository.InitializeFactory(database.GetDB())
	users := repository.GetGlobalFactory().GetUserRepository()

	apiKey := uuid.New().String()

	existing, err := users.GetByEmail(*email)
	switch {
	case err == nil:
		// Rotating the key of an existing account requires its password.
		if !models.CheckPasswordHash(*password, existing.Password) {
			log.Fatalf("password mismatch for %s, refusing to rotate API key", *email)
		}
		existing.APIKeyHash = models.HashAPIKey(apiKey)
		if *admin {
			existing.Role = models.ROLE_ADMIN
		}
		if err := users.Update(existing); err != nil {
			log.Fatalf("Failed to update user: %v", err)
		}
		log.Printf("Rotated API key for existing user %s", *email)

	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err := models.CreateUser(*name, *email, *password)
		if err != nil {
			log.Fatalf("Invalid user: %v", err)
		}
		if *admin {
			user.Role = models.ROLE_ADMIN
		}
		user.APIKeyHash = models.HashAPIKey(apiKey)
		if err := users.Create(user); err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		log.Printf("Created user %s (role %s)", *email, user.Role)

	default:
		log.Fatalf("Failed to look up user: %v", err)
	}

	fmt.Printf("API key: %s\n", apiKey)
}
