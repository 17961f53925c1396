// seed inserts test accounts into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/prepinterview/backend/internal/infrastructure/postgres"
	"github.com/prepinterview/backend/internal/password"
)

type account struct {
	name     string
	email    string
	phone    string
	password string
}

var accounts = []account{
	{"Seed User", "seed@test.local", "5550100", "password1"},
	{"Asha Rao", "asha@test.local", "5550101", "correct-horse-1"},
	{"Ben Ito", "ben@test.local", "5550102", "interview-prep-9"},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	if err := postgres.Migrate(ctx, dbURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	for _, a := range accounts {
		hash, err := password.Hash(a.password)
		if err != nil {
			log.Fatalf("hash password for %s: %v", a.email, err)
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO users (name, email, phone, password_hash)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (email) DO UPDATE
			SET password_hash = EXCLUDED.password_hash, updated_at = NOW()`,
			a.name, a.email, a.phone, hash,
		)
		if err != nil {
			log.Fatalf("seed %s: %v", a.email, err)
		}

		fmt.Printf("seeded %s (password: %s)\n", a.email, a.password)
	}
}
