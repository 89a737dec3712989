package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/oksasatya/care-connect/config"
	"github.com/oksasatya/care-connect/pkg/helpers"
)

// Seeds a staff account for local development and moderation testing.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	phone := "+70000000001"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (phone_number, password_hash, first_name, last_name, is_staff, is_active)
		VALUES ($1, $2, $3, $4, TRUE, TRUE)
		ON CONFLICT (phone_number) DO UPDATE SET is_staff = TRUE
		RETURNING id
	`, phone, hash, "Staff", "Account").Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed staff user: %v", err)
	}
	fmt.Printf("seeded staff user: id=%s phone=%s password=%s\n", id, phone, password)
}
