package db

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// InitAdmin makes sure the bootstrap admin user exists, hashing the password
// before it touches the table. Called once at startup.
func InitAdmin(ctx context.Context, database *Database, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	var count int
	err := database.ExecQueryRow(ctx, "SELECT COUNT(*) FROM users WHERE username = $1", username).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = database.Exec(ctx, "INSERT INTO users (username, password) VALUES ($1, $2)", username, string(hashed))
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}
