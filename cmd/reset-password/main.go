package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"warkop-pos/internal/model"
	"warkop-pos/internal/repository"
	"warkop-pos/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm/logger"
)

func main() {
	username := flag.String("username", "owner", "staff username to reset")
	password := flag.String("password", "", "new password (at least 6 characters)")
	flag.Parse()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, relying on system env")
	}

	if len(*password) < 6 {
		fail("password must be at least 6 characters")
	}

	// 2. Setup Database
	db, err := database.Connect(database.DSN(), logger.Warn)
	if err != nil {
		fail(err.Error())
	}
	users := repository.NewUserRepo(db)
	ctx := context.Background()

	// 3. Find user
	user, err := users.FindByUsername(ctx, *username)
	if err != nil {
		fail(fmt.Sprintf("user %s not found: %v", *username, err))
	}

	// 4. Hash new password
	var tmp model.User
	if err := tmp.SetPassword(*password); err != nil {
		fail(fmt.Sprintf("failed to hash password: %v", err))
	}

	// 5. Update and drop existing sessions
	if err := users.UpdatePassword(ctx, user.ID, tmp.Password); err != nil {
		fail(fmt.Sprintf("failed to update password: %v", err))
	}
	user.TokenVersion = uuid.NewString()
	if err := db.Model(user).Update("token_version", user.TokenVersion).Error; err != nil {
		fail(fmt.Sprintf("failed to revoke sessions: %v", err))
	}

	fmt.Printf("Password for %s has been reset\n", user.Username)
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
