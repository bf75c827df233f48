// Package main provides admin management utilities for Agora.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"agora/internal/bootstrap"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/service"

	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin create <username> <email> <password>  - Create an admin account")
	fmt.Println("  go run ./cmd/admin delete-user <user_id>                  - Delete a user and their content")
	fmt.Println("  go run ./cmd/admin list-admins                            - List all admins")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	svc := bootstrap.Services(cfg, db, nil)
	ctx := context.Background()

	switch os.Args[1] {
	case "create":
		if len(os.Args) < 5 {
			usage()
			os.Exit(1)
		}
		createAdmin(ctx, svc, os.Args[2], os.Args[3], os.Args[4])
	case "delete-user":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		deleteUser(ctx, svc, os.Args[2])
	case "list-admins":
		listAdmins(db)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func createAdmin(ctx context.Context, svc *service.Services, username, email, password string) {
	user, err := svc.Users.CreateAdmin(ctx, service.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
		IsPublic: true,
	})
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}
	fmt.Printf("Created admin %s (ID: %d)\n", user.Username, user.ID)
}

func deleteUser(ctx context.Context, svc *service.Services, raw string) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		log.Fatalf("Invalid user ID %q", raw)
	}
	status := svc.Users.DeleteUser(ctx, uint(id))
	fmt.Println(status)
	if status != service.UserDeletedStatus {
		os.Exit(1)
	}
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("role = ?", models.RoleAdmin).Order("id").Find(&admins).Error; err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found in the system")
		return
	}

	fmt.Println("Current Admins:")
	for _, admin := range admins {
		fmt.Printf("ID: %d | Username: %s | Email: %s\n", admin.ID, admin.Username, admin.Email)
	}
}
