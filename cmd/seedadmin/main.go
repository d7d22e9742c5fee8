// cmd/seedadmin/main.go bootstraps the first admin account.
// Usage: SEED_ADMIN_EMAIL=... SEED_ADMIN_PASSWORD=... go run cmd/seedadmin/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	fbauth "firebase.google.com/go/v4/auth"

	"stallsync/internal/config"
	"stallsync/internal/infra"
	"stallsync/internal/model"
	"stallsync/internal/repository"
)

func main() {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	name := os.Getenv("SEED_ADMIN_NAME")
	if email == "" || password == "" {
		log.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
	}
	if name == "" {
		name = "Admin"
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	fb, err := infra.InitFirebase(ctx, cfg)
	if err != nil {
		log.Fatalf("firebase init error: %v", err)
	}
	defer fb.Close()

	// Reuse the Auth account if it already exists so the seed is idempotent.
	var uid string
	if rec, err := fb.Auth.GetUserByEmail(ctx, email); err == nil {
		uid = rec.UID
	} else {
		params := (&fbauth.UserToCreate{}).Email(email).Password(password).DisplayName(name)
		rec, err := fb.Auth.CreateUser(ctx, params)
		if err != nil {
			log.Fatalf("auth create error: %v", err)
		}
		uid = rec.UID
	}

	users := repository.NewUserRepository(fb.Firestore)
	user := &model.User{
		UID:         uid,
		Email:       email,
		DisplayName: name,
		Role:        model.RoleAdmin,
		Status:      model.StatusActive,
	}
	if existing, err := users.FindByUID(ctx, uid); err == nil {
		existing.Role = model.RoleAdmin
		existing.Status = model.StatusActive
		if err := users.Update(ctx, existing); err != nil {
			log.Fatalf("user update error: %v", err)
		}
	} else if err := users.Create(ctx, user); err != nil {
		log.Fatalf("user create error: %v", err)
	}

	fmt.Printf("✅ Admin '%s' (%s) ready\n", email, uid)
}
