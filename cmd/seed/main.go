package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bridge-pay/bridge-api/internal/config"
	"github.com/bridge-pay/bridge-api/internal/domain/user"
	"github.com/bridge-pay/bridge-api/internal/domain/wallet"
	"github.com/bridge-pay/bridge-api/internal/pkg/database"
	"github.com/bridge-pay/bridge-api/internal/pkg/jwt"
	"github.com/bridge-pay/bridge-api/internal/pkg/password"
)

type seedUser struct {
	Email   string
	Phone   string
	Name    string
	Balance int64
}

var seedUsers = []seedUser{
	{Email: "merchant@bridge.local", Phone: "+254700000010", Name: "Nairobi Mart", Balance: 25000},
	{Email: "amina@bridge.local", Phone: "+254700000020", Name: "Amina Implementer", Balance: 7500},
	{Email: "kevin@bridge.local", Phone: "+254700000030", Name: "Kevin Customer", Balance: 20000},
	{Email: "grace@bridge.local", Phone: "+254700000040", Name: "Grace Project Owner", Balance: 15000},
}

func main() {
	cfg := config.Load()

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.ClosePostgres(db)

	walletRepo := wallet.NewRepository(db)
	jwtService := jwt.NewService(cfg.JWTSecret, 24*time.Hour)

	hash, err := password.Hash("Password123!")
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	ctx := context.Background()
	fmt.Println("--- Seeding demo users ---")

	userRepo := user.NewRepository(db)

	for _, su := range seedUsers {
		u := &user.User{
			ID:           uuid.New(),
			Email:        su.Email,
			Phone:        su.Phone,
			Name:         su.Name,
			Status:       user.StatusActive,
			PasswordHash: hash,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}

		err := userRepo.Create(ctx, u)
		if err != nil {
			if !errors.Is(err, user.ErrPhoneAlreadyExists) && !errors.Is(err, user.ErrEmailAlreadyExists) {
				log.Fatalf("Failed to create user %s: %v", su.Email, err)
			}
			existing, err := userRepo.GetByPhone(ctx, su.Phone)
			if err != nil || existing == nil {
				log.Fatalf("Failed to load existing user %s: %v", su.Email, err)
			}
			u = existing
		}

		if err := walletRepo.CreateWallet(ctx, u.ID, decimal.NewFromInt(su.Balance)); err != nil {
			log.Fatalf("Failed to create wallet for %s: %v", su.Email, err)
		}

		token, err := jwtService.GenerateAccessToken(u.ID, su.Phone)
		if err != nil {
			log.Fatalf("Failed to generate token for %s: %v", su.Email, err)
		}

		balance, err := walletRepo.GetBalance(ctx, u.ID)
		if err != nil {
			log.Fatalf("Failed to read balance for %s: %v", su.Email, err)
		}

		fmt.Printf("%-22s %s  balance=%s\n", su.Name, su.Phone, balance.StringFixed(2))
		fmt.Printf("  token: %s\n", token)
	}

	fmt.Println("--- Done ---")
}
