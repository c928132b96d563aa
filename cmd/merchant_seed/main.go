package main

import (
	"context"
	"errors"
	"log"
	"os"

	"merchantapi/internal/config"
	"merchantapi/internal/logger"
	"merchantapi/internal/repositories"
	"merchantapi/internal/repositories/cache"
	"merchantapi/internal/services/merchant"
	"merchantapi/internal/utils"
	"merchantapi/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	input := merchant.CreateMerchantInput{
		BusinessName:       os.Getenv("SEED_BUSINESS_NAME"),
		Email:              os.Getenv("SEED_EMAIL"),
		Password:           os.Getenv("SEED_PASSWORD"),
		PhoneNumber:        os.Getenv("SEED_PHONE"),
		Address:            os.Getenv("SEED_ADDRESS"),
		BusinessType:       os.Getenv("SEED_BUSINESS_TYPE"),
		RegistrationNumber: os.Getenv("SEED_REGISTRATION_NUMBER"),
		TaxID:              os.Getenv("SEED_TAX_ID"),
	}
	if err := validation.Struct(input); err != nil {
		zlog.Fatal("SEED_BUSINESS_NAME, SEED_EMAIL, SEED_PASSWORD and SEED_PHONE must be set", zap.Error(err))
	}

	db, err := repositories.Connect(cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer repositories.Close(db) //nolint:errcheck

	store, err := cache.New(cfg.Cache, cfg.Redis)
	if err != nil {
		zlog.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer store.Close()

	svc := merchant.NewService(
		repositories.NewMerchantRepository(db),
		store,
		utils.NewBcryptHasher(bcrypt.DefaultCost),
		nil,
		zlog,
	)

	m, err := svc.Create(context.Background(), input)
	if errors.Is(err, merchant.ErrEmailTaken) {
		zlog.Info("Merchant already exists", zap.String("email", input.Email))
		return
	}
	if err != nil {
		zlog.Fatal("Failed to seed merchant", zap.Error(err))
	}

	zlog.Info("Merchant seeded", zap.Uint("merchant_id", m.ID), zap.String("email", m.Email))
}
