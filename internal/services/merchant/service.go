// Package merchant manages merchant records on top of the record store,
// keeping the side cache consistent with every mutation.
package merchant

import (
	"context"
	"errors"
	"fmt"

	"merchantapi/internal/models"
	"merchantapi/internal/utils/cache"

	"go.uber.org/zap"
)

const (
	cacheKindList   = "list"
	cacheKindRecord = "record"
)

type Service struct {
	repo    Repository
	cache   Cache
	hasher  PasswordHasher
	metrics MetricsCollector
	log     *zap.Logger
}

// NewService creates a new merchant service
func NewService(
	repo Repository,
	cache Cache,
	hasher PasswordHasher,
	metrics MetricsCollector,
	log *zap.Logger,
) *Service {
	if repo == nil {
		panic("repo is required")
	}
	if cache == nil {
		panic("cache is required")
	}
	if hasher == nil {
		panic("hasher is required")
	}

	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		repo:    repo,
		cache:   cache,
		hasher:  hasher,
		metrics: metrics,
		log:     log.Named("merchant"),
	}
}

// ListAll returns every merchant, served from the list cache entry when present.
func (s *Service) ListAll(ctx context.Context) ([]models.Merchant, error) {
	var merchants []models.Merchant
	found, err := s.cache.Get(ctx, cache.MerchantListKey(), &merchants)
	if err != nil {
		s.metrics.RecordOperation("list", "error")
		return nil, fmt.Errorf("failed to read merchant list cache: %w", err)
	}
	if found {
		s.metrics.RecordCacheHit(cacheKindList)
		s.metrics.RecordOperation("list", "ok")
		return merchants, nil
	}
	s.metrics.RecordCacheMiss(cacheKindList)

	merchants, err = s.repo.List(ctx)
	if err != nil {
		s.metrics.RecordOperation("list", "error")
		return nil, err
	}

	if err := s.cache.Set(ctx, cache.MerchantListKey(), merchants); err != nil {
		s.metrics.RecordOperation("list", "error")
		return nil, fmt.Errorf("failed to cache merchant list: %w", err)
	}

	s.metrics.RecordOperation("list", "ok")
	return merchants, nil
}

// GetByID returns the merchant with id, read through the per-id cache entry.
func (s *Service) GetByID(ctx context.Context, id uint) (*models.Merchant, error) {
	key := cache.MerchantKey(id)

	var cached models.Merchant
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.metrics.RecordOperation("get", "error")
		return nil, fmt.Errorf("failed to read merchant cache: %w", err)
	}
	if found {
		s.metrics.RecordCacheHit(cacheKindRecord)
		s.metrics.RecordOperation("get", "ok")
		return &cached, nil
	}
	s.metrics.RecordCacheMiss(cacheKindRecord)

	merchant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.metrics.RecordOperation("get", resultOf(err))
		return nil, err
	}

	if err := s.cache.Set(ctx, key, merchant); err != nil {
		s.metrics.RecordOperation("get", "error")
		return nil, fmt.Errorf("failed to cache merchant %d: %w", id, err)
	}

	s.metrics.RecordOperation("get", "ok")
	return merchant, nil
}

// FindByEmail looks the merchant up in the store directly. The cached copy
// carries no password hash, so credential checks must not use it.
func (s *Service) FindByEmail(ctx context.Context, email string) (*models.Merchant, error) {
	return s.repo.GetByEmail(ctx, email)
}

// Create hashes the password, persists the merchant and refreshes the cache.
func (s *Service) Create(ctx context.Context, input CreateMerchantInput) (*models.Merchant, error) {
	exists, err := s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		s.metrics.RecordOperation("create", "error")
		return nil, err
	}
	if exists {
		s.metrics.RecordOperation("create", "conflict")
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.metrics.RecordOperation("create", "error")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	merchant := &models.Merchant{
		BusinessName:       input.BusinessName,
		Email:              input.Email,
		PasswordHash:       hash,
		PhoneNumber:        input.PhoneNumber,
		Address:            input.Address,
		BusinessType:       input.BusinessType,
		RegistrationNumber: input.RegistrationNumber,
		TaxID:              input.TaxID,
		Active:             true,
	}

	// the unique index decides races the pre-check could not see
	if err := s.repo.Create(ctx, merchant); err != nil {
		s.metrics.RecordOperation("create", resultOf(err))
		return nil, err
	}

	if err := s.refreshCache(ctx, merchant); err != nil {
		s.metrics.RecordOperation("create", "error")
		return nil, err
	}

	s.log.Info("merchant created", zap.Uint("merchant_id", merchant.ID))
	s.metrics.RecordOperation("create", "ok")
	return merchant, nil
}

// Update applies the mutable profile fields to an existing merchant.
func (s *Service) Update(ctx context.Context, id uint, input UpdateMerchantInput) (*models.Merchant, error) {
	merchant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.metrics.RecordOperation("update", resultOf(err))
		return nil, err
	}

	merchant.BusinessName = input.BusinessName
	merchant.PhoneNumber = input.PhoneNumber
	merchant.Address = input.Address
	merchant.BusinessType = input.BusinessType
	merchant.RegistrationNumber = input.RegistrationNumber
	merchant.TaxID = input.TaxID
	if input.Active != nil {
		merchant.Active = *input.Active
	}

	// a concurrent delete surfaces here as ErrMerchantNotFound
	if err := s.repo.Update(ctx, merchant); err != nil {
		s.metrics.RecordOperation("update", resultOf(err))
		return nil, err
	}

	if err := s.refreshCache(ctx, merchant); err != nil {
		s.metrics.RecordOperation("update", "error")
		return nil, err
	}

	s.log.Info("merchant updated", zap.Uint("merchant_id", merchant.ID))
	s.metrics.RecordOperation("update", "ok")
	return merchant, nil
}

// Delete removes the merchant and evicts its cache entries.
func (s *Service) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.metrics.RecordOperation("delete", resultOf(err))
		return err
	}

	if err := s.cache.Delete(ctx, cache.MerchantKey(id), cache.MerchantListKey()); err != nil {
		s.metrics.RecordOperation("delete", "error")
		return fmt.Errorf("failed to evict merchant %d from cache: %w", id, err)
	}

	s.log.Info("merchant deleted", zap.Uint("merchant_id", id))
	s.metrics.RecordOperation("delete", "ok")
	return nil
}

// ResetCache evicts the list entry and the per-id entry of every stored
// merchant. It runs at startup so entries written by an older schema or a
// previous deployment are never served.
func (s *Service) ResetCache(ctx context.Context) error {
	merchants, err := s.repo.List(ctx)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(merchants)+1)
	keys = append(keys, cache.MerchantListKey())
	for _, m := range merchants {
		keys = append(keys, cache.MerchantKey(m.ID))
	}

	if err := s.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to reset merchant cache: %w", err)
	}

	s.log.Info("merchant cache reset", zap.Int("keys", len(keys)))
	return nil
}

// refreshCache overwrites the per-id entry and drops the list entry.
func (s *Service) refreshCache(ctx context.Context, merchant *models.Merchant) error {
	if err := s.cache.Set(ctx, cache.MerchantKey(merchant.ID), merchant); err != nil {
		return fmt.Errorf("failed to cache merchant %d: %w", merchant.ID, err)
	}
	if err := s.cache.Delete(ctx, cache.MerchantListKey()); err != nil {
		return fmt.Errorf("failed to evict merchant list: %w", err)
	}
	return nil
}

func resultOf(err error) string {
	switch {
	case errors.Is(err, ErrMerchantNotFound):
		return "not_found"
	case errors.Is(err, ErrEmailTaken):
		return "conflict"
	default:
		return "error"
	}
}
