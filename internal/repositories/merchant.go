package repositories

import (
	"context"
	"errors"
	"fmt"

	"merchantapi/internal/models"

	"gorm.io/gorm"
)

var (
	ErrMerchantNotFound = errors.New("merchant not found")
	ErrEmailTaken       = errors.New("email already registered")
)

// MerchantRepository defines the persistence operations for merchants.
type MerchantRepository interface {
	// List returns every merchant ordered by id.
	List(ctx context.Context) ([]models.Merchant, error)

	GetByID(ctx context.Context, id uint) (*models.Merchant, error)
	GetByEmail(ctx context.Context, email string) (*models.Merchant, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserts the merchant and fills in its id and timestamps.
	// A unique violation on email returns ErrEmailTaken.
	Create(ctx context.Context, merchant *models.Merchant) error

	// Update writes every column except created_at of an existing merchant.
	// ErrMerchantNotFound if the row is gone; a deleted merchant is never
	// re-created.
	Update(ctx context.Context, merchant *models.Merchant) error

	// Delete hard-deletes the merchant. ErrMerchantNotFound if no row matched.
	Delete(ctx context.Context, id uint) error
}

type merchantRepository struct {
	db *gorm.DB
}

func NewMerchantRepository(db *gorm.DB) MerchantRepository {
	return &merchantRepository{db: db}
}

func (r *merchantRepository) List(ctx context.Context) ([]models.Merchant, error) {
	merchants := make([]models.Merchant, 0)
	if err := r.db.WithContext(ctx).Order("id").Find(&merchants).Error; err != nil {
		return nil, fmt.Errorf("list merchants: %w", err)
	}
	return merchants, nil
}

func (r *merchantRepository) GetByID(ctx context.Context, id uint) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.WithContext(ctx).First(&merchant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("get merchant %d: %w", id, err)
	}
	return &merchant, nil
}

func (r *merchantRepository) GetByEmail(ctx context.Context, email string) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&merchant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("get merchant by email: %w", err)
	}
	return &merchant, nil
}

func (r *merchantRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Merchant{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check merchant email: %w", err)
	}
	return count > 0, nil
}

func (r *merchantRepository) Create(ctx context.Context, merchant *models.Merchant) error {
	if err := r.db.WithContext(ctx).Create(merchant).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create merchant: %w", err)
	}
	return nil
}

func (r *merchantRepository) Update(ctx context.Context, merchant *models.Merchant) error {
	if merchant.ID == 0 {
		return errors.New("cannot update merchant with ID 0")
	}
	result := r.db.WithContext(ctx).Model(merchant).Select("*").Omit("created_at").Updates(merchant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("update merchant %d: %w", merchant.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMerchantNotFound
	}
	return nil
}

func (r *merchantRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Merchant{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete merchant %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMerchantNotFound
	}
	return nil
}
