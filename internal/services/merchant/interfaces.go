package merchant

import (
	"context"

	"merchantapi/internal/models"
)

// Repository is the record store the service persists merchants to.
type Repository interface {
	List(ctx context.Context) ([]models.Merchant, error)
	GetByID(ctx context.Context, id uint) (*models.Merchant, error)
	GetByEmail(ctx context.Context, email string) (*models.Merchant, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, merchant *models.Merchant) error
	Update(ctx context.Context, merchant *models.Merchant) error
	Delete(ctx context.Context, id uint) error
}

// Cache is the subset of cache.Store the service needs. Entry lifetime is
// the cache's own.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

// MetricsCollector receives cache and operation outcomes.
type MetricsCollector interface {
	RecordCacheHit(kind string)
	RecordCacheMiss(kind string)
	RecordOperation(op, result string)
}
