package merchant

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"merchantapi/internal/models"
	cachestore "merchantapi/internal/repositories/cache"
	"merchantapi/internal/utils"
	"merchantapi/internal/utils/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeRepository is an in-memory Repository with a unique email index.
type fakeRepository struct {
	mu        sync.Mutex
	nextID    uint
	rows      map[uint]models.Merchant
	listCalls int
	// hides existing emails from ExistsByEmail to simulate a lost race
	blindPrecheck bool
	// runs before Update takes the lock
	beforeUpdate func()
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{nextID: 1, rows: make(map[uint]models.Merchant)}
}

func (r *fakeRepository) List(context.Context) ([]models.Merchant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	out := make([]models.Merchant, 0, len(r.rows))
	for _, m := range r.rows {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepository) GetByID(_ context.Context, id uint) (*models.Merchant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok {
		return nil, ErrMerchantNotFound
	}
	return &m, nil
}

func (r *fakeRepository) GetByEmail(_ context.Context, email string) (*models.Merchant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.rows {
		if m.Email == email {
			return &m, nil
		}
	}
	return nil, ErrMerchantNotFound
}

func (r *fakeRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if r.blindPrecheck {
		return false, nil
	}
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeRepository) Create(_ context.Context, merchant *models.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.rows {
		if m.Email == merchant.Email {
			return ErrEmailTaken
		}
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	merchant.ID = r.nextID
	merchant.CreatedAt = now
	merchant.UpdatedAt = now
	r.nextID++
	r.rows[merchant.ID] = *merchant
	return nil
}

func (r *fakeRepository) Update(_ context.Context, merchant *models.Merchant) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[merchant.ID]; !ok {
		return ErrMerchantNotFound
	}
	merchant.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond).Add(time.Millisecond)
	r.rows[merchant.ID] = *merchant
	return nil
}

func (r *fakeRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrMerchantNotFound
	}
	delete(r.rows, id)
	return nil
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordCacheHit(kind string)        { m.Called(kind) }
func (m *MockMetrics) RecordCacheMiss(kind string)       { m.Called(kind) }
func (m *MockMetrics) RecordOperation(op, result string) { m.Called(op, result) }

type failingCache struct{ err error }

func (f failingCache) Get(context.Context, string, interface{}) (bool, error) { return false, f.err }
func (f failingCache) Set(context.Context, string, interface{}) error { return f.err }
func (f failingCache) Delete(context.Context, ...string) error { return f.err }

type testEnv struct {
	svc   *Service
	repo  *fakeRepository
	store *cachestore.RedisStore
	mr    *miniredis.Miniredis
}

func setupService(t *testing.T) *testEnv {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := cachestore.NewRedisStore(client, cachestore.DefaultTTL)
	repo := newFakeRepository()
	svc := NewService(repo, store, utils.NewBcryptHasher(bcrypt.MinCost), nil, nil)

	return &testEnv{svc: svc, repo: repo, store: store, mr: mr}
}

func acmeInput() CreateMerchantInput {
	return CreateMerchantInput{
		BusinessName: "Acme",
		Email:        "a@x.com",
		Password:     "p1",
		PhoneNumber:  "555",
	}
}

func TestService_CreateThenGet(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	input := acmeInput()
	input.Address = "1 Main St"
	input.TaxID = "TAX-9"

	created, err := env.svc.Create(ctx, input)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.True(t, created.Active)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.NotEqual(t, "p1", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("p1")))

	// served from the per-id entry written by Create
	got, err := env.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Acme", got.BusinessName)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, "555", got.PhoneNumber)
	assert.Equal(t, "1 Main St", got.Address)
	assert.Equal(t, "TAX-9", got.TaxID)
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
	// cached copies never carry the hash
	assert.Empty(t, got.PasswordHash)

	ttl := env.mr.TTL(cache.MerchantKey(created.ID))
	assert.Equal(t, cachestore.DefaultTTL, ttl)
}

func TestService_GetByID_ReadThrough(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, acmeInput())
	require.NoError(t, err)
	env.mr.Del(cache.MerchantKey(created.ID))

	got, err := env.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, env.mr.Exists(cache.MerchantKey(created.ID)))

	_, err = env.svc.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrMerchantNotFound)
	assert.False(t, env.mr.Exists(cache.MerchantKey(999)))
}

func TestService_Create_DuplicateEmail(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	first, err := env.svc.Create(ctx, acmeInput())
	require.NoError(t, err)

	again := acmeInput()
	again.BusinessName = "Impostor"
	_, err = env.svc.Create(ctx, again)
	assert.ErrorIs(t, err, ErrEmailTaken)

	stored, err := env.repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", stored.BusinessName)
	assert.Equal(t, first.PasswordHash, stored.PasswordHash)
	assert.Len(t, env.repo.rows, 1)
}

func TestService_Create_StoreConstraintWinsRace(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, acmeInput())
	require.NoError(t, err)

	list, err := env.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	env.repo.blindPrecheck = true
	_, err = env.svc.Create(ctx, acmeInput())
	assert.ErrorIs(t, err, ErrEmailTaken)

	// failed create leaves the cache alone
	assert.True(t, env.mr.Exists(cache.MerchantListKey()))
	assert.False(t, env.mr.Exists(cache.MerchantKey(2)))
}

func TestService_Update_IgnoresImmutableFields(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, acmeInput())
	require.NoError(t, err)

	inactive := false
	updated, err := env.svc.Update(ctx, created.ID, UpdateMerchantInput{
		BusinessName: "Acme Corp",
		PhoneNumber:  "556",
		BusinessType: "retail",
		Active:       &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.BusinessName)
	assert.Equal(t, "556", updated.PhoneNumber)
	assert.Equal(t, "retail", updated.BusinessType)
	assert.False(t, updated.Active)
	assert.Equal(t, "a@x.com", updated.Email)
	assert.Equal(t, created.PasswordHash, updated.PasswordHash)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	got, err := env.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.BusinessName)
	assert.False(t, got.Active)

	// nil active keeps the stored value
	updated, err = env.svc.Update(ctx, created.ID, UpdateMerchantInput{BusinessName: "Acme Corp", PhoneNumber: "556"})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Empty(t, updated.BusinessType)
}

func TestService_Update_NotFound(t *testing.T) {
	env := setupService(t)

	_, err := env.svc.Update(context.Background(), 42, UpdateMerchantInput{BusinessName: "x", PhoneNumber: "1"})
	assert.ErrorIs(t, err, ErrMerchantNotFound)
}

func TestService_Update_RacingDelete(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, acmeInput())
	require.NoError(t, err)

	// the row disappears between the load and the write
	env.repo.beforeUpdate = func() {
		require.NoError(t, env.svc.Delete(ctx, created.ID))
	}

	_, err = env.svc.Update(ctx, created.ID, UpdateMerchantInput{BusinessName: "Zombie", PhoneNumber: "1"})
	assert.ErrorIs(t, err, ErrMerchantNotFound)
	assert.False(t, env.mr.Exists(cache.MerchantKey(created.ID)))

	env.repo.beforeUpdate = nil
	_, err = env.svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrMerchantNotFound)
}

func TestService_ListReflectsMutations(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	list, err := env.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, cachestore.DefaultTTL, env.mr.TTL(cache.MerchantListKey()))

	a, err := env.svc.Create(ctx, acmeInput())
	require.NoError(t, err)
	assert.False(t, env.mr.Exists(cache.MerchantListKey()))

	list, err = env.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	// second read is a cache hit
	calls := env.repo.listCalls
	_, err = env.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, calls, env.repo.listCalls)

	_, err = env.svc.Update(ctx, a.ID, UpdateMerchantInput{BusinessName: "Renamed", PhoneNumber: "555"})
	require.NoError(t, err)
	list, err = env.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Renamed", list[0].BusinessName)

	require.NoError(t, env.svc.Delete(ctx, a.ID))
	list, err = env.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_Delete(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, acmeInput())
	require.NoError(t, err)
	_, err = env.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, created.ID))
	assert.False(t, env.mr.Exists(cache.MerchantKey(created.ID)))

	_, err = env.svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrMerchantNotFound)

	assert.ErrorIs(t, env.svc.Delete(ctx, created.ID), ErrMerchantNotFound)
}

func TestService_FindByEmail_BypassesCache(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, acmeInput())
	require.NoError(t, err)

	found, err := env.svc.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.NotEmpty(t, found.PasswordHash)

	_, err = env.svc.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrMerchantNotFound)
}

func TestService_ResetCache(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	a, err := env.svc.Create(ctx, acmeInput())
	require.NoError(t, err)
	_, err = env.svc.ListAll(ctx)
	require.NoError(t, err)
	require.NoError(t, env.mr.Set("unrelated", "keep"))

	require.NoError(t, env.svc.ResetCache(ctx))
	assert.False(t, env.mr.Exists(cache.MerchantKey(a.ID)))
	assert.False(t, env.mr.Exists(cache.MerchantListKey()))
	assert.True(t, env.mr.Exists("unrelated"))
}

func TestService_CacheErrorsPropagate(t *testing.T) {
	repo := newFakeRepository()
	cacheErr := errors.New("cache unavailable")
	svc := NewService(repo, failingCache{err: cacheErr}, utils.NewBcryptHasher(bcrypt.MinCost), nil, nil)
	ctx := context.Background()

	_, err := svc.ListAll(ctx)
	assert.ErrorIs(t, err, cacheErr)

	_, err = svc.GetByID(ctx, 1)
	assert.ErrorIs(t, err, cacheErr)

	_, err = svc.Create(ctx, acmeInput())
	assert.ErrorIs(t, err, cacheErr)
}

func TestService_RecordsMetrics(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	metrics := new(MockMetrics)
	metrics.On("RecordCacheMiss", cacheKindList).Once()
	metrics.On("RecordCacheHit", cacheKindList).Once()
	metrics.On("RecordOperation", "list", "ok").Twice()
	metrics.On("RecordCacheMiss", cacheKindRecord).Once()
	metrics.On("RecordOperation", "get", "not_found").Once()

	svc := NewService(newFakeRepository(), cachestore.NewRedisStore(client, time.Minute),
		utils.NewBcryptHasher(bcrypt.MinCost), metrics, nil)
	ctx := context.Background()

	_, err := svc.ListAll(ctx)
	require.NoError(t, err)
	_, err = svc.ListAll(ctx)
	require.NoError(t, err)
	_, err = svc.GetByID(ctx, 7)
	assert.ErrorIs(t, err, ErrMerchantNotFound)

	metrics.AssertExpectations(t)
	assert.Equal(t, time.Minute, mr.TTL(cache.MerchantListKey()))
}

func TestNewService_PanicsOnMissingDependencies(t *testing.T) {
	assert.Panics(t, func() { NewService(nil, failingCache{}, utils.NewBcryptHasher(bcrypt.MinCost), nil, nil) })
	assert.Panics(t, func() { NewService(newFakeRepository(), nil, utils.NewBcryptHasher(bcrypt.MinCost), nil, nil) })
	assert.Panics(t, func() { NewService(newFakeRepository(), failingCache{}, nil, nil, nil) })
}
