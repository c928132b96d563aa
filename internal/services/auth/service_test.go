package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"merchantapi/internal/models"
	"merchantapi/internal/services/merchant"
	"merchantapi/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockMerchantService struct {
	mock.Mock
}

func (m *MockMerchantService) Create(ctx context.Context, input merchant.CreateMerchantInput) (*models.Merchant, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Merchant), args.Error(1)
}

func (m *MockMerchantService) FindByEmail(ctx context.Context, email string) (*models.Merchant, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Merchant), args.Error(1)
}

func storedMerchant(t *testing.T, password string) *models.Merchant {
	hash, err := utils.NewBcryptHasher(bcrypt.MinCost).Hash(password)
	require.NoError(t, err)
	return &models.Merchant{ID: 7, Email: "a@x.com", PasswordHash: hash, BusinessName: "Acme", Active: true}
}

func newTestService(merchants MerchantService) (*Service, *utils.TokenIssuer) {
	issuer := utils.NewTokenIssuer("test-secret", "merchantapi", time.Hour)
	authenticator := NewPasswordAuthenticator(merchants, utils.NewBcryptHasher(bcrypt.MinCost))
	return NewService(merchants, authenticator, issuer, nil), issuer
}

func TestService_Register(t *testing.T) {
	merchants := new(MockMerchantService)
	svc, issuer := newTestService(merchants)
	input := merchant.CreateMerchantInput{BusinessName: "Acme", Email: "a@x.com", Password: "p1", PhoneNumber: "555"}

	merchants.On("Create", mock.Anything, input).Return(&models.Merchant{ID: 7, Email: "a@x.com"}, nil).Once()

	token, err := svc.Register(context.Background(), input)
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, uint(7), claims.MerchantID)

	merchants.On("Create", mock.Anything, input).Return(nil, merchant.ErrEmailTaken).Once()
	token, err = svc.Register(context.Background(), input)
	assert.ErrorIs(t, err, merchant.ErrEmailTaken)
	assert.Empty(t, token)

	merchants.AssertExpectations(t)
}

func TestService_Login(t *testing.T) {
	stored := storedMerchant(t, "p1")

	tests := []struct {
		name     string
		email    string
		password string
		setup    func(m *MockMerchantService)
		wantErr  error
	}{
		{
			name:     "correct credentials",
			email:    "a@x.com",
			password: "p1",
			setup: func(m *MockMerchantService) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(stored, nil)
			},
		},
		{
			name:     "wrong password",
			email:    "a@x.com",
			password: "wrong",
			setup: func(m *MockMerchantService) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(stored, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "nobody@x.com",
			password: "p1",
			setup: func(m *MockMerchantService) {
				m.On("FindByEmail", mock.Anything, "nobody@x.com").Return(nil, merchant.ErrMerchantNotFound)
			},
			wantErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merchants := new(MockMerchantService)
			tt.setup(merchants)
			svc, issuer := newTestService(merchants)

			token, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}

			require.NoError(t, err)
			claims, err := issuer.Parse(token)
			require.NoError(t, err)
			assert.Equal(t, tt.email, claims.Subject)
			assert.True(t, claims.HasPermission(models.PermissionMerchantWrite))
		})
	}
}

func TestPasswordAuthenticator_StoreError(t *testing.T) {
	merchants := new(MockMerchantService)
	storeErr := errors.New("db down")
	merchants.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, storeErr)

	err := NewPasswordAuthenticator(merchants, utils.NewBcryptHasher(bcrypt.MinCost)).
		Authenticate(context.Background(), "a@x.com", "p1")
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}
