// Package auth registers merchants and exchanges credentials for bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"

	"merchantapi/internal/models"
	"merchantapi/internal/services/merchant"
	"merchantapi/internal/utils"

	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// MerchantService is the part of the merchant service auth depends on.
type MerchantService interface {
	Create(ctx context.Context, input merchant.CreateMerchantInput) (*models.Merchant, error)
	FindByEmail(ctx context.Context, email string) (*models.Merchant, error)
}

// Authenticator verifies an email/password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) error
}

type TokenIssuer interface {
	Issue(merchant *models.Merchant) (string, error)
}

type PasswordComparer interface {
	Compare(hash, password string) error
}

// PasswordAuthenticator checks a password against the stored bcrypt hash.
type PasswordAuthenticator struct {
	merchants MerchantService
	comparer  PasswordComparer
}

func NewPasswordAuthenticator(merchants MerchantService, comparer PasswordComparer) *PasswordAuthenticator {
	return &PasswordAuthenticator{merchants: merchants, comparer: comparer}
}

// Authenticate returns ErrInvalidCredentials for an unknown email or a wrong
// password so callers cannot tell the two apart.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, password string) error {
	m, err := a.merchants.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, merchant.ErrMerchantNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	if err := a.comparer.Compare(m.PasswordHash, password); err != nil {
		if errors.Is(err, utils.ErrPasswordMismatch) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to verify password: %w", err)
	}
	return nil
}

type Service struct {
	merchants     MerchantService
	authenticator Authenticator
	issuer        TokenIssuer
	log           *zap.Logger
}

func NewService(merchants MerchantService, authenticator Authenticator, issuer TokenIssuer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		merchants:     merchants,
		authenticator: authenticator,
		issuer:        issuer,
		log:           log.Named("auth"),
	}
}

// Register creates the merchant and returns a token for it.
func (s *Service) Register(ctx context.Context, input merchant.CreateMerchantInput) (string, error) {
	m, err := s.merchants.Create(ctx, input)
	if err != nil {
		return "", err
	}

	token, err := s.issuer.Issue(m)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}

	s.log.Info("merchant registered", zap.Uint("merchant_id", m.ID))
	return token, nil
}

// Login verifies the credentials and returns a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if err := s.authenticator.Authenticate(ctx, email, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.log.Warn("login failed", zap.String("email", email))
		}
		return "", err
	}

	m, err := s.merchants.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	token, err := s.issuer.Issue(m)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}
	return token, nil
}
