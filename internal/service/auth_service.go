package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"paywallet/internal/auth"
	apperrors "paywallet/internal/errors"
	"paywallet/internal/model"
	"paywallet/internal/repository"
	"paywallet/internal/validate"
)

const bcryptCost = 10

// dummyHash is compared against when the handle is unknown so that both
// signin failures cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("paywallet-unknown-user"), bcryptCost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy hash: %v", err))
	}
	return hash
})

// SignupInput carries the fields needed to register a user.
type SignupInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// AuthService handles signup, signin and signout.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (token string, user *model.User, err error)
	Signin(ctx context.Context, username, password string) (token string, err error)
	Signout(ctx context.Context, claims *auth.Claims) error
}

type authService struct {
	store          repository.Store
	jwtService     *auth.JWTService
	tokenStore     auth.TokenStoreInterface
	openingBalance func() int64
	compare        func(hashed, password []byte) error
}

// AuthOption customizes an AuthService.
type AuthOption func(*authService)

// WithOpeningBalance overrides the source of new account balances.
func WithOpeningBalance(fn func() int64) AuthOption {
	return func(s *authService) { s.openingBalance = fn }
}

// NewAuthService creates a new authentication service.
func NewAuthService(store repository.Store, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, opts ...AuthOption) AuthService {
	s := &authService{
		store:          store,
		jwtService:     jwtService,
		tokenStore:     tokenStore,
		openingBalance: randomOpeningBalance,
		compare:        bcrypt.CompareHashAndPassword,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func randomOpeningBalance() int64 {
	return model.MinOpeningBalance + rand.Int64N(model.MaxOpeningBalance-model.MinOpeningBalance+1)
}

// Signup registers a user and provisions its account in one transaction,
// then issues a session token for it.
func (s *authService) Signup(ctx context.Context, in SignupInput) (string, *model.User, error) {
	username := validate.NormalizeUsername(in.Username)

	existing, err := s.store.Users().FindByUsername(ctx, username)
	if err == nil && existing != nil {
		return "", nil, apperrors.ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		FirstName:    validate.NormalizeName(in.FirstName),
		LastName:     validate.NormalizeName(in.LastName),
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrUserAlreadyExists
			}
			return fmt.Errorf("create user: %w", err)
		}
		account := &model.Account{
			UserID:  user.ID,
			Balance: decimal.NewFromInt(s.openingBalance()),
		}
		if err := tx.Accounts().Create(ctx, account); err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

// Signin checks the credentials and issues a session token. An unknown
// handle and a wrong secret fail the same way.
func (s *authService) Signin(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.Users().FindByUsername(ctx, validate.NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = s.compare(dummyHash(), []byte(password))
			return "", apperrors.ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if err := s.compare([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

// Signout blacklists the token until it would have expired.
func (s *authService) Signout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return apperrors.ErrInvalidToken
	}
	if err := s.tokenStore.Revoke(ctx, claims.ID, claims.RemainingTTL(s.jwtService.Now())); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
