package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"paywallet/internal/cache"
	apperrors "paywallet/internal/errors"
	"paywallet/internal/model"
	"paywallet/internal/repository"
	"paywallet/internal/validate"
)

const userInfoCacheTTL = 5 * time.Minute

// UpdateInput lists the profile fields to overwrite. Nil fields are left alone.
type UpdateInput struct {
	Password  *string
	FirstName *string
	LastName  *string
}

// UserInfo is a user's profile joined with its account balance.
type UserInfo struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Username  string    `json:"username"`
	Balance   float64   `json:"balance"`
}

// UserService exposes profile and directory operations.
type UserService interface {
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) error
	Info(ctx context.Context, id uuid.UUID) (*UserInfo, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, filter string) ([]model.User, error)
}

type userService struct {
	store       repository.Store
	cache       *cache.Client
	searchLimit int
}

// NewUserService builds a UserService with store and cache. searchLimit <= 0
// returns every match.
func NewUserService(store repository.Store, cache *cache.Client, searchLimit int) UserService {
	return &userService{store: store, cache: cache, searchLimit: searchLimit}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:info:%s", id)
}

// Update overwrites the supplied fields. It does not check that the user exists.
func (s *userService) Update(ctx context.Context, id uuid.UUID, in UpdateInput) error {
	fields := make(map[string]interface{}, 3)
	if in.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcryptCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		fields["password_hash"] = string(hashed)
	}
	if in.FirstName != nil {
		fields["first_name"] = validate.NormalizeName(*in.FirstName)
	}
	if in.LastName != nil {
		fields["last_name"] = validate.NormalizeName(*in.LastName)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	if err := s.store.Users().UpdateFields(ctx, id, fields); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	// again after the write, in case an Info refilled the key meanwhile
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

// Info returns the profile and balance of the user.
func (s *userService) Info(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached UserInfo
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	account, err := s.store.Accounts().FindByUserID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	info := &UserInfo{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
		Balance:   account.Balance.InexactFloat64(),
	}
	if payload, err := json.Marshal(info); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userInfoCacheTTL)
	}
	return info, nil
}

// Delete removes the user and its account. Deleting an absent user succeeds.
func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Accounts().DeleteByUserID(ctx, id); err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		if _, err := tx.Users().Delete(ctx, id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

// Search lists users whose first or last name contains filter.
func (s *userService) Search(ctx context.Context, filter string) ([]model.User, error) {
	users, err := s.store.Users().Search(ctx, filter, s.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}
