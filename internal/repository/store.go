package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store hands out repositories bound to one database handle or transaction.
type Store interface {
	Users() UserRepository
	Accounts() AccountRepository
	// WithTransaction runs fn inside a database transaction. Repositories
	// obtained from the Store passed to fn share that transaction; any
	// error returned by fn rolls everything back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a Store over the shared GORM handle.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository {
	return NewUserRepository(s.db)
}

func (s *gormStore) Accounts() AccountRepository {
	return NewAccountRepository(s.db)
}

// WithTransaction executes a function within a database transaction.
func (s *gormStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormStore{db: tx})
	})
}
