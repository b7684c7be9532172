package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"paywallet/internal/model"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	Search(ctx context.Context, fragment string, limit int) ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateFields overwrites the given columns on the row with the given id.
// It does not fail when no row matches.
func (r *userRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Delete removes the user and reports how many rows were affected.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	return res.RowsAffected, res.Error
}

// Search returns users whose first or last name contains fragment, compared
// case-sensitively. The SQL LIKE is only a pre-filter because its case
// handling differs between drivers and collations. limit <= 0 means no cap.
func (r *userRepository) Search(ctx context.Context, fragment string, limit int) ([]model.User, error) {
	query := r.db.WithContext(ctx).Model(&model.User{}).Order("created_at ASC, id ASC")

	if fragment == "" {
		if limit > 0 {
			query = query.Limit(limit)
		}
		users := []model.User{}
		if err := query.Find(&users).Error; err != nil {
			return nil, err
		}
		return users, nil
	}

	pattern := "%" + escapeLike(fragment) + "%"
	var candidates []model.User
	if err := query.
		Where("first_name LIKE ? ESCAPE '!' OR last_name LIKE ? ESCAPE '!'", pattern, pattern).
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	users := make([]model.User, 0, len(candidates))
	for _, u := range candidates {
		if !strings.Contains(u.FirstName, fragment) && !strings.Contains(u.LastName, fragment) {
			continue
		}
		users = append(users, u)
		if limit > 0 && len(users) == limit {
			break
		}
	}
	return users, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
