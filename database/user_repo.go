package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/project-showcase-backend/models"
	"gorm.io/gorm"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// Create inserts a new user. A taken email surfaces as a conflict.
func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	return wrap("create", "user", r.db.WithContext(ctx).Create(user).Error)
}

// FindByID returns a user by its ID
func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, wrap("get", "user", err)
	}
	return &user, nil
}

// FindByEmail looks a user up by the normalised email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", models.NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		return nil, wrap("get", "user", err)
	}
	return &user, nil
}
