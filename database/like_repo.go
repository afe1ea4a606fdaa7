package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/project-showcase-backend/models"
	"gorm.io/gorm"
)

type LikeRepo struct {
	db *gorm.DB
}

func NewLikeRepo(db *gorm.DB) *LikeRepo {
	return &LikeRepo{db}
}

// Create records the like. A second like for the same pair is a conflict.
func (r *LikeRepo) Create(ctx context.Context, userID, projectID uuid.UUID) error {
	like := models.Like{UserID: userID, ProjectID: projectID}
	return wrap("create", "like", r.db.WithContext(ctx).Create(&like).Error)
}

// Delete removes the like and reports whether one existed.
func (r *LikeRepo) Delete(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, wrap("delete", "like", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Exists reports whether userID has liked projectID.
func (r *LikeRepo) Exists(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, wrap("get", "like", err)
	}
	return count > 0, nil
}

// CountByProject counts the likes recorded for a project.
func (r *LikeRepo) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("project_id = ?", projectID).Count(&count).Error
	return count, wrap("count", "likes", err)
}

// DeleteByProject removes every like of a project.
func (r *LikeRepo) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.Like{}).Error
	return wrap("delete", "like", err)
}
