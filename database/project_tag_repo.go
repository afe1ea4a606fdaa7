package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/project-showcase-backend/models"
	"gorm.io/gorm"
)

type ProjectTagRepo struct {
	db *gorm.DB
}

func NewProjectTagRepo(db *gorm.DB) *ProjectTagRepo {
	return &ProjectTagRepo{db}
}

// Create inserts tag rows. An empty slice is a no-op.
func (r *ProjectTagRepo) Create(ctx context.Context, tags []models.ProjectTag) error {
	if len(tags) == 0 {
		return nil
	}
	return wrap("create", "project tag", r.db.WithContext(ctx).Create(&tags).Error)
}

// Replace swaps every tag of kind on the project for values.
func (r *ProjectTagRepo) Replace(ctx context.Context, projectID uuid.UUID, kind string, values []string) error {
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND kind = ?", projectID, kind).
		Delete(&models.ProjectTag{}).Error
	if err != nil {
		return wrap("delete", "project tag", err)
	}
	return r.Create(ctx, models.BuildKind(projectID, kind, values))
}

// FindByProject returns the project's tags in stored order.
func (r *ProjectTagRepo) FindByProject(ctx context.Context, projectID uuid.UUID) ([]models.ProjectTag, error) {
	var tags []models.ProjectTag
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("kind").Order("position").
		Find(&tags).Error
	return tags, wrap("list", "project tags", err)
}

// DeleteByProject removes every tag attached to the project.
func (r *ProjectTagRepo) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.ProjectTag{}).Error
	return wrap("delete", "project tag", err)
}
