package database

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rpupo63/project-showcase-backend/errs"
	"github.com/rpupo63/project-showcase-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectFilter narrows List. Zero values mean "no constraint".
type ProjectFilter struct {
	OwnerID  uuid.UUID
	Tag      string
	Search   string
	Featured *bool
	Limit    int
	Offset   int
}

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// withRelations loads the owner's public columns and the ordered tags.
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Owner", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "profile_picture")
		}).
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("kind").Order("position")
		})
}

// Create inserts the project row only; tags are written by ProjectTagRepo.
func (r *ProjectRepo) Create(ctx context.Context, project *models.Project) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error
	return wrap("create", "project", err)
}

// FindByID returns a project with its owner and tags.
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := withRelations(r.db.WithContext(ctx)).First(&project, "projects.id = ?", id).Error
	if err != nil {
		return nil, wrap("get", "project", err)
	}
	return &project, nil
}

// Lock reads the project row with FOR UPDATE. Only meaningful inside a transaction.
func (r *ProjectRepo) Lock(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&project, "id = ?", id).Error
	if err != nil {
		return nil, wrap("get", "project", err)
	}
	return &project, nil
}

// Update writes the given columns and bumps updated_at.
func (r *ProjectRepo) Update(ctx context.Context, id uuid.UUID, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return wrap("update", "project", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFoundError("project not found")
	}
	return nil
}

// IncrementViews adds one to the view counter atomically.
func (r *ProjectRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return wrap("update", "project", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFoundError("project not found")
	}
	return nil
}

// SyncLikes sets the like counter to the number of Like rows for the project.
func (r *ProjectRepo) SyncLikes(ctx context.Context, id uuid.UUID) (int, error) {
	db := r.db.WithContext(ctx)
	count := db.Model(&models.Like{}).Select("COUNT(*)").Where("project_id = ?", id)
	res := db.Model(&models.Project{}).Where("id = ?", id).UpdateColumn("likes", count)
	if res.Error != nil {
		return 0, wrap("update", "project", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, errs.NewNotFoundError("project not found")
	}

	var likes int
	if err := db.Model(&models.Project{}).Where("id = ?", id).Pluck("likes", &likes).Error; err != nil {
		return 0, wrap("get", "project", err)
	}
	return likes, nil
}

// Delete removes a project from the database by id
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id)
	if res.Error != nil {
		return wrap("delete", "project", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFoundError("project not found")
	}
	return nil
}

// List returns projects newest first.
func (r *ProjectRepo) List(ctx context.Context, filter ProjectFilter) ([]models.Project, error) {
	query := withRelations(r.db.WithContext(ctx).Model(&models.Project{}))

	if filter.OwnerID != uuid.Nil {
		query = query.Where("projects.owner_id = ?", filter.OwnerID)
	}
	if filter.Tag != "" {
		query = query.Where(
			"EXISTS (SELECT 1 FROM project_tags pt WHERE pt.project_id = projects.id AND pt.kind = ? AND pt.value = ?)",
			models.TagKindTag, filter.Tag)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(
			`(LOWER(projects.title) LIKE ? ESCAPE '\' OR LOWER(projects.description) LIKE ? ESCAPE '\' OR `+
				`EXISTS (SELECT 1 FROM project_tags pt WHERE pt.project_id = projects.id AND LOWER(pt.value) LIKE ? ESCAPE '\'))`,
			pattern, pattern, pattern)
	}
	if filter.Featured != nil {
		query = query.Where("projects.featured = ?", *filter.Featured)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var projects []models.Project
	if err := query.Order("projects.created_at DESC").Order("projects.id DESC").Find(&projects).Error; err != nil {
		return nil, wrap("list", "projects", err)
	}
	return projects, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
