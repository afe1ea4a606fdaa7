package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/project-showcase-backend/database"
	"github.com/rpupo63/project-showcase-backend/errs"
	"github.com/rpupo63/project-showcase-backend/models"
	"github.com/rs/zerolog/log"
)

type CreateProjectInput struct {
	Title          string   `json:"title" validate:"required,max=100"`
	Description    string   `json:"description" validate:"required,max=2000"`
	Screenshot     string   `json:"screenshot" validate:"max=2048"`
	HostedLink     *string  `json:"hostedLink" validate:"omitempty,url"`
	GithubLink     *string  `json:"githubLink" validate:"omitempty,url"`
	GithubUsername *string  `json:"githubUsername" validate:"omitempty,github_handle"`
	Tags           []string `json:"tags" validate:"max=20,dive,max=40"`
	TechStack      []string `json:"techStack" validate:"max=20,dive,max=40"`
}

// UpdateProjectInput carries only the fields the caller supplied. A
// pointer to an empty string clears an optional link.
type UpdateProjectInput struct {
	Title          *string   `json:"title" validate:"omitempty,max=100"`
	Description    *string   `json:"description" validate:"omitempty,max=2000"`
	Screenshot     *string   `json:"screenshot" validate:"omitempty,max=2048"`
	HostedLink     *string   `json:"hostedLink" validate:"omitempty,url"`
	GithubLink     *string   `json:"githubLink" validate:"omitempty,url"`
	GithubUsername *string   `json:"githubUsername" validate:"omitempty,github_handle"`
	Tags           *[]string `json:"tags" validate:"omitempty,max=20,dive,max=40"`
	TechStack      *[]string `json:"techStack" validate:"omitempty,max=20,dive,max=40"`
}

type ProjectService struct {
	db  database.Database
	now func() time.Time
}

func NewProjectService(db database.Database) *ProjectService {
	return &ProjectService{db: db, now: time.Now}
}

// WithClock replaces the service's time source.
func (s *ProjectService) WithClock(now func() time.Time) *ProjectService {
	s.now = now
	return s
}

// Create stores a new project for ownerID with zeroed counters.
func (s *ProjectService) Create(ctx context.Context, ownerID uuid.UUID, in CreateProjectInput) (*models.Project, error) {
	if ownerID == uuid.Nil {
		return nil, errs.NewUnauthorizedError("sign in to publish projects")
	}

	in, err := normalizeCreate(in)
	if err != nil {
		return nil, err
	}
	if in.Screenshot == "" {
		in.Screenshot = models.PlaceholderScreenshot
	}

	now := s.now().UTC()
	project := &models.Project{
		ID:             uuid.New(),
		Title:          in.Title,
		Description:    in.Description,
		Screenshot:     in.Screenshot,
		HostedLink:     in.HostedLink,
		GithubLink:     in.GithubLink,
		GithubUsername: in.GithubUsername,
		OwnerID:        ownerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.db.Transaction(ctx, func(tx database.Database) error {
		if _, err := tx.UserRepo().FindByID(ctx, ownerID); err != nil {
			if errs.IsNotFound(err) {
				return errs.NewUnauthorizedError("account no longer exists")
			}
			return err
		}
		if err := tx.ProjectRepo().Create(ctx, project); err != nil {
			return err
		}
		return tx.ProjectTagRepo().Create(ctx, models.BuildTags(project.ID, in.Tags, in.TechStack))
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("projectId", project.ID.String()).Str("ownerId", ownerID.String()).Msg("project created")
	return s.db.ProjectRepo().FindByID(ctx, project.ID)
}

// Get returns the project and counts the read as a view.
func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if err := s.db.ProjectRepo().IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	return s.db.ProjectRepo().FindByID(ctx, id)
}

// Update applies the supplied fields when callerID owns the project. The
// ownership check runs before the fields are validated.
func (s *ProjectService) Update(ctx context.Context, id, callerID uuid.UUID, in UpdateProjectInput) (*models.Project, error) {
	if callerID == uuid.Nil {
		return nil, errs.NewUnauthorizedError("sign in to edit projects")
	}

	err := s.db.Transaction(ctx, func(tx database.Database) error {
		project, err := tx.ProjectRepo().Lock(ctx, id)
		if err != nil {
			return err
		}
		if !project.OwnedBy(callerID) {
			return errs.NewForbiddenError("only the owner can edit this project")
		}

		in, columns, err := updateColumns(in)
		if err != nil {
			return err
		}
		columns["updated_at"] = s.now().UTC()

		if err := tx.ProjectRepo().Update(ctx, id, columns); err != nil {
			return err
		}
		if in.Tags != nil {
			if err := tx.ProjectTagRepo().Replace(ctx, id, models.TagKindTag, *in.Tags); err != nil {
				return err
			}
		}
		if in.TechStack != nil {
			if err := tx.ProjectTagRepo().Replace(ctx, id, models.TagKindTech, *in.TechStack); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.db.ProjectRepo().FindByID(ctx, id)
}

// Authorize reports whether callerID may edit or delete the project:
// Unauthorized for anonymous callers, NotFound, then Forbidden for non-owners.
func (s *ProjectService) Authorize(ctx context.Context, id, callerID uuid.UUID) error {
	if callerID == uuid.Nil {
		return errs.NewUnauthorizedError("sign in to edit projects")
	}
	project, err := s.db.ProjectRepo().FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !project.OwnedBy(callerID) {
		return errs.NewForbiddenError("only the owner can edit this project")
	}
	return nil
}

// CheckCreate validates in without touching the store.
func (s *ProjectService) CheckCreate(in CreateProjectInput) error {
	_, err := normalizeCreate(in)
	return err
}

// CheckUpdate validates in without touching the store.
func (s *ProjectService) CheckUpdate(in UpdateProjectInput) error {
	_, _, err := updateColumns(in)
	return err
}

func normalizeCreate(in CreateProjectInput) (CreateProjectInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Screenshot = strings.TrimSpace(in.Screenshot)
	in.HostedLink = optional(in.HostedLink)
	in.GithubLink = optional(in.GithubLink)
	in.GithubUsername = optional(in.GithubUsername)
	in.Tags = models.CleanTagValues(in.Tags)
	in.TechStack = models.CleanTagValues(in.TechStack)
	if err := validateStruct(in); err != nil {
		return in, err
	}
	return in, nil
}

// updateColumns normalises in and maps the supplied scalar fields to
// columns. Tags and tech stack are returned cleaned on in.
func updateColumns(in UpdateProjectInput) (UpdateProjectInput, map[string]any, error) {
	columns := map[string]any{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return in, nil, errs.NewMissingRequiredFieldError("title")
		}
		in.Title = &title
		columns["title"] = title
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			return in, nil, errs.NewMissingRequiredFieldError("description")
		}
		in.Description = &description
		columns["description"] = description
	}
	if in.Screenshot != nil {
		screenshot := strings.TrimSpace(*in.Screenshot)
		if screenshot == "" {
			screenshot = models.PlaceholderScreenshot
		}
		in.Screenshot = &screenshot
		columns["screenshot"] = screenshot
	}
	for column, value := range map[string]**string{
		"hosted_link":     &in.HostedLink,
		"github_link":     &in.GithubLink,
		"github_username": &in.GithubUsername,
	} {
		if *value != nil {
			*value = optional(*value)
			columns[column] = *value
		}
	}
	if in.Tags != nil {
		tags := models.CleanTagValues(*in.Tags)
		in.Tags = &tags
	}
	if in.TechStack != nil {
		techStack := models.CleanTagValues(*in.TechStack)
		in.TechStack = &techStack
	}
	if err := validateStruct(in); err != nil {
		return in, nil, err
	}
	return in, columns, nil
}

// Delete removes the project with its likes and tags when callerID owns it.
func (s *ProjectService) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	if callerID == uuid.Nil {
		return errs.NewUnauthorizedError("sign in to delete projects")
	}

	err := s.db.Transaction(ctx, func(tx database.Database) error {
		project, err := tx.ProjectRepo().Lock(ctx, id)
		if err != nil {
			return err
		}
		if !project.OwnedBy(callerID) {
			return errs.NewForbiddenError("only the owner can delete this project")
		}
		if err := tx.LikeRepo().DeleteByProject(ctx, id); err != nil {
			return err
		}
		if err := tx.ProjectTagRepo().DeleteByProject(ctx, id); err != nil {
			return err
		}
		return tx.ProjectRepo().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	log.Info().Str("projectId", id.String()).Msg("project deleted")
	return nil
}

// List returns matching projects newest first with owner projections loaded.
func (s *ProjectService) List(ctx context.Context, filter database.ProjectFilter) ([]models.Project, error) {
	filter.Tag = strings.TrimSpace(filter.Tag)
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.db.ProjectRepo().List(ctx, filter)
}
