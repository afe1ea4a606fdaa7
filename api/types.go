package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/project-showcase-backend/auth"
	"github.com/rpupo63/project-showcase-backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	authHandler    authHandler
	projectHandler projectHandler
	likeHandler    likeHandler
	healthHandler  healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"project not found"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Missing required field: title"`
}

// ProjectView is the public shape of a project
type ProjectView struct {
	ID             uuid.UUID     `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Screenshot     string        `json:"screenshot"`
	HostedLink     *string       `json:"hostedLink,omitempty"`
	GithubLink     *string       `json:"githubLink,omitempty"`
	GithubUsername *string       `json:"githubUsername,omitempty"`
	Tags           []string      `json:"tags"`
	TechStack      []string      `json:"techStack"`
	UserID         uuid.UUID     `json:"userId"`
	Owner          *models.Owner `json:"owner,omitempty"`
	Likes          int           `json:"likes"`
	Views          int           `json:"views"`
	Featured       bool          `json:"featured"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

func newProjectView(p models.Project) ProjectView {
	view := ProjectView{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Screenshot:     p.Screenshot,
		HostedLink:     p.HostedLink,
		GithubLink:     p.GithubLink,
		GithubUsername: p.GithubUsername,
		Tags:           p.TagValues(models.TagKindTag),
		TechStack:      p.TagValues(models.TagKindTech),
		UserID:         p.OwnerID,
		Likes:          p.Likes,
		Views:          p.Views,
		Featured:       p.Featured,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.Owner != nil {
		owner := p.Owner.Owner()
		view.Owner = &owner
	}
	return view
}

// ProjectEnvelope wraps a single project for create and update responses
type ProjectEnvelope struct {
	Project ProjectView `json:"project"`
}

type RegisterResponse struct {
	UserID uuid.UUID    `json:"userId"`
	User   *models.User `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Session auth.Session `json:"session"`
	User    *models.User `json:"user"`
}

type LikeStatusResponse struct {
	Liked bool `json:"liked"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
