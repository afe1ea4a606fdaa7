package api

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rpupo63/project-showcase-backend/database"
	"github.com/rpupo63/project-showcase-backend/errs"
	"github.com/rpupo63/project-showcase-backend/models"
	"github.com/rpupo63/project-showcase-backend/services"
	"github.com/rpupo63/project-showcase-backend/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type projectHandler struct {
	responder Responder
	logger    zerolog.Logger
	projects  *services.ProjectService
	uploader  storage.Uploader
	maxUpload int64
}

func newProjectHandler(projects *services.ProjectService, uploader storage.Uploader, maxUpload int64) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder: NewResponder(logger),
		logger:    logger,
		projects:  projects,
		uploader:  uploader,
		maxUpload: maxUpload,
	}
}

// getAllProjects lists projects newest first
// @Summary List projects
// @Description Lists projects, optionally filtered by owner, tag, free-text search or featured flag
// @Tags Projects
// @Produce json
// @Param owner query string false "Owner user ID" format(uuid)
// @Param tag query string false "Exact tag"
// @Param search query string false "Matches title, description, tags and tech stack"
// @Param featured query bool false "Only featured projects"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {array} ProjectView "Projects"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid filter"
// @Failure 503 {object} ErrorResponse "Service Unavailable"
// @Router /projects [get]
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseProjectFilter(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		projects, err := h.projects.List(r.Context(), filter)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		views := make([]ProjectView, 0, len(projects))
		for _, project := range projects {
			views = append(views, newProjectView(project))
		}
		h.responder.WriteJSON(w, views)
	}
}

func parseProjectFilter(r *http.Request) (database.ProjectFilter, error) {
	q := r.URL.Query()
	filter := database.ProjectFilter{
		Tag:    q.Get("tag"),
		Search: q.Get("search"),
	}

	owner := q.Get("owner")
	if owner == "" {
		owner = q.Get("userId")
	}
	if owner != "" {
		id, err := uuid.Parse(owner)
		if err != nil {
			return filter, errs.NewInvalidFieldError("owner", "must be a UUID")
		}
		filter.OwnerID = id
	}

	if raw := q.Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, errs.NewInvalidFieldError("featured", "must be true or false")
		}
		filter.Featured = &featured
	}

	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, errs.NewInvalidFieldError(name, "must be a non-negative integer")
		}
		*dst = n
	}
	return filter, nil
}

// getProject retrieves a project and counts the view
// @Summary Get project
// @Description Retrieves a project by ID. Every successful read increments its view counter.
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} ProjectView "Project"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid projectID"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /projects/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.Get(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, newProjectView(*project))
	}
}

// createProject publishes a project for the caller
// @Summary Create project
// @Description Accepts multipart form fields with an optional screenshot file, or a JSON body
// @Tags Projects
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param screenshot formData file false "Screenshot image"
// @Param tags formData string false "Comma separated tags"
// @Param techStack formData string false "Comma separated tech stack"
// @Success 201 {object} ProjectEnvelope "Created project"
// @Failure 400 {object} ErrorResponse "Bad Request - Validation failed"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 413 {object} ErrorResponse "Screenshot too large"
// @Failure 415 {object} ErrorResponse "Screenshot is not an image"
// @Router /projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input services.CreateProjectInput

		if isMultipart(r) {
			if err := h.parseMultipart(w, r); err != nil {
				h.responder.WriteError(w, err)
				return
			}
			input = services.CreateProjectInput{
				Title:          valueOrEmpty(formValue(r, "title")),
				Description:    valueOrEmpty(formValue(r, "description")),
				HostedLink:     formValue(r, "hostedLink"),
				GithubLink:     formValue(r, "githubLink"),
				GithubUsername: formValue(r, "githubUsername"),
				Tags:           formList(r, "tags"),
				TechStack:      formList(r, "techStack"),
			}
			if err := h.projects.CheckCreate(input); err != nil {
				h.responder.WriteError(w, err)
				return
			}

			screenshot, err := h.uploadScreenshot(r)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			input.Screenshot = screenshot
		} else if err := decodeJSON(w, r, &input); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.Create(r.Context(), ctxGetUserID(r.Context()), input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, ProjectEnvelope{Project: newProjectView(*project)})
	}
}

// updateProject applies a partial update
// @Summary Update project
// @Description Owner-only partial update. Omitted fields keep their values.
// @Tags Projects
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} ProjectEnvelope "Updated project"
// @Failure 400 {object} ErrorResponse "Bad Request - Validation failed"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden - Not the owner"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /projects/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var input services.UpdateProjectInput
		if isMultipart(r) {
			if err := h.parseMultipart(w, r); err != nil {
				h.responder.WriteError(w, err)
				return
			}
			input = services.UpdateProjectInput{
				Title:          formValue(r, "title"),
				Description:    formValue(r, "description"),
				HostedLink:     formValue(r, "hostedLink"),
				GithubLink:     formValue(r, "githubLink"),
				GithubUsername: formValue(r, "githubUsername"),
			}
			if _, ok := r.MultipartForm.Value["tags"]; ok {
				tags := formList(r, "tags")
				input.Tags = &tags
			}
			if _, ok := r.MultipartForm.Value["techStack"]; ok {
				techStack := formList(r, "techStack")
				input.TechStack = &techStack
			}

			if err := h.projects.Authorize(r.Context(), projectID, ctxGetUserID(r.Context())); err != nil {
				h.responder.WriteError(w, err)
				return
			}
			if err := h.projects.CheckUpdate(input); err != nil {
				h.responder.WriteError(w, err)
				return
			}

			screenshot, err := h.uploadScreenshot(r)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			if screenshot != "" {
				input.Screenshot = &screenshot
			}
		} else if err := decodeJSON(w, r, &input); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.Update(r.Context(), projectID, ctxGetUserID(r.Context()), input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, ProjectEnvelope{Project: newProjectView(*project)})
	}
}

// deleteProject deletes a project by ID
// @Summary Delete project
// @Description Owner-only permanent delete. The project's likes and tags go with it.
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} StatusResponse "Success message"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden - Not the owner"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /projects/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projects.Delete(r.Context(), projectID, ctxGetUserID(r.Context())); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, StatusResponse{
			Status:  "success",
			Message: "project deleted successfully",
		})
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func (h projectHandler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+maxJSONBody)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewMaxBodySizeExceededError(h.maxUpload)
		}
		return errs.NewMalformedPayloadError("multipart form", err)
	}
	return nil
}

// uploadScreenshot stores the optional "screenshot" file and returns its URL,
// or "" when the form carries no file.
func (h projectHandler) uploadScreenshot(r *http.Request) (string, error) {
	file, _, err := r.FormFile("screenshot")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", errs.NewMalformedPayloadError("screenshot", err)
	}
	defer file.Close()

	if h.uploader == nil {
		return "", errs.NewServiceUnavailableError("Screenshot uploads are not configured", nil)
	}

	img, err := storage.ReadImage(file, h.maxUpload)
	if err != nil {
		return "", err
	}
	url, err := h.uploader.Upload(r.Context(), img)
	if err != nil {
		return "", errs.NewServiceUnavailableError("Failed to store screenshot", err)
	}
	h.logger.Info().Str("url", url).Int("bytes", len(img.Data)).Msg("screenshot stored")
	return url, nil
}

func formValue(r *http.Request, key string) *string {
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// formList accepts repeated fields and comma separated values alike.
func formList(r *http.Request, key string) []string {
	var out []string
	for _, v := range r.MultipartForm.Value[key] {
		out = append(out, models.SplitTagList(v)...)
	}
	return models.CleanTagValues(out)
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
