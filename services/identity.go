package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rpupo63/project-showcase-backend/auth"
	"github.com/rpupo63/project-showcase-backend/database"
	"github.com/rpupo63/project-showcase-backend/errs"
	"github.com/rpupo63/project-showcase-backend/models"
	"github.com/rs/zerolog/log"
)

const (
	SeedUserEmail    = "test@example.com"
	SeedUserPassword = "password123"
)

// Identity is the authenticated caller behind a request.
type Identity struct {
	UserID uuid.UUID
	Role   string
	Claims *auth.Claims
}

type RegisterInput struct {
	Name           string  `json:"name" validate:"required,max=60"`
	Email          string  `json:"email" validate:"required,email,max=320"`
	Password       string  `json:"password" validate:"required,min=8,max=72"`
	GithubUsername *string `json:"githubUsername" validate:"omitempty,github_handle"`
	GithubURL      *string `json:"githubUrl" validate:"omitempty,url"`
	ProfilePicture *string `json:"profilePicture" validate:"omitempty,url"`
	Bio            *string `json:"bio" validate:"omitempty,max=500"`
}

type IdentityService struct {
	db         database.Database
	issuer     *auth.Issuer
	bcryptCost int
}

func NewIdentityService(db database.Database, issuer *auth.Issuer, bcryptCost int) *IdentityService {
	return &IdentityService{db: db, issuer: issuer, bcryptCost: bcryptCost}
}

// Register creates a user. The email is case-folded before the uniqueness check.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = models.NormalizeEmail(in.Email)
	in.GithubUsername = optional(in.GithubUsername)
	in.GithubURL = optional(in.GithubURL)
	in.ProfilePicture = optional(in.ProfilePicture)
	in.Bio = optional(in.Bio)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, errs.NewInternalError("failed to secure password")
	}

	user := &models.User{
		Name:           in.Name,
		Email:          in.Email,
		PasswordHash:   hash,
		GithubUsername: in.GithubUsername,
		Bio:            in.Bio,
		Role:           models.RoleUser,
	}
	if user.GithubUsername == nil && in.GithubURL != nil {
		if handle := GithubUsernameFromURL(*in.GithubURL); handle != "" {
			user.GithubUsername = &handle
		}
	}
	if in.ProfilePicture != nil {
		user.ProfilePicture = *in.ProfilePicture
	}

	if err := s.db.UserRepo().Create(ctx, user); err != nil {
		if errs.IsConflict(err) {
			return nil, errs.NewConflictError("an account with this email already exists")
		}
		return nil, err
	}
	log.Info().Str("userId", user.ID.String()).Msg("user registered")
	return user, nil
}

// Authenticate checks the password and opens a session. An unknown email
// fails with NotFound and a wrong password with InvalidCredential.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (*models.User, auth.Session, error) {
	if strings.TrimSpace(email) == "" {
		return nil, auth.Session{}, errs.NewMissingRequiredFieldError("email")
	}
	if password == "" {
		return nil, auth.Session{}, errs.NewMissingRequiredFieldError("password")
	}

	user, err := s.db.UserRepo().FindByEmail(ctx, email)
	if err != nil {
		return nil, auth.Session{}, err
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		log.Error().Err(err).Str("userId", user.ID.String()).Msg("stored password hash is unreadable")
		return nil, auth.Session{}, errs.NewInvalidCredentialError()
	}
	if !ok {
		return nil, auth.Session{}, errs.NewInvalidCredentialError()
	}

	session, err := s.issuer.Issue(user.ID, user.Role)
	if err != nil {
		return nil, auth.Session{}, errs.NewInternalError("failed to establish session")
	}
	return user, session, nil
}

// ResolveIdentity maps a session token to the caller. A missing or
// unusable token means an anonymous caller and returns nil without error;
// only a failing revocation store is reported.
func (s *IdentityService) ResolveIdentity(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := s.issuer.Verify(ctx, token)
	if err != nil {
		if errs.IsServiceUnavailable(err) {
			return nil, err
		}
		log.Debug().Err(err).Msg("ignoring unusable session token")
		return nil, nil
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, nil
	}
	return &Identity{UserID: userID, Role: claims.Role, Claims: claims}, nil
}

// Logout revokes the caller's session.
func (s *IdentityService) Logout(ctx context.Context, identity *Identity) error {
	if identity == nil {
		return nil
	}
	return s.issuer.Revoke(ctx, identity.Claims)
}

func (s *IdentityService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.db.UserRepo().FindByID(ctx, id)
}

// EnsureSeedUser creates the development account when it is missing.
func (s *IdentityService) EnsureSeedUser(ctx context.Context) (bool, error) {
	_, err := s.db.UserRepo().FindByEmail(ctx, SeedUserEmail)
	if err == nil {
		return false, nil
	}
	if !errs.IsNotFound(err) {
		return false, err
	}

	_, err = s.Register(ctx, RegisterInput{
		Name:     "Test User",
		Email:    SeedUserEmail,
		Password: SeedUserPassword,
	})
	if errs.IsConflict(err) {
		return false, nil
	}
	return err == nil, err
}
