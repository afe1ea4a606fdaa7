package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account that can publish and like projects. PasswordHash is
// never serialised.
type User struct {
	ID             uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name           string    `json:"name" db:"name" gorm:"type:varchar(60);not null"`
	Email          string    `json:"email" db:"email" gorm:"type:varchar(320);not null;uniqueIndex:idx_users_email"`
	PasswordHash   string    `json:"-" db:"password_hash" gorm:"type:text;not null"`
	GithubUsername *string   `json:"githubUsername,omitempty" db:"github_username" gorm:"type:text"`
	ProfilePicture string    `json:"profilePicture" db:"profile_picture" gorm:"type:text;not null;default:''"`
	Bio            *string   `json:"bio,omitempty" db:"bio" gorm:"type:varchar(500)"`
	Role           string    `json:"role" db:"role" gorm:"type:varchar(16);not null;default:'user'"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// NormalizeEmail folds an email address into its identity-key form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// Owner is the display-safe projection of a User attached to listings.
type Owner struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	ProfilePicture string    `json:"profilePicture"`
}

func (u User) Owner() Owner {
	return Owner{ID: u.ID, Name: u.Name, ProfilePicture: u.ProfilePicture}
}
