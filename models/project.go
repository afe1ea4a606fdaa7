package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 2000

	// PlaceholderScreenshot is stored when a project is created without an upload.
	PlaceholderScreenshot = "/placeholder.svg?height=300&width=500"
)

// Project represents a showcased work item. Likes mirrors the number of
// Like rows for the project and is only written by the like service.
type Project struct {
	ID             uuid.UUID    `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title          string       `json:"title" db:"title" gorm:"type:varchar(100);not null"`
	Description    string       `json:"description" db:"description" gorm:"type:text;not null"`
	Screenshot     string       `json:"screenshot" db:"screenshot" gorm:"type:text;not null"`
	HostedLink     *string      `json:"hostedLink,omitempty" db:"hosted_link" gorm:"type:text"`
	GithubLink     *string      `json:"githubLink,omitempty" db:"github_link" gorm:"type:text"`
	GithubUsername *string      `json:"githubUsername,omitempty" db:"github_username" gorm:"type:text"`
	OwnerID        uuid.UUID    `json:"userId" db:"owner_id" gorm:"type:uuid;not null;index:idx_projects_owner_id"`
	Owner          *User        `json:"-" gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE"`
	Likes          int          `json:"likes" db:"likes" gorm:"type:integer;not null;default:0;check:chk_projects_likes,likes >= 0"`
	Views          int          `json:"views" db:"views" gorm:"type:integer;not null;default:0;check:chk_projects_views,views >= 0"`
	Featured       bool         `json:"featured" db:"featured" gorm:"not null;default:false"`
	Tags           []ProjectTag `json:"-" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at" gorm:"index:idx_projects_created_at"`
	UpdatedAt      time.Time    `json:"updatedAt" db:"updated_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TagValues returns the values of the given kind in stored order.
func (p Project) TagValues(kind string) []string {
	values := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		if tag.Kind == kind {
			values = append(values, tag.Value)
		}
	}
	return values
}

// OwnedBy reports whether userID is the project's owner.
func (p Project) OwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && p.OwnerID == userID
}
