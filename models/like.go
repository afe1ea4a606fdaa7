package models

import (
	"time"

	"github.com/google/uuid"
)

// Like records that a user liked a project. The (user, project) pair is the
// primary key, so a user can like a given project at most once.
type Like struct {
	UserID    uuid.UUID `json:"userId" db:"user_id" gorm:"type:uuid;primaryKey;not null"`
	ProjectID uuid.UUID `json:"projectId" db:"project_id" gorm:"type:uuid;primaryKey;not null;index:idx_likes_project_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	User    *User    `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Project *Project `json:"-" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
}
