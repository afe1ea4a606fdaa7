package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TagKindTag  = "tag"
	TagKindTech = "tech"
)

// ProjectTag represents a free-text tag or tech-stack label attached to a project
type ProjectTag struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	ProjectID uuid.UUID `json:"project_id" db:"project_id" gorm:"type:uuid;not null;index:idx_project_tag_project_id;uniqueIndex:idx_project_tag_unique"`
	Kind      string    `json:"kind" db:"kind" gorm:"type:varchar(8);not null;uniqueIndex:idx_project_tag_unique"`
	Value     string    `json:"value" db:"value" gorm:"type:text;not null;uniqueIndex:idx_project_tag_unique"`
	Position  int       `json:"position" db:"position" gorm:"not null;default:0"`
}

func (t *ProjectTag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// CleanTagValues trims every entry, drops empties and removes duplicates
// while keeping first-seen order.
func CleanTagValues(values []string) []string {
	cleaned := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		cleaned = append(cleaned, v)
	}
	return cleaned
}

// SplitTagList parses a comma separated form value into clean tag values.
func SplitTagList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return CleanTagValues(strings.Split(raw, ","))
}

// BuildTags turns tag and tech-stack values into rows for projectID.
func BuildTags(projectID uuid.UUID, tags, techStack []string) []ProjectTag {
	rows := make([]ProjectTag, 0, len(tags)+len(techStack))
	rows = append(rows, BuildKind(projectID, TagKindTag, tags)...)
	return append(rows, BuildKind(projectID, TagKindTech, techStack)...)
}

// BuildKind turns values of a single kind into rows, keeping their order.
func BuildKind(projectID uuid.UUID, kind string, values []string) []ProjectTag {
	cleaned := CleanTagValues(values)
	rows := make([]ProjectTag, 0, len(cleaned))
	for i, v := range cleaned {
		rows = append(rows, ProjectTag{ProjectID: projectID, Kind: kind, Value: v, Position: i})
	}
	return rows
}
