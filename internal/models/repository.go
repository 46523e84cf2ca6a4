package models

import (
	"fmt"
	"time"
)

// Repository represents a GitHub repository touched by a webhook event.
// The GitHub numeric id is the stable key; owner/name can change on rename.
type Repository struct {
	ID            int64     `json:"id"`
	GithubRepoID  int64     `json:"githubRepoId"`
	Owner         string    `json:"owner"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	URL           *string   `json:"url"`
	HTMLURL       *string   `json:"htmlUrl"`
	IsPrivate     bool      `json:"isPrivate"`
	DefaultBranch string    `json:"defaultBranch"`
	Language      *string   `json:"language"`
	StarsCount    int       `json:"starsCount"`
	ForksCount    int       `json:"forksCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Optional listing statistics
	PRCount     *int `json:"prCount,omitempty"`
	ReviewCount *int `json:"reviewCount,omitempty"`
}

// FullName returns the "owner/name" form used by agent repository filters
func (r *Repository) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}
