// Package model holds the GitHub documents shared by the transport, the
// backend strategies and the screens
package model

import "time"

// User is a partial GitHub user or org document
type User struct {
	ID          int64     `json:"id"`
	Login       string    `json:"login"`
	Type        string    `json:"type,omitempty"`
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email,omitempty"`
	Company     string    `json:"company,omitempty"`
	Location    string    `json:"location,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Blog        string    `json:"blog,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	PublicRepos int       `json:"public_repos"`
	CreatedAt   time.Time `json:"created_at"`
	HTMLURL     string    `json:"html_url,omitempty"`

	// Filled only by the GraphQL strategy
	PinnedRepositories []Repository `json:"pinned_repositories,omitempty"`
	StarredCount       int          `json:"starred_count,omitempty"`
	Viewer             bool         `json:"viewer_is_self,omitempty"`
}

// Repository is a partial GitHub repository document
type Repository struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Description   string    `json:"description,omitempty"`
	Private       bool      `json:"private"`
	Fork          bool      `json:"fork"`
	Owner         User      `json:"owner"`
	DefaultBranch string    `json:"default_branch,omitempty"`
	Language      string    `json:"language,omitempty"`
	Stargazers    int       `json:"stargazers_count"`
	Forks         int       `json:"forks_count"`
	Watchers      int       `json:"watchers_count"`
	OpenIssues    int       `json:"open_issues_count"`
	PushedAt      time.Time `json:"pushed_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	HTMLURL       string    `json:"html_url,omitempty"`

	// Filled only by the GraphQL strategy
	Topics        []string `json:"topics,omitempty"`
	ViewerStarred bool     `json:"viewer_has_starred,omitempty"`
}

// SearchResult is a page of repository search hits
type SearchResult struct {
	TotalCount        int          `json:"total_count"`
	IncompleteResults bool         `json:"incomplete_results"`
	Items             []Repository `json:"items"`
}

// TrendingRepository is one entry of the trending repositories list
type TrendingRepository struct {
	Author             string            `json:"author"`
	Name               string            `json:"name"`
	URL                string            `json:"url"`
	Description        string            `json:"description"`
	Language           string            `json:"language"`
	Stars              int               `json:"stars"`
	Forks              int               `json:"forks"`
	CurrentPeriodStars int               `json:"currentPeriodStars"`
	BuiltBy            []TrendingBuilder `json:"builtBy"`
}

// TrendingBuilder is a contributor listed on a trending repository
type TrendingBuilder struct {
	Username string `json:"username"`
	Href     string `json:"href"`
	Avatar   string `json:"avatar"`
}

// TrendingDeveloper is one entry of the trending developers list
type TrendingDeveloper struct {
	Username string                 `json:"username"`
	Name     string                 `json:"name"`
	URL      string                 `json:"url"`
	Avatar   string                 `json:"avatar"`
	Repo     *TrendingDeveloperRepo `json:"repo,omitempty"`
}

// TrendingDeveloperRepo is the popular repository of a trending developer
type TrendingDeveloperRepo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Since is the trending period
type Since string

const (
	// Daily trending
	Daily Since = "daily"
	// Weekly trending
	Weekly Since = "weekly"
	// Monthly trending
	Monthly Since = "monthly"
)

// ParseSince returns the period or Daily for unknown values
func ParseSince(s string) Since {
	switch Since(s) {
	case Weekly, Monthly:
		return Since(s)
	default:
		return Daily
	}
}
