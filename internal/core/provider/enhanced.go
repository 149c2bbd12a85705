package provider

import (
	"context"
	"time"

	"swifthub/internal/adapters/github"
	"swifthub/internal/core/model"
)

// GraphStrategy is the Enhanced strategy: it wraps a Baseline and answers the
// user and repository reads with one GraphQL query each. Everything else is delegated
type GraphStrategy struct {
	*RESTStrategy
	gql *github.Client
}

var _ Strategy = (*GraphStrategy)(nil)

// NewEnhanced wraps base
func NewEnhanced(base *RESTStrategy) *GraphStrategy {
	return &GraphStrategy{RESTStrategy: base, gql: base.gh}
}

// Capability reports Enhanced
func (s *GraphStrategy) Capability() Capability { return Enhanced }

// Base returns the wrapped Baseline strategy
func (s *GraphStrategy) Base() *RESTStrategy { return s.RESTStrategy }

const repoFields = `
fragment RepoFields on Repository {
  databaseId name nameWithOwner description isPrivate isFork url pushedAt updatedAt viewerHasStarred
  owner { login }
  defaultBranchRef { name }
  primaryLanguage { name }
  stargazerCount forkCount
  watchers { totalCount }
  issues(states: OPEN) { totalCount }
  repositoryTopics(first: 10) { nodes { topic { name } } }
}`

const userFields = repoFields + `
fragment UserFields on User {
  databaseId login name email bio company location websiteUrl avatarUrl url createdAt isViewer
  followers { totalCount }
  following { totalCount }
  repositories(privacy: PUBLIC) { totalCount }
  starredRepositories { totalCount }
  pinnedItems(first: 6, types: REPOSITORY) { nodes { ... on Repository { ...RepoFields } } }
}`

const (
	viewerQuery = `query { viewer { ...UserFields } }` + userFields
	userQuery   = `query($login: String!) { user(login: $login) { ...UserFields } }` + userFields
	repoQuery   = `query($owner: String!, $name: String!) { repository(owner: $owner, name: $name) { ...RepoFields } }` + repoFields
)

// Viewer returns the authenticated user with pinned repositories and starred count
func (s *GraphStrategy) Viewer(ctx context.Context) (model.User, error) {
	var out struct {
		Viewer gqlUser `json:"viewer"`
	}
	if err := s.gql.Query(ctx, viewerQuery, nil, &out); err != nil {
		return model.User{}, err
	}
	return out.Viewer.model(), nil
}

// User returns a user by login
func (s *GraphStrategy) User(ctx context.Context, login string) (model.User, error) {
	var out struct {
		User gqlUser `json:"user"`
	}
	if err := s.gql.Query(ctx, userQuery, map[string]any{"login": login}, &out); err != nil {
		return model.User{}, err
	}
	return out.User.model(), nil
}

// Repository returns a repository by owner and name with topics and star state
func (s *GraphStrategy) Repository(ctx context.Context, owner, name string) (model.Repository, error) {
	var out struct {
		Repository gqlRepo `json:"repository"`
	}
	if err := s.gql.Query(ctx, repoQuery, map[string]any{"owner": owner, "name": name}, &out); err != nil {
		return model.Repository{}, err
	}
	return out.Repository.model(), nil
}

type count struct {
	TotalCount int `json:"totalCount"`
}

type named struct {
	Name string `json:"name"`
}

type gqlRepo struct {
	DatabaseID       int64     `json:"databaseId"`
	Name             string    `json:"name"`
	NameWithOwner    string    `json:"nameWithOwner"`
	Description      string    `json:"description"`
	IsPrivate        bool      `json:"isPrivate"`
	IsFork           bool      `json:"isFork"`
	URL              string    `json:"url"`
	PushedAt         time.Time `json:"pushedAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	ViewerHasStarred bool      `json:"viewerHasStarred"`
	Owner            struct {
		Login string `json:"login"`
	} `json:"owner"`
	DefaultBranchRef *named `json:"defaultBranchRef"`
	PrimaryLanguage  *named `json:"primaryLanguage"`
	StargazerCount   int    `json:"stargazerCount"`
	ForkCount        int    `json:"forkCount"`
	Watchers         count  `json:"watchers"`
	Issues           count  `json:"issues"`
	RepositoryTopics struct {
		Nodes []struct {
			Topic named `json:"topic"`
		} `json:"nodes"`
	} `json:"repositoryTopics"`
}

func (r gqlRepo) model() model.Repository {
	out := model.Repository{
		ID:            r.DatabaseID,
		Name:          r.Name,
		FullName:      r.NameWithOwner,
		Description:   r.Description,
		Private:       r.IsPrivate,
		Fork:          r.IsFork,
		Owner:         model.User{Login: r.Owner.Login},
		Stargazers:    r.StargazerCount,
		Forks:         r.ForkCount,
		Watchers:      r.Watchers.TotalCount,
		OpenIssues:    r.Issues.TotalCount,
		PushedAt:      r.PushedAt,
		UpdatedAt:     r.UpdatedAt,
		HTMLURL:       r.URL,
		ViewerStarred: r.ViewerHasStarred,
	}
	if r.DefaultBranchRef != nil {
		out.DefaultBranch = r.DefaultBranchRef.Name
	}
	if r.PrimaryLanguage != nil {
		out.Language = r.PrimaryLanguage.Name
	}
	for _, n := range r.RepositoryTopics.Nodes {
		out.Topics = append(out.Topics, n.Topic.Name)
	}
	return out
}

type gqlUser struct {
	DatabaseID          int64     `json:"databaseId"`
	Login               string    `json:"login"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Bio                 string    `json:"bio"`
	Company             string    `json:"company"`
	Location            string    `json:"location"`
	WebsiteURL          string    `json:"websiteUrl"`
	AvatarURL           string    `json:"avatarUrl"`
	URL                 string    `json:"url"`
	CreatedAt           time.Time `json:"createdAt"`
	IsViewer            bool      `json:"isViewer"`
	Followers           count     `json:"followers"`
	Following           count     `json:"following"`
	Repositories        count     `json:"repositories"`
	StarredRepositories count     `json:"starredRepositories"`
	PinnedItems         struct {
		Nodes []gqlRepo `json:"nodes"`
	} `json:"pinnedItems"`
}

func (u gqlUser) model() model.User {
	out := model.User{
		ID:           u.DatabaseID,
		Login:        u.Login,
		Type:         "User",
		Name:         u.Name,
		Email:        u.Email,
		Company:      u.Company,
		Location:     u.Location,
		Bio:          u.Bio,
		Blog:         u.WebsiteURL,
		AvatarURL:    u.AvatarURL,
		Followers:    u.Followers.TotalCount,
		Following:    u.Following.TotalCount,
		PublicRepos:  u.Repositories.TotalCount,
		CreatedAt:    u.CreatedAt,
		HTMLURL:      u.URL,
		StarredCount: u.StarredRepositories.TotalCount,
		Viewer:       u.IsViewer,
	}
	for _, r := range u.PinnedItems.Nodes {
		out.PinnedRepositories = append(out.PinnedRepositories, r.model())
	}
	return out
}
