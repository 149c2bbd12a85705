package github

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"swifthub/internal/core/model"
)

// DefaultPerPage is the page size used by list endpoints when the caller passes 0
const DefaultPerPage = 30

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeBody(resp, out)
}

// Viewer fetches the authenticated user: GET /user
func (c *Client) Viewer(ctx context.Context) (model.User, error) {
	var out model.User
	err := c.getJSON(ctx, "/user", &out)
	return out, err
}

// User fetches a user by login: GET /users/{login}
func (c *Client) User(ctx context.Context, login string) (model.User, error) {
	var out model.User
	err := c.getJSON(ctx, "/users/"+url.PathEscape(login), &out)
	return out, err
}

// Repository fetches a repository by owner and name: GET /repos/{owner}/{name}
func (c *Client) Repository(ctx context.Context, owner, name string) (model.Repository, error) {
	var out model.Repository
	err := c.getJSON(ctx, "/repos/"+url.PathEscape(owner)+"/"+url.PathEscape(name), &out)
	return out, err
}

// SearchRepositories runs a repository search: GET /search/repositories
func (c *Client) SearchRepositories(ctx context.Context, query string, page, perPage int) (model.SearchResult, error) {
	q := pageQuery(page, perPage)
	q.Set("q", query)
	var out model.SearchResult
	err := c.getJSON(ctx, "/search/repositories?"+q.Encode(), &out)
	return out, err
}

// UserRepositories lists a user's public repositories: GET /users/{login}/repos
func (c *Client) UserRepositories(ctx context.Context, login string, page, perPage int) ([]model.Repository, error) {
	q := pageQuery(page, perPage)
	q.Set("sort", "updated")
	var out []model.Repository
	err := c.getJSON(ctx, "/users/"+url.PathEscape(login)+"/repos?"+q.Encode(), &out)
	return out, err
}

func pageQuery(page, perPage int) url.Values {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	return q
}
