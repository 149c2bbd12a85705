package stub

import (
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"swifthub/internal/core/model"
	"swifthub/internal/modkit"
	perr "swifthub/internal/platform/errors"
	phttp "swifthub/internal/platform/net/http"
	"swifthub/internal/platform/net/http/bind"
)

// pageSize is the number of items per page in every list answer
const pageSize = 30

// restModule serves the GitHub REST subset the Baseline strategy calls
func restModule(f *Fixtures) modkit.Module {
	return modkit.New(
		modkit.WithName("stub.rest"),
		modkit.WithRegister(func(r phttp.Router) {
			r.Get("/user", func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") == "" {
					phttp.RespondError(w, r, perr.New(perr.ErrorCodeUnauthorized, "Requires authentication"))
					return
				}
				phttp.RespondOK(w, f.Viewer)
			})
			r.Get("/users/{login}", func(w http.ResponseWriter, r *http.Request) {
				u := f.User
				u.Login = phttp.Param(r, "login")
				u.HTMLURL = "https://github.com/" + u.Login
				phttp.RespondOK(w, u)
			})
			r.Get("/users/{login}/repos", func(w http.ResponseWriter, r *http.Request) {
				login := phttp.Param(r, "login")
				out := make([]model.Repository, 0, len(f.Repositories))
				for _, repo := range f.Repositories {
					repo.Owner.Login = login
					repo.FullName = login + "/" + repo.Name
					out = append(out, repo)
				}
				phttp.RespondOK(w, paginate(out, page(r)))
			})
			r.Get("/repos/{owner}/{name}", func(w http.ResponseWriter, r *http.Request) {
				repo, ok := findRepo(f, phttp.Param(r, "owner"), phttp.Param(r, "name"))
				if !ok {
					phttp.NotFound(w, r)
					return
				}
				phttp.RespondOK(w, repo)
			})
			r.Get("/search/repositories", func(w http.ResponseWriter, r *http.Request) {
				q := strings.TrimSpace(r.URL.Query().Get("q"))
				if q == "" {
					phttp.RespondError(w, r, perr.WithField(
						perr.New(perr.ErrorCodeInvalidArgument, "Validation Failed"), "q"))
					return
				}
				hits := search(f.Repositories, q)
				phttp.RespondOK(w, model.SearchResult{TotalCount: len(hits), Items: paginate(hits, page(r))})
			})
		}),
	)
}

// trendingModule serves the trending API under /trending
func trendingModule(f *Fixtures) modkit.Module {
	return modkit.New(
		modkit.WithName("stub.trending"),
		modkit.WithPrefix("/trending"),
		modkit.WithRegister(func(r phttp.Router) {
			r.Get("/repositories", func(w http.ResponseWriter, r *http.Request) {
				lang := r.URL.Query().Get("language")
				out := make([]model.TrendingRepository, 0, len(f.Trending))
				for _, t := range f.Trending {
					if lang == "" || strings.EqualFold(t.Language, lang) {
						out = append(out, t)
					}
				}
				phttp.RespondOK(w, out)
			})
			r.Get("/developers", func(w http.ResponseWriter, r *http.Request) {
				phttp.RespondOK(w, f.Developers)
			})
		}),
	)
}

type gqlRequest struct {
	Query     string         `json:"query" validate:"required"`
	Variables map[string]any `json:"variables"`
}

type gqlError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// graphqlModule answers the three queries the Enhanced strategy sends
func graphqlModule(f *Fixtures) modkit.Module {
	return modkit.New(
		modkit.WithName("stub.graphql"),
		modkit.WithRegister(func(r phttp.Router) {
			r.Post("/graphql", func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") == "" {
					phttp.RespondError(w, r, perr.New(perr.ErrorCodeUnauthorized, "This endpoint requires you to be authenticated."))
					return
				}
				req, err := bind.ParseJSON[gqlRequest](r)
				if err != nil {
					phttp.RespondError(w, r, err)
					return
				}
				data, gerr := resolve(f, req)
				if gerr != nil {
					phttp.RespondOK(w, map[string]any{"data": nil, "errors": []gqlError{*gerr}})
					return
				}
				phttp.RespondOK(w, map[string]any{"data": data})
			})
		}),
	)
}

func resolve(f *Fixtures, req gqlRequest) (map[string]any, *gqlError) {
	str := func(k string) string {
		s, _ := req.Variables[k].(string)
		return s
	}
	switch {
	case strings.Contains(req.Query, "viewer {"):
		return map[string]any{"viewer": f.GraphQLViewer}, nil
	case strings.Contains(req.Query, "user(login:"):
		u := maps.Clone(f.GraphQLViewer)
		u["login"] = str("login")
		u["isViewer"] = str("login") == f.Viewer.Login
		return map[string]any{"user": u}, nil
	case strings.Contains(req.Query, "repository(owner:"):
		repo, ok := findRepo(f, str("owner"), str("name"))
		if !ok {
			return nil, &gqlError{
				Type:    "NOT_FOUND",
				Message: "Could not resolve to a Repository with the name '" + str("owner") + "/" + str("name") + "'.",
			}
		}
		return map[string]any{"repository": repoNode(repo)}, nil
	}
	return nil, &gqlError{Type: "UNPROCESSABLE", Message: "query not supported by the staging backend"}
}

func repoNode(r model.Repository) map[string]any {
	var lang any
	if r.Language != "" {
		lang = map[string]any{"name": r.Language}
	}
	return map[string]any{
		"databaseId":       r.ID,
		"name":             r.Name,
		"nameWithOwner":    r.FullName,
		"description":      r.Description,
		"isPrivate":        r.Private,
		"isFork":           r.Fork,
		"url":              r.HTMLURL,
		"pushedAt":         r.PushedAt,
		"updatedAt":        r.UpdatedAt,
		"viewerHasStarred": false,
		"owner":            map[string]any{"login": r.Owner.Login},
		"defaultBranchRef": map[string]any{"name": r.DefaultBranch},
		"primaryLanguage":  lang,
		"stargazerCount":   r.Stargazers,
		"forkCount":        r.Forks,
		"watchers":         map[string]any{"totalCount": r.Watchers},
		"issues":           map[string]any{"totalCount": r.OpenIssues},
		"repositoryTopics": map[string]any{"nodes": []any{}},
	}
}

func findRepo(f *Fixtures, owner, name string) (model.Repository, bool) {
	i := slices.IndexFunc(f.Repositories, func(r model.Repository) bool {
		return strings.EqualFold(r.FullName, owner+"/"+name)
	})
	if i < 0 {
		return model.Repository{}, false
	}
	return f.Repositories[i], true
}

func search(repos []model.Repository, q string) []model.Repository {
	q = strings.ToLower(q)
	var out []model.Repository
	for _, r := range repos {
		if strings.Contains(strings.ToLower(r.FullName), q) ||
			strings.Contains(strings.ToLower(r.Description), q) ||
			strings.EqualFold(r.Language, q) {
			out = append(out, r)
		}
	}
	return out
}

func page(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func paginate[T any](items []T, n int) []T {
	start := (n - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	return items[start:min(start+pageSize, len(items))]
}
