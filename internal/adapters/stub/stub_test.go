package stub

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"swifthub/internal/core/apierr"
	"swifthub/internal/core/auth"
	"swifthub/internal/core/model"
	"swifthub/internal/core/provider"
	"swifthub/internal/platform/config"
)

func get(t *testing.T, c *http.Client, url string, hdr map[string]string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

func TestLoadFixtures(t *testing.T) {
	t.Parallel()
	f, err := LoadFixtures()
	if err != nil {
		t.Fatalf("LoadFixtures: %v", err)
	}
	if f.Viewer.Login != "octocat" || len(f.Repositories) == 0 || len(f.Trending) == 0 || len(f.Developers) == 0 {
		t.Fatalf("fixtures incomplete: %+v", f.Viewer)
	}
	if f.GraphQLViewer["login"] != "octocat" {
		t.Fatalf("graphql viewer = %v", f.GraphQLViewer["login"])
	}
}

func TestTransport_ServesWithoutNetwork(t *testing.T) {
	t.Parallel()
	c := &http.Client{Transport: Transport(), Timeout: time.Second}

	cases := []struct {
		name   string
		url    string
		hdr    map[string]string
		status int
		want   string
	}{
		{"user", "http://staging.swifthub.local/users/hubot", nil, 200, `"login":"hubot"`},
		{"viewer anonymous", "http://staging.swifthub.local/user", nil, 401, "Requires authentication"},
		{"viewer", "http://staging.swifthub.local/user", map[string]string{"Authorization": "token x"}, 200, `"email":"octocat@github.com"`},
		{"repo", "http://staging.swifthub.local/repos/golang/go", nil, 200, `"full_name":"golang/go"`},
		{"repo missing", "http://staging.swifthub.local/repos/nobody/nothing", nil, 404, `"message":"Not Found"`},
		{"search", "http://staging.swifthub.local/search/repositories?q=swift", nil, 200, `"total_count":1`},
		{"search empty", "http://staging.swifthub.local/search/repositories?q=", nil, 422, "Validation Failed"},
		{"trending", "http://staging.swifthub.local/trending/repositories?language=go&since=daily", nil, 200, `"name":"zerolog"`},
		{"developers", "http://staging.swifthub.local/trending/developers", nil, 200, `"username":"rsc"`},
		{"unknown", "http://staging.swifthub.local/nope", nil, 404, "documentation_url"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := get(t, c, tc.url, tc.hdr)
			if status != tc.status {
				t.Fatalf("status = %d, want %d (%s)", status, tc.status, body)
			}
			if !strings.Contains(string(body), tc.want) {
				t.Fatalf("body %s does not contain %s", body, tc.want)
			}
		})
	}
}

func TestUserRepositories_Paginates(t *testing.T) {
	t.Parallel()
	c := &http.Client{Transport: Transport()}
	_, b := get(t, c, "http://staging.swifthub.local/users/hubot/repos?page=1", nil)
	var first []model.Repository
	if err := json.Unmarshal(b, &first); err != nil || len(first) == 0 {
		t.Fatalf("page 1 = %s (%v)", b, err)
	}
	if first[0].Owner.Login != "hubot" || !strings.HasPrefix(first[0].FullName, "hubot/") {
		t.Fatalf("owner not rewritten: %+v", first[0])
	}
	_, b = get(t, c, "http://staging.swifthub.local/users/hubot/repos?page=2", nil)
	if strings.TrimSpace(string(b)) != "[]" {
		t.Fatalf("page 2 = %s", b)
	}
}

func TestGraphQL_OverHTTP(t *testing.T) {
	t.Parallel()
	h, err := Handler(Options{})
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	env := provider.Environment{GitHubBaseURL: srv.URL, TrendingBaseURL: srv.URL + "/trending", Timeout: time.Second}
	s := provider.Selector{}.Select(env, auth.OAuth("gho_staging"))
	if s.Capability() != provider.Enhanced {
		t.Fatalf("capability = %v", s.Capability())
	}
	ctx := context.Background()

	u, err := s.Viewer(ctx)
	if err != nil || u.Login != "octocat" || len(u.PinnedRepositories) != 1 {
		t.Fatalf("viewer = %+v, %v", u, err)
	}
	r, err := s.Repository(ctx, "golang", "go")
	if err != nil || r.FullName != "golang/go" || r.Language != "Go" {
		t.Fatalf("repository = %+v, %v", r, err)
	}

	_, err = s.Repository(ctx, "nobody", "nothing")
	e, ok := apierr.Parser{}.Parse(err)
	if !ok || e.Kind != apierr.KindServer || e.Code != "not_found" {
		t.Fatalf("missing repository = %+v, %v", e, ok)
	}
}

func TestStagingSelection_UsesStub(t *testing.T) {
	t.Parallel()
	env := provider.Environment{Staging: true, Timeout: time.Second}
	s := provider.Selector{Staging: Transport()}.Select(env, auth.Personal("ghp_staging"))
	if s.Capability() != provider.Baseline {
		t.Fatalf("staging capability = %v", s.Capability())
	}
	ctx := context.Background()
	u, err := s.Viewer(ctx)
	if err != nil || u.Login != "octocat" {
		t.Fatalf("viewer = %+v, %v", u, err)
	}
	res, err := s.SearchRepositories(ctx, "go", 1)
	if err != nil || res.TotalCount == 0 {
		t.Fatalf("search = %+v, %v", res, err)
	}
	tr, err := s.TrendingRepositories(ctx, "", model.Daily)
	if err != nil || len(tr) != 3 {
		t.Fatalf("trending = %+v, %v", tr, err)
	}
}

func TestLoadOptions(t *testing.T) {
	t.Setenv("SH_STUB_PORT", "5010")
	t.Setenv("SH_STUB_CORS_ORIGINS", "http://localhost:3000, http://127.0.0.1:3000")
	o := LoadOptions(config.New().Prefix("SH_"))
	if o.Addr != ":5010" || len(o.CORSOrigins) != 2 || o.Latency != 0 {
		t.Fatalf("options = %+v", o)
	}
}

func TestLatency_RespectsCancellation(t *testing.T) {
	t.Parallel()
	h, err := Handler(Options{Latency: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req := httptest.NewRequestWithContext(ctx, http.MethodGet, "/users/octocat", nil)
	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		h.ServeHTTP(rec, req)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("latency ignored cancellation")
	}
}
