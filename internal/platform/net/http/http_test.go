package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	perr "swifthub/internal/platform/errors"
	phttp "swifthub/internal/platform/net/http"
)

func TestRouter_GetPostRouteGroup(t *testing.T) {
	r := phttp.NewRouter()
	r.NotFound(phttp.NotFound)
	r.MethodNotAllowed(phttp.MethodNotAllowed)
	r.Route("/users", func(sub phttp.Router) {
		sub.Get("/{login}", func(w http.ResponseWriter, req *http.Request) {
			_, _ = io.WriteString(w, phttp.Param(req, "login"))
		})
	})
	r.Group(func(g phttp.Router) {
		g.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.Header().Set("X-Group", "1")
				next.ServeHTTP(w, req)
			})
		})
		g.Post("/graphql", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) })
	})

	cases := []struct {
		method, path string
		status       int
		body         string
	}{
		{"GET", "/users/octocat", 200, "octocat"},
		{"POST", "/graphql", 202, ""},
		{"GET", "/graphql", 405, ""},
		{"GET", "/nope", 404, ""},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.status {
			t.Fatalf("%s %s = %d, want %d", tc.method, tc.path, rec.Code, tc.status)
		}
		if tc.body != "" && rec.Body.String() != tc.body {
			t.Fatalf("%s %s body = %q", tc.method, tc.path, rec.Body.String())
		}
	}
}

func TestRespondError_GitHubShape(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/user", nil)
	phttp.RespondError(rec, req, perr.Unauthorizedf("Requires authentication"))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	var body phttp.ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Message != "Requires authentication" || body.DocumentationURL != phttp.DocsURL {
		t.Fatalf("body = %+v", body)
	}
}

func TestRaw(t *testing.T) {
	rec := httptest.NewRecorder()
	phttp.Raw(rec, http.StatusOK, []byte(`{"a":1}`))
	if rec.Header().Get("Content-Type") == "" || rec.Body.String() != `{"a":1}` {
		t.Fatalf("Raw wrote %q", rec.Body.String())
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	srv := phttp.NewServer("127.0.0.1:0", func(r phttp.Router) {
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "pong") })
	})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(b) != "pong" {
		t.Fatalf("body = %q", b)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not shut down")
	}
	if srv.Addr() != "127.0.0.1:0" || srv.Router() == nil {
		t.Fatalf("accessors broken")
	}
}
