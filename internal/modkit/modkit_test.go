package modkit

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"swifthub/internal/platform/config"
	phttp "swifthub/internal/platform/net/http"
)

func TestBuild_Defaults(t *testing.T) {
	b := Build()
	if b.Name != "" || b.Prefix != "" || len(b.Mw) != 0 || b.Register == nil {
		t.Fatalf("unexpected defaults: %+v", b)
	}
}

func TestNew_MountsWithPrefixAndMiddleware(t *testing.T) {
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Module", "users")
			next.ServeHTTP(w, r)
		})
	}
	users := New(
		WithName("users"),
		WithPrefix("/users"),
		WithMiddlewares(mw),
		WithRegister(func(r phttp.Router) {
			r.Get("/{login}", func(w http.ResponseWriter, req *http.Request) {
				_, _ = io.WriteString(w, phttp.Param(req, "login"))
			})
		}),
	)
	root := New(WithName("root"), WithRegister(func(r phttp.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "root") })
	}))

	r := phttp.NewRouter()
	Mount(NewDeps("test", config.New()), r, users, root)

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/octocat", nil))
	if rec.Body.String() != "octocat" || rec.Header().Get("X-Module") != "users" {
		t.Fatalf("users module: %d %q %v", rec.Code, rec.Body.String(), rec.Header())
	}
	rec = httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Body.String() != "root" || rec.Header().Get("X-Module") != "" {
		t.Fatalf("root module: %q", rec.Body.String())
	}
	if users.Name() != "users" {
		t.Fatalf("Name() = %q", users.Name())
	}
}
