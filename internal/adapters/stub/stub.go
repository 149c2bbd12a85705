// Package stub is the staging backend: a chi router answering the GitHub REST,
// GraphQL and trending endpoints from embedded fixtures. It is served either
// in-process through Transport or over HTTP by NewServer.
package stub

import (
	"net/http"
	"net/http/httptest"
	"time"

	"swifthub/internal/modkit"
	"swifthub/internal/platform/config"
	perr "swifthub/internal/platform/errors"
	phttp "swifthub/internal/platform/net/http"
	"swifthub/internal/platform/net/middleware"
)

// Options configures the staging backend
type Options struct {
	Addr        string
	CORSOrigins []string
	// Latency delays every answer, 0 answers immediately
	Latency time.Duration
}

// LoadOptions reads STUB_PORT, STUB_CORS_ORIGINS and STUB_LATENCY under cfg
func LoadOptions(cfg config.Conf) Options {
	return Options{
		Addr:        cfg.MayPort("STUB_PORT", ":4010"),
		CORSOrigins: cfg.MayCSV("STUB_CORS_ORIGINS", nil),
		Latency:     cfg.MayDuration("STUB_LATENCY", 0),
	}
}

// Mount installs the middleware stack and every stub module on r
func Mount(r phttp.Router, f *Fixtures, o Options) {
	r.Use(middleware.Defaults()...)
	r.Use(
		middleware.AccessLog(middleware.AccessLogOptions{Component: "stub", Slow: time.Second}),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}),
		middleware.StripSlashes(),
	)
	if o.Latency > 0 {
		r.Use(latency(o.Latency))
	}
	r.NotFound(phttp.NotFound)
	r.MethodNotAllowed(phttp.MethodNotAllowed)

	modkit.Mount(modkit.NewDeps("stub", config.New()), r,
		restModule(f),
		graphqlModule(f),
		trendingModule(f),
	)
}

// Handler builds the staging backend as a plain http.Handler
func Handler(o Options) (http.Handler, error) {
	f, err := LoadFixtures()
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeConfig, "load stub fixtures")
	}
	r := phttp.NewRouter()
	Mount(r, f, o)
	return r.Mux(), nil
}

// NewServer builds the HTTP server behind `swifthub stub`
func NewServer(o Options) (*phttp.Server, error) {
	f, err := LoadFixtures()
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeConfig, "load stub fixtures")
	}
	return phttp.NewServer(o.Addr, func(r phttp.Router) { Mount(r, f, o) }), nil
}

// Transport serves every request in-process from the staging backend.
// It panics if the embedded fixtures are broken
func Transport() http.RoundTripper {
	h, err := Handler(Options{})
	if err != nil {
		panic(err)
	}
	return roundTripper{h: h}
}

type roundTripper struct{ h http.Handler }

func (t roundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	if err := r.Context().Err(); err != nil {
		if r.Body != nil {
			_ = r.Body.Close()
		}
		return nil, err
	}
	req := r.Clone(r.Context())
	if req.Body == nil {
		req.Body = http.NoBody
	}
	req.RequestURI = req.URL.RequestURI()
	req.RemoteAddr = "127.0.0.1:0"

	rec := httptest.NewRecorder()
	t.h.ServeHTTP(rec, req)
	_ = req.Body.Close()

	resp := rec.Result()
	resp.Request = r
	return resp, nil
}

func latency(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-t.C:
				next.ServeHTTP(w, r)
			case <-r.Context().Done():
			}
		})
	}
}
