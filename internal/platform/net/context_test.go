package net

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
)

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "rid-1")
	if RequestID(ctx) != "rid-1" {
		t.Fatalf("RequestID = %q", RequestID(ctx))
	}
	if RequestID(WithRequestID(context.Background(), "")) != "" {
		t.Fatalf("empty id should not be stored")
	}
}

func TestAnnotate_SeesChiRequestID(t *testing.T) {
	var got string
	h := chimw.RequestID(Annotate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestID(r.Context())
	})))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "abc" {
		t.Fatalf("request id = %q", got)
	}
}
