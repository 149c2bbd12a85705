package github

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"swifthub/internal/core/apierr"
	perr "swifthub/internal/platform/errors"
)

func TestQuery_DecodesData(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/graphql" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var req gqlRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Variables["login"] != "octocat" {
			t.Errorf("variables = %v", req.Variables)
		}
		_, _ = io.WriteString(w, `{"data":{"user":{"login":"octocat"}}}`)
	}, Options{})

	var out struct {
		User struct {
			Login string `json:"login"`
		} `json:"user"`
	}
	if err := c.Query(context.Background(), "query($login:String!){user(login:$login){login}}", map[string]any{"login": "octocat"}, &out); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if out.User.Login != "octocat" {
		t.Fatalf("login = %q", out.User.Login)
	}
}

func TestQuery_ErrorsBecomeServerFailures(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":null,"errors":[{"type":"NOT_FOUND","message":"Could not resolve to a User"},{"message":"second"}]}`)
	}, Options{})

	var out map[string]any
	err := c.Query(context.Background(), "{}", nil, &out)
	if perr.CodeOf(err) != perr.ErrorCodeNotFound {
		t.Fatalf("code = %v (%v)", perr.CodeOf(err), err)
	}
	ae, ok := apierr.Parser{}.Parse(err)
	if !ok || ae.Kind != apierr.KindServer || ae.Code != "not_found" || ae.Message != "Could not resolve to a User" {
		t.Fatalf("taxonomy = %+v, %v", ae, ok)
	}
	if ae.Description() != "second" {
		t.Fatalf("Description() = %q", ae.Description())
	}
}

func TestQuery_NoData(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":null}`)
	}, Options{})
	var out map[string]any
	if err := c.Query(context.Background(), "{}", nil, &out); perr.CodeOf(err) != perr.ErrorCodeUpstream {
		t.Fatalf("want upstream, got %v", err)
	}
}
