package github

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	perr "swifthub/internal/platform/errors"
)

// GraphQLError is one entry of a GraphQL errors list
type GraphQLError struct {
	Type    string   `json:"type,omitempty"`
	Message string   `json:"message"`
	Path    []string `json:"path,omitempty"`
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// Query runs a GraphQL query against POST /graphql and decodes data into out.
// A non-empty errors list is returned as a *StatusError whose body is in the
// REST error shape, so it classifies like any other server failure.
func (c *Client) Query(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "graphql encode failed")
	}
	resp, err := c.Do(ctx, http.MethodPost, "/graphql", body)
	if err != nil {
		return err
	}
	status := resp.StatusCode

	var env gqlResponse
	if err := decodeBody(resp, &env); err != nil {
		return err
	}
	if len(env.Errors) > 0 {
		return graphQLFailure(status, env.Errors)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return perr.New(perr.ErrorCodeUpstream, "graphql response has no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "graphql decode data failed")
	}
	return nil
}

func graphQLFailure(status int, errs []GraphQLError) *StatusError {
	first := errs[0]
	code := strings.ToLower(first.Type)
	if code == "" {
		code = "graphql"
	}
	details := make([]string, 0, len(errs)-1)
	for _, e := range errs[1:] {
		details = append(details, e.Message)
	}
	body, _ := json.Marshal(map[string]any{
		"code":    code,
		"message": first.Message,
		"errors":  details,
	})
	ec := perr.ErrorCodeUpstream
	switch first.Type {
	case "NOT_FOUND":
		ec = perr.ErrorCodeNotFound
	case "FORBIDDEN":
		ec = perr.ErrorCodeForbidden
	case "RATE_LIMITED":
		ec = perr.ErrorCodeTooManyRequests
	}
	return &StatusError{
		Status: status,
		Body:   body,
		Err:    perr.Newf(ec, "graphql: %s", first.Message),
	}
}
