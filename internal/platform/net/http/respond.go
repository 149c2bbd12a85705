// Package http provides the chi-backed router, server and JSON response
// helpers. Error bodies use GitHub's error document shape
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "swifthub/internal/platform/errors"
	"swifthub/internal/platform/logger"
	lumnet "swifthub/internal/platform/net"
)

// ErrorBody is the GitHub error document
type ErrorBody struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url,omitempty"`
	Code             string `json:"code,omitempty"`
	Field            string `json:"field,omitempty"`
	RequestID        string `json:"request_id,omitempty"`
}

// DocsURL is used as documentation_url on every error body
const DocsURL = "https://docs.github.com/rest"

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Named("http").Error().Err(err).Msg("encode response failed")
	}
}

// Raw writes a pre-encoded JSON document
func Raw(w stdhttp.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// RespondOK writes a 200 with v as the body
func RespondOK(w stdhttp.ResponseWriter, v any) { JSON(w, stdhttp.StatusOK, v) }

// RespondError maps a project error into a GitHub error document
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	status := perr.HTTPStatus(err)
	wr := perr.WireFrom(err)
	msg := wr.Message
	if msg == "" {
		msg = stdhttp.StatusText(status)
	}
	JSON(w, status, ErrorBody{
		Message:          msg,
		DocumentationURL: DocsURL,
		Field:            wr.Field,
		RequestID:        lumnet.RequestID(r.Context()),
	})
}

// NotFound answers with GitHub's 404 document
func NotFound(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	RespondError(w, r, perr.NotFoundf("Not Found"))
}

// MethodNotAllowed answers with a 405 document
func MethodNotAllowed(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	JSON(w, stdhttp.StatusMethodNotAllowed, ErrorBody{
		Message:          stdhttp.StatusText(stdhttp.StatusMethodNotAllowed),
		DocumentationURL: DocsURL,
		RequestID:        lumnet.RequestID(r.Context()),
	})
}
