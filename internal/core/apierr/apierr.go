// Package apierr classifies raw transport failures into structured, user-presentable errors
package apierr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	perr "swifthub/internal/platform/errors"
	"swifthub/internal/platform/logger"
	"swifthub/internal/platform/net/http/bind"
)

// Kind is the error taxonomy
type Kind uint8

const (
	// KindUnknown is anything that could not be placed elsewhere
	KindUnknown Kind = iota
	// KindNetwork is a transport failure with no server answer
	KindNetwork
	// KindServer is a failure reported by the server in its error shape
	KindServer
	// KindDecode is a server answer whose body could not be decoded
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Code is a server error code. GitHub sends it as a number or a string
type Code string

// UnmarshalJSON accepts numbers, strings and null
func (c *Code) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*c = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Code(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("code: %w", err)
	}
	*c = Code(n.String())
	return nil
}

// Int returns the numeric form of the code when it has one
func (c Code) Int() (int, bool) {
	n, err := strconv.Atoi(string(c))
	return n, err == nil
}

// FieldError is one entry of the server's errors list
type FieldError struct {
	Resource string `json:"resource,omitempty"`
	Field    string `json:"field,omitempty"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
}

// UnmarshalJSON also accepts bare strings, which some endpoints return
func (f *FieldError) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &f.Message)
	}
	type plain FieldError
	return json.Unmarshal(b, (*plain)(f))
}

// ServerResponse is the decode shape of a server-reported failure
type ServerResponse struct {
	Code             Code         `json:"code"`
	Message          string       `json:"message" validate:"required"`
	DocumentationURL string       `json:"documentation_url,omitempty" validate:"omitempty,url"`
	Errors           []FieldError `json:"errors,omitempty"`
}

// Decode parses body against the server-error shape
func Decode(body []byte) (ServerResponse, error) {
	return bind.DecodeJSON[ServerResponse](body)
}

// ApiError is a classified failure
type ApiError struct {
	Kind             Kind
	Status           int
	Code             Code
	Message          string
	DocumentationURL string
	Errors           []FieldError
	Err              error
}

// Title is the short headline shown to the user
func (e ApiError) Title() string {
	switch e.Kind {
	case KindServer:
		return e.Message
	case KindNetwork:
		return "Network unavailable"
	case KindDecode:
		return "Unexpected response"
	default:
		return "Something went wrong"
	}
}

// Description joins the detail messages, falling back to the documentation link
func (e ApiError) Description() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		switch {
		case fe.Message != "":
			parts = append(parts, fe.Message)
		case fe.Field != "" && fe.Code != "":
			parts = append(parts, fe.Field+" "+fe.Code)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, "\n")
	}
	if e.DocumentationURL != "" {
		return e.DocumentationURL
	}
	if e.Kind != KindServer {
		return e.Message
	}
	return ""
}

func (e ApiError) Error() string {
	switch {
	case e.Kind == KindServer && e.Code != "":
		return fmt.Sprintf("server error %s: %s", e.Code, e.Message)
	case e.Message != "":
		return e.Kind.String() + " error: " + e.Message
	default:
		return e.Kind.String() + " error"
	}
}

func (e ApiError) Unwrap() error { return e.Err }

type bodyCarrier interface{ ResponseBody() []byte }

type statusCarrier interface{ HTTPStatus() int }

// DropHook observes failures that could not be classified
type DropHook func(err error, reason string)

// Parser turns transport failures into ApiErrors.
// By default only failures whose body decodes to the server shape are
// classified and everything else is dropped. FallbackUnknown synthesizes
// Network, Decode or Unknown events instead of dropping.
type Parser struct {
	FallbackUnknown bool
	OnDrop          DropHook
}

// Parse classifies err. ok is false when the failure was dropped
func (p Parser) Parse(err error) (ApiError, bool) {
	if err == nil {
		return ApiError{}, false
	}

	status := 0
	var sc statusCarrier
	if errors.As(err, &sc) {
		status = sc.HTTPStatus()
	}

	var bc bodyCarrier
	if !errors.As(err, &bc) {
		return p.drop(err, "no response body", p.classifyBodiless(err, status))
	}

	body := bc.ResponseBody()
	resp, derr := Decode(body)
	if derr != nil {
		return p.drop(err, "undecodable body: "+derr.Error(), ApiError{
			Kind:    KindDecode,
			Status:  status,
			Code:    statusCode(status),
			Message: statusText(status),
			Err:     err,
		})
	}

	code := resp.Code
	if code == "" {
		code = statusCode(status)
	}
	return ApiError{
		Kind:             KindServer,
		Status:           status,
		Code:             code,
		Message:          resp.Message,
		DocumentationURL: resp.DocumentationURL,
		Errors:           resp.Errors,
		Err:              err,
	}, true
}

func (p Parser) drop(err error, reason string, fallback ApiError) (ApiError, bool) {
	logger.Named("apierr").Debug().Err(err).Str("reason", reason).Bool("fallback", p.FallbackUnknown).
		Msg("unclassified transport failure")
	if p.OnDrop != nil {
		p.OnDrop(err, reason)
	}
	if p.FallbackUnknown {
		return fallback, true
	}
	return ApiError{}, false
}

func (p Parser) classifyBodiless(err error, status int) ApiError {
	out := ApiError{Kind: KindUnknown, Status: status, Code: statusCode(status), Message: err.Error(), Err: err}
	var ne net.Error
	switch {
	case status != 0:
		out.Kind = KindDecode
		out.Message = statusText(status)
	case errors.As(err, &ne), perr.IsCode(err, perr.ErrorCodeUnavailable):
		out.Kind = KindNetwork
	}
	return out
}

func statusCode(status int) Code {
	if status == 0 {
		return ""
	}
	return Code(strconv.Itoa(status))
}

func statusText(status int) string {
	if t := http.StatusText(status); t != "" {
		return t
	}
	return "unexpected response"
}
