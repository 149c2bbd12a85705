// Package auth models the user's GitHub credential and the ports used to read it
package auth

import (
	"context"
	"encoding/base64"

	perr "swifthub/internal/platform/errors"
	"swifthub/internal/platform/net/http/bind"
)

// Kind tags the credential variant
type Kind uint8

const (
	// KindNone means no credential is stored
	KindNone Kind = iota
	// KindOAuth is a token obtained through the OAuth web flow
	KindOAuth
	// KindPersonal is a personal access token
	KindPersonal
	// KindBasic is username and password
	KindBasic
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindOAuth:
		return "oauth"
	case KindPersonal:
		return "personal"
	case KindBasic:
		return "basic"
	default:
		return "invalid"
	}
}

// ParseKind is the inverse of Kind.String
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "none":
		return KindNone, nil
	case "oauth":
		return KindOAuth, nil
	case "personal":
		return KindPersonal, nil
	case "basic":
		return KindBasic, nil
	}
	return KindNone, perr.Validationf("unknown credential kind %q", s)
}

// Credential is a tagged sum over the supported credential shapes.
// The zero value is None.
type Credential struct {
	kind     Kind
	token    string
	username string
	password string
	valid    bool
}

// None is the absent credential
func None() Credential { return Credential{} }

// OAuth builds an OAuth token credential
func OAuth(token string) Credential { return checked(Credential{kind: KindOAuth, token: token}) }

// Personal builds a personal access token credential
func Personal(token string) Credential { return checked(Credential{kind: KindPersonal, token: token}) }

// Basic builds a username and password credential
func Basic(username, password string) Credential {
	return checked(Credential{kind: KindBasic, username: username, password: password})
}

func checked(c Credential) Credential {
	c.valid = Validate(c) == nil
	return c
}

// Kind returns the variant tag
func (c Credential) Kind() Kind { return c.kind }

// Token returns the OAuth or personal token, empty otherwise
func (c Credential) Token() string { return c.token }

// Username returns the basic auth user, empty otherwise
func (c Credential) Username() string { return c.username }

// Password returns the basic auth password, empty otherwise
func (c Credential) Password() string { return c.password }

// Valid reports the validity flag. None is never valid
func (c Credential) Valid() bool { return c.kind != KindNone && c.valid }

// WithValid returns a copy with the validity flag set. It cannot make None valid
func (c Credential) WithValid(v bool) Credential {
	c.valid = v
	return c
}

// Authorization returns the Authorization header value, empty for None
func (c Credential) Authorization() string {
	switch c.kind {
	case KindOAuth, KindPersonal:
		if c.token == "" {
			return ""
		}
		return "token " + c.token
	case KindBasic:
		if c.username == "" {
			return ""
		}
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.username+":"+c.password))
	default:
		return ""
	}
}

// String never includes secrets
func (c Credential) String() string { return "credential(" + c.kind.String() + ")" }

type tokenRules struct {
	Token string `json:"token" validate:"required,printascii"`
}

type basicRules struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Validate checks the credential shape for its kind
func Validate(c Credential) error {
	switch c.kind {
	case KindNone:
		return nil
	case KindOAuth, KindPersonal:
		return bind.Struct(tokenRules{Token: c.token})
	case KindBasic:
		return bind.Struct(basicRules{Username: c.username, Password: c.password})
	default:
		return perr.Validationf("unknown credential kind %d", c.kind)
	}
}

// User is the identity of the signed in account
type User struct {
	Login string `json:"login" yaml:"login"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// Store exposes the current credential read-only
type Store interface {
	Current() Credential
	IsValid() bool
}

// UserStore exposes the cached identity of the signed in account
type UserStore interface {
	CurrentUser() (User, bool)
}

// Writer persists credential changes. Only login and logout flows use it
type Writer interface {
	Save(ctx context.Context, c Credential, u User) error
	Clear(ctx context.Context) error
}

// Watcher publishes the credential after every external change
type Watcher interface {
	Changes(ctx context.Context) (<-chan Credential, error)
}
