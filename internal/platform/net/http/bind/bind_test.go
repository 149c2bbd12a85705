package bind

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	perr "swifthub/internal/platform/errors"
	kit "swifthub/internal/platform/testkit"
)

type payload struct {
	Name string `json:"name" validate:"required,min=2"`
	Age  int    `json:"age" validate:"min=1"`
}

type tokenForm struct {
	Token string `yaml:"token" validate:"required,ghtoken"`
}

func TestParseJSON_Success(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Alice","age":3}`))
	got, err := ParseJSON[payload](req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Alice" || got.Age != 3 {
		t.Fatalf("got %+v", got)
	}
}

func TestParseJSON_Failures(t *testing.T) {
	cases := []struct {
		name string
		body string
		code perr.ErrorCode
	}{
		{"empty", "", perr.ErrorCodeJSON},
		{"invalid", `{`, perr.ErrorCodeJSON},
		{"unknown field", `{"name":"Al","age":2,"x":1}`, perr.ErrorCodeJSON},
		{"trailing", `{"name":"Al","age":2} {}`, perr.ErrorCodeJSON},
		{"validation", `{"name":"A","age":2}`, perr.ErrorCodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tc.body))
			_, err := ParseJSON[payload](req)
			if perr.CodeOf(err) != tc.code {
				t.Fatalf("code = %v (%v), want %v", perr.CodeOf(err), err, tc.code)
			}
		})
	}
}

func TestParseJSON_JSONMoreSeam(t *testing.T) {
	kit.Serial(t)
	kit.Swap(t, &jsonMore, func(*json.Decoder) bool { return true })
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Al","age":2}`))
	if _, err := ParseJSON[payload](req); perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected trailing-data error, got %v", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	got, err := DecodeJSON[payload]([]byte(`{"name":"Bob","age":4,"extra":true}`))
	if err != nil || got.Name != "Bob" {
		t.Fatalf("DecodeJSON = %+v, %v", got, err)
	}
	if _, err := DecodeJSON[payload]([]byte("  ")); perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("blank body should be a JSON error, got %v", err)
	}
	if _, err := DecodeJSON[payload]([]byte(`<html>`)); perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("html body should be a JSON error, got %v", err)
	}
}

func TestStruct_TranslatesAndCarriesField(t *testing.T) {
	err := Struct(payload{Name: "A", Age: 1})
	fe, ok := perr.As(err)
	if !ok || fe.Code() != perr.ErrorCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if fe.Field() != "name" {
		t.Fatalf("field = %q, want json tag name", fe.Field())
	}
	kit.MustContain(t, fe.Message(), "name must be at least 2")
}

func TestStruct_GitHubToken(t *testing.T) {
	cases := []struct {
		tok string
		ok  bool
	}{
		{"ghp_" + strings.Repeat("a", 36), true},
		{"github_pat_" + strings.Repeat("B", 30), true},
		{strings.Repeat("0f", 20), true},
		{"not a token", false},
		{"", false},
	}
	for _, tc := range cases {
		err := Struct(tokenForm{Token: tc.tok})
		if (err == nil) != tc.ok {
			t.Fatalf("Struct(%q) err = %v, want ok=%v", tc.tok, err, tc.ok)
		}
	}
	err := Struct(tokenForm{Token: "nope"})
	_, msg := ValidationFieldAndMessage(perr.Root(err))
	kit.MustContain(t, msg, "token is not a well-formed GitHub token")
}

func TestValidationFieldAndMessage_Nil(t *testing.T) {
	if f, m := ValidationFieldAndMessage(nil); f != "" || m != "" {
		t.Fatalf("nil err produced %q %q", f, m)
	}
}
