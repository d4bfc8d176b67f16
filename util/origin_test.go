package util

import (
	"testing"

	"github.com/mailio/go-mailio-identity/types"
	"github.com/stretchr/testify/assert"
)

func TestOriginOnly(t *testing.T) {
	cases := map[string]string{
		"https://login.example.org/sign_in?x=1": "https://login.example.org",
		"https://Login.Example.org:443/":        "https://login.example.org",
		"http://127.0.0.1:10005/path":           "http://127.0.0.1:10005",
		"http://localhost:80":                   "http://localhost",
	}
	for in, want := range cases {
		got, err := OriginOnly(in)
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, want, got, in)
	}
	_, err := OriginOnly("not a url")
	assert.ErrorIs(t, err, types.ErrInvalidURL)
}

func TestAbsoluteURL(t *testing.T) {
	u, err := AbsoluteURL("https://example.com", "/browserid/sign_in.html")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "https://example.com/browserid/sign_in.html", u)

	_, err = AbsoluteURL("https://example.com", "sign_in.html")
	assert.ErrorIs(t, err, types.ErrInvalidURL)

	_, err = AbsoluteURL("ftp://example.com", "/x")
	assert.ErrorIs(t, err, types.ErrInvalidURL)
}

func TestHostname(t *testing.T) {
	h, err := Hostname("http://127.0.0.1:10005")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "127.0.0.1", h)
}
