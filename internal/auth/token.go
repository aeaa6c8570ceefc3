// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

// CookieSession is the cookie consulted when no Authorization header is set.
const CookieSession = "connect_session"

// ExtractToken returns the session token carried by r: a Bearer
// Authorization header first, then the session cookie.
func ExtractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(CookieSession); err == nil {
		return c.Value
	}
	return ""
}

// AuthorizeToken compares got against expected in constant time. An empty
// expected token never authorizes.
func AuthorizeToken(got, expected string) bool {
	if got == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

// TokenFunc yields the token for an outgoing request.
type TokenFunc func(ctx context.Context) string

// BearerTransport sets "Authorization: Bearer <token>" on requests that do
// not already carry one.
type BearerTransport struct {
	Base  http.RoundTripper
	Token TokenFunc
}

// RoundTrip implements http.RoundTripper.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.Token == nil || req.Header.Get("Authorization") != "" {
		return base.RoundTrip(req)
	}
	token := t.Token(req.Context())
	if token == "" {
		return base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return base.RoundTrip(clone)
}

// WithBearer returns a shallow copy of hc whose transport adds the token.
func WithBearer(hc *http.Client, token TokenFunc) *http.Client {
	if hc == nil {
		hc = &http.Client{}
	}
	out := *hc
	out.Transport = &BearerTransport{Base: hc.Transport, Token: token}
	return &out
}
