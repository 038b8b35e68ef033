package gateway

import (
	"net/http"

	"golang.org/x/oauth2"
)

// bearerTransport attaches the current access token. A missing token leaves
// the request unauthenticated; the server decides whether to reject it.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens == nil {
		return t.base.RoundTrip(req)
	}
	access := t.tokens.AccessToken(req.Context())
	if access == "" {
		return t.base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request
	clone := req.Clone(req.Context())
	(&oauth2.Token{AccessToken: access, TokenType: "Bearer"}).SetAuthHeader(clone)
	return t.base.RoundTrip(clone)
}
