package speechkit

import (
	"context"
	"net/http"
)

// AuthKind identifies how a Session authenticates requests.
type AuthKind string

const (
	// AuthIAMToken authenticates with a short-lived IAM token.
	// Header format: Authorization: Bearer {token}
	AuthIAMToken AuthKind = "iam_token"

	// AuthAPIKey authenticates with a service-account Api-Key.
	// Header format: Authorization: Api-Key {key}
	AuthAPIKey AuthKind = "api_key"
)

// Session holds resolved credentials for API calls. A Session is
// immutable after construction and safe to share across concurrent
// operations. The credential's expiry is service-side and not tracked
// here; re-create the session if calls start failing with auth errors.
type Session struct {
	kind       AuthKind
	credential string
	folderID   string
}

// NewSession creates a session from an already resolved credential.
//
// folderID identifies the cloud folder the calls are billed against.
// Leave it empty when calling on behalf of a service account.
func NewSession(kind AuthKind, credential, folderID string) (*Session, error) {
	if kind != AuthIAMToken && kind != AuthAPIKey {
		return nil, newValidationError("auth kind must be %q or %q, got %q", AuthIAMToken, AuthAPIKey, kind)
	}
	if credential == "" {
		return nil, newValidationError("credential can not be empty")
	}
	return &Session{kind: kind, credential: credential, folderID: folderID}, nil
}

// SessionFromAPIKey creates a session from a service-account Api-Key.
// No network call is made.
func SessionFromAPIKey(apiKey, folderID string) (*Session, error) {
	return NewSession(AuthAPIKey, apiKey, folderID)
}

// SessionFromOAuthToken exchanges an OAuth token for an IAM token and
// creates a session from it.
func SessionFromOAuthToken(ctx context.Context, oauthToken, folderID string, opts ...AuthOption) (*Session, error) {
	token, err := IAMToken(ctx, TokenRequest{OAuthToken: oauthToken}, opts...)
	if err != nil {
		return nil, err
	}
	return NewSession(AuthIAMToken, token, folderID)
}

// SessionFromJWT exchanges a signed JWT assertion for an IAM token and
// creates a session from it. See [GenerateJWT].
func SessionFromJWT(ctx context.Context, jwtToken, folderID string, opts ...AuthOption) (*Session, error) {
	token, err := IAMToken(ctx, TokenRequest{JWT: jwtToken}, opts...)
	if err != nil {
		return nil, err
	}
	return NewSession(AuthIAMToken, token, folderID)
}

// Kind returns the session's authentication kind.
func (s *Session) Kind() AuthKind {
	return s.kind
}

// FolderID returns the folder the session is scoped to, if any.
func (s *Session) FolderID() string {
	return s.folderID
}

// Header returns the authorization header for the session's credential.
func (s *Session) Header() (key, value string) {
	switch s.kind {
	case AuthAPIKey:
		return "Authorization", "Api-Key " + s.credential
	default:
		return "Authorization", "Bearer " + s.credential
	}
}

// apply sets the authorization header on an outgoing request.
func (s *Session) apply(req *http.Request) {
	k, v := s.Header()
	req.Header.Set(k, v)
}

// wsHeader returns the authorization header in websocket dial form.
func (s *Session) wsHeader() http.Header {
	k, v := s.Header()
	return http.Header{k: {v}}
}
