package speechkit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultIAMURL = "https://iam.api.cloud.yandex.net"

	// maxJWTTTL is the service-side ceiling on assertion lifetime.
	maxJWTTTL     = time.Hour
	defaultJWTTTL = 6 * time.Minute

	maxDescriptionLen = 256
)

// authConfig represents credential exchange configuration
type authConfig struct {
	endpoint   string
	httpClient *http.Client
}

// AuthOption represents credential exchange option function
type AuthOption func(*authConfig)

// WithIAMEndpoint sets the IAM API base URL.
//
// Default: https://iam.api.cloud.yandex.net
func WithIAMEndpoint(url string) AuthOption {
	return func(c *authConfig) {
		c.endpoint = url
	}
}

// WithAuthHTTPClient sets the HTTP client used for credential exchange.
func WithAuthHTTPClient(client *http.Client) AuthOption {
	return func(c *authConfig) {
		c.httpClient = client
	}
}

func newAuthConfig(opts []AuthOption) *authConfig {
	config := &authConfig{
		endpoint: defaultIAMURL,
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.httpClient == nil {
		config.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return config
}

// TokenRequest carries the long-lived secret exchanged for an IAM token.
// Exactly one of OAuthToken or JWT must be set.
type TokenRequest struct {
	// OAuthToken is an OAuth token of a Yandex account.
	OAuthToken string

	// JWT is a PS256-signed service-account assertion, see [GenerateJWT].
	JWT string
}

// GenerateJWT builds a signed JWT assertion for the service-account key,
// suitable for [IAMToken] exchange.
//
// privateKeyPEM is the PEM-encoded RSA private key downloaded from the
// cloud console for keyID. ttl must not exceed one hour; zero means the
// default of six minutes.
func GenerateJWT(serviceAccountID, keyID string, privateKeyPEM []byte, ttl time.Duration) (string, error) {
	if serviceAccountID == "" || keyID == "" {
		return "", newValidationError("service account id and key id can not be empty")
	}
	if ttl > maxJWTTTL {
		return "", newValidationError("jwt ttl must not exceed %v, got %v", maxJWTTTL, ttl)
	}
	if ttl <= 0 {
		ttl = defaultJWTTTL
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return "", newValidationError("parse private key: %v", err)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Audience:  jwt.ClaimStrings{defaultIAMURL + "/iam/v1/tokens"},
		Issuer:    serviceAccountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodPS256, claims)
	token.Header["kid"] = keyID

	signed, err := token.SignedString(key)
	if err != nil {
		return "", wrapError(err, "sign jwt")
	}
	return signed, nil
}

// IAMToken exchanges an OAuth token or a JWT assertion for a short-lived
// IAM token. The SDK does not cache or refresh the token; call again
// when it expires.
func IAMToken(ctx context.Context, req TokenRequest, opts ...AuthOption) (string, error) {
	if (req.OAuthToken == "") == (req.JWT == "") {
		return "", newValidationError("exactly one of OAuthToken or JWT must be set")
	}

	body := map[string]string{}
	if req.OAuthToken != "" {
		body["yandexPassportOauthToken"] = req.OAuthToken
	} else {
		body["jwt"] = req.JWT
	}

	config := newAuthConfig(opts)

	var resp struct {
		IAMToken string `json:"iamToken"`
	}
	if err := postIAM(ctx, config, "/iam/v1/tokens", nil, body, &resp); err != nil {
		return "", err
	}
	if resp.IAMToken == "" {
		return "", &AuthError{Message: "response carries no iamToken"}
	}
	return resp.IAMToken, nil
}

// APIKeyForAccount creates an Api-Key for the service account, using an
// OAuth token for authorization. The returned secret is shown exactly
// once by the service; store it.
func APIKeyForAccount(ctx context.Context, oauthToken, serviceAccountID, description string, opts ...AuthOption) (string, error) {
	if oauthToken == "" || serviceAccountID == "" {
		return "", newValidationError("oauth token and service account id are required")
	}
	if len(description) > maxDescriptionLen {
		return "", newValidationError("description must be at most %d characters", maxDescriptionLen)
	}

	token, err := IAMToken(ctx, TokenRequest{OAuthToken: oauthToken}, opts...)
	if err != nil {
		return "", err
	}
	session, err := NewSession(AuthIAMToken, token, "")
	if err != nil {
		return "", err
	}

	config := newAuthConfig(opts)
	body := map[string]string{
		"serviceAccountId": serviceAccountID,
		"description":      description,
	}

	var resp struct {
		Secret string `json:"secret"`
	}
	if err := postIAM(ctx, config, "/iam/v1/apiKeys", session, body, &resp); err != nil {
		return "", err
	}
	return resp.Secret, nil
}

// AWSCredentials is a static S3-compatible key pair issued for a
// service account, used to access object storage for audio staging.
type AWSCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// AWSAccessKey issues S3-compatible static credentials for the service
// account. The session must be IAM-token based.
func AWSAccessKey(ctx context.Context, session *Session, serviceAccountID, description string, opts ...AuthOption) (*AWSCredentials, error) {
	if session.Kind() == AuthAPIKey {
		return nil, newValidationError("api-key sessions can not issue aws-compatible keys, use a jwt session")
	}
	if serviceAccountID == "" {
		return nil, newValidationError("service account id is required")
	}
	if len(description) > maxDescriptionLen {
		return nil, newValidationError("description must be at most %d characters", maxDescriptionLen)
	}

	config := newAuthConfig(opts)
	body := map[string]string{
		"serviceAccountId": serviceAccountID,
		"description":      description,
	}

	var resp struct {
		AccessKey struct {
			KeyID string `json:"keyId"`
		} `json:"accessKey"`
		Secret string `json:"secret"`
	}
	if err := postIAM(ctx, config, "/iam/aws-compatibility/v1/accessKeys", session, body, &resp); err != nil {
		return nil, err
	}
	return &AWSCredentials{
		AccessKeyID:     resp.AccessKey.KeyID,
		SecretAccessKey: resp.Secret,
	}, nil
}

// ServiceAccount describes a service account in a folder.
type ServiceAccount struct {
	ID          string `json:"id"`
	FolderID    string `json:"folderId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// ListServiceAccounts retrieves the service accounts in the session's
// folder. The session must be IAM-token based and folder-scoped.
func ListServiceAccounts(ctx context.Context, session *Session, opts ...AuthOption) ([]ServiceAccount, error) {
	if session.Kind() == AuthAPIKey {
		return nil, newValidationError("api-key sessions can not list service accounts")
	}
	if session.FolderID() == "" {
		return nil, newValidationError("session must carry a folder id")
	}

	config := newAuthConfig(opts)

	u := config.endpoint + "/iam/v1/serviceAccounts?" + url.Values{"folderId": {session.FolderID()}}.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, wrapError(err, "create request")
	}
	session.apply(httpReq)

	resp, err := config.httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransport("list service accounts", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTransport("read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newAuthError(resp.StatusCode, respBody)
	}

	var out struct {
		ServiceAccounts []ServiceAccount `json:"serviceAccounts"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, wrapError(err, "unmarshal response")
	}
	return out.ServiceAccounts, nil
}

// postIAM sends a JSON request to an IAM API path. session may be nil
// for unauthenticated exchanges.
func postIAM(ctx context.Context, config *authConfig, path string, session *Session, body, result any) error {
	jsonBytes, err := json.Marshal(body)
	if err != nil {
		return wrapError(err, "marshal request body")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, config.endpoint+path, bytes.NewReader(jsonBytes))
	if err != nil {
		return wrapError(err, "create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if session != nil {
		session.apply(httpReq)
	}

	resp, err := config.httpClient.Do(httpReq)
	if err != nil {
		return wrapTransport("credential exchange", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapTransport("read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return newAuthError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return wrapError(err, "unmarshal response")
		}
	}
	return nil
}
