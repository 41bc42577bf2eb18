package speechkit

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testRSAKeyPEM(t *testing.T) ([]byte, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	return pemBytes, key
}

func TestGenerateJWT(t *testing.T) {
	pemBytes, key := testRSAKeyPEM(t)

	signed, err := GenerateJWT("sa-account", "key-id-1", pemBytes, 5*time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := jwt.ParseWithClaims(signed, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"PS256"}))
	if err != nil {
		t.Fatal(err)
	}
	if kid := parsed.Header["kid"]; kid != "key-id-1" {
		t.Fatalf("kid = %v", kid)
	}

	claims := parsed.Claims.(*jwt.RegisteredClaims)
	if claims.Issuer != "sa-account" {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != defaultIAMURL+"/iam/v1/tokens" {
		t.Fatalf("audience = %v", claims.Audience)
	}
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != 5*time.Minute {
		t.Fatalf("ttl = %v", ttl)
	}
}

func TestGenerateJWTValidation(t *testing.T) {
	pemBytes, _ := testRSAKeyPEM(t)

	var ve *ValidationError

	_, err := GenerateJWT("", "kid", pemBytes, 0)
	if !errors.As(err, &ve) {
		t.Fatalf("empty account: %v", err)
	}

	_, err = GenerateJWT("sa", "kid", pemBytes, 2*time.Hour)
	if !errors.As(err, &ve) {
		t.Fatalf("excessive ttl: %v", err)
	}

	_, err = GenerateJWT("sa", "kid", []byte("not a key"), 0)
	if !errors.As(err, &ve) {
		t.Fatalf("bad key: %v", err)
	}
}

func TestIAMTokenExactlyOneSecret(t *testing.T) {
	httpClient, transport := noNetworkClient(t)
	ctx := context.Background()

	var ve *ValidationError

	_, err := IAMToken(ctx, TokenRequest{}, WithAuthHTTPClient(httpClient))
	if !errors.As(err, &ve) {
		t.Fatalf("neither secret: %v", err)
	}

	_, err = IAMToken(ctx, TokenRequest{OAuthToken: "o", JWT: "j"}, WithAuthHTTPClient(httpClient))
	if !errors.As(err, &ve) {
		t.Fatalf("both secrets: %v", err)
	}

	if transport.calls != 0 {
		t.Fatalf("validation must precede any network call, saw %d", transport.calls)
	}
}

func TestIAMTokenFromJWT(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/iam/v1/tokens" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Error(err)
		}
		json.NewEncoder(w).Encode(map[string]string{"iamToken": "t1.issued"})
	}))
	defer server.Close()

	token, err := IAMToken(context.Background(), TokenRequest{JWT: "signed.jwt"}, WithIAMEndpoint(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	if token != "t1.issued" {
		t.Fatalf("token = %q", token)
	}
	if gotBody["jwt"] != "signed.jwt" {
		t.Fatalf("body = %v", gotBody)
	}
	if _, ok := gotBody["yandexPassportOauthToken"]; ok {
		t.Fatal("oauth field must be absent for jwt exchange")
	}
}

func TestIAMTokenFromOAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["yandexPassportOauthToken"] != "oauth-secret" {
			t.Errorf("body = %v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{"iamToken": "t1.oauth"})
	}))
	defer server.Close()

	token, err := IAMToken(context.Background(), TokenRequest{OAuthToken: "oauth-secret"}, WithIAMEndpoint(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	if token != "t1.oauth" {
		t.Fatalf("token = %q", token)
	}
}

func TestIAMTokenRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"code": 16, "message": "invalid oauth token"})
	}))
	defer server.Close()

	_, err := IAMToken(context.Background(), TokenRequest{OAuthToken: "bad"}, WithIAMEndpoint(server.URL))
	ae, ok := AsAuthError(err)
	if !ok {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if ae.Code != "16" || ae.HTTPStatus != http.StatusUnauthorized {
		t.Fatalf("got %+v", ae)
	}
}

func TestIAMTokenEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := IAMToken(context.Background(), TokenRequest{JWT: "x"}, WithIAMEndpoint(server.URL))
	if _, ok := AsAuthError(err); !ok {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestSessionFromJWT(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"iamToken": "t1.fresh"})
	}))
	defer server.Close()

	session, err := SessionFromJWT(context.Background(), "assertion", "folder-2", WithIAMEndpoint(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	if session.Kind() != AuthIAMToken {
		t.Fatalf("kind = %q", session.Kind())
	}
	if _, v := session.Header(); v != "Bearer t1.fresh" {
		t.Fatalf("header = %q", v)
	}
	if session.FolderID() != "folder-2" {
		t.Fatalf("folder = %q", session.FolderID())
	}
}

func TestAPIKeyForAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/iam/v1/tokens":
			json.NewEncoder(w).Encode(map[string]string{"iamToken": "t1.step"})
		case "/iam/v1/apiKeys":
			if auth := r.Header.Get("Authorization"); auth != "Bearer t1.step" {
				t.Errorf("Authorization = %q", auth)
			}
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["serviceAccountId"] != "sa-7" {
				t.Errorf("body = %v", body)
			}
			json.NewEncoder(w).Encode(map[string]string{"secret": "AQVN-new-key"})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer server.Close()

	secret, err := APIKeyForAccount(context.Background(), "oauth", "sa-7", "staging key", WithIAMEndpoint(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	if secret != "AQVN-new-key" {
		t.Fatalf("secret = %q", secret)
	}
}

func TestAPIKeyForAccountValidation(t *testing.T) {
	httpClient, transport := noNetworkClient(t)
	ctx := context.Background()

	var ve *ValidationError
	_, err := APIKeyForAccount(ctx, "", "sa", "", WithAuthHTTPClient(httpClient))
	if !errors.As(err, &ve) {
		t.Fatalf("missing oauth: %v", err)
	}

	long := make([]byte, maxDescriptionLen+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = APIKeyForAccount(ctx, "o", "sa", string(long), WithAuthHTTPClient(httpClient))
	if !errors.As(err, &ve) {
		t.Fatalf("long description: %v", err)
	}

	if transport.calls != 0 {
		t.Fatalf("validation must precede any network call, saw %d", transport.calls)
	}
}

func TestAWSAccessKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/iam/aws-compatibility/v1/accessKeys" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"accessKey": map[string]string{"keyId": "AKID"},
			"secret":    "aws-secret",
		})
	}))
	defer server.Close()

	session, err := NewSession(AuthIAMToken, "t1.tok", "")
	if err != nil {
		t.Fatal(err)
	}
	creds, err := AWSAccessKey(context.Background(), session, "sa-1", "", WithIAMEndpoint(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	if creds.AccessKeyID != "AKID" || creds.SecretAccessKey != "aws-secret" {
		t.Fatalf("got %+v", creds)
	}
}

func TestAWSAccessKeyRejectsAPIKeySession(t *testing.T) {
	httpClient, transport := noNetworkClient(t)

	_, err := AWSAccessKey(context.Background(), testSession(t), "sa-1", "", WithAuthHTTPClient(httpClient))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if transport.calls != 0 {
		t.Fatal("must not reach the network")
	}
}

func TestListServiceAccounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("folderId"); got != "folder-3" {
			t.Errorf("folderId = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"serviceAccounts": []map[string]string{
				{"id": "sa-a", "folderId": "folder-3", "name": "first"},
				{"id": "sa-b", "folderId": "folder-3", "name": "second"},
			},
		})
	}))
	defer server.Close()

	session, err := NewSession(AuthIAMToken, "t1.tok", "folder-3")
	if err != nil {
		t.Fatal(err)
	}
	accounts, err := ListServiceAccounts(context.Background(), session, WithIAMEndpoint(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 2 || accounts[0].ID != "sa-a" || accounts[1].Name != "second" {
		t.Fatalf("got %+v", accounts)
	}
}

func TestListServiceAccountsNeedsFolder(t *testing.T) {
	session, err := NewSession(AuthIAMToken, "t1.tok", "")
	if err != nil {
		t.Fatal(err)
	}
	_, err = ListServiceAccounts(context.Background(), session)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
