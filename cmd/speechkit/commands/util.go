package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vocalhq/speechkit/pkg/cli"
	"github.com/vocalhq/speechkit/pkg/objstore"
	"github.com/vocalhq/speechkit/pkg/speechkit"
)

const (
	defaultStorageEndpoint = "https://storage.yandexcloud.net"
	defaultStorageRegion   = "ru-central1"
)

// createSession resolves a Session from the context's credential
// material: a ready Api-Key, an OAuth token, or a service-account key
// exchanged through a signed JWT.
func createSession(ctx context.Context, cliCtx *cli.Context) (*speechkit.Session, error) {
	auth := cliCtx.Auth
	if auth == nil {
		return nil, fmt.Errorf("credentials not configured, run: speechkit config add-context")
	}

	switch {
	case auth.APIKey != "":
		return speechkit.SessionFromAPIKey(auth.APIKey, cliCtx.FolderID)

	case auth.ServiceAccountID != "":
		if auth.KeyID == "" || auth.PrivateKeyFile == "" {
			return nil, fmt.Errorf("service account auth needs key_id and private_key_file")
		}
		pemBytes, err := os.ReadFile(auth.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		jwtToken, err := speechkit.GenerateJWT(auth.ServiceAccountID, auth.KeyID, pemBytes, 0)
		if err != nil {
			return nil, err
		}
		printVerbose("exchanging JWT assertion for IAM token")
		return speechkit.SessionFromJWT(ctx, jwtToken, cliCtx.FolderID)

	case auth.OAuthToken != "":
		printVerbose("exchanging OAuth token for IAM token")
		return speechkit.SessionFromOAuthToken(ctx, auth.OAuthToken, cliCtx.FolderID)

	default:
		return nil, fmt.Errorf("context has no usable credential (api_key, oauth_token or service account key)")
	}
}

// createClient builds a SpeechKit client for the context.
func createClient(ctx context.Context, cliCtx *cli.Context) (*speechkit.Client, error) {
	session, err := createSession(ctx, cliCtx)
	if err != nil {
		return nil, err
	}

	opts := []speechkit.Option{
		speechkit.WithLogger(slog.Default()),
	}
	if cliCtx.Timeout > 0 {
		opts = append(opts, speechkit.WithTimeout(time.Duration(cliCtx.Timeout)*time.Second))
	}

	return speechkit.NewClient(session, opts...), nil
}

// createStager builds the object storage bucket used to stage
// long-audio uploads, creating the bucket if necessary.
func createStager(ctx context.Context, cliCtx *cli.Context) (*objstore.Bucket, error) {
	st := cliCtx.Storage
	if st == nil || st.AccessKeyID == "" || st.SecretAccessKey == "" {
		return nil, fmt.Errorf("storage credentials not configured; add them with 'speechkit config add-context' or issue a key with 'speechkit iam aws-key'")
	}

	endpoint := st.Endpoint
	if endpoint == "" {
		endpoint = defaultStorageEndpoint
	}
	region := st.Region
	if region == "" {
		region = defaultStorageRegion
	}

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     st.AccessKeyID,
				SecretAccessKey: st.SecretAccessKey,
			}, nil
		}),
	})

	name := st.Bucket
	if name == "" {
		name = objstore.GeneratedName()
		printVerbose("no bucket configured, using generated name %s", name)
	}

	bucket := objstore.NewBucket(client, s3.NewPresignClient(client), name)
	if err := bucket.Ensure(ctx); err != nil {
		return nil, err
	}
	return bucket, nil
}

// readAudioFile reads the input audio and reports its size verbosely.
func readAudioFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}
	printVerbose("read %s from %s", cli.FormatBytes(int64(len(data))), path)
	return data, nil
}
