// Package objstore stages local audio payloads in S3-compatible object
// storage so that a time-limited fetch URL can be handed to the
// recognition backend.
//
// A staged object lives only as long as its owning recognition job; the
// job deletes it once the job reaches a terminal state. The caller is
// responsible for configuring the [s3.Client] with credentials, region,
// and endpoint (for Yandex object storage:
// https://storage.yandexcloud.net, region ru-central1).
package objstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
)

// DefaultExpiry is the presigned URL validity window. One hour covers
// the expected submission-to-pickup latency of the recognition backend.
const DefaultExpiry = time.Hour

// S3API abstracts the S3 operations used by [Bucket].
// The [s3.Client] type satisfies this interface.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// PresignAPI abstracts presigned URL generation.
// The [s3.PresignClient] type satisfies this interface.
type PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// StagedObject is a temporary upload placed in object storage solely to
// hand a fetch URL to the recognition backend.
type StagedObject struct {
	Bucket    string
	Key       string
	URL       string // presigned GET URL
	ExpiresIn time.Duration
}

// Bucket stages and unstages objects in one storage bucket.
type Bucket struct {
	client  S3API
	presign PresignAPI
	name    string
	expiry  time.Duration
}

// BucketOption represents bucket option function
type BucketOption func(*Bucket)

// WithExpiry sets the presigned URL validity window.
func WithExpiry(d time.Duration) BucketOption {
	return func(b *Bucket) {
		b.expiry = d
	}
}

// NewBucket binds a stager to the named bucket.
//
// The client should be pre-configured (credentials, region, endpoint).
// Any types satisfying [S3API] and [PresignAPI] are accepted; typically
// an [s3.Client] and an [s3.PresignClient] built from it.
func NewBucket(client S3API, presign PresignAPI, name string, opts ...BucketOption) *Bucket {
	b := &Bucket{
		client:  client,
		presign: presign,
		name:    name,
		expiry:  DefaultExpiry,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// GeneratedName returns a collision-resistant bucket name for callers
// that do not supply their own bucket.
func GeneratedName() string {
	return "speechkit-" + uuid.New().String()
}

// Name returns the bucket name.
func (b *Bucket) Name() string {
	return b.name
}

// Ensure creates the bucket if it does not already exist. A bucket
// already owned by the caller is not an error.
func (b *Bucket) Ensure(ctx context.Context) error {
	_, err := b.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(b.name),
	})
	if err != nil && !isBucketExists(err) {
		return fmt.Errorf("objstore: create bucket %s: %w", b.name, err)
	}
	return nil
}

// Stage uploads the local file under a collision-resistant generated key
// (original filename plus a random suffix, so concurrent jobs sharing a
// bucket never clobber each other) and returns the staged object with a
// presigned GET URL.
func (b *Bucket) Stage(ctx context.Context, localPath string) (*StagedObject, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("objstore: open %s: %w", localPath, err)
	}
	defer f.Close()

	key := filepath.Base(localPath) + "-" + uuid.New().String()

	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return nil, fmt.Errorf("objstore: upload %s: %w", key, err)
	}

	presigned, err := b.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(b.expiry))
	if err != nil {
		return nil, fmt.Errorf("objstore: presign %s: %w", key, err)
	}

	return &StagedObject{
		Bucket:    b.name,
		Key:       key,
		URL:       presigned.URL,
		ExpiresIn: b.expiry,
	}, nil
}

// Unstage deletes the staged object. Call at most once per staged
// object; whether a second call errors depends on the backend.
func (b *Bucket) Unstage(ctx context.Context, obj *StagedObject) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(obj.Key),
	})
	if err != nil {
		return fmt.Errorf("objstore: delete %s: %w", obj.Key, err)
	}
	return nil
}

// isBucketExists reports whether err indicates the bucket is already
// present and owned by the caller.
func isBucketExists(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
			return true
		}
	}
	return false
}
