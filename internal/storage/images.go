// Package storage uploads and serves user images (avatars, recipe photos)
// through an S3-compatible object store.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/recipebox/recipebox/internal/common"
	"github.com/recipebox/recipebox/internal/logging"
)

// MaxImageSize is the upload ceiling for a single image.
const MaxImageSize = 5 << 20

// keyRandBytes is how much randomness goes into a storage key, so replacing
// an image never reuses the previous key behind a CDN cache.
const keyRandBytes = 8

// extByContentType lists the accepted image types with the extension used
// in the storage key.
var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ValidateImage sniffs the content type and enforces the size ceiling. It
// returns the key extension for the detected type.
func ValidateImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image", common.ErrValidation)
	}
	if len(data) > MaxImageSize {
		return "", fmt.Errorf("%w: image exceeds %d bytes", common.ErrValidation, MaxImageSize)
	}
	ct := http.DetectContentType(data)
	ext, ok := extByContentType[ct]
	if !ok {
		return "", fmt.Errorf("%w: unsupported image type %s", common.ErrValidation, ct)
	}
	return ext, nil
}

// ImageStore is what the services depend on.
type ImageStore interface {
	UploadAvatar(ctx context.Context, userID string, data []byte) (string, error)
	UploadRecipeImage(ctx context.Context, userID string, data []byte) (string, error)
	Delete(ctx context.Context, publicURL string) error
	PresignGet(ctx context.Context, publicURL string, expires time.Duration) (string, error)
}

// Config carries the object-store connection settings.
type Config struct {
	AccessKey         string
	SecretKey         string
	Region            string
	BaseEndpoint      string
	AvatarBucket      string
	RecipeImageBucket string
}

// Seams for exercising error paths without a live object store.
var (
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

type S3ImageStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	cfg     Config
	logger  logging.Logger
}

func NewS3ImageStore(ctx context.Context, cfg Config, logger logging.Logger) (*S3ImageStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3ImageStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		cfg:     cfg,
		logger:  logger.With("component", "storage"),
	}, nil
}

func (s *S3ImageStore) UploadAvatar(ctx context.Context, userID string, data []byte) (string, error) {
	ext, err := ValidateImage(data)
	if err != nil {
		return "", err
	}
	suffix, err := common.MakeRandHexString(keyRandBytes)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s-%s%s", userID, suffix, ext)
	return s.upload(ctx, s.cfg.AvatarBucket, key, data)
}

func (s *S3ImageStore) UploadRecipeImage(ctx context.Context, userID string, data []byte) (string, error) {
	ext, err := ValidateImage(data)
	if err != nil {
		return "", err
	}
	suffix, err := common.MakeRandHexString(keyRandBytes)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/%s%s", userID, suffix, ext)
	return s.upload(ctx, s.cfg.RecipeImageBucket, key, data)
}

func (s *S3ImageStore) upload(ctx context.Context, bucket, key string, data []byte) (string, error) {
	ct := http.DetectContentType(data)
	_, err := putObject(s.client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &ct,
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s/%s: %w", bucket, key, err)
	}
	return s.publicURL(bucket, key), nil
}

// Delete removes the object a public URL points at. URLs from other hosts
// are rejected so a crafted profile value cannot drive deletes elsewhere.
func (s *S3ImageStore) Delete(ctx context.Context, publicURL string) error {
	bucket, key, err := s.parsePublicURL(publicURL)
	if err != nil {
		return err
	}
	if _, err := deleteObject(s.client, ctx, &s3.DeleteObjectInput{Bucket: &bucket, Key: &key}); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *S3ImageStore) PresignGet(ctx context.Context, publicURL string, expires time.Duration) (string, error) {
	bucket, key, err := s.parsePublicURL(publicURL)
	if err != nil {
		return "", err
	}
	req, err := presignGetObject(s.presign, ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key},
		s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (s *S3ImageStore) publicURL(bucket, key string) string {
	return strings.TrimSuffix(s.cfg.BaseEndpoint, "/") + "/" + bucket + "/" + key
}

func (s *S3ImageStore) parsePublicURL(publicURL string) (bucket, key string, err error) {
	base, err := url.Parse(s.cfg.BaseEndpoint)
	if err != nil {
		return "", "", fmt.Errorf("bad base endpoint: %w", err)
	}
	u, err := url.Parse(publicURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: bad image url", common.ErrValidation)
	}
	if u.Host != base.Host {
		return "", "", fmt.Errorf("%w: image url points outside the store", common.ErrValidation)
	}
	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: image url has no bucket/key", common.ErrValidation)
	}
	return parts[0], parts[1], nil
}
