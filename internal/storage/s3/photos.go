package s3

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	appcfg "pixelfeed/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const presignTTL = 15 * time.Minute

// PhotoStore keeps post and profile images in an S3-compatible bucket
// (MinIO in dev). Uploads go through presigned PUT URLs so image bytes never
// pass through the API process.
type PhotoStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

func New(ctx context.Context, cfg appcfg.PhotosConfig) (*PhotoStore, error) {
	const op = "storage.s3.New"

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &PhotoStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

// randomStorageKey shards objects by date so the bucket stays listable.
func randomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("photos/%d/%02d/%02d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

// PresignedUploadURL returns a fresh object key and a presigned PUT URL for it.
func (p *PhotoStore) PresignedUploadURL(ctx context.Context) (string, string, error) {
	const op = "storage.s3.PresignedUploadURL"

	key := randomStorageKey()

	req, err := p.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: &p.bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	return key, req.URL, nil
}

// Delete removes a stored photo by the URL recorded on the post or profile.
// URLs pointing outside the bucket (e.g. Google avatar URLs) are skipped.
func (p *PhotoStore) Delete(ctx context.Context, photoURL string) error {
	const op = "storage.s3.Delete"

	key := p.keyFromURL(photoURL)
	if key == "" {
		return nil
	}

	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &p.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (p *PhotoStore) keyFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	path := strings.TrimPrefix(u.Path, "/")
	path = strings.TrimPrefix(path, p.bucket+"/")
	if !strings.HasPrefix(path, "photos/") {
		return ""
	}
	return path
}
