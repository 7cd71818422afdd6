package objectclient

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	cfg "github.com/markdave123-py/fileinput/internal/config"
	"github.com/markdave123-py/fileinput/internal/core"
)

const (
	uploadTimeout = 2 * time.Minute
	objectTimeout = 30 * time.Second
)

// S3Client archives task payloads. Transfers go through the s3 manager so
// large payloads are split into parts both ways.
type S3Client struct {
	api        *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	region     string
	bucket     string
}

var _ core.ObjectClient = (*S3Client)(nil)

func NewS3Client(ctx context.Context, c *cfg.Config) (*S3Client, error) {
	if err := checkSettings(c); err != nil {
		return nil, err
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(c.AwsRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AwsAccessKey, c.AwsSecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg)
	log.Info().Str("bucket", c.BucketName).Str("region", c.AwsRegion).Msg("s3 archive configured")

	return &S3Client{
		api:        api,
		uploader:   manager.NewUploader(api),
		downloader: manager.NewDownloader(api),
		region:     c.AwsRegion,
		bucket:     c.BucketName,
	}, nil
}

// checkSettings names every archive setting that is missing.
func checkSettings(c *cfg.Config) error {
	var missing []string
	if c.AwsAccessKey == "" || c.AwsSecretKey == "" {
		missing = append(missing, "AWS_ACCESS_KEY/AWS_SECRET_KEY")
	}
	if c.AwsRegion == "" {
		missing = append(missing, "AWS_REGION")
	}
	if c.BucketName == "" {
		missing = append(missing, "BUCKET_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("s3 archive not configured, missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *S3Client) Bucket() string { return c.bucket }

// UploadFile stores one payload and returns the URL recorded in the ledger.
func (c *S3Client) UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("upload s3://%s/%s: %w", bucket, key, err)
	}
	return ObjectURL(bucket, c.region, key), nil
}

func (c *S3Client) DeleteFile(ctx context.Context, bucket, key string) error {
	ctx, cancel := context.WithTimeout(ctx, objectTimeout)
	defer cancel()

	if _, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)}); err != nil {
		return fmt.Errorf("delete s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func (c *S3Client) GetFile(ctx context.Context, bucket, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, objectTimeout)
	defer cancel()

	buf := manager.NewWriteAtBuffer(nil)
	if _, err := c.downloader.Download(ctx, buf, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)}); err != nil {
		return nil, fmt.Errorf("download s3://%s/%s: %w", bucket, key, err)
	}
	return buf.Bytes(), nil
}

// ObjectURL builds the virtual-hosted URL of an object, escaping the key.
func ObjectURL(bucket, region, key string) string {
	u := url.URL{
		Scheme: "https",
		Host:   fmt.Sprintf("%s.s3.%s.amazonaws.com", bucket, region),
		Path:   "/" + key,
	}
	return u.String()
}

// KeyFromURL returns the object key of a URL built by ObjectURL. The bucket
// is not read back from the host: bucket names may contain dots.
func KeyFromURL(objectURL string) (string, error) {
	u, err := url.Parse(objectURL)
	if err != nil {
		return "", fmt.Errorf("parse object url: %w", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", fmt.Errorf("object url %q has no key", objectURL)
	}
	return key, nil
}
