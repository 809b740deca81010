package output

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"mime"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// UploadTimeout bounds a single render upload
const UploadTimeout = 30 * time.Second

// S3Config holds the object storage settings for publishing renders
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // Empty uses the AWS endpoint for Region
	AccessKey string
	SecretKey string
}

// Enabled reports whether a bucket is configured
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// S3Publisher uploads encoded renders to an S3 compatible bucket
type S3Publisher struct {
	client s3iface.S3API
	bucket string
	logger core.Logger
}

// NewS3Publisher creates a publisher using static credentials and path-style addressing
func NewS3Publisher(cfg S3Config, logger core.Logger) (*S3Publisher, error) {
	awsConfig := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return NewS3PublisherWithClient(s3.New(sess), cfg.Bucket, logger), nil
}

// NewS3PublisherWithClient creates a publisher around an existing client
func NewS3PublisherWithClient(client s3iface.S3API, bucket string, logger core.Logger) *S3Publisher {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &S3Publisher{client: client, bucket: bucket, logger: logger}
}

// PublishImage encodes img in the format implied by key's extension and uploads it
func (p *S3Publisher) PublishImage(ctx context.Context, key string, img image.Image) error {
	var buf bytes.Buffer
	if err := EncodeImage(&buf, key, img); err != nil {
		return err
	}
	return p.Upload(ctx, key, buf.Bytes())
}

// Upload stores data under key
func (p *S3Publisher) Upload(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	size := int64(len(data))
	_, err := p.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	p.logger.Printf("Uploaded %s to S3 (%d bytes)\n", key, size)
	return nil
}
