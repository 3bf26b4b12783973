package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/saransh1220/panchakarma/internal/modules/filestorage/domain"
)

// S3Config holds configuration for S3/MinIO storage
type S3Config struct {
	BucketName     string
	Region         string
	Endpoint       string // reachable from the server, e.g. minio:9000
	PublicEndpoint string // reachable from browsers, e.g. localhost:9000
	AccessKey      string
	SecretKey      string
	UseSSL         bool
}

// S3Storage stores objects in AWS S3 or an S3 compatible server.
type S3Storage struct {
	client        *s3.Client
	presignClient *s3.Client
	config        S3Config
}

func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Endpoint != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := newClient(awsCfg, cfg.endpointURL(cfg.Endpoint))
	presignClient := client
	if cfg.Endpoint != "" && cfg.PublicEndpoint != "" {
		presignClient = newClient(awsCfg, cfg.endpointURL(cfg.PublicEndpoint))
	}

	return &S3Storage{
		client:        client,
		presignClient: presignClient,
		config:        cfg,
	}, nil
}

func newClient(awsCfg aws.Config, endpoint string) *s3.Client {
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
}

// endpointURL adds a scheme to bare host:port endpoints.
func (c S3Config) endpointURL(endpoint string) string {
	if endpoint == "" || hasHTTPPrefix(endpoint) {
		return endpoint
	}
	if c.UseSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

// publicBase is the URL prefix objects are addressed by, without trailing
// slash.
func (s *S3Storage) publicBase() string {
	switch {
	case s.config.PublicEndpoint != "":
		return s.config.endpointURL(s.config.PublicEndpoint) + "/" + s.config.BucketName
	case s.config.Endpoint != "":
		return s.config.endpointURL(s.config.Endpoint) + "/" + s.config.BucketName
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.config.BucketName, s.config.Region)
	}
}

func (s *S3Storage) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.BucketName),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to s3: %w", err)
	}
	return s.publicBase() + "/" + key, nil
}

func (s *S3Storage) DeleteFile(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.BucketName),
		Key:    aws.String(key),
	})
	var missing *types.NoSuchKey
	if errors.As(err, &missing) {
		return domain.ErrNotExist
	}
	return err
}

func (s *S3Storage) GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	request, err := s3.NewPresignClient(s.presignClient).PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.BucketName),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiration
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return request.URL, nil
}

// GetKeyFromURL accepts URLs built from either endpoint or the AWS virtual
// host form.
func (s *S3Storage) GetKeyFromURL(fileURL string) (string, error) {
	var prefixes []string
	for _, endpoint := range []string{s.config.PublicEndpoint, s.config.Endpoint} {
		if endpoint != "" {
			prefixes = append(prefixes, s.config.endpointURL(endpoint)+"/"+s.config.BucketName+"/")
		}
	}
	if s.config.Endpoint == "" {
		prefixes = append(prefixes, fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.config.BucketName, s.config.Region))
	}

	for _, prefix := range prefixes {
		if key, ok := strings.CutPrefix(fileURL, prefix); ok && key != "" {
			return key, nil
		}
	}
	return "", fmt.Errorf("url does not match expected format: %s", fileURL)
}

func hasHTTPPrefix(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
