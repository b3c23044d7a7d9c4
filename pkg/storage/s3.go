package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/flipflow/flipflow-backend/internal/config"
)

// S3Storage serves both buckets (PDF originals and image assets) against any
// S3-compatible endpoint.
type S3Storage struct {
	client      *s3.Client
	pdfBucket   string
	assetBucket string
	publicURL   string
}

func NewS3Storage(cfg *config.Config) (*S3Storage, error) {
	endpointResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.S3.Endpoint != "" {
			return aws.Endpoint{URL: cfg.S3.Endpoint}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithEndpointResolverWithOptions(endpointResolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion(cfg.S3.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Storage{
		client:      s3.NewFromConfig(awsCfg),
		pdfBucket:   cfg.S3.PDFBucket,
		assetBucket: cfg.S3.AssetBucket,
		publicURL:   strings.TrimRight(cfg.S3.PublicURL, "/"),
	}, nil
}

// UploadPDF validates and stores a PDF original under the owner's key
// prefix. Validation failures return before any network traffic.
func (s *S3Storage) UploadPDF(ctx context.Context, ownerID uint, filename string, src io.Reader, size int64, contentType string) (string, string, error) {
	if err := ValidatePDFUpload(size, contentType); err != nil {
		return "", "", err
	}
	key := ObjectKey(ownerID, filename)
	if err := s.put(ctx, s.pdfBucket, key, src, size, contentType); err != nil {
		return "", "", err
	}
	return s.objectURL(s.pdfBucket, key), key, nil
}

// UploadAsset validates and stores an image asset (logo, cover thumbnail).
func (s *S3Storage) UploadAsset(ctx context.Context, ownerID uint, filename string, src io.Reader, size int64, contentType string) (string, string, error) {
	if err := ValidateAssetUpload(size, contentType); err != nil {
		return "", "", err
	}
	key := ObjectKey(ownerID, filename)
	if err := s.put(ctx, s.assetBucket, key, src, size, contentType); err != nil {
		return "", "", err
	}
	return s.objectURL(s.assetBucket, key), key, nil
}

func (s *S3Storage) DeletePDF(ctx context.Context, key string) error {
	return s.delete(ctx, s.pdfBucket, key)
}

func (s *S3Storage) DeleteAsset(ctx context.Context, key string) error {
	return s.delete(ctx, s.assetBucket, key)
}

func (s *S3Storage) put(ctx context.Context, bucket, key string, src io.Reader, size int64, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          src,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) delete(ctx context.Context, bucket, key string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	_, err := s.client.DeleteObject(ctx, input)
	return err
}

func (s *S3Storage) objectURL(bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicURL, bucket, key)
}
