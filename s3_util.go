package godatabend

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultS3Region = "us-east-1"

// S3StageConfig locates an external S3 stage and holds its credentials.
type S3StageConfig struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // S3 compatible endpoint, empty for AWS
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	UsePathStyle    bool
}

// S3Presigner presigns stage object requests against Amazon S3 or an S3
// compatible store.
type S3Presigner struct {
	client *s3.PresignClient
	bucket string
	prefix string
}

var _ StagePresigner = (*S3Presigner)(nil)

// NewS3Presigner creates a presigner from static credentials.
func NewS3Presigner(cfg S3StageConfig) *S3Presigner {
	region := cfg.Region
	if region == "" {
		region = defaultS3Region
	}
	opts := s3.Options{
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			cfg.SessionToken)),
		Region:       region,
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return &S3Presigner{
		client: s3.NewPresignClient(s3.New(opts)),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}
}

// PresignUpload presigns a PutObject request.
func (p *S3Presigner) PresignUpload(ctx context.Context, key string, expires time.Duration) (*PresignedRequest, error) {
	key = objectKey(p.prefix, key)
	req, err := p.client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry(expires)))
	if err != nil {
		return nil, presignError(http.MethodPut, key, err)
	}
	return &PresignedRequest{Method: req.Method, URL: req.URL, Headers: flattenHeaders(req.SignedHeader)}, nil
}

// PresignDownload presigns a GetObject request.
func (p *S3Presigner) PresignDownload(ctx context.Context, key string, expires time.Duration) (*PresignedRequest, error) {
	key = objectKey(p.prefix, key)
	req, err := p.client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry(expires)))
	if err != nil {
		return nil, presignError(http.MethodGet, key, err)
	}
	return &PresignedRequest{Method: req.Method, URL: req.URL, Headers: flattenHeaders(req.SignedHeader)}, nil
}
