// Package storage maps save requests onto an S3-compatible object store:
// key construction, the thin put/get/copy/list/delete gateway, and the
// backup-then-overwrite sequence with retention.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dashpilot/s3-universal-backend/internal/config"
)

// ErrNotFound reports that the addressed object does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStore is the narrow storage surface the handlers and the backup
// manager depend on.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Copy(ctx context.Context, src, dst string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// S3ClientAPI defines the interface for the S3 operations we use.
type S3ClientAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Gateway implements ObjectStore against a single bucket. One blocking call
// per operation, no retries, no multipart.
type Gateway struct {
	Client S3ClientAPI
	Bucket string
}

// NewGateway builds the S3 client once from configuration. When R2AccountID
// is set the endpoint is derived from the account (plus an optional
// jurisdiction), the region is forced to auto, and path-style addressing is
// enabled, per Cloudflare's S3 compatibility rules.
func NewGateway(ctx context.Context, cfg config.S3Config) (*Gateway, error) {
	endpoint := cfg.Endpoint
	region := cfg.Region
	pathStyle := cfg.ForcePathStyle

	if cfg.R2AccountID != "" {
		host := cfg.R2AccountID
		if cfg.R2Jurisdiction != "" {
			host += "." + cfg.R2Jurisdiction
		}
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", host)
		region = "auto"
		pathStyle = true
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = pathStyle
		// The SDK's default integrity checksums are not understood by R2
		// and several other S3-compatible stores.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &Gateway{Client: client, Bucket: cfg.Bucket}, nil
}

func (g *Gateway) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := g.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(g.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (g *Gateway) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := g.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (g *Gateway) Copy(ctx context.Context, src, dst string) error {
	_, err := g.Client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(g.Bucket),
		CopySource: aws.String(g.Bucket + "/" + src),
		Key:        aws.String(dst),
	})
	if err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return nil
}

func (g *Gateway) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var token *string
	for {
		resp, err := g.Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(g.Bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		for _, obj := range resp.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if !aws.ToBool(resp.IsTruncated) {
			return keys, nil
		}
		token = resp.NextContinuationToken
	}
}

func (g *Gateway) Delete(ctx context.Context, key string) error {
	_, err := g.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
