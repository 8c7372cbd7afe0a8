// Package storage persists finished render artifacts in S3 so the worker's
// output outlives the worker host.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// Config contains the settings for the artifact store. Empty values fall
// back to the standard AWS config/credential chain.
type Config struct {
	Bucket string
	// Prefix is prepended to every artifact key, e.g. "renders".
	Prefix string
	Region string
	// UsePathStyle forces path-style addressing for S3-compatible providers.
	UsePathStyle bool
}

// ConfigFromEnv reads S3_BUCKET, S3_PREFIX, AWS_REGION and S3_PATH_STYLE.
func ConfigFromEnv() Config {
	return Config{
		Bucket:       os.Getenv("S3_BUCKET"),
		Prefix:       os.Getenv("S3_PREFIX"),
		Region:       os.Getenv("AWS_REGION"),
		UsePathStyle: os.Getenv("S3_PATH_STYLE") == "true",
	}
}

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// ArtifactStore uploads and fetches rendered videos.
type ArtifactStore struct {
	client objectAPI
	bucket string
	prefix string
}

// NewArtifactStore builds a store on the default AWS configuration chain.
func NewArtifactStore(ctx context.Context, cfg Config) (*ArtifactStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("artifact bucket is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &ArtifactStore{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

const videoContentType = "video/webm"

// Key returns the object key for a job's artifact file.
func (a *ArtifactStore) Key(jobID, filename string) string {
	return path.Join(a.prefix, jobID, filename)
}

// UploadArtifact streams a finished video into the bucket and returns its
// object key.
func (a *ArtifactStore) UploadArtifact(ctx context.Context, jobID, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open artifact %s: %w", filePath, err)
	}
	defer f.Close()

	key := a.Key(jobID, path.Base(filePath))
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(videoContentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload artifact for job %s: %w", jobID, err)
	}
	return key, nil
}

// Fetch returns the streaming body of a stored artifact. Caller must Close it.
func (a *ArtifactStore) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch artifact %s: %w", key, err)
	}
	return out.Body, nil
}

// Exists reports whether an artifact is already stored under key. 404s from
// HeadObject are reported as (false, nil), everything else as an error.
func (a *ArtifactStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return false, nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
		return false, nil
	}
	return false, err
}
