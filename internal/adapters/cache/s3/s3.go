// Package s3 implements the S3-backed cache strategy.
package s3

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/trinio-labs/bake/internal/core/domain"
	"github.com/trinio-labs/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

// Client is the subset of the S3 API the strategy uses.
type Client interface {
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// Strategy stores artifacts as objects in an S3 bucket.
type Strategy struct {
	client Client
	bucket string
}

var _ ports.CacheStrategy = (*Strategy)(nil)

// NewStrategy creates an S3 strategy over an existing client.
func NewStrategy(client Client, bucket string) *Strategy {
	return &Strategy{client: client, bucket: bucket}
}

// FromConfig builds the S3 strategy from the project configuration, using
// the default AWS credential chain. An Endpoint override switches the
// client to path-style addressing for S3-compatible stores.
func FromConfig(ctx context.Context, project *domain.Project) (ports.CacheStrategy, error) {
	remotes := project.Config.Cache.Remotes
	if remotes == nil || remotes.S3 == nil {
		return nil, zerr.With(domain.ErrStrategyNotConfigured, "strategy", domain.StrategyS3)
	}
	cfg := remotes.S3
	if !cfg.Enabled {
		return nil, zerr.With(domain.ErrStrategyDisabled, "strategy", domain.StrategyS3)
	}
	if cfg.Bucket == "" {
		return nil, zerr.With(zerr.With(domain.ErrStrategyNotConfigured, "strategy", domain.StrategyS3), "field", "bucket")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load AWS configuration")
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewStrategy(client, cfg.Bucket), nil
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return domain.StrategyS3
}

// Fetch downloads the artifact object for key. A NoSuchKey response is a miss.
func (s *Strategy) Fetch(ctx context.Context, key string) (*domain.Artifact, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(domain.ArtifactFileName(key)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to fetch artifact from S3"), "key", key)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read artifact body"), "key", key)
	}
	return &domain.Artifact{Key: key, Data: data}, nil
}

// Store uploads the blob under key. Uploads are idempotent because keys
// are content-addressed.
func (s *Strategy) Store(ctx context.Context, key string, blob []byte) error {
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(domain.ArtifactFileName(key)),
		Body:   bytes.NewReader(blob),
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to store artifact in S3"), "key", key)
	}
	return nil
}
