// Package objectstore is the thin client used to persist generated
// sharing-resource documents.
package objectstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/seqshare/seqshare/internal/common"
)

// Seams for tests.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
)

// Client writes documents to an S3-compatible object store.
type Client struct {
	region       string
	accessKey    string
	secretKey    string
	baseEndpoint string
}

func NewClient(region, accessKey, secretKey, baseEndpoint string) *Client {
	return &Client{
		region:       region,
		accessKey:    accessKey,
		secretKey:    secretKey,
		baseEndpoint: baseEndpoint,
	}
}

func (c *Client) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(c.region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.accessKey,
			c.secretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.baseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.baseEndpoint)
		}
	}), nil
}

// PutDocument stores one document. Overwriting an existing key is the
// intended regeneration behavior; document keys are namespaced by
// generation so distinct runs never collide.
func (c *Client) PutDocument(ctx context.Context, bucket, key, contentType string, body []byte) error {
	client, err := c.getS3Client(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrExternalService, err)
	}

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
		Body:        bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("%w: put %s/%s: %v", common.ErrExternalService, bucket, key, err)
	}

	return nil
}
