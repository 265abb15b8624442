package signers

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Seams for tests.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// S3Signer presigns GET URLs against any S3-compatible endpoint. It backs
// the s3 protocol directly and, pointed at the right interop endpoint, the
// gs and r2 protocols too (see NewGSSigner / NewR2Signer).
type S3Signer struct {
	region       string
	accessKey    string
	secretKey    string
	baseEndpoint string
	expiry       time.Duration
}

func NewS3Signer(region, accessKey, secretKey, baseEndpoint string, expiry time.Duration) *S3Signer {
	return &S3Signer{
		region:       region,
		accessKey:    accessKey,
		secretKey:    secretKey,
		baseEndpoint: baseEndpoint,
		expiry:       expiry,
	}
}

func (s *S3Signer) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.accessKey,
			s.secretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.baseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.baseEndpoint)
		}
	})

	return newS3PresignClient(client), nil
}

// Presign implements Signer.
func (s *S3Signer) Presign(ctx context.Context, releaseKey, bucket, key, auditID string) (string, error) {

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
