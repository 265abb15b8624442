package signers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqshare/seqshare/internal/common"
)

type stubSigner struct{ url string }

func (s stubSigner) Presign(ctx context.Context, releaseKey, bucket, key, auditID string) (string, error) {
	return s.url, nil
}

func TestRegistry_ResolvesByProtocol(t *testing.T) {
	r := NewRegistry()
	r.Register("s3", stubSigner{url: "https://signed.s3"})
	r.Register("gs", stubSigner{url: "https://signed.gs"})

	s, err := r.For("s3")
	require.NoError(t, err)
	url, err := s.Presign(context.Background(), "R001", "b", "k", "a1")
	require.NoError(t, err)
	assert.Equal(t, "https://signed.s3", url)
}

func TestRegistry_UnknownProtocolIsHardError(t *testing.T) {
	r := NewRegistry()
	r.Register("s3", stubSigner{})

	_, err := r.For("ftp")
	assert.True(t, errors.Is(err, common.ErrUnknownProtocol))
}

func TestS3Signer_PresignUsesBucketKeyAndExpiry(t *testing.T) {
	origPresign := presignGetObject
	origLoad := loadDefaultAWSConfig
	defer func() {
		presignGetObject = origPresign
		loadDefaultAWSConfig = origLoad
	}()

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}

	var gotBucket, gotKey string
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		gotBucket = *in.Bucket
		gotKey = *in.Key
		return &v4.PresignedHTTPRequest{URL: "https://signed.example/obj"}, nil
	}

	signer := NewS3Signer("ap-southeast-2", "ak", "sk", "", 15*time.Minute)
	url, err := signer.Presign(context.Background(), "R001", "my-bucket", "path/file.bam", "audit-1")
	require.NoError(t, err)

	assert.Equal(t, "https://signed.example/obj", url)
	assert.Equal(t, "my-bucket", gotBucket)
	assert.Equal(t, "path/file.bam", gotKey)
}

func TestS3Signer_PresignError(t *testing.T) {
	origPresign := presignGetObject
	origLoad := loadDefaultAWSConfig
	defer func() {
		presignGetObject = origPresign
		loadDefaultAWSConfig = origLoad
	}()

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("denied")
	}

	signer := NewS3Signer("ap-southeast-2", "ak", "sk", "", 15*time.Minute)
	_, err := signer.Presign(context.Background(), "R001", "b", "k", "a1")
	assert.Error(t, err)
}
