package signers

import (
	"fmt"
	"time"
)

// NewGSSigner presigns gs:// objects through the Google Cloud Storage XML
// interop endpoint using HMAC credentials, which speaks the same signing
// dialect as S3.
func NewGSSigner(accessKey, secretKey string, expiry time.Duration) *S3Signer {
	return NewS3Signer("auto", accessKey, secretKey, "https://storage.googleapis.com", expiry)
}

// NewR2Signer presigns r2:// objects through the account-scoped Cloudflare
// R2 endpoint, which is S3-compatible.
func NewR2Signer(accountID, accessKey, secretKey string, expiry time.Duration) *S3Signer {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	return NewS3Signer("auto", accessKey, secretKey, endpoint, expiry)
}
