// Package signers produces presigned, time-limited access URLs for stored
// objects, one implementation per object store protocol.
package signers

import (
	"context"
	"fmt"

	"github.com/seqshare/seqshare/internal/common"
)

// Signer turns one (bucket, key) into a presigned access URL. releaseKey
// and auditID identify the sharing operation on whose behalf the URL is
// minted; implementations may record them for auditing.
type Signer interface {
	Presign(ctx context.Context, releaseKey, bucket, key, auditID string) (string, error)
}

// Registry resolves a Signer by object store protocol at call time.
type Registry struct {
	signers map[string]Signer
}

func NewRegistry() *Registry {
	return &Registry{signers: make(map[string]Signer)}
}

func (r *Registry) Register(protocol string, s Signer) {
	r.signers[protocol] = s
}

// For returns the signer registered for the protocol. An unknown protocol
// is a hard error, never a silent skip.
func (r *Registry) For(protocol string) (Signer, error) {
	s, ok := r.signers[protocol]
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownProtocol, protocol)
	}
	return s, nil
}
