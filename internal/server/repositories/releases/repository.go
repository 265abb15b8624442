// Package releases stores the release governance records: the permission
// flags and the manifest snapshot written at activation.
package releases

import (
	"context"

	"github.com/seqshare/seqshare/internal/server/models"
)

type Repository interface {
	// GetByKey returns the release record or common.ErrReleaseNotFound.
	GetByKey(ctx context.Context, releaseKey string) (*models.Release, error)

	// SaveManifestSnapshot upserts the serialized master manifest against
	// the release record together with a fresh entity tag. Overwriting an
	// earlier snapshot is the intended re-activation behavior.
	SaveManifestSnapshot(ctx context.Context, releaseKey, etag string, manifest []byte) error

	// GetManifestSnapshot reads the stored snapshot back verbatim. Returns
	// common.ErrNoManifestSnapshot when the release was never activated.
	GetManifestSnapshot(ctx context.Context, releaseKey string) (etag string, manifest []byte, err error)
}
