// Package trees loads the case/patient/specimen/artifact tree behind a
// release, restricted to the specimens currently selected for it.
package trees

import (
	"context"

	"github.com/seqshare/seqshare/internal/server/models"
)

type Repository interface {
	// LoadSpecimenTree returns every selected specimen of the release with
	// its ancestor identifiers and every artifact with every constituent
	// file. Ordering is deterministic: (dataset URI, case id, specimen id).
	// Returns common.ErrReleaseNotFound when the release key does not
	// resolve; an empty slice (not an error) when nothing is selected.
	LoadSpecimenTree(ctx context.Context, releaseKey string) ([]models.Specimen, error)
}
