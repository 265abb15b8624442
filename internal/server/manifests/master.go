package manifests

import (
	"context"
	"encoding/json"

	"github.com/seqshare/seqshare/internal/server/models"
	"github.com/seqshare/seqshare/internal/server/repositories/trees"
)

// BuildMasterManifest loads the specimen tree of the release, groups it
// into a case tree, and applies the permission filter. The result is the
// canonical input for every downstream transformer and is what gets
// snapshotted against the release record at activation time.
func BuildMasterManifest(ctx context.Context, repo trees.Repository, releaseKey string,
	perms models.ReleasePermissions, skipValidation bool) (*models.MasterManifest, error) {

	specimens, err := repo.LoadSpecimenTree(ctx, releaseKey)
	if err != nil {
		return nil, err
	}

	m := &models.MasterManifest{
		ReleaseKey:   releaseKey,
		SpecimenList: specimens,
		CaseTree:     buildCaseTree(specimens),
	}

	if err := ApplyPermissions(m, perms, skipValidation); err != nil {
		return nil, err
	}

	return m, nil
}

// buildCaseTree regroups the flat specimen list by case and patient,
// preserving the loader's deterministic ordering.
func buildCaseTree(specimens []models.Specimen) []models.CaseNode {
	var tree []models.CaseNode
	caseIdx := make(map[string]int)
	patientIdx := make(map[string]int) // caseID+"/"+patientID

	for _, s := range specimens {
		ci, ok := caseIdx[s.Case.ID]
		if !ok {
			tree = append(tree, models.CaseNode{
				ID:                  s.Case.ID,
				ExternalIdentifiers: s.Case.ExternalIdentifiers,
				DatasetURI:          s.Dataset.URI,
			})
			ci = len(tree) - 1
			caseIdx[s.Case.ID] = ci
		}

		pk := s.Case.ID + "/" + s.Patient.ID
		pi, ok := patientIdx[pk]
		if !ok {
			tree[ci].Patients = append(tree[ci].Patients, models.PatientNode{
				ID:                  s.Patient.ID,
				ExternalIdentifiers: s.Patient.ExternalIdentifiers,
			})
			pi = len(tree[ci].Patients) - 1
			patientIdx[pk] = pi
		}

		tree[ci].Patients[pi].Specimens = append(tree[ci].Patients[pi].Specimens, models.SpecimenNode{
			ID:                  s.ID,
			ExternalIdentifiers: s.ExternalIdentifiers,
		})
	}

	return tree
}

// EncodeSnapshot serializes the manifest for storage against the release
// record. The shape is a versioned on-record contract; later sharing
// operations read it back verbatim instead of recomputing the tree.
func EncodeSnapshot(m *models.MasterManifest) ([]byte, error) {
	return json.Marshal(m)
}

// DecodeSnapshot is the inverse of EncodeSnapshot.
func DecodeSnapshot(b []byte) (*models.MasterManifest, error) {
	m := &models.MasterManifest{}
	if err := json.Unmarshal(b, m); err != nil {
		return nil, err
	}
	return m, nil
}
