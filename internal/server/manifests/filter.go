// Package manifests assembles, redacts and transforms the master manifest
// of a release: the authoritative description of exactly which files the
// release may expose.
package manifests

import (
	"fmt"

	"github.com/seqshare/seqshare/internal/common"
	"github.com/seqshare/seqshare/internal/server/models"
)

// ApplyPermissions redacts the manifest according to the release permission
// flags and then validates what is left. Redaction is reconstruction: each
// specimen gets a freshly built artifact list holding only the artifacts
// whose kind is enabled and whose every constituent file sits in an enabled
// location. An artifact is kept whole or dropped whole; a bam must never
// ship without its bai.
//
// When skipValidation is set the post-filter checks are not run; this is
// used when only statistics, not an actionable manifest, are needed.
func ApplyPermissions(m *models.MasterManifest, perms models.ReleasePermissions, skipValidation bool) error {
	for i := range m.SpecimenList {
		kept, err := filterArtifacts(m.SpecimenList[i].Artifacts, perms)
		if err != nil {
			return err
		}
		m.SpecimenList[i].Artifacts = kept
	}

	if skipValidation {
		return nil
	}
	return validateFiltered(m, perms)
}

func filterArtifacts(in models.Artifacts, perms models.ReleasePermissions) (models.Artifacts, error) {
	var kept models.Artifacts
	for _, a := range in {
		if a.Kind().IsReadData() {
			if !perms.IsAllowedReadData {
				continue
			}
		} else {
			if !perms.IsAllowedVariantData {
				continue
			}
		}

		ok, err := allFilesInAllowedLocation(a, perms)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, a)
		}
	}
	return kept, nil
}

// allFilesInAllowedLocation demands every constituent file of the artifact
// to live in an enabled location. One disallowed file disqualifies the whole
// artifact.
func allFilesInAllowedLocation(a models.Artifact, perms models.ReleasePermissions) (bool, error) {
	for _, rf := range a.Files() {
		protocol, _, _, err := models.ParseObjectURL(rf.File.URL)
		if err != nil {
			return false, err
		}
		if !perms.LocationAllowed(protocol) {
			return false, nil
		}
	}
	return true, nil
}

// validateFiltered runs the post-filter checks, fail fast, once over the
// whole manifest. The first five are "nothing to share" states the release
// operator can fix by changing permissions or selections. The last pair
// distinguishes "permissions were granted but the underlying data does not
// exist", which points at data completeness rather than a releasing mistake.
func validateFiltered(m *models.MasterManifest, perms models.ReleasePermissions) error {
	if len(m.SpecimenList) == 0 {
		return fmt.Errorf("%w: no cases/patients/specimens selected", common.ErrNothingToShare)
	}
	if len(m.CaseTree) == 0 {
		return fmt.Errorf("%w: no cases/patients/specimens selected", common.ErrNothingToShare)
	}
	if !perms.IsAllowedReadData && !perms.IsAllowedVariantData {
		return fmt.Errorf("%w: neither read nor variant data is enabled", common.ErrNothingToShare)
	}
	if !perms.AnyLocationAllowed() {
		return fmt.Errorf("%w: no data locations enabled", common.ErrNothingToShare)
	}

	reads, variants := 0, 0
	for _, s := range m.SpecimenList {
		for _, a := range s.Artifacts {
			if a.Kind().IsReadData() {
				reads++
			} else {
				variants++
			}
		}
	}

	if reads+variants == 0 {
		return fmt.Errorf("%w: no artifacts remain after filtering", common.ErrNothingToShare)
	}
	if perms.IsAllowedReadData && reads == 0 {
		return fmt.Errorf("%w: read data is enabled but there are no read data artifacts", common.ErrMismatchedExpectations)
	}
	if perms.IsAllowedVariantData && variants == 0 {
		return fmt.Errorf("%w: variant data is enabled but there are no variant data artifacts", common.ErrMismatchedExpectations)
	}

	return nil
}
