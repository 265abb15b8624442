package models

// CaseNode, PatientNode and SpecimenNode form the case tree of the master
// manifest: the same specimens as SpecimenList, grouped hierarchically for
// outputs that need the grouping (the htsget manifest).
type CaseNode struct {
	ID                  string        `json:"id"`
	ExternalIdentifiers []Identifier  `json:"externalIdentifiers,omitempty"`
	DatasetURI          string        `json:"datasetUri"`
	Patients            []PatientNode `json:"patients"`
}

type PatientNode struct {
	ID                  string         `json:"id"`
	ExternalIdentifiers []Identifier   `json:"externalIdentifiers,omitempty"`
	Specimens           []SpecimenNode `json:"specimens"`
}

type SpecimenNode struct {
	ID                  string       `json:"id"`
	ExternalIdentifiers []Identifier `json:"externalIdentifiers,omitempty"`
}

// MasterManifest is the canonical filtered description of everything a
// release may expose. It is created fresh per release activation, pruned in
// place by the authorization filter, snapshotted to the release record, and
// treated as immutable input by every downstream transformer.
type MasterManifest struct {
	ReleaseKey   string     `json:"releaseKey"`
	SpecimenList []Specimen `json:"specimenList"`
	CaseTree     []CaseNode `json:"caseTree"`
}

// CountArtifacts returns the total number of artifacts across all specimens.
func (m *MasterManifest) CountArtifacts() int {
	n := 0
	for _, s := range m.SpecimenList {
		n += len(s.Artifacts)
	}
	return n
}
