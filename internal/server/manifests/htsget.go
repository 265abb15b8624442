package manifests

import (
	"fmt"

	"github.com/seqshare/seqshare/internal/server/models"
)

// HtsgetReadsEntry routes one specimen's reads through htsget. URL is the
// backing object the htsget server streams from; EndpointURL is what
// clients dial.
type HtsgetReadsEntry struct {
	URL          string   `json:"url"`
	EndpointURL  string   `json:"endpointUrl"`
	Restrictions []Region `json:"restrictions,omitempty"`
}

// HtsgetVariantsEntry routes one specimen's variants through htsget.
type HtsgetVariantsEntry struct {
	URL             string   `json:"url"`
	EndpointURL     string   `json:"endpointUrl"`
	VariantSampleID string   `json:"variantSampleId,omitempty"`
	Restrictions    []Region `json:"restrictions,omitempty"`
}

// HtsgetManifest tells an htsget endpoint which specimen maps to which
// backing file and under what region restriction.
type HtsgetManifest struct {
	ID       string                         `json:"id"`
	Reads    map[string]HtsgetReadsEntry    `json:"reads"`
	Variants map[string]HtsgetVariantsEntry `json:"variants"`
	Cases    []models.CaseNode              `json:"cases"`
}

// htsgetLocationPreference is the fixed tie-break when a specimen has the
// same artifact kind in several locations: first match wins, later matches
// are dropped. This is documented behavior, not an error.
var htsgetLocationPreference = []string{models.ProtocolS3, models.ProtocolGS, models.ProtocolR2}

// ToHtsgetManifest builds the htsget routing manifest from the filtered
// master manifest. Reads route to alignment artifacts (bam/cram), variants
// to vcf artifacts; bcl and fastq artifacts are not htsget-servable and are
// ignored here. Specimens with neither entry are omitted from the case tree
// because htsget has nothing to route to.
func ToHtsgetManifest(m *models.MasterManifest, baseURL string, regions map[string][]Region, restrictionLabels []string) (*HtsgetManifest, error) {

	restrictions, err := unionRegions(regions, restrictionLabels)
	if err != nil {
		return nil, err
	}

	out := &HtsgetManifest{
		ID:       m.ReleaseKey,
		Reads:    make(map[string]HtsgetReadsEntry),
		Variants: make(map[string]HtsgetVariantsEntry),
	}

	routable := make(map[string]bool)
	for _, s := range m.SpecimenList {
		if reads, ok := pickByLocation(s.Artifacts, isHtsgetReads); ok {
			out.Reads[s.ID] = HtsgetReadsEntry{
				URL:          reads.Files()[0].File.URL,
				EndpointURL:  fmt.Sprintf("%s/reads/%s/%s", baseURL, m.ReleaseKey, s.ID),
				Restrictions: restrictions,
			}
			routable[s.ID] = true
		}
		if variants, ok := pickByLocation(s.Artifacts, isHtsgetVariants); ok {
			entry := HtsgetVariantsEntry{
				URL:          variants.Files()[0].File.URL,
				EndpointURL:  fmt.Sprintf("%s/variants/%s/%s", baseURL, m.ReleaseKey, s.ID),
				Restrictions: restrictions,
			}
			if vcf, isVcf := variants.(models.Vcf); isVcf {
				entry.VariantSampleID = vcf.SampleID
			}
			out.Variants[s.ID] = entry
			routable[s.ID] = true
		}
	}

	out.Cases = pruneCaseTree(m.CaseTree, routable)
	return out, nil
}

func isHtsgetReads(a models.Artifact) bool {
	return a.Kind() == models.KindBam || a.Kind() == models.KindCram
}

func isHtsgetVariants(a models.Artifact) bool {
	return a.Kind() == models.KindVcf
}

// pickByLocation returns the matching artifact in the most preferred
// location (S3 > GS > R2).
func pickByLocation(artifacts models.Artifacts, match func(models.Artifact) bool) (models.Artifact, bool) {
	for _, protocol := range htsgetLocationPreference {
		for _, a := range artifacts {
			if !match(a) {
				continue
			}
			p, _, _, err := models.ParseObjectURL(a.Files()[0].File.URL)
			if err != nil {
				continue // filtered manifests have parseable URLs; treat as non-match
			}
			if p == protocol {
				return a, true
			}
		}
	}
	return nil, false
}

// unionRegions merges the region lists of every enabled label. An unknown
// label is a configuration error.
func unionRegions(regions map[string][]Region, labels []string) ([]Region, error) {
	var out []Region
	seen := make(map[Region]bool)
	for _, label := range labels {
		rs, ok := regions[label]
		if !ok {
			return nil, fmt.Errorf("unknown htsget restriction label %q", label)
		}
		for _, r := range rs {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	return out, nil
}

// pruneCaseTree drops specimens htsget cannot route to, then patients and
// cases left empty.
func pruneCaseTree(tree []models.CaseNode, routable map[string]bool) []models.CaseNode {
	var cases []models.CaseNode
	for _, c := range tree {
		var patients []models.PatientNode
		for _, p := range c.Patients {
			var specimens []models.SpecimenNode
			for _, s := range p.Specimens {
				if routable[s.ID] {
					specimens = append(specimens, s)
				}
			}
			if len(specimens) > 0 {
				p.Specimens = specimens
				patients = append(patients, p)
			}
		}
		if len(patients) > 0 {
			c.Patients = patients
			cases = append(cases, c)
		}
	}
	return cases
}
