package manifests

import (
	"fmt"

	"github.com/seqshare/seqshare/internal/common"
	"github.com/seqshare/seqshare/internal/server/models"
)

// ProtocolAll is the wildcard protocol filter.
const ProtocolAll = "all"

// ObjectEntry is one deduplicated stored object of the filtered manifest.
type ObjectEntry struct {
	ObjectStoreProtocol string `json:"objectStoreProtocol"`
	ObjectStoreBucket   string `json:"objectStoreBucket"`
	ObjectStoreKey      string `json:"objectStoreKey"`
	ObjectSize          uint64 `json:"objectSize"`
	MD5                 string `json:"md5,omitempty"`
}

// URL reassembles the entry's object store URL.
func (e ObjectEntry) URL() string {
	return fmt.Sprintf("%s://%s/%s", e.ObjectStoreProtocol, e.ObjectStoreBucket, e.ObjectStoreKey)
}

// ToObjectEntries emits the deduplicated flat object list of the manifest,
// restricted to the given protocol allow-list (or ProtocolAll). An empty
// filter would guarantee empty output, so it is rejected as a usage error
// rather than treated as a valid state. The operation is deterministic:
// the same manifest and filter always yield the same list.
func ToObjectEntries(m *models.MasterManifest, protocols []string) ([]ObjectEntry, error) {
	if len(protocols) == 0 {
		return nil, fmt.Errorf("%w: empty protocol filter", common.ErrGenerationUsage)
	}

	allowed := make(map[string]bool, len(protocols))
	all := false
	for _, p := range protocols {
		if p == ProtocolAll {
			all = true
		}
		allowed[p] = true
	}

	var entries []ObjectEntry
	seen := make(map[string]bool)
	for _, s := range m.SpecimenList {
		for _, a := range s.Artifacts {
			for _, rf := range a.Files() {
				protocol, bucket, key, err := models.ParseObjectURL(rf.File.URL)
				if err != nil {
					return nil, err
				}
				if !all && !allowed[protocol] {
					continue
				}
				if seen[rf.File.URL] {
					continue
				}
				seen[rf.File.URL] = true
				entries = append(entries, ObjectEntry{
					ObjectStoreProtocol: protocol,
					ObjectStoreBucket:   bucket,
					ObjectStoreKey:      key,
					ObjectSize:          rf.File.SizeBytes,
					MD5:                 rf.File.MD5(),
				})
			}
		}
	}
	return entries, nil
}
