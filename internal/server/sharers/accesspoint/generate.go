package accesspoint

import (
	"encoding/json"
	"fmt"

	"github.com/seqshare/seqshare/internal/common"
	"github.com/seqshare/seqshare/internal/server/manifests"
	"github.com/seqshare/seqshare/internal/server/models"
)

// Entry is one shared object assigned to an access-point group.
type Entry struct {
	ObjectStoreURL    string
	ObjectStoreBucket string
	ObjectStoreKey    string
	GroupID           string
}

// Group is one access point: a run of objects from a single bucket, capped
// at Options.MaxObjectsPerGroup.
type Group struct {
	ID      string
	Bucket  string
	Entries []Entry
}

// Stack is one nested template document holding up to
// Options.MaxGroupsPerStack groups.
type Stack struct {
	ResourceName string
	DocumentKey  string
	Groups       []Group
}

// Options configures a generation run.
type Options struct {
	ReleaseKey string
	// AccountID is the consuming account granted read access.
	AccountID string
	// VpcID optionally pins every access point to one VPC.
	VpcID string
	// TemplateBucket holds the generated documents; nested TemplateURLs
	// in the root document point into it.
	TemplateBucket     string
	MaxObjectsPerGroup int
	MaxGroupsPerStack  int
}

// Generation is the result of one run: a fresh namespace id, the root
// document key and every document body keyed by its object-store key.
type Generation struct {
	StackID         string
	RootDocumentKey string
	Documents       map[string][]byte
	Stacks          []Stack
}

// Groups flattens the stacks back to the group list, in packing order.
func (g *Generation) Groups() []Group {
	var out []Group
	for _, s := range g.Stacks {
		out = append(out, s.Groups...)
	}
	return out
}

// Generate packs the object list into access-point groups and renders the
// template documents. Objects are deduplicated by URL, partitioned by
// bucket, then chunked in order; only bucket-store objects can be shared
// this way.
func Generate(objects []manifests.ObjectEntry, opts Options) (*Generation, error) {
	if len(objects) == 0 {
		return nil, fmt.Errorf("%w: no objects to generate access points for", common.ErrGenerationUsage)
	}
	if opts.MaxObjectsPerGroup <= 0 || opts.MaxGroupsPerStack <= 0 {
		return nil, fmt.Errorf("%w: group and stack limits must be positive", common.ErrGenerationUsage)
	}

	entries, err := dedupEntries(objects)
	if err != nil {
		return nil, err
	}

	stackID, err := common.MakeRandHexString(8)
	if err != nil {
		return nil, err
	}

	groups, err := packGroups(entries, opts.MaxObjectsPerGroup)
	if err != nil {
		return nil, err
	}

	stacks := packStacks(groups, opts.MaxGroupsPerStack)

	gen := &Generation{
		StackID:   stackID,
		Documents: make(map[string][]byte, len(stacks)+1),
		Stacks:    stacks,
	}

	templateURLs := make(map[string]string, len(stacks))
	for i := range stacks {
		key := fmt.Sprintf("%s/%s/accesspoint-%02d.json", opts.ReleaseKey, stackID, i)
		stacks[i].DocumentKey = key
		templateURLs[stacks[i].ResourceName] = fmt.Sprintf("https://%s.s3.amazonaws.com/%s", opts.TemplateBucket, key)

		body, err := json.MarshalIndent(nestedTemplate(stacks[i].Groups, opts.AccountID, opts.VpcID), "", "  ")
		if err != nil {
			return nil, err
		}
		gen.Documents[key] = body
	}

	gen.RootDocumentKey = fmt.Sprintf("%s/%s/accesspoint-root.json", opts.ReleaseKey, stackID)
	body, err := json.MarshalIndent(rootTemplate(stacks, templateURLs), "", "  ")
	if err != nil {
		return nil, err
	}
	gen.Documents[gen.RootDocumentKey] = body

	return gen, nil
}

func dedupEntries(objects []manifests.ObjectEntry) ([]Entry, error) {
	seen := make(map[string]struct{}, len(objects))
	entries := make([]Entry, 0, len(objects))
	for _, o := range objects {
		if o.ObjectStoreProtocol != models.ProtocolS3 {
			return nil, fmt.Errorf("%w: access points require bucket-store objects, got %q", common.ErrGenerationUsage, o.URL())
		}
		url := o.URL()
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		entries = append(entries, Entry{
			ObjectStoreURL:    url,
			ObjectStoreBucket: o.ObjectStoreBucket,
			ObjectStoreKey:    o.ObjectStoreKey,
		})
	}
	return entries, nil
}

// packGroups partitions entries by bucket, preserving first-appearance
// order, and chunks each partition.
func packGroups(entries []Entry, maxPerGroup int) ([]Group, error) {
	var bucketOrder []string
	byBucket := make(map[string][]Entry)
	for _, e := range entries {
		if _, ok := byBucket[e.ObjectStoreBucket]; !ok {
			bucketOrder = append(bucketOrder, e.ObjectStoreBucket)
		}
		byBucket[e.ObjectStoreBucket] = append(byBucket[e.ObjectStoreBucket], e)
	}

	var groups []Group
	for _, bucket := range bucketOrder {
		run := byBucket[bucket]
		for start := 0; start < len(run); start += maxPerGroup {
			end := min(start+maxPerGroup, len(run))
			id, err := common.MakeRandHexString(8)
			if err != nil {
				return nil, err
			}
			chunk := make([]Entry, end-start)
			copy(chunk, run[start:end])
			for i := range chunk {
				chunk[i].GroupID = id
			}
			groups = append(groups, Group{ID: id, Bucket: bucket, Entries: chunk})
		}
	}
	return groups, nil
}

func packStacks(groups []Group, maxPerStack int) []Stack {
	var stacks []Stack
	for start := 0; start < len(groups); start += maxPerStack {
		end := min(start+maxPerStack, len(groups))
		stacks = append(stacks, Stack{
			ResourceName: fmt.Sprintf("AccessPointStack%02d", len(stacks)),
			Groups:       groups[start:end],
		})
	}
	return stacks
}
