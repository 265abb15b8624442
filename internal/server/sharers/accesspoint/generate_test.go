package accesspoint

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqshare/seqshare/internal/common"
	"github.com/seqshare/seqshare/internal/server/manifests"
	"github.com/seqshare/seqshare/internal/server/models"
)

func testOptions() Options {
	return Options{
		ReleaseKey:         "R001",
		AccountID:          "123456789012",
		TemplateBucket:     "seqshare-templates",
		MaxObjectsPerGroup: 20,
		MaxGroupsPerStack:  30,
	}
}

func s3Objects(bucket string, n int) []manifests.ObjectEntry {
	out := make([]manifests.ObjectEntry, n)
	for i := range out {
		out[i] = manifests.ObjectEntry{
			ObjectStoreProtocol: models.ProtocolS3,
			ObjectStoreBucket:   bucket,
			ObjectStoreKey:      fmt.Sprintf("data/%03d.bam", i),
		}
	}
	return out
}

func TestGeneratePacksFortyFiveObjects(t *testing.T) {
	gen, err := Generate(s3Objects("genomics", 45), testOptions())
	require.NoError(t, err)

	groups := gen.Groups()
	require.Len(t, groups, 3)
	assert.Len(t, groups[0].Entries, 20)
	assert.Len(t, groups[1].Entries, 20)
	assert.Len(t, groups[2].Entries, 5)

	require.Len(t, gen.Stacks, 1)
	// one nested document plus the root
	assert.Len(t, gen.Documents, 2)
	assert.Contains(t, gen.Documents, gen.RootDocumentKey)
}

func TestGenerateRespectsPackingBounds(t *testing.T) {
	opts := testOptions()
	opts.MaxObjectsPerGroup = 3
	opts.MaxGroupsPerStack = 2

	gen, err := Generate(s3Objects("genomics", 17), opts)
	require.NoError(t, err)

	total := 0
	for _, s := range gen.Stacks {
		assert.LessOrEqual(t, len(s.Groups), opts.MaxGroupsPerStack)
		for _, g := range s.Groups {
			assert.LessOrEqual(t, len(g.Entries), opts.MaxObjectsPerGroup)
			for _, e := range g.Entries {
				assert.Equal(t, g.ID, e.GroupID)
				assert.Equal(t, "genomics", e.ObjectStoreBucket)
			}
			total += len(g.Entries)
		}
	}
	assert.Equal(t, 17, total)
	// 6 groups of <=3 across stacks of <=2
	assert.Len(t, gen.Stacks, 3)
}

func TestGenerateSplitsGroupsByBucket(t *testing.T) {
	objects := append(s3Objects("alpha", 2), s3Objects("beta", 2)...)

	gen, err := Generate(objects, testOptions())
	require.NoError(t, err)

	groups := gen.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "alpha", groups[0].Bucket)
	assert.Equal(t, "beta", groups[1].Bucket)
}

func TestGenerateDeduplicatesByURL(t *testing.T) {
	objects := s3Objects("genomics", 3)
	objects = append(objects, objects...)

	gen, err := Generate(objects, testOptions())
	require.NoError(t, err)

	groups := gen.Groups()
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Entries, 3)
}

func TestGenerateRejectsEmptyInput(t *testing.T) {
	_, err := Generate(nil, testOptions())
	assert.ErrorIs(t, err, common.ErrGenerationUsage)
}

func TestGenerateRejectsNonBucketStoreObjects(t *testing.T) {
	objects := []manifests.ObjectEntry{
		{ObjectStoreProtocol: models.ProtocolGS, ObjectStoreBucket: "genomics", ObjectStoreKey: "a.bam"},
	}
	_, err := Generate(objects, testOptions())
	assert.ErrorIs(t, err, common.ErrGenerationUsage)
}

func TestGeneratedDocumentsAreWellFormed(t *testing.T) {
	gen, err := Generate(s3Objects("genomics", 25), testOptions())
	require.NoError(t, err)

	require.Len(t, gen.Stacks, 1)
	nestedKey := gen.Stacks[0].DocumentKey
	assert.Equal(t, fmt.Sprintf("R001/%s/accesspoint-00.json", gen.StackID), nestedKey)
	assert.Equal(t, fmt.Sprintf("R001/%s/accesspoint-root.json", gen.StackID), gen.RootDocumentKey)

	var nested Template
	require.NoError(t, json.Unmarshal(gen.Documents[nestedKey], &nested))
	assert.Equal(t, templateFormatVersion, nested.AWSTemplateFormatVersion)
	assert.Len(t, nested.Resources, 2)
	// name, alias and bucket per group
	assert.Len(t, nested.Outputs, 6)
	for _, r := range nested.Resources {
		assert.Equal(t, "AWS::S3::AccessPoint", r.Type)
		assert.Equal(t, "genomics", r.Properties["Bucket"])
	}

	var root Template
	require.NoError(t, json.Unmarshal(gen.Documents[gen.RootDocumentKey], &root))
	require.Len(t, root.Resources, 1)
	stack := root.Resources["AccessPointStack00"]
	assert.Equal(t, "AWS::CloudFormation::Stack", stack.Type)
	assert.Equal(t,
		fmt.Sprintf("https://seqshare-templates.s3.amazonaws.com/%s", nestedKey),
		stack.Properties["TemplateURL"])
	assert.Len(t, root.Outputs, 6)
}

func TestGeneratePinsAccessPointsToVpc(t *testing.T) {
	opts := testOptions()
	opts.VpcID = "vpc-0abc"

	gen, err := Generate(s3Objects("genomics", 1), opts)
	require.NoError(t, err)

	var nested Template
	require.NoError(t, json.Unmarshal(gen.Documents[gen.Stacks[0].DocumentKey], &nested))
	for _, r := range nested.Resources {
		vpc, ok := r.Properties["VpcConfiguration"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "vpc-0abc", vpc["VpcId"])
	}
}
