package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqshare/seqshare/internal/common"
)

func TestArtifacts_SnapshotRoundTrip(t *testing.T) {
	in := Artifacts{
		Bam{
			ID:      "A1",
			BamFile: File{URL: "s3://b/k.bam", SizeBytes: 100, Checksums: []Checksum{{Type: "MD5", Value: "aa"}}},
			BaiFile: File{URL: "s3://b/k.bam.bai", SizeBytes: 10},
		},
		Vcf{
			ID:       "A2",
			VcfFile:  File{URL: "gs://b/k.vcf.gz", SizeBytes: 50},
			TbiFile:  File{URL: "gs://b/k.vcf.gz.tbi", SizeBytes: 5},
			SampleID: "SAMPLE1",
		},
		FastqPair{
			ID:          "A3",
			ForwardFile: File{URL: "r2://acct/r1.fastq.gz", SizeBytes: 1},
			ReverseFile: File{URL: "r2://acct/r2.fastq.gz", SizeBytes: 2},
		},
	}

	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out Artifacts
	require.NoError(t, json.Unmarshal(b, &out))

	require.Len(t, out, 3)
	assert.Equal(t, in[0], out[0])
	assert.Equal(t, in[1], out[1])
	assert.Equal(t, in[2], out[2])

	vcf, ok := out[1].(Vcf)
	require.True(t, ok)
	assert.Equal(t, "SAMPLE1", vcf.SampleID)
}

func TestArtifacts_UnmarshalRejectsPartialArtifact(t *testing.T) {
	// A bam envelope without its index must not decode; partial artifacts
	// are never allowed to travel through the snapshot.
	raw := `[{"kind":"bam","id":"A1","files":{"bam":{"url":"s3://b/k.bam","size":1}}}]`
	var out Artifacts
	err := json.Unmarshal([]byte(raw), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing "bai" file`)
}

func TestArtifacts_UnmarshalRejectsUnknownKind(t *testing.T) {
	raw := `[{"kind":"sam","id":"A1","files":{}}]`
	var out Artifacts
	require.Error(t, json.Unmarshal([]byte(raw), &out))
}

func TestArtifactKind_IsReadData(t *testing.T) {
	assert.True(t, KindBcl.IsReadData())
	assert.True(t, KindFastqPair.IsReadData())
	assert.True(t, KindBam.IsReadData())
	assert.True(t, KindCram.IsReadData())
	assert.False(t, KindVcf.IsReadData())
}

func TestParseObjectURL(t *testing.T) {
	proto, bucket, key, err := ParseObjectURL("s3://my-bucket/path/to/file.bam")
	require.NoError(t, err)
	assert.Equal(t, "s3", proto)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "path/to/file.bam", key)

	for _, bad := range []string{"", "no-scheme/path", "s3://bucket-only", "s3:///key"} {
		_, _, _, err := ParseObjectURL(bad)
		assert.True(t, errors.Is(err, common.ErrMalformedObjectURL), "url %q", bad)
	}
}
