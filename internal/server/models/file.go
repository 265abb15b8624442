// Package models defines the data shapes of the release-manifest pipeline:
// the specimen hierarchy, typed artifacts and their files, release
// permissions, and the master manifest snapshotted at release activation.
package models

import (
	"fmt"
	"regexp"

	"github.com/seqshare/seqshare/internal/common"
)

// Object store protocols a file URL may use.
const (
	ProtocolS3 = "s3"
	ProtocolGS = "gs"
	ProtocolR2 = "r2"
)

// Checksum is one recorded digest of a stored file.
type Checksum struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// File is one stored object belonging to an artifact. Immutable once
// recorded.
type File struct {
	// URL in the form scheme://bucket/key.
	URL       string     `json:"url"`
	SizeBytes uint64     `json:"size"`
	Checksums []Checksum `json:"checksums,omitempty"`
}

// MD5 returns the file's md5 checksum, or "" if none was recorded.
func (f File) MD5() string {
	for _, c := range f.Checksums {
		if c.Type == "MD5" || c.Type == "md5" {
			return c.Value
		}
	}
	return ""
}

var objectURLPattern = regexp.MustCompile(`^([^:]+)://([^/]+)/(.+)$`)

// ParseObjectURL splits a stored object URL into protocol, bucket and key
// using a strict scheme://bucket/key pattern. A URL that does not match is
// a data-integrity fault, not a permission issue, and yields
// common.ErrMalformedObjectURL.
func ParseObjectURL(url string) (protocol, bucket, key string, err error) {
	m := objectURLPattern.FindStringSubmatch(url)
	if m == nil {
		return "", "", "", fmt.Errorf("%w: %q", common.ErrMalformedObjectURL, url)
	}
	return m[1], m[2], m[3], nil
}
