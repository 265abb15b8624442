package models

import "time"

// ReleasePermissions are the per-release sharing flags: which data kinds
// (reads vs variants) and which object store locations may be exposed, plus
// the htsget restriction labels in force.
type ReleasePermissions struct {
	IsAllowedReadData    bool `json:"isAllowedReadData"`
	IsAllowedVariantData bool `json:"isAllowedVariantData"`
	IsAllowedS3Data      bool `json:"isAllowedS3Data"`
	IsAllowedGSData      bool `json:"isAllowedGSData"`
	IsAllowedR2Data      bool `json:"isAllowedR2Data"`

	// HtsgetRestrictions names the genomic-region allow-lists applied to
	// htsget serving (e.g. a disease-specific region set). Labels map to
	// region tuples through configuration.
	HtsgetRestrictions []string `json:"htsgetRestrictions,omitempty"`
}

// LocationAllowed reports whether the given object store protocol is an
// enabled sharing location.
func (p ReleasePermissions) LocationAllowed(protocol string) bool {
	switch protocol {
	case ProtocolS3:
		return p.IsAllowedS3Data
	case ProtocolGS:
		return p.IsAllowedGSData
	case ProtocolR2:
		return p.IsAllowedR2Data
	default:
		return false
	}
}

// AnyLocationAllowed reports whether at least one location flag is set.
func (p ReleasePermissions) AnyLocationAllowed() bool {
	return p.IsAllowedS3Data || p.IsAllowedGSData || p.IsAllowedR2Data
}

// Release is the governance record granting access to a specimen subset.
type Release struct {
	Key         string
	Permissions ReleasePermissions
	CreatedAt   time.Time
}
