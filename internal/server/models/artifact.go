package models

import (
	"encoding/json"
	"fmt"
)

// ArtifactKind discriminates the artifact union.
type ArtifactKind string

const (
	KindBcl       ArtifactKind = "bcl"
	KindFastqPair ArtifactKind = "fastq-pair"
	KindBam       ArtifactKind = "bam"
	KindCram      ArtifactKind = "cram"
	KindVcf       ArtifactKind = "vcf"
)

// IsReadData reports whether the kind carries sequencing reads.
// Everything that is not read data is variant data (Vcf).
func (k ArtifactKind) IsReadData() bool {
	switch k {
	case KindBcl, KindFastqPair, KindBam, KindCram:
		return true
	default:
		return false
	}
}

// RoleFile pairs a file with its role inside the artifact ("bam", "bai", ...).
type RoleFile struct {
	Role string
	File File
}

// Artifact is one typed sequencing/analysis output: a bundle of one or two
// stored files that is only ever shared as a whole. An artifact is either
// fully present (all constituent files) or entirely absent after filtering;
// partial artifacts must never travel downstream.
type Artifact interface {
	ArtifactID() string
	Kind() ArtifactKind
	// Files returns every constituent file with its role. Order is fixed
	// per kind (primary file first, index second).
	Files() []RoleFile
}

// Bcl is a raw basecall artifact (single file).
type Bcl struct {
	ID      string
	BclFile File
}

func (a Bcl) ArtifactID() string { return a.ID }
func (a Bcl) Kind() ArtifactKind { return KindBcl }
func (a Bcl) Files() []RoleFile  { return []RoleFile{{"bcl", a.BclFile}} }

// FastqPair is a forward/reverse read pair.
type FastqPair struct {
	ID          string
	ForwardFile File
	ReverseFile File
}

func (a FastqPair) ArtifactID() string { return a.ID }
func (a FastqPair) Kind() ArtifactKind { return KindFastqPair }
func (a FastqPair) Files() []RoleFile {
	return []RoleFile{{"r1", a.ForwardFile}, {"r2", a.ReverseFile}}
}

// Bam is an aligned-reads artifact plus its index.
type Bam struct {
	ID      string
	BamFile File
	BaiFile File
}

func (a Bam) ArtifactID() string { return a.ID }
func (a Bam) Kind() ArtifactKind { return KindBam }
func (a Bam) Files() []RoleFile {
	return []RoleFile{{"bam", a.BamFile}, {"bai", a.BaiFile}}
}

// Cram is a reference-compressed reads artifact plus its index.
type Cram struct {
	ID       string
	CramFile File
	CraiFile File
}

func (a Cram) ArtifactID() string { return a.ID }
func (a Cram) Kind() ArtifactKind { return KindCram }
func (a Cram) Files() []RoleFile {
	return []RoleFile{{"cram", a.CramFile}, {"crai", a.CraiFile}}
}

// Vcf is a variant-call artifact plus its index. SampleID names the sample
// column htsget should serve for this specimen.
type Vcf struct {
	ID       string
	VcfFile  File
	TbiFile  File
	SampleID string
}

func (a Vcf) ArtifactID() string { return a.ID }
func (a Vcf) Kind() ArtifactKind { return KindVcf }
func (a Vcf) Files() []RoleFile {
	return []RoleFile{{"vcf", a.VcfFile}, {"tbi", a.TbiFile}}
}

// Artifacts is a JSON-codable artifact list. The wire shape is an envelope
// with a kind discriminator and a role-keyed file map, which is the contract
// of the persisted manifest snapshot.
type Artifacts []Artifact

type artifactEnvelope struct {
	Kind     ArtifactKind    `json:"kind"`
	ID       string          `json:"id"`
	SampleID string          `json:"sampleId,omitempty"`
	Files    map[string]File `json:"files"`
}

func (aa Artifacts) MarshalJSON() ([]byte, error) {
	envelopes := make([]artifactEnvelope, 0, len(aa))
	for _, a := range aa {
		env := artifactEnvelope{
			Kind:  a.Kind(),
			ID:    a.ArtifactID(),
			Files: make(map[string]File, 2),
		}
		if vcf, ok := a.(Vcf); ok {
			env.SampleID = vcf.SampleID
		}
		for _, rf := range a.Files() {
			env.Files[rf.Role] = rf.File
		}
		envelopes = append(envelopes, env)
	}
	return json.Marshal(envelopes)
}

func (aa *Artifacts) UnmarshalJSON(b []byte) error {
	var envelopes []artifactEnvelope
	if err := json.Unmarshal(b, &envelopes); err != nil {
		return err
	}

	result := make(Artifacts, 0, len(envelopes))
	for _, env := range envelopes {
		a, err := artifactFromEnvelope(env)
		if err != nil {
			return err
		}
		result = append(result, a)
	}
	*aa = result
	return nil
}

func artifactFromEnvelope(env artifactEnvelope) (Artifact, error) {
	return NewArtifact(env.Kind, env.ID, env.SampleID, env.Files)
}

// NewArtifact assembles a typed artifact from a role-keyed file map. It
// fails when a constituent file is missing, so a partial artifact can never
// be constructed.
func NewArtifact(kind ArtifactKind, id, sampleID string, files map[string]File) (Artifact, error) {
	file := func(role string) (File, error) {
		f, ok := files[role]
		if !ok {
			return File{}, fmt.Errorf("artifact %s (%s): missing %q file", id, kind, role)
		}
		return f, nil
	}

	switch kind {
	case KindBcl:
		bcl, err := file("bcl")
		if err != nil {
			return nil, err
		}
		return Bcl{ID: id, BclFile: bcl}, nil
	case KindFastqPair:
		r1, err := file("r1")
		if err != nil {
			return nil, err
		}
		r2, err := file("r2")
		if err != nil {
			return nil, err
		}
		return FastqPair{ID: id, ForwardFile: r1, ReverseFile: r2}, nil
	case KindBam:
		bam, err := file("bam")
		if err != nil {
			return nil, err
		}
		bai, err := file("bai")
		if err != nil {
			return nil, err
		}
		return Bam{ID: id, BamFile: bam, BaiFile: bai}, nil
	case KindCram:
		cram, err := file("cram")
		if err != nil {
			return nil, err
		}
		crai, err := file("crai")
		if err != nil {
			return nil, err
		}
		return Cram{ID: id, CramFile: cram, CraiFile: crai}, nil
	case KindVcf:
		vcf, err := file("vcf")
		if err != nil {
			return nil, err
		}
		tbi, err := file("tbi")
		if err != nil {
			return nil, err
		}
		return Vcf{ID: id, VcfFile: vcf, TbiFile: tbi, SampleID: sampleID}, nil
	default:
		return nil, fmt.Errorf("artifact %s: unknown kind %q", id, kind)
	}
}
