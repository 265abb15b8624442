package manifests

import (
	"github.com/seqshare/seqshare/internal/server/models"
)

// Builders shared by the package tests.

func bamOn(id, protocol, bucket, stem string) models.Bam {
	return models.Bam{
		ID:      id,
		BamFile: models.File{URL: protocol + "://" + bucket + "/" + stem + ".bam", SizeBytes: 1000, Checksums: []models.Checksum{{Type: "MD5", Value: "md5-" + id}}},
		BaiFile: models.File{URL: protocol + "://" + bucket + "/" + stem + ".bam.bai", SizeBytes: 10},
	}
}

func vcfOn(id, protocol, bucket, stem, sampleID string) models.Vcf {
	return models.Vcf{
		ID:       id,
		VcfFile:  models.File{URL: protocol + "://" + bucket + "/" + stem + ".vcf.gz", SizeBytes: 500},
		TbiFile:  models.File{URL: protocol + "://" + bucket + "/" + stem + ".vcf.gz.tbi", SizeBytes: 5},
		SampleID: sampleID,
	}
}

func specimen(id, caseID, patientID string, artifacts ...models.Artifact) models.Specimen {
	return models.Specimen{
		ID:        id,
		Case:      models.Case{ID: caseID},
		Patient:   models.Patient{ID: patientID},
		Dataset:   models.Dataset{URI: "urn:ds:test"},
		Artifacts: models.Artifacts(artifacts),
	}
}

func testManifest(specimens ...models.Specimen) *models.MasterManifest {
	return &models.MasterManifest{
		ReleaseKey:   "R001",
		SpecimenList: specimens,
		CaseTree:     buildCaseTree(specimens),
	}
}

func allOn() models.ReleasePermissions {
	return models.ReleasePermissions{
		IsAllowedReadData:    true,
		IsAllowedVariantData: true,
		IsAllowedS3Data:      true,
		IsAllowedGSData:      true,
		IsAllowedR2Data:      true,
	}
}
