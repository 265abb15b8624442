package manifests

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/seqshare/seqshare/internal/common"
	"github.com/seqshare/seqshare/internal/server/models"
	"github.com/seqshare/seqshare/internal/server/signers"
)

// FlatRow is one (specimen, artifact file) pair of the filtered manifest,
// the row shape of the TSV handed to researchers.
type FlatRow struct {
	CaseID              string
	PatientID           string
	SpecimenID          string
	ArtifactID          string
	ObjectType          string
	ObjectStoreURL      string
	ObjectStoreProtocol string
	ObjectStoreBucket   string
	ObjectStoreKey      string
	ObjectSize          uint64
	MD5                 string

	// ObjectAccessURL is the presigned, time-limited URL; set only when the
	// caller asked for access decoration.
	ObjectAccessURL string
}

// ToFlatRows emits one row per retained artifact file. A stored URL that
// does not parse aborts the whole transformation.
func ToFlatRows(m *models.MasterManifest) ([]FlatRow, error) {
	var rows []FlatRow
	for _, s := range m.SpecimenList {
		for _, a := range s.Artifacts {
			for _, rf := range a.Files() {
				protocol, bucket, key, err := models.ParseObjectURL(rf.File.URL)
				if err != nil {
					return nil, err
				}
				rows = append(rows, FlatRow{
					CaseID:              s.Case.ID,
					PatientID:           s.Patient.ID,
					SpecimenID:          s.ID,
					ArtifactID:          a.ArtifactID(),
					ObjectType:          rf.Role,
					ObjectStoreURL:      rf.File.URL,
					ObjectStoreProtocol: protocol,
					ObjectStoreBucket:   bucket,
					ObjectStoreKey:      key,
					ObjectSize:          rf.File.SizeBytes,
					MD5:                 rf.File.MD5(),
				})
			}
		}
	}
	return rows, nil
}

// DecorateWithAccessURLs presigns every row in parallel, resolving the
// signer per row by protocol. All presign calls for the manifest are issued
// as one fan-out and joined before returning; the first failure cancels the
// rest. Rows keep their slice positions, but callers that need a
// deterministic file should still sort before writing.
func DecorateWithAccessURLs(ctx context.Context, registry *signers.Registry, releaseKey, auditID string, rows []FlatRow) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := range rows {
		g.Go(func() error {
			signer, err := registry.For(rows[i].ObjectStoreProtocol)
			if err != nil {
				return err
			}
			url, err := signer.Presign(ctx, releaseKey, rows[i].ObjectStoreBucket, rows[i].ObjectStoreKey, auditID)
			if err != nil {
				return fmt.Errorf("presign %s: %w", rows[i].ObjectStoreURL, err)
			}
			rows[i].ObjectAccessURL = url
			return nil
		})
	}
	return g.Wait()
}

// TSV column names callers may request.
const (
	ColCaseID              = "caseId"
	ColPatientID           = "patientId"
	ColSpecimenID          = "specimenId"
	ColArtifactID          = "artifactId"
	ColObjectType          = "objectType"
	ColObjectStoreURL      = "objectStoreUrl"
	ColObjectStoreProtocol = "objectStoreProtocol"
	ColObjectStoreBucket   = "objectStoreBucket"
	ColObjectStoreKey      = "objectStoreKey"
	ColObjectSize          = "objectSize"
	ColMD5                 = "md5"
	ColObjectAccessURL     = "objectAccessUrl"
)

func (r FlatRow) field(column string) (string, error) {
	switch column {
	case ColCaseID:
		return r.CaseID, nil
	case ColPatientID:
		return r.PatientID, nil
	case ColSpecimenID:
		return r.SpecimenID, nil
	case ColArtifactID:
		return r.ArtifactID, nil
	case ColObjectType:
		return r.ObjectType, nil
	case ColObjectStoreURL:
		return r.ObjectStoreURL, nil
	case ColObjectStoreProtocol:
		return r.ObjectStoreProtocol, nil
	case ColObjectStoreBucket:
		return r.ObjectStoreBucket, nil
	case ColObjectStoreKey:
		return r.ObjectStoreKey, nil
	case ColObjectSize:
		return strconv.FormatUint(r.ObjectSize, 10), nil
	case ColMD5:
		return r.MD5, nil
	case ColObjectAccessURL:
		return r.ObjectAccessURL, nil
	default:
		return "", fmt.Errorf("%w: unknown TSV column %q", common.ErrGenerationUsage, column)
	}
}

// WriteTSV writes the rows as tab-separated values with a header line,
// restricted to the caller-specified columns.
func WriteTSV(w io.Writer, rows []FlatRow, columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("%w: no TSV columns requested", common.ErrGenerationUsage)
	}

	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(columns); err != nil {
		return err
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			v, err := row.field(col)
			if err != nil {
				return err
			}
			record[i] = v
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
