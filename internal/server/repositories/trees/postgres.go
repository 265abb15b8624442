package trees

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/seqshare/seqshare/internal/common"
	"github.com/seqshare/seqshare/internal/dbx"
	"github.com/seqshare/seqshare/internal/server/models"
)

// PostgresRepository implements tree loading over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// specimenTreeQuery is the one parameterized tree query of the pipeline.
// LEFT JOINs keep artifactless specimens in the result; the authorization
// filter decides what that means. The ORDER BY keeps manifest diffs stable
// across regenerations.
const specimenTreeQuery = `
	SELECT d.uri, d.external_identifiers,
	       c.id, c.external_identifiers,
	       p.id, p.external_identifiers,
	       s.id, s.external_identifiers,
	       a.id, a.kind, a.sample_id,
	       f.role, f.url, f.size_bytes, f.checksums
	FROM release_selected_specimens rss
	JOIN specimens s ON s.id = rss.specimen_id
	JOIN patients p ON p.id = s.patient_id
	JOIN cases c ON c.id = p.case_id
	JOIN datasets d ON d.id = c.dataset_id
	LEFT JOIN artifacts a ON a.specimen_id = s.id
	LEFT JOIN artifact_files f ON f.artifact_id = a.id
	WHERE rss.release_key = $1
	ORDER BY d.uri, c.id, s.id, a.id, f.role
`

// LoadSpecimenTree implements Repository.
func (r *PostgresRepository) LoadSpecimenTree(ctx context.Context, releaseKey string) ([]models.Specimen, error) {

	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(1) FROM releases WHERE release_key=$1`, releaseKey).Scan(&n); err != nil {
		return nil, fmt.Errorf("failed to look up release: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrReleaseNotFound, releaseKey)
	}

	rows, err := r.db.QueryContext(ctx, specimenTreeQuery, releaseKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load specimen tree: %w", err)
	}
	defer rows.Close()

	asm := newTreeAssembler()
	for rows.Next() {
		var (
			datasetURI          string
			datasetIdentifiers  []byte
			caseID              string
			caseIdentifiers     []byte
			patientID           string
			patientIdentifiers  []byte
			specimenID          string
			specimenIdentifiers []byte

			artifactID sql.NullString
			kind       sql.NullString
			sampleID   sql.NullString
			role       sql.NullString
			url        sql.NullString
			sizeBytes  sql.NullInt64
			checksums  []byte
		)

		if err := rows.Scan(
			&datasetURI, &datasetIdentifiers,
			&caseID, &caseIdentifiers,
			&patientID, &patientIdentifiers,
			&specimenID, &specimenIdentifiers,
			&artifactID, &kind, &sampleID,
			&role, &url, &sizeBytes, &checksums,
		); err != nil {
			return nil, err
		}

		spec, err := asm.specimen(specimenID, specimenIdentifiers,
			caseID, caseIdentifiers,
			patientID, patientIdentifiers,
			datasetURI, datasetIdentifiers)
		if err != nil {
			return nil, err
		}

		if !artifactID.Valid || !role.Valid {
			continue // specimen without artifacts / files
		}

		f := models.File{
			URL:       url.String,
			SizeBytes: uint64(sizeBytes.Int64),
		}
		if len(checksums) > 0 {
			if err := json.Unmarshal(checksums, &f.Checksums); err != nil {
				return nil, fmt.Errorf("artifact %s: bad checksums: %w", artifactID.String, err)
			}
		}
		asm.addFile(spec, artifactID.String, models.ArtifactKind(kind.String), sampleID.String, role.String, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return asm.build()
}

// treeAssembler folds the flat join rows back into ordered specimens with
// typed artifacts.
type treeAssembler struct {
	order     []string
	specimens map[string]*specimenBuilder
}

type specimenBuilder struct {
	specimen      models.Specimen
	artifactOrder []string
	artifacts     map[string]*artifactBuilder
}

type artifactBuilder struct {
	id       string
	kind     models.ArtifactKind
	sampleID string
	files    map[string]models.File
}

func newTreeAssembler() *treeAssembler {
	return &treeAssembler{specimens: make(map[string]*specimenBuilder)}
}

func (a *treeAssembler) specimen(
	specimenID string, specimenIdentifiers []byte,
	caseID string, caseIdentifiers []byte,
	patientID string, patientIdentifiers []byte,
	datasetURI string, datasetIdentifiers []byte,
) (*specimenBuilder, error) {
	if sb, ok := a.specimens[specimenID]; ok {
		return sb, nil
	}

	spec := models.Specimen{
		ID:      specimenID,
		Case:    models.Case{ID: caseID},
		Patient: models.Patient{ID: patientID},
		Dataset: models.Dataset{URI: datasetURI},
	}

	for _, tgt := range []struct {
		raw []byte
		dst *[]models.Identifier
	}{
		{specimenIdentifiers, &spec.ExternalIdentifiers},
		{caseIdentifiers, &spec.Case.ExternalIdentifiers},
		{patientIdentifiers, &spec.Patient.ExternalIdentifiers},
		{datasetIdentifiers, &spec.Dataset.ExternalIdentifiers},
	} {
		if len(tgt.raw) > 0 {
			if err := json.Unmarshal(tgt.raw, tgt.dst); err != nil {
				return nil, fmt.Errorf("specimen %s: bad identifiers: %w", specimenID, err)
			}
		}
	}

	sb := &specimenBuilder{specimen: spec, artifacts: make(map[string]*artifactBuilder)}
	a.specimens[specimenID] = sb
	a.order = append(a.order, specimenID)
	return sb, nil
}

func (a *treeAssembler) addFile(sb *specimenBuilder, artifactID string, kind models.ArtifactKind, sampleID, role string, f models.File) {
	ab, ok := sb.artifacts[artifactID]
	if !ok {
		ab = &artifactBuilder{id: artifactID, kind: kind, sampleID: sampleID, files: make(map[string]models.File)}
		sb.artifacts[artifactID] = ab
		sb.artifactOrder = append(sb.artifactOrder, artifactID)
	}
	ab.files[role] = f
}

func (a *treeAssembler) build() ([]models.Specimen, error) {
	result := make([]models.Specimen, 0, len(a.order))
	for _, specimenID := range a.order {
		sb := a.specimens[specimenID]
		for _, artifactID := range sb.artifactOrder {
			ab := sb.artifacts[artifactID]
			artifact, err := models.NewArtifact(ab.kind, ab.id, ab.sampleID, ab.files)
			if err != nil {
				return nil, err
			}
			sb.specimen.Artifacts = append(sb.specimen.Artifacts, artifact)
		}
		result = append(result, sb.specimen)
	}
	return result, nil
}
