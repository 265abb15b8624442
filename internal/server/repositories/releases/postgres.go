package releases

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/seqshare/seqshare/internal/common"
	"github.com/seqshare/seqshare/internal/dbx"
	"github.com/seqshare/seqshare/internal/server/models"
)

// PostgresRepository implements release storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByKey(ctx context.Context, releaseKey string) (*models.Release, error) {
	query := `
		SELECT release_key,
		       is_allowed_read_data, is_allowed_variant_data,
		       is_allowed_s3_data, is_allowed_gs_data, is_allowed_r2_data,
		       htsget_restrictions, created_at
		FROM releases
		WHERE release_key=$1
	`

	release := &models.Release{}
	var restrictions []byte
	err := r.db.QueryRowContext(ctx, query, releaseKey).Scan(
		&release.Key,
		&release.Permissions.IsAllowedReadData,
		&release.Permissions.IsAllowedVariantData,
		&release.Permissions.IsAllowedS3Data,
		&release.Permissions.IsAllowedGSData,
		&release.Permissions.IsAllowedR2Data,
		&restrictions,
		&release.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", common.ErrReleaseNotFound, releaseKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select release: %w", err)
	}

	if len(restrictions) > 0 {
		if err := json.Unmarshal(restrictions, &release.Permissions.HtsgetRestrictions); err != nil {
			return nil, fmt.Errorf("release %s: bad htsget restrictions: %w", releaseKey, err)
		}
	}

	return release, nil
}

func (r *PostgresRepository) SaveManifestSnapshot(ctx context.Context, releaseKey, etag string, manifest []byte) error {
	query := `
		INSERT INTO release_manifests (release_key, etag, manifest)
		VALUES ($1, $2, $3)
		ON CONFLICT (release_key)
		DO UPDATE SET
			etag = EXCLUDED.etag,
			manifest = EXCLUDED.manifest,
			created_at = now()
	`

	res, err := r.db.ExecContext(ctx, query, releaseKey, etag, manifest)
	if err != nil {
		return fmt.Errorf("failed to save manifest snapshot: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

func (r *PostgresRepository) GetManifestSnapshot(ctx context.Context, releaseKey string) (string, []byte, error) {
	query := `SELECT etag, manifest FROM release_manifests WHERE release_key=$1`

	var etag string
	var manifest []byte
	err := r.db.QueryRowContext(ctx, query, releaseKey).Scan(&etag, &manifest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, fmt.Errorf("%w: %s", common.ErrNoManifestSnapshot, releaseKey)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to select manifest snapshot: %w", err)
	}

	return etag, manifest, nil
}
