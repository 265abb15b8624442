package releases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqshare/seqshare/internal/common"
)

func TestGetByKey_DecodesPermissions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"release_key",
		"is_allowed_read_data", "is_allowed_variant_data",
		"is_allowed_s3_data", "is_allowed_gs_data", "is_allowed_r2_data",
		"htsget_restrictions", "created_at",
	}).AddRow("R001", true, true, true, false, false, `["CongenitalHeartDefect"]`, created)

	mock.ExpectQuery("FROM releases").WithArgs("R001").WillReturnRows(rows)

	repo := NewPostgresRepository(db)
	release, err := repo.GetByKey(context.Background(), "R001")
	require.NoError(t, err)

	assert.Equal(t, "R001", release.Key)
	assert.True(t, release.Permissions.IsAllowedReadData)
	assert.True(t, release.Permissions.IsAllowedS3Data)
	assert.False(t, release.Permissions.IsAllowedGSData)
	assert.Equal(t, []string{"CongenitalHeartDefect"}, release.Permissions.HtsgetRestrictions)
	assert.Equal(t, created, release.CreatedAt)
}

func TestGetByKey_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM releases").
		WithArgs("R404").
		WillReturnRows(sqlmock.NewRows([]string{"release_key"}))

	repo := NewPostgresRepository(db)
	_, err = repo.GetByKey(context.Background(), "R404")
	assert.True(t, errors.Is(err, common.ErrReleaseNotFound))
}

func TestManifestSnapshot_SaveAndGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	manifest := []byte(`{"releaseKey":"R001"}`)

	mock.ExpectExec("INSERT INTO release_manifests").
		WithArgs("R001", "etag-1", manifest).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery("FROM release_manifests").
		WithArgs("R001").
		WillReturnRows(sqlmock.NewRows([]string{"etag", "manifest"}).AddRow("etag-1", manifest))

	repo := NewPostgresRepository(db)
	require.NoError(t, repo.SaveManifestSnapshot(context.Background(), "R001", "etag-1", manifest))

	etag, body, err := repo.GetManifestSnapshot(context.Background(), "R001")
	require.NoError(t, err)
	assert.Equal(t, "etag-1", etag)
	assert.Equal(t, manifest, body)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetManifestSnapshot_NeverActivated(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM release_manifests").
		WithArgs("R001").
		WillReturnRows(sqlmock.NewRows([]string{"etag", "manifest"}))

	repo := NewPostgresRepository(db)
	_, _, err = repo.GetManifestSnapshot(context.Background(), "R001")
	assert.True(t, errors.Is(err, common.ErrNoManifestSnapshot))
}
