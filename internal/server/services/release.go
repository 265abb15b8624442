// Package services holds the application operations composed from the
// repositories, manifest transformers and cloud clients.
package services

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/seqshare/seqshare/internal/logging"
	sc "github.com/seqshare/seqshare/internal/server/config"
	"github.com/seqshare/seqshare/internal/server/manifests"
	"github.com/seqshare/seqshare/internal/server/models"
	"github.com/seqshare/seqshare/internal/server/objectstore"
	"github.com/seqshare/seqshare/internal/server/repositories/repomanager"
	"github.com/seqshare/seqshare/internal/server/sharers/accesspoint"
	"github.com/seqshare/seqshare/internal/server/signers"
)

// aliasResolver is the live-stack resolution dependency, split out so tests
// can substitute it.
type aliasResolver interface {
	Resolve(ctx context.Context, rootStackName string) (map[string]string, error)
}

// ReleaseService implements the release manifest pipeline: activation,
// manifest retrieval and the downstream sharing formats.
type ReleaseService struct {
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger

	signers  *signers.Registry
	docstore accesspoint.DocumentPutter
	resolver aliasResolver
}

func NewReleaseService(repomanager repomanager.RepositoryManager, config *sc.Config, logger logging.Logger) *ReleaseService {
	registry := signers.NewRegistry()
	registry.Register(models.ProtocolS3,
		signers.NewS3Signer(config.S3Region, config.S3AccessKey, config.S3SecretKey, config.S3BaseEndpoint, config.PresignExpiry))
	registry.Register(models.ProtocolGS,
		signers.NewGSSigner(config.GSAccessKey, config.GSSecretKey, config.PresignExpiry))
	registry.Register(models.ProtocolR2,
		signers.NewR2Signer(config.R2AccountID, config.R2AccessKey, config.R2SecretKey, config.PresignExpiry))

	return &ReleaseService{
		repomanager: repomanager,
		config:      config,
		logger:      logger,
		signers:     registry,
		docstore:    objectstore.NewClient(config.S3Region, config.S3AccessKey, config.S3SecretKey, config.S3BaseEndpoint),
		resolver:    accesspoint.NewResolver(config.S3Region, config.InstallAccountID),
	}
}

// ActivationResult reports what an activation captured.
type ActivationResult struct {
	Etag      string
	Specimens int
	Artifacts int
}

// Activate loads the release's specimen tree, applies the permission
// filter, validates the result and stores the manifest snapshot under a
// fresh entity tag. Re-activating overwrites the previous snapshot.
func (s *ReleaseService) Activate(ctx context.Context, releaseKey string, skipValidation bool) (*ActivationResult, error) {
	release, err := s.repomanager.Releases().GetByKey(ctx, releaseKey)
	if err != nil {
		return nil, err
	}

	m, err := manifests.BuildMasterManifest(ctx, s.repomanager.Trees(), releaseKey, release.Permissions, skipValidation)
	if err != nil {
		return nil, err
	}

	snapshot, err := manifests.EncodeSnapshot(m)
	if err != nil {
		return nil, err
	}

	etag := uuid.New().String()
	if err := s.repomanager.Releases().SaveManifestSnapshot(ctx, releaseKey, etag, snapshot); err != nil {
		return nil, err
	}

	result := &ActivationResult{
		Etag:      etag,
		Specimens: len(m.SpecimenList),
		Artifacts: m.CountArtifacts(),
	}
	s.logger.Info(ctx, "release activated",
		"releaseKey", releaseKey, "etag", etag,
		"specimens", result.Specimens, "artifacts", result.Artifacts)
	return result, nil
}

// MasterManifest returns the stored manifest snapshot and its entity tag.
func (s *ReleaseService) MasterManifest(ctx context.Context, releaseKey string) (*models.MasterManifest, string, error) {
	etag, snapshot, err := s.repomanager.Releases().GetManifestSnapshot(ctx, releaseKey)
	if err != nil {
		return nil, "", err
	}
	m, err := manifests.DecodeSnapshot(snapshot)
	if err != nil {
		return nil, "", err
	}
	return m, etag, nil
}

// CreateTSV writes the flat manifest as tab-separated text with the given
// columns, presigning an access URL for every file when the objectAccessUrl
// column is requested. It returns the audit id stamped into the signed
// URLs.
func (s *ReleaseService) CreateTSV(ctx context.Context, w io.Writer, releaseKey string, columns []string, presign bool) (string, error) {
	m, _, err := s.MasterManifest(ctx, releaseKey)
	if err != nil {
		return "", err
	}

	rows, err := manifests.ToFlatRows(m)
	if err != nil {
		return "", err
	}

	auditID := uuid.New().String()
	if presign {
		if err := manifests.DecorateWithAccessURLs(ctx, s.signers, releaseKey, auditID, rows); err != nil {
			return "", err
		}
	}

	if err := manifests.WriteTSV(w, rows, columns); err != nil {
		return "", err
	}

	s.logger.Info(ctx, "manifest exported as TSV",
		"releaseKey", releaseKey, "rows", len(rows), "auditId", auditID)
	return auditID, nil
}

// CreateHtsgetManifest renders the htsget routing manifest for the release,
// honoring its restriction labels.
func (s *ReleaseService) CreateHtsgetManifest(ctx context.Context, releaseKey string) (*manifests.HtsgetManifest, error) {
	release, err := s.repomanager.Releases().GetByKey(ctx, releaseKey)
	if err != nil {
		return nil, err
	}

	m, _, err := s.MasterManifest(ctx, releaseKey)
	if err != nil {
		return nil, err
	}

	regions, err := manifests.LoadRestrictionRegions(s.config.HtsgetRegionsFile)
	if err != nil {
		return nil, err
	}

	return manifests.ToHtsgetManifest(m, s.config.HtsgetBaseURL, regions, release.Permissions.HtsgetRestrictions)
}

// CreateObjectList returns the deduplicated bucket/key listing for the
// requested protocols.
func (s *ReleaseService) CreateObjectList(ctx context.Context, releaseKey string, protocols []string) ([]manifests.ObjectEntry, error) {
	m, _, err := s.MasterManifest(ctx, releaseKey)
	if err != nil {
		return nil, err
	}
	return manifests.ToObjectEntries(m, protocols)
}

// InstallAccessPoint generates the access-point template documents for the
// release's bucket-store objects and saves them to the template bucket. The
// returned generation names the root document an operator installs.
func (s *ReleaseService) InstallAccessPoint(ctx context.Context, releaseKey, accountID, vpcID string) (*accesspoint.Generation, error) {
	objects, err := s.CreateObjectList(ctx, releaseKey, []string{models.ProtocolS3})
	if err != nil {
		return nil, err
	}

	gen, err := accesspoint.Generate(objects, accesspoint.Options{
		ReleaseKey:         releaseKey,
		AccountID:          accountID,
		VpcID:              vpcID,
		TemplateBucket:     s.config.TemplateBucket,
		MaxObjectsPerGroup: s.config.MaxObjectsPerAccessPointGroup,
		MaxGroupsPerStack:  s.config.MaxGroupsPerStack,
	})
	if err != nil {
		return nil, err
	}

	if err := accesspoint.SaveDocuments(ctx, s.docstore, s.config.TemplateBucket, gen); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "access point templates saved",
		"releaseKey", releaseKey, "stackId", gen.StackID,
		"groups", len(gen.Groups()), "rootDocument", gen.RootDocumentKey)
	return gen, nil
}

// ResolvedObject pairs a shared object's original URL with its
// access-point alias URL.
type ResolvedObject struct {
	ObjectStoreURL string
	AccessURL      string
}

// ResolveAccessPoint rewrites the release's bucket-store object list
// through the installed stack's access-point aliases. Every object must be
// covered by the stack; a stale stack fails resolution.
func (s *ReleaseService) ResolveAccessPoint(ctx context.Context, releaseKey, rootStackName string) ([]ResolvedObject, error) {
	objects, err := s.CreateObjectList(ctx, releaseKey, []string{models.ProtocolS3})
	if err != nil {
		return nil, err
	}

	aliases, err := s.resolver.Resolve(ctx, rootStackName)
	if err != nil {
		return nil, err
	}

	resolved := make([]ResolvedObject, 0, len(objects))
	for _, o := range objects {
		url := o.URL()
		alias, ok := aliases[url]
		if !ok {
			return nil, fmt.Errorf("object %s is not covered by stack %s", url, rootStackName)
		}
		resolved = append(resolved, ResolvedObject{ObjectStoreURL: url, AccessURL: alias})
	}
	return resolved, nil
}
