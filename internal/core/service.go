package core

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	blobcore "limscore/internal/infra/blob/core"
	"limscore/internal/infra/registry"
	"limscore/pkg/domain"
)

// Service orchestrates the packaging, ingestion, and review flows over the
// injected record client, processed-set store, and archive blob store. A
// Service runs its flows single-threaded; concurrency safety concerns live in
// the injected stores, not here.
type Service struct {
	registry registry.Client
	seen     domain.SeenStore
	archives blobcore.Store
	tracker  *PublicationTracker
	logger   Logger
	metrics  MetricsRecorder
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithLogger injects a structured logger. The default discards everything.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics injects a metrics recorder. The default discards everything.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithClock overrides the service clock (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a Service over the given collaborators.
func NewService(reg registry.Client, seen domain.SeenStore, archives blobcore.Store, opts ...Option) *Service {
	s := &Service{
		registry: reg,
		seen:     seen,
		archives: archives,
		tracker:  NewPublicationTracker(),
		logger:   noopLogger{},
		metrics:  noopMetrics{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tracker exposes the publication state tracker for status reporting.
func (s *Service) Tracker() *PublicationTracker { return s.tracker }

// PackageRun executes the full packaging flow against one run archive: the
// archive's files are grouped into bundles, matched against the entity
// listing, aggregated into per-project manifests, and each manifest is built
// and written to the archive store under projects/<project-id>/<name>. Item
// failures are collected into the report; only inputs that make the whole run
// meaningless (an unreadable archive, an unavailable entity listing) are
// returned as errors.
func (s *Service) PackageRun(ctx context.Context, archive []byte) (domain.RunReport, error) {
	start := s.now()
	report := domain.RunReport{}

	files, err := extractArchive(archive)
	if err != nil {
		s.metrics.IncResult("package_run", "error")
		return report, fmt.Errorf("read run archive: %w", err)
	}

	entities, err := s.registry.ListEntities(ctx, "")
	if err != nil {
		s.metrics.IncResult("package_run", "error")
		return report, fmt.Errorf("list entities: %w", err)
	}

	bundles := GroupFiles(files)
	s.logger.Info("grouped run files",
		"files", len(files), "bundles", bundles.Len(), "extensions", bundles.ExtensionCounts())

	outcome := MatchEntities(entities, bundles)
	ReportMatches(&report, outcome)

	manifests, drops := AggregateByProject(outcome.Results)
	for _, d := range drops {
		if d.Reason == DropNoProject {
			report.Warn("no-project", "entity "+d.Entity.Name+" has no resolved project, excluding from packaging", d.Entity.ID)
		}
	}

	for _, manifest := range manifests.Manifests() {
		if err := s.publishManifest(ctx, manifest, &report); err != nil {
			report.Fail(fmt.Sprintf("project %s: %v", manifest.Project.Name, err))
		}
	}

	report.Success = len(report.Errors) == 0
	s.observe("package_run", start, report.Success)
	return report, nil
}

// PackageRunFromRegistry fetches the run archive referenced by handle from
// the record system and packages it.
func (s *Service) PackageRunFromRegistry(ctx context.Context, handle string) (domain.RunReport, error) {
	data, err := s.registry.FetchArchive(ctx, handle)
	if err != nil {
		s.metrics.IncResult("package_run", "error")
		return domain.RunReport{}, fmt.Errorf("fetch archive %s: %w", handle, err)
	}
	return s.PackageRun(ctx, data)
}

// publishManifest builds one project archive, stores it create-only, and
// advances the publication tracker. An archive already present in the store
// counts as existing, not as a failure, and stages the tracker has already
// passed are skipped so a re-run over an unchanged input set succeeds.
func (s *Service) publishManifest(ctx context.Context, manifest *ProjectManifest, report *domain.RunReport) error {
	key := ArchiveKey(*manifest)
	data, err := BuildArchive(*manifest)
	if err != nil {
		return fmt.Errorf("build archive: %w", err)
	}
	if err := s.advanceTo(key, StateCreated); err != nil {
		return err
	}

	opts := blobcore.PutOptions{
		ContentType: "application/zip",
		Metadata: map[string]string{
			"project": manifest.Project.Name,
			"files":   fmt.Sprintf("%d", manifest.FileCount()),
		},
	}
	info, err := s.archives.Put(ctx, key, bytes.NewReader(data), opts)
	switch {
	case errors.Is(err, blobcore.ErrExists):
		report.Counts.Existing++
		report.Log("archive-exists", "archive "+key+" already stored, skipping upload", "")
	case err != nil:
		return fmt.Errorf("store archive %s: %w", key, err)
	default:
		report.Counts.Created++
		s.logger.Info("stored project archive",
			"key", info.Key, "bytes", info.Size, "project", manifest.Project.Name)
	}
	if err := s.advanceTo(key, StateUploaded); err != nil {
		return err
	}

	url, err := s.archives.PresignURL(ctx, key, blobcore.SignedURLOptions{})
	switch {
	case errors.Is(err, blobcore.ErrUnsupported):
		// Backend cannot sign URLs; the archive stays at uploaded.
		return nil
	case err != nil:
		return fmt.Errorf("presign archive %s: %w", key, err)
	}
	if err := s.advanceTo(key, StatePublished); err != nil {
		return err
	}
	s.logger.Info("published project archive", "key", key, "url", url, "project", manifest.Project.Name)
	return s.advanceTo(key, StateNotified)
}

// advanceTo moves the manifest to state unless that stage was already passed
// in an earlier run.
func (s *Service) advanceTo(key string, state ManifestState) error {
	if s.tracker.Completed(key, state) {
		return nil
	}
	return s.tracker.Advance(key, state)
}

// ArchiveKey is the deterministic blob key for a manifest's archive.
func ArchiveKey(manifest ProjectManifest) string {
	return "projects/" + manifest.Project.ID + "/" + manifest.ArchiveName()
}

// IngestRun processes one structured run record: every declared consumable
// lot is resolved or created against the record system, and the run's
// container entities receive their index assignments. Per-consumable failures
// are collected; the run report is returned alongside the assignment result.
func (s *Service) IngestRun(ctx context.Context, run domain.RunMetadata) (domain.RunReport, error) {
	start := s.now()
	report := domain.RunReport{}

	for _, consumable := range run.Consumables {
		lot, created, err := s.resolveConsumableLot(ctx, consumable)
		if err != nil {
			if domain.IsNotFound(err) {
				report.Warn("unknown-kit", "no reagent kit named "+consumable.Name+", skipping lot", "")
				continue
			}
			report.Fail(fmt.Sprintf("consumable %s lot %s: %v", consumable.Name, consumable.LotNumber, err))
			continue
		}
		if created {
			report.Counts.Created++
			s.logger.Info("created reagent lot",
				"kit", lot.Kit.Name, "lot", lot.LotNumber, "expiry", lot.Expiry.Format("2006-01-02"))
		} else {
			report.Counts.Existing++
			s.logger.Debug("reagent lot already present", "kit", lot.Kit.Name, "lot", lot.LotNumber)
		}
	}

	assignment, err := s.AssignRunIndexes(ctx, run)
	if err != nil {
		s.metrics.IncResult("ingest_run", "error")
		return report, err
	}
	report.Findings = append(report.Findings, assignment.Findings...)
	report.Counts.Processed += len(assignment.Assignments)
	for _, a := range assignment.Assignments {
		s.logger.Info("assigned index",
			"sample", a.Entity.Name, "location", a.Location, "slot", a.Slot, "code", a.Code)
	}

	report.Success = len(report.Errors) == 0
	s.observe("ingest_run", start, report.Success)
	return report, nil
}

// AssignRunIndexes lists the run's container entities and computes their
// deterministic index assignments.
func (s *Service) AssignRunIndexes(ctx context.Context, run domain.RunMetadata) (AssignmentResult, error) {
	entities, err := s.registry.ListEntities(ctx, run.RunName)
	if err != nil {
		return AssignmentResult{}, fmt.Errorf("list run entities: %w", err)
	}
	return AssignIndexes(run, entities), nil
}

// resolveConsumableLot normalizes the consumable's expiry code, resolves its
// kit by name, and resolves or creates the lot record.
func (s *Service) resolveConsumableLot(ctx context.Context, c domain.Consumable) (domain.ReagentLotRecord, bool, error) {
	expiry, err := NormalizeExpiry(c.CompactExpiry)
	if err != nil {
		return domain.ReagentLotRecord{}, false, err
	}
	kit, err := s.registry.LookupKit(ctx, c.Name)
	if err != nil {
		return domain.ReagentLotRecord{}, false, err
	}

	lookup := func(ctx context.Context) (domain.ReagentLotRecord, bool, error) {
		lot, err := s.registry.LookupLot(ctx, kit.ID, c.LotNumber)
		if domain.IsNotFound(err) {
			return domain.ReagentLotRecord{}, false, nil
		}
		if err != nil {
			return domain.ReagentLotRecord{}, false, err
		}
		return lot, true, nil
	}
	create := func(ctx context.Context) (domain.ReagentLotRecord, error) {
		return s.registry.CreateLot(ctx, domain.ReagentLotRecord{
			Kit:       kit,
			LotNumber: c.LotNumber,
			Expiry:    expiry,
			Status:    domain.LotStatusActive,
		})
	}
	relist := func(ctx context.Context) (domain.ReagentLotRecord, bool, error) {
		lots, err := s.registry.ListLots(ctx, kit.ID)
		if err != nil {
			return domain.ReagentLotRecord{}, false, err
		}
		for _, lot := range lots {
			if lot.LotNumber == c.LotNumber {
				return lot, true, nil
			}
		}
		return domain.ReagentLotRecord{}, false, nil
	}
	return ResolveOrCreate(ctx, lookup, create, relist)
}

func (s *Service) observe(op string, start time.Time, success bool) {
	s.metrics.ObserveDuration(op, s.now().Sub(start))
	status := "ok"
	if !success {
		status = "error"
	}
	s.metrics.IncResult(op, status)
}

// extractArchive reads every regular file entry out of a zip payload.
// Directory entries keep their trailing slash so grouping can exclude them.
func extractArchive(data []byte) ([]domain.SpecimenFile, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	files := make([]domain.SpecimenFile, 0, len(r.File))
	for _, entry := range r.File {
		if entry.FileInfo().IsDir() {
			files = append(files, domain.SpecimenFile{Name: entry.Name})
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("open entry %s: %w", entry.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read entry %s: %w", entry.Name, err)
		}
		files = append(files, domain.SpecimenFile{Name: entry.Name, Data: content})
	}
	return files, nil
}
