package stocksync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/domain/shared"
	"github.com/stocksync/backend/internal/domain/stock"
	"github.com/stocksync/backend/internal/infrastructure/cache"
	"github.com/stocksync/backend/internal/infrastructure/spreadsheet"
)

// bannerRows is the fixed title region both source spreadsheets reserve
// before their header row.
const bannerRows = 2

// Service-level errors
var (
	// ErrSyncInProgress is returned when a sync already holds the site lock
	ErrSyncInProgress = shared.NewDomainError("SYNC_IN_PROGRESS", "A sync is already running for this site")
	// ErrRunNotFound is returned when the referenced pipeline run is unknown
	ErrRunNotFound = shared.NewDomainError("RUN_NOT_FOUND", "Pipeline run not found or expired")
	// ErrPreviewStale is returned when a preview was cancelled, expired or
	// superseded by a newer preview for the same site. Stale diffs must
	// never be reapplied; the caller restarts from a fresh preview.
	ErrPreviewStale = shared.NewDomainError("PREVIEW_STALE", "Preview is no longer valid, generate a new one")
)

// ClientFactory builds a catalog client bound to one site. Platform
// dispatch happens inside the factory, once per client.
type ClientFactory func(site *integration.Website) (integration.CatalogPlatform, error)

// previewEntry holds a pending preview awaiting confirmation or cancel
type previewEntry struct {
	preview   *stock.PreviewResult
	runID     uuid.UUID
	expiresAt time.Time
}

// runEntry holds a pipeline run until its cycle ends or its TTL lapses
type runEntry struct {
	run       *stock.StockRun
	expiresAt time.Time
}

// Service drives the sync lifecycle for all sites:
//
//	idle -> previewing -> preview-ready -> (cancel -> idle | confirm -> updating -> idle)
//
// There is no retry state; after a failure the caller re-enters from idle
// with a fresh preview, because remote state may have moved. Runs and
// previews are kept in memory only: they are scoped to one cycle and
// discarded when it ends. Runs additionally carry a TTL so an upload whose
// cycle is abandoned never stays resident for the life of the process.
type Service struct {
	pipeline   *Pipeline
	reconciler *Reconciler
	executor   *Executor
	steps      stock.WorkflowStepRepository
	websites   integration.WebsiteRepository
	history    stock.SyncHistoryRepository
	locks      cache.SyncLock
	newClient  ClientFactory
	previewTTL time.Duration
	runTTL     time.Duration
	lockTTL    time.Duration
	logger     *zap.Logger

	mu       sync.Mutex
	runs     map[uuid.UUID]*runEntry
	previews map[uuid.UUID]*previewEntry
	latest   map[uuid.UUID]uuid.UUID // siteID -> most recent preview ID
}

// ServiceConfig groups the tunables the sync service reads from app config
type ServiceConfig struct {
	BatchSize  int
	PreviewTTL time.Duration
	RunTTL     time.Duration
	LockTTL    time.Duration
}

// NewService wires the sync lifecycle service
func NewService(
	cfg ServiceConfig,
	steps stock.WorkflowStepRepository,
	websites integration.WebsiteRepository,
	history stock.SyncHistoryRepository,
	locks cache.SyncLock,
	newClient ClientFactory,
	logger *zap.Logger,
) *Service {
	if cfg.PreviewTTL <= 0 {
		cfg.PreviewTTL = 15 * time.Minute
	}
	if cfg.RunTTL <= 0 {
		cfg.RunTTL = 30 * time.Minute
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		pipeline:   NewPipeline(logger),
		reconciler: NewReconciler(cfg.BatchSize, logger),
		executor:   NewExecutor(history, logger),
		steps:      steps,
		websites:   websites,
		history:    history,
		locks:      locks,
		newClient:  newClient,
		previewTTL: cfg.PreviewTTL,
		runTTL:     cfg.RunTTL,
		lockTTL:    cfg.LockTTL,
		logger:     logger,
		runs:       make(map[uuid.UUID]*runEntry),
		previews:   make(map[uuid.UUID]*previewEntry),
		latest:     make(map[uuid.UUID]uuid.UUID),
	}
}

// ProcessFiles ingests the two spreadsheets and runs the transform
// pipeline, producing a run that owns the canonical records. Ingestion and
// transform failures abort with nothing partially applied.
func (s *Service) ProcessFiles(ctx context.Context, stockReport, itemDirectory []byte, onStep ProgressFunc) (*stock.StockRun, error) {
	if onStep == nil {
		onStep = func(int, string) {}
	}

	stockReader, err := spreadsheet.NewReader(stockReport, spreadsheet.WithBannerRows(bannerRows))
	if err != nil {
		return nil, fmt.Errorf("stock report: %w", err)
	}
	stockRows, err := stockReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("stock report: %w", err)
	}

	dirReader, err := spreadsheet.NewReader(itemDirectory, spreadsheet.WithBannerRows(bannerRows))
	if err != nil {
		return nil, fmt.Errorf("item directory: %w", err)
	}
	dirRows, err := dirReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("item directory: %w", err)
	}

	onStep(ProgressReadFiles, "readFiles")

	steps, err := s.steps.Steps(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow configuration: %w", err)
	}

	records, err := s.pipeline.Run(stockRows, dirRows, steps, onStep)
	if err != nil {
		return nil, err
	}

	onStep(ProgressPreparePreview, "preparePreview")

	run := stock.NewStockRun(records)
	s.mu.Lock()
	// Sweep abandoned runs so uploads that never reach a confirm cannot
	// accumulate for the life of the process.
	now := time.Now()
	for id, entry := range s.runs {
		if now.After(entry.expiresAt) {
			delete(s.runs, id)
		}
	}
	s.runs[run.ID] = &runEntry{run: run, expiresAt: now.Add(s.runTTL)}
	s.mu.Unlock()

	return run, nil
}

// Run returns a previously produced pipeline run. Expired runs are evicted
// on read and reported as unknown.
func (s *Service) Run(runID uuid.UUID) (*stock.StockRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.runs, runID)
		return nil, ErrRunNotFound
	}
	return entry.run, nil
}

// GeneratePreview reconciles a run's records against the site's remote
/// catalog. Read-only: no writes happen until the preview is confirmed. A
// new preview supersedes any earlier pending preview for the same site.
func (s *Service) GeneratePreview(ctx context.Context, siteID, runID uuid.UUID) (*stock.PreviewResult, error) {
	run, err := s.Run(runID)
	if err != nil {
		return nil, err
	}

	site, err := s.websites.FindByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if err := site.Validate(); err != nil {
		return nil, err
	}

	client, err := s.newClient(site)
	if err != nil {
		return nil, err
	}

	preview, err := s.reconciler.GeneratePreview(ctx, client, site, run.Records)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if prev, ok := s.latest[siteID]; ok {
		delete(s.previews, prev)
	}
	s.previews[preview.ID] = &previewEntry{
		preview:   preview,
		runID:     runID,
		expiresAt: time.Now().Add(s.previewTTL),
	}
	s.latest[siteID] = preview.ID
	s.mu.Unlock()

	return preview, nil
}

// ConfirmSync applies a pending preview. The preview must be the site's
// latest and unexpired; otherwise the caller gets ErrPreviewStale and must
// restart the cycle. The site lock is held for the duration of execution.
func (s *Service) ConfirmSync(ctx context.Context, siteID, previewID uuid.UUID) (*stock.SyncSummary, []stock.SyncDetail, error) {
	entry, err := s.takePreview(siteID, previewID)
	if err != nil {
		return nil, nil, err
	}

	site, err := s.websites.FindByID(ctx, siteID)
	if err != nil {
		return nil, nil, err
	}

	ok, err := s.locks.Acquire(ctx, siteID, s.lockTTL)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrSyncInProgress
	}
	defer func() {
		if rerr := s.locks.Release(context.WithoutCancel(ctx), siteID); rerr != nil {
			s.logger.Warn("failed to release sync lock", zap.String("site_id", siteID.String()), zap.Error(rerr))
		}
	}()

	client, err := s.newClient(site)
	if err != nil {
		return nil, nil, err
	}

	summary, details, err := s.executor.Execute(ctx, client, site, entry.preview)

	// The run's records are scoped to this cycle; discard them now that
	// the sync finished (successfully or not).
	s.mu.Lock()
	delete(s.runs, entry.runID)
	s.mu.Unlock()

	return summary, details, err
}

// takePreview validates and consumes a pending preview. Consuming is
// destructive: confirm and cancel both end the preview-ready state.
func (s *Service) takePreview(siteID, previewID uuid.UUID) (*previewEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.previews[previewID]
	if !ok || entry.preview.SiteID != siteID {
		return nil, ErrPreviewStale
	}
	if s.latest[siteID] != previewID || time.Now().After(entry.expiresAt) {
		delete(s.previews, previewID)
		return nil, ErrPreviewStale
	}
	delete(s.previews, previewID)
	delete(s.latest, siteID)
	return entry, nil
}

// CancelPreview discards a pending preview and its run, returning the site
// to idle. A new cycle starts from a fresh upload.
func (s *Service) CancelPreview(siteID, previewID uuid.UUID) error {
	entry, err := s.takePreview(siteID, previewID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.runs, entry.runID)
	s.mu.Unlock()
	return nil
}

// LatestSummary returns the most recent sync summary for a site user.
func (s *Service) LatestSummary(ctx context.Context, siteUser string) (*stock.SyncSummary, error) {
	return s.history.LatestSummary(ctx, siteUser)
}

// SummaryDetails returns the audit rows of a recorded sync.
func (s *Service) SummaryDetails(ctx context.Context, summaryID uuid.UUID) ([]stock.SyncDetail, error) {
	return s.history.Details(ctx, summaryID)
}

// WorkflowSteps returns the current step configuration.
func (s *Service) WorkflowSteps(ctx context.Context) ([]stock.WorkflowStep, error) {
	return s.steps.Steps(ctx)
}
