package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/kerbaras/companion/pkg/manifest"
	"github.com/kerbaras/companion/pkg/sources"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// profilesSystem is the service system whose outage means maintenance.
const profilesSystem = "D2Profiles"

// ManifestAPI is the part of the game API the bootstrap needs.
type ManifestAPI interface {
	GetManifestIndex(ctx context.Context) (*sources.Envelope[manifest.Index], error)
	GetCommonSettings(ctx context.Context) (*sources.Envelope[manifest.CommonSettings], error)
	DownloadTable(ctx context.Context, path string) (manifest.Table, error)
	GetHistoricalStatsDefinition(ctx context.Context, locale string) (*sources.Envelope[manifest.Table], error)
}

// StatisticsAPI serves the community statistics attached to the manifest.
type StatisticsAPI interface {
	GetStatistics(ctx context.Context) (manifest.Statistics, error)
}

// ManifestStore is the local manifest cache.
type ManifestStore interface {
	LoadManifest() (*manifest.Stored, error)
	ReplaceManifest(stored *manifest.Stored) error
}

// State is a step of manifest acquisition.
type State string

const (
	StateIdle     State = "idle"
	StateOffline  State = "offline"
	StateChecking State = "checking"
	StateFetching State = "fetching"
	StateReady    State = "ready"
	StateFailed   State = "failed"
)

// Status describes the bootstrap at one point in time.
type Status struct {
	State      State
	Kind       Kind
	Code       string
	Detail     string
	Table      manifest.TableName // last table downloaded
	Downloaded int
	Total      int
}

// Bootstrap acquires the manifest at startup: it checks the cached copy
// against the remote index, downloads a fresh table set when needed and
// merges locale overrides on top.
type Bootstrap struct {
	api        ManifestAPI
	statistics StatisticsAPI
	store      ManifestStore
	overrides  *manifest.Overrides
	logger     *zap.Logger

	mu         sync.Mutex
	status     Status
	statusChan chan Status
	closed     bool
}

func NewBootstrap(api ManifestAPI, statistics StatisticsAPI, store ManifestStore, overrides *manifest.Overrides, logger *zap.Logger) *Bootstrap {
	if logger == nil {
		logger = zap.NewNop()
	}
	if overrides == nil {
		overrides = manifest.NewOverrides(logger)
	}
	return &Bootstrap{
		api:        api,
		statistics: statistics,
		store:      store,
		overrides:  overrides,
		logger:     logger,
		status:     Status{State: StateIdle},
		statusChan: make(chan Status, 100),
	}
}

// Updates returns the channel status changes are published on. Updates are
// dropped when nobody reads them.
func (b *Bootstrap) Updates() <-chan Status {
	return b.statusChan
}

// Status returns the current status.
func (b *Bootstrap) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// Close closes the updates channel.
func (b *Bootstrap) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.statusChan)
	}
}

func (b *Bootstrap) setStatus(status Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
	if b.closed {
		return
	}
	select {
	case b.statusChan <- status:
	default:
		// Channel full, skip this update
	}
}

func (b *Bootstrap) fail(err error) {
	b.setStatus(Status{
		State:  StateFailed,
		Kind:   KindOf(err),
		Code:   CodeOf(err),
		Detail: err.Error(),
	})
}

type startupResponses struct {
	stored      *manifest.Stored
	index       *sources.Envelope[manifest.Index]
	indexErr    error
	settings    *sources.Envelope[manifest.CommonSettings]
	settingsErr error
	statistics  manifest.Statistics
}

// Acquire returns the merged manifest for language. When online is false it
// fails straight away with a network error without issuing any request. On
// failure no manifest is returned and the error carries a Kind.
func (b *Bootstrap) Acquire(ctx context.Context, language string, online bool) (m *manifest.Manifest, err error) {
	lang := manifest.ResolveLanguage(language)
	log := b.logger.With(zap.String("run_id", uuid.NewString()), zap.String("language", lang))

	defer func() {
		if r := recover(); r != nil {
			m = nil
			err = setupError("manifest setup panicked", fmt.Errorf("%v", r))
		}
		if err != nil {
			b.fail(err)
			log.Warn("manifest acquisition failed",
				zap.Stringer("kind", KindOf(err)),
				zap.String("code", CodeOf(err)),
				zap.Error(err))
		}
	}()

	if !online {
		b.setStatus(Status{State: StateOffline})
		return nil, newKindError(KindNetwork, CodeOffline, "network unreachable", nil)
	}

	b.setStatus(Status{State: StateChecking})
	resp, err := b.startup(ctx, log)
	if err != nil {
		return nil, err
	}

	if resp.indexErr != nil || resp.index == nil {
		return nil, networkError("manifest index unavailable", resp.indexErr)
	}
	if resp.settingsErr != nil || resp.settings == nil {
		return nil, networkError("service settings unavailable", resp.settingsErr)
	}
	if inMaintenance(resp.index, resp.settings) {
		return nil, maintenanceError("game services are in maintenance", nil)
	}
	if !resp.index.OK() {
		return nil, networkError("manifest index unavailable", resp.index.Err())
	}

	version, ok := resp.index.Response.VersionFor(lang)
	if !ok {
		return nil, integrityError(fmt.Sprintf("manifest index has no content for %q", lang), nil)
	}

	stored := resp.stored
	if stored == nil || stored.Version != version {
		log.Info("manifest out of date",
			zap.String("version", version),
			zap.Bool("cached", stored != nil))

		stored, err = b.download(ctx, resp.index.Response, lang, version, log)
		if err != nil {
			return nil, err
		}
		if err := b.store.ReplaceManifest(stored); err != nil {
			log.Warn("failed to cache manifest", zap.Error(err))
		}
	} else {
		log.Info("using cached manifest", zap.String("version", version))
	}

	settings := resp.settings.Response
	m = manifest.Assemble(stored, manifest.AssembleOptions{
		Language:   lang,
		Settings:   &settings,
		Statistics: resp.statistics,
		Overrides:  b.overrides,
		Logger:     log,
	})

	b.setStatus(Status{State: StateReady})
	log.Info("manifest ready", zap.Int("tables", len(m.Tables())))
	return m, nil
}

// startup issues the four independent startup reads concurrently and waits
// for all of them.
func (b *Bootstrap) startup(ctx context.Context, log *zap.Logger) (startupResponses, error) {
	var resp startupResponses
	var g errgroup.Group

	g.Go(recovered(func() error {
		stored, err := b.store.LoadManifest()
		if err != nil {
			log.Warn("failed to read cached manifest", zap.Error(err))
			return nil
		}
		resp.stored = stored
		return nil
	}))
	g.Go(recovered(func() error {
		resp.index, resp.indexErr = b.api.GetManifestIndex(ctx)
		return nil
	}))
	g.Go(recovered(func() error {
		resp.settings, resp.settingsErr = b.api.GetCommonSettings(ctx)
		return nil
	}))
	g.Go(recovered(func() error {
		stats, err := b.statistics.GetStatistics(ctx)
		if err != nil {
			log.Warn("failed to fetch statistics", zap.Error(err))
			stats = manifest.Statistics{}
		}
		resp.statistics = stats
		return nil
	}))

	err := g.Wait()
	return resp, err
}

// recovered turns a panic in fn into a setup error returned from the group.
func recovered(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = setupError("manifest setup panicked", fmt.Errorf("%v", r))
			}
		}()
		return fn()
	}
}

// inMaintenance reports whether either response signals that the game
// services are switched off.
func inMaintenance(index *sources.Envelope[manifest.Index], settings *sources.Envelope[manifest.CommonSettings]) bool {
	if settings.ErrorCode == sources.ErrorCodeSystemDisabled || index.ErrorCode == sources.ErrorCodeSystemDisabled {
		return true
	}
	if settings.OK() {
		return !settings.Response.Systems[profilesSystem].Enabled
	}
	return false
}

// download fetches every required table plus the historical stats table.
// The first failure cancels the rest.
func (b *Bootstrap) download(ctx context.Context, index manifest.Index, lang, version string, log *zap.Logger) (*manifest.Stored, error) {
	paths := index.PathsFor(lang)
	for _, name := range manifest.RequiredTables {
		if paths[name] == "" {
			return nil, integrityError(fmt.Sprintf("manifest index has no path for %s", name), nil)
		}
	}

	total := len(manifest.RequiredTables) + 1
	b.setStatus(Status{State: StateFetching, Total: total})

	var (
		mu         sync.Mutex
		downloaded atomic.Int32
		tables     = make(manifest.Tables, total)
	)
	store := func(name manifest.TableName, table manifest.Table) {
		mu.Lock()
		tables[name] = table
		mu.Unlock()
		b.setStatus(Status{
			State:      StateFetching,
			Table:      name,
			Downloaded: int(downloaded.Add(1)),
			Total:      total,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range manifest.RequiredTables {
		g.Go(recovered(func() error {
			table, err := b.api.DownloadTable(gctx, paths[name])
			if err != nil {
				return fmt.Errorf("download %s: %w", name, err)
			}
			store(name, table)
			return nil
		}))
	}
	g.Go(recovered(func() error {
		env, err := b.api.GetHistoricalStatsDefinition(gctx, lang)
		if err != nil {
			return fmt.Errorf("download %s: %w", manifest.TableHistoricalStats, err)
		}
		if !env.OK() {
			return integrityError("historical stats definition unavailable", env.Err())
		}
		store(manifest.TableHistoricalStats, env.Response)
		return nil
	}))

	if err := g.Wait(); err != nil {
		return nil, classify("manifest download failed", err)
	}

	log.Info("manifest downloaded", zap.Int("tables", len(tables)))
	return &manifest.Stored{Version: version, Tables: tables}, nil
}
