package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kerbaras/companion/pkg/config"
	"github.com/kerbaras/companion/pkg/data"
	"github.com/kerbaras/companion/pkg/integrations"
	"github.com/kerbaras/companion/pkg/manifest"
	"github.com/kerbaras/companion/pkg/sources"
	"go.uber.org/zap"
)

// Repository is the local store the controller works against.
type Repository interface {
	ManifestStore
	SettingsStore
	ClearManifest() error
	ListTables() ([]data.TableInfo, error)
}

// StatisticsSettingsAPI is the statistics service, which also stores member
// settings.
type StatisticsSettingsAPI interface {
	StatisticsAPI
	SettingsAPI
}

// Controller wires configuration, clients and storage together for the
// CLI and the TUI.
type Controller struct {
	config    *config.Config
	logger    *zap.Logger
	repo      Repository
	closer    func() error
	bootstrap *Bootstrap
	sync      *SettingsSync
	exporter  integrations.Exporter

	mu       sync.Mutex
	manifest *manifest.Manifest
}

func NewController(cfg *config.Config, logger *zap.Logger) (*Controller, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	repo, err := data.NewDuckDBRepository(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	bungie := sources.NewBungie(cfg.BungieURL, cfg.APIKey, cfg.Timeout)
	voluspa := sources.NewVoluspa(cfg.VoluspaURL, cfg.Timeout)

	c := newController(cfg, logger, repo, bungie, voluspa)
	c.closer = repo.Close
	return c, nil
}

func newController(cfg *config.Config, logger *zap.Logger, repo Repository, api ManifestAPI, remote StatisticsSettingsAPI) *Controller {
	return &Controller{
		config:    cfg,
		logger:    logger,
		repo:      repo,
		bootstrap: NewBootstrap(api, remote, repo, manifest.NewOverrides(logger), logger),
		sync:      NewSettingsSync(remote, repo, cfg.BnetMembershipID, cfg.MembershipID, logger),
		exporter:  integrations.NewEPubBuilder("."),
	}
}

func (c *Controller) Config() *config.Config {
	return c.config
}

func (c *Controller) Bootstrap() *Bootstrap {
	return c.bootstrap
}

func (c *Controller) SettingsSync() *SettingsSync {
	return c.sync
}

// Manifest acquires the manifest on first use and returns the same handle
// afterwards. Failures are not cached.
func (c *Controller) Manifest(ctx context.Context) (*manifest.Manifest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.manifest != nil {
		return c.manifest, nil
	}
	m, err := c.bootstrap.Acquire(ctx, c.config.Language, !c.config.Offline)
	if err != nil {
		return nil, err
	}
	c.manifest = m
	return m, nil
}

// Tables lists the cached manifest tables.
func (c *Controller) Tables() ([]data.TableInfo, error) {
	return c.repo.ListTables()
}

// ClearCache drops the cached manifest; the next run downloads it again.
func (c *Controller) ClearCache() error {
	c.mu.Lock()
	c.manifest = nil
	c.mu.Unlock()
	return c.repo.ClearManifest()
}

// Settings returns the local settings (nil when none) and the sync state.
func (c *Controller) Settings() (*data.Settings, data.SyncState, error) {
	state, err := c.repo.GetSyncState()
	if err != nil {
		return nil, data.SyncState{}, err
	}
	if c.config.MembershipID == "" {
		return nil, state, nil
	}
	settings, err := c.repo.GetSettings(c.config.MembershipID)
	return settings, state, err
}

// ExportLore writes the lore entries for hashes to an EPub in outputDir.
// A hash may name a lore entry or an item that carries one.
func (c *Controller) ExportLore(ctx context.Context, title, outputDir string, hashes []string) (string, error) {
	if len(hashes) == 0 {
		return "", fmt.Errorf("no lore hashes given")
	}

	m, err := c.Manifest(ctx)
	if err != nil {
		return "", err
	}

	entries := make([]integrations.LoreEntry, 0, len(hashes))
	for _, hash := range hashes {
		lore, err := lookupLore(m, hash)
		if err != nil {
			return "", err
		}
		entries = append(entries, integrations.LoreEntry{
			Hash:     lore.Key,
			Title:    lore.DisplayProperties.Name,
			Subtitle: lore.Subtitle,
			Body:     lore.DisplayProperties.Description,
		})
	}

	exporter := c.exporter
	if outputDir != "" {
		exporter = integrations.NewEPubBuilder(outputDir)
	}
	return exporter.Export(title, m.Language(), entries)
}

func lookupLore(m *manifest.Manifest, hash string) (manifest.LoreDefinition, error) {
	lore, err := m.Lore(hash)
	if err == nil {
		return lore, nil
	}
	if !errors.Is(err, manifest.ErrDefinitionNotFound) {
		return lore, err
	}

	item, itemErr := m.Item(hash)
	if itemErr != nil || item.LoreHash == "" {
		return lore, fmt.Errorf("lore %s: %w", hash, err)
	}
	return m.Lore(string(item.LoreHash))
}

// Close releases the bootstrap and the database.
func (c *Controller) Close() error {
	c.bootstrap.Close()
	if c.closer != nil {
		return c.closer()
	}
	return nil
}
