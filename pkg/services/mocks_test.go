package services

import (
	"context"
	"fmt"
	"sync"
	"testing/fstest"
	"time"

	"github.com/kerbaras/companion/pkg/data"
	"github.com/kerbaras/companion/pkg/manifest"
	"github.com/kerbaras/companion/pkg/sources"
)

// Mock manifest API
type mockManifestAPI struct {
	getIndexFunc      func(ctx context.Context) (*sources.Envelope[manifest.Index], error)
	getSettingsFunc   func(ctx context.Context) (*sources.Envelope[manifest.CommonSettings], error)
	downloadTableFunc func(ctx context.Context, path string) (manifest.Table, error)
	historicalFunc    func(ctx context.Context, locale string) (*sources.Envelope[manifest.Table], error)

	mu        sync.Mutex
	downloads map[string]int
	calls     int
}

func (m *mockManifestAPI) record(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if path != "" {
		if m.downloads == nil {
			m.downloads = map[string]int{}
		}
		m.downloads[path]++
	}
}

func (m *mockManifestAPI) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockManifestAPI) downloadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.downloads {
		total += n
	}
	return total
}

func (m *mockManifestAPI) GetManifestIndex(ctx context.Context) (*sources.Envelope[manifest.Index], error) {
	m.record("")
	if m.getIndexFunc != nil {
		return m.getIndexFunc(ctx)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockManifestAPI) GetCommonSettings(ctx context.Context) (*sources.Envelope[manifest.CommonSettings], error) {
	m.record("")
	if m.getSettingsFunc != nil {
		return m.getSettingsFunc(ctx)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockManifestAPI) DownloadTable(ctx context.Context, path string) (manifest.Table, error) {
	m.record(path)
	if m.downloadTableFunc != nil {
		return m.downloadTableFunc(ctx, path)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockManifestAPI) GetHistoricalStatsDefinition(ctx context.Context, locale string) (*sources.Envelope[manifest.Table], error) {
	m.record("")
	if m.historicalFunc != nil {
		return m.historicalFunc(ctx, locale)
	}
	return nil, fmt.Errorf("not implemented")
}

// Mock statistics service
type mockStatistics struct {
	getStatisticsFunc func(ctx context.Context) (manifest.Statistics, error)
}

func (m *mockStatistics) GetStatistics(ctx context.Context) (manifest.Statistics, error) {
	if m.getStatisticsFunc != nil {
		return m.getStatisticsFunc(ctx)
	}
	return manifest.Statistics{}, nil
}

// Mock manifest store
type mockStore struct {
	loadFunc    func() (*manifest.Stored, error)
	replaceFunc func(stored *manifest.Stored) error

	mu       sync.Mutex
	replaced []*manifest.Stored
}

func (m *mockStore) LoadManifest() (*manifest.Stored, error) {
	if m.loadFunc != nil {
		return m.loadFunc()
	}
	return nil, nil
}

func (m *mockStore) ReplaceManifest(stored *manifest.Stored) error {
	m.mu.Lock()
	m.replaced = append(m.replaced, stored)
	m.mu.Unlock()
	if m.replaceFunc != nil {
		return m.replaceFunc(stored)
	}
	return nil
}

// Mock settings service
type mockSettingsAPI struct {
	getFunc  func(ctx context.Context, bnetID string) (*sources.Envelope[sources.MemberSettings], error)
	postFunc func(ctx context.Context, update sources.MemberSettingsUpdate) (*sources.Envelope[sources.MemberSettingsUpdated], error)

	mu    sync.Mutex
	posts []sources.MemberSettingsUpdate
}

func (m *mockSettingsAPI) GetMemberSettings(ctx context.Context, bnetID string) (*sources.Envelope[sources.MemberSettings], error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, bnetID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockSettingsAPI) PostMemberSettings(ctx context.Context, update sources.MemberSettingsUpdate) (*sources.Envelope[sources.MemberSettingsUpdated], error) {
	m.mu.Lock()
	m.posts = append(m.posts, update)
	m.mu.Unlock()
	if m.postFunc != nil {
		return m.postFunc(ctx, update)
	}
	return nil, fmt.Errorf("not implemented")
}

// In-memory settings store
type memorySettingsStore struct {
	settings map[string]*data.Settings
	state    *data.SyncState
}

func newMemorySettingsStore() *memorySettingsStore {
	return &memorySettingsStore{settings: map[string]*data.Settings{}}
}

func (s *memorySettingsStore) GetSettings(membershipID string) (*data.Settings, error) {
	settings, ok := s.settings[membershipID]
	if !ok {
		return nil, nil
	}
	copied := *settings
	return &copied, nil
}

func (s *memorySettingsStore) SaveSettings(settings *data.Settings) error {
	copied := *settings
	s.settings[settings.MembershipID] = &copied
	return nil
}

func (s *memorySettingsStore) GetSyncState() (data.SyncState, error) {
	if s.state == nil {
		return data.DefaultSyncState(), nil
	}
	return *s.state, nil
}

func (s *memorySettingsStore) SaveSyncState(state data.SyncState) error {
	s.state = &state
	return nil
}

// Fixtures

func tablePath(lang string, name manifest.TableName) string {
	return fmt.Sprintf("/common/destiny2_content/json/%s/%s.json", lang, name)
}

func indexEnvelope(version string, langs ...string) *sources.Envelope[manifest.Index] {
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	index := manifest.Index{
		Version:                        "94521.21.01",
		JSONWorldContentPaths:          map[string]string{},
		JSONWorldComponentContentPaths: map[string]map[string]string{},
	}
	for _, lang := range langs {
		index.JSONWorldContentPaths[lang] = version + "/" + lang
		paths := map[string]string{}
		for _, name := range manifest.RequiredTables {
			paths[string(name)] = tablePath(lang, name)
		}
		index.JSONWorldComponentContentPaths[lang] = paths
	}
	return &sources.Envelope[manifest.Index]{Response: index, ErrorCode: sources.ErrorCodeSuccess, ErrorStatus: "Success"}
}

func settingsEnvelope(profilesEnabled bool) *sources.Envelope[manifest.CommonSettings] {
	return &sources.Envelope[manifest.CommonSettings]{
		ErrorCode:   sources.ErrorCodeSuccess,
		ErrorStatus: "Success",
		Response: manifest.CommonSettings{
			Systems: map[string]manifest.SystemStatus{
				"D2Profiles": {Enabled: profilesEnabled},
				"Destiny2":   {Enabled: true},
			},
		},
	}
}

// healthyAPI serves a consistent index at version plus a one-entry table
// for every path.
func healthyAPI(version string, langs ...string) *mockManifestAPI {
	return &mockManifestAPI{
		getIndexFunc: func(ctx context.Context) (*sources.Envelope[manifest.Index], error) {
			return indexEnvelope(version, langs...), nil
		},
		getSettingsFunc: func(ctx context.Context) (*sources.Envelope[manifest.CommonSettings], error) {
			return settingsEnvelope(true), nil
		},
		downloadTableFunc: func(ctx context.Context, path string) (manifest.Table, error) {
			return manifest.Table{"1": map[string]any{"path": path}}, nil
		},
		historicalFunc: func(ctx context.Context, locale string) (*sources.Envelope[manifest.Table], error) {
			return &sources.Envelope[manifest.Table]{
				ErrorCode: sources.ErrorCodeSuccess,
				Response:  manifest.Table{"kills": map[string]any{"statId": "kills", "locale": locale}},
			}, nil
		},
	}
}

func noOverrides() *manifest.Overrides {
	return manifest.NewOverridesFS(fstest.MapFS{}, nil)
}

func newTestBootstrap(api *mockManifestAPI, stats *mockStatistics, store *mockStore) *Bootstrap {
	if stats == nil {
		stats = &mockStatistics{}
	}
	if store == nil {
		store = &mockStore{}
	}
	return NewBootstrap(api, stats, store, noOverrides(), nil)
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
