package screens

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/companion/pkg/data"
	"github.com/kerbaras/companion/pkg/manifest"
	"github.com/kerbaras/companion/pkg/services"
)

type fakeBackend struct {
	bootstrap *services.Bootstrap
	manifest  *manifest.Manifest
	err       error
	tables    []data.TableInfo
	exported  []string
}

func newFakeBackend() *fakeBackend {
	overrides := manifest.NewOverridesFS(fstest.MapFS{}, nil)
	return &fakeBackend{
		bootstrap: services.NewBootstrap(nil, nil, nil, overrides, nil),
		manifest:  testManifest(),
		tables: []data.TableInfo{
			{Name: string(manifest.TableInventoryItem), Version: "v1", Size: 2},
			{Name: string(manifest.TableLore), Version: "v1", Size: 1},
		},
	}
}

func (f *fakeBackend) Bootstrap() *services.Bootstrap { return f.bootstrap }

func (f *fakeBackend) Manifest(ctx context.Context) (*manifest.Manifest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.manifest, nil
}

func (f *fakeBackend) Tables() ([]data.TableInfo, error) { return f.tables, nil }

func (f *fakeBackend) ExportLore(ctx context.Context, title, outputDir string, hashes []string) (string, error) {
	f.exported = append(f.exported, hashes...)
	return "Unveiling.epub", nil
}

func testManifest() *manifest.Manifest {
	stored := &manifest.Stored{
		Version: "v1",
		Tables: manifest.Tables{
			manifest.TableInventoryItem: manifest.Table{
				"1363886209": map[string]any{
					"displayProperties":   map[string]any{"name": "Gjallarhorn"},
					"itemTypeDisplayName": "Rocket Launcher",
					"loreHash":            77,
				},
				"347366834": map[string]any{
					"displayProperties": map[string]any{"name": "Ace of Spades"},
				},
			},
			manifest.TableLore: manifest.Table{
				"77": map[string]any{
					"displayProperties": map[string]any{"name": "Unveiling", "description": "There is a shape."},
					"subtitle":          "I",
				},
			},
		},
	}
	return manifest.Assemble(stored, manifest.AssembleOptions{
		Language:  "en",
		Overrides: manifest.NewOverridesFS(fstest.MapFS{}, nil),
	})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadedRoot(t *testing.T, backend *fakeBackend) *RootScreen {
	t.Helper()
	root := NewRootScreen(backend)
	root.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	root.Update(root.acquire())
	if root.currentView != tablesView {
		t.Fatalf("Expected tables view after load, got %d", root.currentView)
	}
	return root
}

func TestRootStartsLoading(t *testing.T) {
	root := NewRootScreen(newFakeBackend())

	if root.currentView != loadingView {
		t.Errorf("Expected loading view, got %d", root.currentView)
	}

	if root.Init() == nil {
		t.Error("Expected init command")
	}

	if !strings.Contains(root.View(), "Starting") {
		t.Errorf("Expected starting status, got: %s", root.View())
	}
}

func TestRootFollowsStatusUpdates(t *testing.T) {
	root := NewRootScreen(newFakeBackend())

	_, cmd := root.Update(statusMsg(services.Status{State: services.StateFetching, Downloaded: 3, Total: 10}))

	if cmd == nil {
		t.Error("Expected to keep listening while fetching")
	}

	if !strings.Contains(root.View(), "3/10 tables") {
		t.Errorf("Expected fetch progress in view, got: %s", root.View())
	}

	_, cmd = root.Update(statusMsg(services.Status{State: services.StateReady}))

	if cmd != nil {
		t.Error("Expected to stop listening once ready")
	}
}

func TestRootShowsFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.err = errors.New("connection refused")
	root := NewRootScreen(backend)

	root.Update(root.acquire())

	if root.currentView != loadingView {
		t.Errorf("Expected to stay on loading view, got %d", root.currentView)
	}

	view := root.View()
	if !strings.Contains(view, "connection refused") {
		t.Errorf("Expected error detail in view, got: %s", view)
	}

	if !strings.Contains(view, "r: retry") {
		t.Error("Expected retry hint in view")
	}

	_, cmd := root.Update(key("r"))
	if cmd == nil {
		t.Error("Expected retry command")
	}
}

func TestRootShowsMaintenanceMessage(t *testing.T) {
	root := NewRootScreen(newFakeBackend())

	root.Update(statusMsg(services.Status{State: services.StateFailed, Kind: services.KindMaintenance}))

	if !strings.Contains(root.View(), services.Message(services.KindMaintenance)) {
		t.Errorf("Expected maintenance message, got: %s", root.View())
	}
}

func TestRootQuit(t *testing.T) {
	root := NewRootScreen(newFakeBackend())

	_, cmd := root.Update(key("q"))

	if cmd == nil {
		t.Fatal("Expected quit command")
	}

	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected quit message")
	}
}

func TestRootTabSwitchesViews(t *testing.T) {
	root := loadedRoot(t, newFakeBackend())

	root.Update(key("tab"))

	if root.currentView != inspectView {
		t.Fatalf("Expected inspect view, got %d", root.currentView)
	}

	// Typing goes to the search input instead of quitting
	root.Update(key("q"))

	if root.inspect.input.Value() != "q" {
		t.Errorf("Expected 'q' in the search input, got %q", root.inspect.input.Value())
	}

	root.Update(key("tab"))

	if root.currentView != tablesView {
		t.Errorf("Expected tables view, got %d", root.currentView)
	}
}

func TestRootOpensDetails(t *testing.T) {
	root := loadedRoot(t, newFakeBackend())

	root.Update(SwitchScreenMsg{Screen: "details", Data: "1363886209"})

	if root.currentView != detailsView {
		t.Fatalf("Expected details view, got %d", root.currentView)
	}

	root.Update(root.details.loadDetails())

	if !strings.Contains(root.View(), "Gjallarhorn") {
		t.Errorf("Expected item name in view, got: %s", root.View())
	}
}

func TestTablesScreen(t *testing.T) {
	backend := newFakeBackend()
	screen := NewTablesScreen(backend, backend.manifest)

	screen.Update(screen.loadTables())

	view := screen.View()

	for _, want := range []string{"Version: v1", "Language: en", "Tables: 2", string(manifest.TableLore)} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in view", want)
		}
	}

	rows := screen.rows()
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	if rows[0][1] != "2" || rows[0][2] != "yes" {
		t.Errorf("Unexpected first row: %v", rows[0])
	}
}

func TestInspectSearch(t *testing.T) {
	screen := NewInspectScreen(testManifest())

	msg := screen.performSearch("gjallar")()
	screen.Update(msg)

	if len(screen.results.Items) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(screen.results.Items))
	}

	if screen.input.Focused() {
		t.Error("Expected focus to move to results")
	}

	_, cmd := screen.Update(key("enter"))
	if cmd == nil {
		t.Fatal("Expected open command")
	}

	switchMsg, ok := cmd().(SwitchScreenMsg)
	if !ok {
		t.Fatal("Expected SwitchScreenMsg")
	}

	if switchMsg.Screen != "details" || switchMsg.Data != "1363886209" {
		t.Errorf("Unexpected switch: %+v", switchMsg)
	}
}

func TestInspectNoResults(t *testing.T) {
	screen := NewInspectScreen(testManifest())

	screen.Update(screen.performSearch("thorn")())

	if !strings.Contains(screen.View(), "No items found") {
		t.Error("Expected empty results message")
	}
}

func TestDetailsWithLore(t *testing.T) {
	backend := newFakeBackend()
	screen := NewDetailsScreen(backend, backend.manifest, "1363886209")

	if screen.View() != "Loading..." {
		t.Error("Expected loading view before details arrive")
	}

	screen.Update(screen.loadDetails())

	view := screen.View()
	for _, want := range []string{"Gjallarhorn", "Rocket Launcher", "Unveiling", "There is a shape.", "e: export lore"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in view", want)
		}
	}

	_, cmd := screen.Update(key("e"))
	if cmd == nil {
		t.Fatal("Expected export command")
	}
	screen.Update(cmd())

	if len(backend.exported) != 1 || backend.exported[0] != "1363886209" {
		t.Errorf("Expected item hash to be exported, got %v", backend.exported)
	}

	if !strings.Contains(screen.View(), "Exported to Unveiling.epub") {
		t.Error("Expected export confirmation")
	}
}

func TestDetailsWithoutLore(t *testing.T) {
	backend := newFakeBackend()
	screen := NewDetailsScreen(backend, backend.manifest, "347366834")

	screen.Update(screen.loadDetails())

	if !strings.Contains(screen.View(), "No lore for this item") {
		t.Error("Expected no lore message")
	}

	_, cmd := screen.Update(key("e"))
	if cmd != nil {
		t.Error("Expected no export without lore")
	}
}

func TestDetailsUnknownItem(t *testing.T) {
	backend := newFakeBackend()
	screen := NewDetailsScreen(backend, backend.manifest, "404")

	screen.Update(screen.loadDetails())

	if !strings.Contains(screen.View(), "definition not found") {
		t.Errorf("Expected not found error, got: %s", screen.View())
	}
}

func TestDetailsBack(t *testing.T) {
	backend := newFakeBackend()
	screen := NewDetailsScreen(backend, backend.manifest, "347366834")

	_, cmd := screen.Update(key("esc"))
	if cmd == nil {
		t.Fatal("Expected back command")
	}

	if msg, ok := cmd().(SwitchScreenMsg); !ok || msg.Screen != "inspect" {
		t.Errorf("Expected switch to inspect, got %+v", msg)
	}
}
