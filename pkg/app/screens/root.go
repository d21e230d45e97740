package screens

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/companion/pkg/app/components"
	"github.com/kerbaras/companion/pkg/app/styles"
	"github.com/kerbaras/companion/pkg/data"
	"github.com/kerbaras/companion/pkg/manifest"
	"github.com/kerbaras/companion/pkg/services"
)

// Backend is what the screens need from the controller.
type Backend interface {
	Bootstrap() *services.Bootstrap
	Manifest(ctx context.Context) (*manifest.Manifest, error)
	Tables() ([]data.TableInfo, error)
	ExportLore(ctx context.Context, title, outputDir string, hashes []string) (string, error)
}

type screenType int

const (
	loadingView screenType = iota
	tablesView
	inspectView
	detailsView
)

type RootScreen struct {
	backend  Backend
	manifest *manifest.Manifest

	currentView screenType
	spinner     spinner.Model
	progress    *components.ProgressTracker
	tables      *TablesScreen
	inspect     *InspectScreen
	details     *DetailsScreen

	width  int
	height int
}

func NewRootScreen(backend Backend) *RootScreen {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.StatusActive

	return &RootScreen{
		backend:     backend,
		currentView: loadingView,
		spinner:     s,
		progress:    components.NewProgressTracker(80),
	}
}

func (r *RootScreen) Init() tea.Cmd {
	return tea.Batch(
		r.spinner.Tick,
		r.listenForStatus,
		r.acquire,
	)
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		r.progress.SetWidth(msg.Width - 4)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return r, tea.Quit
		case "q":
			if !r.typing() {
				return r, tea.Quit
			}
		case "r":
			if r.currentView == loadingView && r.progress.Status().State == services.StateFailed {
				r.progress.Update(services.Status{State: services.StateIdle})
				return r, tea.Batch(r.spinner.Tick, r.listenForStatus, r.acquire)
			}
		case "tab":
			if r.currentView == tablesView || r.currentView == inspectView {
				if r.currentView == tablesView {
					r.currentView = inspectView
					cmd = r.inspect.Init()
				} else {
					r.currentView = tablesView
					cmd = r.tables.Init()
				}
				return r, tea.Batch(cmd, r.resize())
			}
		}

	case spinner.TickMsg:
		if r.currentView != loadingView || r.progress.Done() {
			return r, nil
		}
		r.spinner, cmd = r.spinner.Update(msg)
		return r, cmd

	case statusMsg:
		r.progress.Update(services.Status(msg))
		if r.progress.Done() {
			return r, nil
		}
		return r, r.listenForStatus

	case manifestLoadedMsg:
		if msg.err != nil {
			r.progress.Update(services.Status{
				State:  services.StateFailed,
				Kind:   services.KindOf(msg.err),
				Code:   services.CodeOf(msg.err),
				Detail: msg.err.Error(),
			})
			return r, nil
		}
		r.manifest = msg.manifest
		r.tables = NewTablesScreen(r.backend, msg.manifest)
		r.inspect = NewInspectScreen(msg.manifest)
		r.currentView = tablesView
		return r, tea.Batch(r.tables.Init(), r.resize())

	case SwitchScreenMsg:
		switch msg.Screen {
		case "tables":
			r.currentView = tablesView
			cmd = r.tables.Init()
		case "inspect":
			r.currentView = inspectView
			cmd = tea.Batch(r.inspect.Init(), r.resize())
		case "details":
			if hash, ok := msg.Data.(string); ok {
				r.details = NewDetailsScreen(r.backend, r.manifest, hash)
				r.currentView = detailsView
				cmd = tea.Batch(r.details.Init(), r.resize())
			}
		}
		return r, cmd
	}

	// Forward message to active screen
	switch r.currentView {
	case tablesView:
		newModel, newCmd := r.tables.Update(msg)
		r.tables = newModel.(*TablesScreen)
		return r, newCmd
	case inspectView:
		newModel, newCmd := r.inspect.Update(msg)
		r.inspect = newModel.(*InspectScreen)
		return r, newCmd
	case detailsView:
		if r.details != nil {
			newModel, newCmd := r.details.Update(msg)
			r.details = newModel.(*DetailsScreen)
			return r, newCmd
		}
	}

	return r, cmd
}

func (r *RootScreen) View() string {
	if r.currentView == loadingView {
		return r.renderLoading()
	}

	tabs := r.renderTabs()

	var content string
	switch r.currentView {
	case tablesView:
		content = r.tables.View()
	case inspectView:
		content = r.inspect.View()
	case detailsView:
		if r.details != nil {
			content = r.details.View()
		}
	}

	return fmt.Sprintf("%s\n\n%s", tabs, content)
}

func (r *RootScreen) renderLoading() string {
	header := styles.TitleStyle.Render("Companion")

	status := r.progress.View()
	if !r.progress.Done() {
		status = r.spinner.View() + " " + status
	}

	help := "q: quit"
	if r.progress.Status().State == services.StateFailed {
		help = "r: retry • q: quit"
	}

	return fmt.Sprintf("%s\n\n%s\n%s", header, status, styles.HelpStyle.Render(help))
}

func (r *RootScreen) renderTabs() string {
	if r.currentView == detailsView {
		return ""
	}

	tablesTab := "Tables"
	inspectTab := "Inspect"

	if r.currentView == tablesView {
		tablesTab = styles.ActiveTabStyle.Render(tablesTab)
		inspectTab = styles.InactiveTabStyle.Render(inspectTab)
	} else {
		tablesTab = styles.InactiveTabStyle.Render(tablesTab)
		inspectTab = styles.ActiveTabStyle.Render(inspectTab)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, tablesTab, inspectTab)
}

// typing reports whether keys go to a text input.
func (r *RootScreen) typing() bool {
	return r.currentView == inspectView && r.inspect != nil && r.inspect.input.Focused()
}

// resize replays the last window size to newly created screens.
func (r *RootScreen) resize() tea.Cmd {
	if r.width == 0 {
		return nil
	}
	size := tea.WindowSizeMsg{Width: r.width, Height: r.height}
	return func() tea.Msg { return size }
}

// Messages
type statusMsg services.Status

type manifestLoadedMsg struct {
	manifest *manifest.Manifest
	err      error
}

// SwitchScreenMsg asks the root screen to show another screen.
type SwitchScreenMsg struct {
	Screen string
	Data   interface{}
}

// Commands
func (r *RootScreen) acquire() tea.Msg {
	m, err := r.backend.Manifest(context.Background())
	return manifestLoadedMsg{manifest: m, err: err}
}

func (r *RootScreen) listenForStatus() tea.Msg {
	status, ok := <-r.backend.Bootstrap().Updates()
	if !ok {
		return nil
	}
	return statusMsg(status)
}
