// Package state is the bubbletea model of the installer TUI.
package state

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cloudcurio/cloudcurio-installer/internal/catalog"
	"github.com/cloudcurio/cloudcurio-installer/internal/domain"
	"github.com/cloudcurio/cloudcurio-installer/internal/errors"
	"github.com/cloudcurio/cloudcurio-installer/internal/history"
	"github.com/cloudcurio/cloudcurio-installer/internal/install"
)

const (
	headerFooterLines     = 4
	minBodyHeight         = 3
	sessionSummaryLines   = 4
	historyLines          = 6
	defaultViewportWidth  = 80
	defaultViewportHeight = 24
	defaultHistoryLimit   = 20
	errorClearDuration    = 5 * time.Second
	pollInterval          = 100 * time.Millisecond
)

// HistorySource lists recent install runs. *history.Store implements it.
type HistorySource interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// Options wires the model to the rest of the installer.
type Options struct {
	Catalog *catalog.Catalog
	Builder *install.Builder
	Manager *install.Manager
	// History is optional.
	History      HistorySource
	HistoryLimit int
	// ClearSelectionOnSuccess empties the selection after a succeeded install.
	ClearSelectionOnSuccess bool
	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
	// Context is passed to sessions; cancelling it cancels a running install.
	Context context.Context
}

// Model represents the TUI model for bubbletea.
type Model struct {
	uiState          *UIState
	errorHandler     *errors.TUIHandler
	statusMessage    string
	statusLevel      errors.Level
	statusSeq        int
	hasStatusMessage bool

	catalog   *catalog.Catalog
	selection *domain.Selection
	nav       *domain.Navigation
	builder   *install.Builder
	manager   *install.Manager

	history        HistorySource
	historyLimit   int
	historyEntries []history.Entry
	historyErr     error

	clearOnSuccess  bool
	copyToClipboard func(string) error
	ctx             context.Context
	now             func() time.Time
	spinner         spinner.Model

	// session is the last install started from this model.
	session    *install.Session
	logSeen    int
	lastStatus install.Status
	logLines   []string
}

// NewModel creates a new TUI model.
func NewModel(opts Options) (*Model, error) {
	if opts.Catalog == nil || opts.Builder == nil || opts.Manager == nil {
		return nil, fmt.Errorf("tui: catalog, builder and manager are required")
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = defaultHistoryLimit
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		uiState:         NewUIState(),
		statusLevel:     errors.LevelInfo,
		catalog:         opts.Catalog,
		selection:       domain.NewSelection(opts.Catalog),
		nav:             domain.NewNavigation(opts.Catalog),
		builder:         opts.Builder,
		manager:         opts.Manager,
		history:         opts.History,
		historyLimit:    opts.HistoryLimit,
		clearOnSuccess:  opts.ClearSelectionOnSuccess,
		copyToClipboard: opts.Clipboard,
		ctx:             opts.Context,
		now:             time.Now,
		spinner:         sp,
	}

	m.errorHandler = errors.NewTUIHandler(func(msg errors.Message) {
		m.statusSeq++
		m.statusMessage = msg.Text
		m.statusLevel = msg.Level
		m.hasStatusMessage = msg.Text != ""
	})

	return m, nil
}

// Init focuses the first category and loads the install history.
func (m *Model) Init() tea.Cmd {
	name := m.nav.Next()
	m.resetToolCursor()
	return tea.Batch(emit(CategoryFocusedMsg{Name: name}), m.loadHistory())
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)
	case CategoryFocusedMsg:
		return m.handleCategoryFocused(msg)
	case SelectionChangedMsg:
		return m, nil
	case pollMsg:
		return m, m.poll(msg.sessionID)
	case LogAppendedMsg:
		return m.handleLogAppended(msg)
	case StatusChangedMsg:
		return m.handleStatusChanged(msg)
	case historyLoadedMsg:
		m.historyEntries = msg.entries
		m.historyErr = msg.err
		return m, nil
	case spinner.TickMsg:
		if !m.running() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case errorMsg:
		if msg.seq != m.statusSeq {
			return m, nil
		}
		m.statusMessage = ""
		m.statusLevel = errors.LevelInfo
		m.hasStatusMessage = false
		return m, nil
	}
	return m, nil
}

// Selection exposes the selection store, e.g. for a final summary.
func (m *Model) Selection() *domain.Selection {
	return m.selection
}

// Session returns the last session started from the UI, or nil.
func (m *Model) Session() *install.Session {
	return m.session
}

func (m *Model) running() bool {
	return m.session != nil && m.session.Status() == install.StatusRunning
}

func (m *Model) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.uiState.SetWidth(msg.Width)
	m.uiState.SetHeight(msg.Height)
	m.uiState.UpdateViewportSize()
	return m, nil
}

// handleCategoryFocused keeps the tool cursor inside the focused category.
// The cursor itself is reset when focus moves, since this message may
// arrive after further keys.
func (m *Model) handleCategoryFocused(CategoryFocusedMsg) (tea.Model, tea.Cmd) {
	tools, _ := m.catalog.ToolsIn(m.nav.Focused())
	m.uiState.SetToolCursor(m.uiState.GetToolCursor(), len(tools))
	return m, nil
}

// report routes err to the status line and schedules its removal.
func (m *Model) report(err error) tea.Cmd {
	errors.Report(m.errorHandler, err)
	return m.clearStatusAfter(errorClearDuration)
}

// clearStatusAfter clears the status line after d, unless a newer message
// replaced it in the meantime.
func (m *Model) clearStatusAfter(d time.Duration) tea.Cmd {
	return errorMsgAfter(d, m.statusSeq)
}

func (m *Model) loadHistory() tea.Cmd {
	if m.history == nil {
		return nil
	}
	src, limit, ctx := m.history, m.historyLimit, m.ctx
	return func() tea.Msg {
		entries, err := src.Recent(ctx, limit)
		return historyLoadedMsg{entries: entries, err: err}
	}
}
