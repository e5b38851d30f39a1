package ui

import (
	"os/exec"
	"runtime"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/hnreader/internal/app"
	"github.com/abelbrown/hnreader/internal/config"
	"github.com/abelbrown/hnreader/internal/logging"
	"github.com/abelbrown/hnreader/internal/model"
	"github.com/abelbrown/hnreader/internal/work"
)

// workSource is the read side of *work.Pool shown in the work panel.
type workSource interface {
	Snapshot() work.Snapshot
}

// App is the root Bubble Tea model.
// IMPORTANT: App never fetches. It mutates app.State and reconciles once per frame.
type App struct {
	state  *app.State
	cfg    *config.Config
	events <-chan work.Event
	pool   workSource // nil hides the work panel

	styles  Styles
	help    help.Model
	spinner spinner.Model

	cursor   int
	width    int
	height   int
	ready    bool
	notice   string
	lastWork *work.Item
	showWork bool

	now       func() time.Time
	openURL   func(url string) error
	copyToClp func(text string) error
}

// NewApp creates the root model. events and pool may be nil.
func NewApp(state *app.State, cfg *config.Config, events <-chan work.Event, pool workSource) App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	styles := NewStyles(PaletteFor(cfg.Theme))

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	return App{
		state:     state,
		cfg:       cfg,
		events:    events,
		pool:      pool,
		styles:    styles,
		help:      help.New(),
		spinner:   s,
		now:       time.Now,
		openURL:   openInBrowser,
		copyToClp: clipboard.WriteAll,
	}
}

// Init starts the frame loop, the spinner and the work event listener.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		nextFrame(),
		a.spinner.Tick,
		a.listenForWorkEvents(),
	)
}

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameTick(t)
	})
}

func (a App) listenForWorkEvents() tea.Cmd {
	if a.events == nil {
		return nil
	}
	events := a.events
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return workEventMsg(event)
	}
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.ready = true
		return a, nil

	case frameTick:
		if a.state.Reconcile() {
			a.clampCursor()
		}
		return a, nextFrame()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case workEventMsg:
		if msg.Change == work.ChangeCompleted || msg.Change == work.ChangeFailed {
			item := msg.Item
			a.lastWork = &item
		}
		return a, a.listenForWorkEvents()

	case linkOpened:
		if msg.Err != nil {
			logging.Warn("Failed to open link", "url", msg.URL, "error", msg.Err)
			a.notice = "Could not open browser"
		}
		return a, nil

	case linkCopied:
		if msg.Err != nil {
			logging.Warn("Failed to copy link", "url", msg.URL, "error", msg.Err)
			a.notice = "Could not copy link"
		} else {
			a.notice = "Link copied"
		}
		return a, nil
	}

	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.notice = ""
	stories := a.state.Visible()

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, keys.Help):
		a.help.ShowAll = !a.help.ShowAll

	case key.Matches(msg, keys.Down):
		if a.cursor < len(stories)-1 {
			a.cursor++
		}

	case key.Matches(msg, keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, keys.Home):
		a.cursor = 0

	case key.Matches(msg, keys.End):
		if len(stories) > 0 {
			a.cursor = len(stories) - 1
		}

	case key.Matches(msg, keys.NextCat):
		a.selectCategory(a.state.Category().Next())

	case key.Matches(msg, keys.PrevCat):
		a.selectCategory(a.state.Category().Prev())

	case key.Matches(msg, keys.PickCat):
		idx := int(msg.Runes[0] - '1')
		if idx >= 0 && idx < len(model.Categories) {
			a.selectCategory(model.Categories[idx])
		}

	case key.Matches(msg, keys.Refresh):
		if a.state.View() == app.ViewFetched {
			a.state.Refresh()
		}

	case key.Matches(msg, keys.Saved):
		if a.state.View() != app.ViewSaved {
			a.state.SetView(app.ViewSaved)
			a.cursor = 0
		}

	case key.Matches(msg, keys.Fetched):
		if a.state.View() != app.ViewFetched {
			a.state.SetView(app.ViewFetched)
			a.cursor = 0
		}

	case key.Matches(msg, keys.SwitchView):
		a.state.ToggleView()
		a.cursor = 0

	case key.Matches(msg, keys.Favorite):
		if story, ok := a.selected(); ok {
			if _, err := a.state.ToggleFavorite(story); err != nil {
				a.notice = "Favorite not saved"
			}
			a.clampCursor()
		}

	case key.Matches(msg, keys.Work):
		if a.pool != nil {
			a.showWork = !a.showWork
		}

	case key.Matches(msg, keys.Theme):
		a.cfg.Theme = a.cfg.Theme.Toggle()
		a.styles = NewStyles(PaletteFor(a.cfg.Theme))
		a.spinner.Style = a.styles.Spinner
		if err := a.cfg.Save(); err != nil {
			logging.Warn("Failed to save config", "error", err)
		}

	case key.Matches(msg, keys.Open):
		if story, ok := a.selected(); ok {
			return a, a.open(model.NewStoryDisplay(story).LinkURL())
		}

	case key.Matches(msg, keys.Discussion):
		if story, ok := a.selected(); ok {
			return a, a.open(model.NewStoryDisplay(story).DiscussURL())
		}

	case key.Matches(msg, keys.Copy):
		if story, ok := a.selected(); ok {
			url := model.NewStoryDisplay(story).LinkURL()
			copyFn := a.copyToClp
			return a, func() tea.Msg {
				return linkCopied{URL: url, Err: copyFn(url)}
			}
		}
	}

	return a, nil
}

// selectCategory dispatches before leaving the saved view so SetView sees
// a fetch in flight and does not start one for the old category.
func (a *App) selectCategory(cat model.Category) {
	a.state.SelectCategory(cat)
	if a.state.View() == app.ViewSaved {
		a.state.SetView(app.ViewFetched)
	}
	a.cursor = 0
}

func (a App) selected() (model.Story, bool) {
	stories := a.state.Visible()
	if a.cursor < 0 || a.cursor >= len(stories) {
		return model.Story{}, false
	}
	return stories[a.cursor], true
}

func (a *App) clampCursor() {
	n := len(a.state.Visible())
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a App) open(url string) tea.Cmd {
	openFn := a.openURL
	return func() tea.Msg {
		return linkOpened{URL: url, Err: openFn(url)}
	}
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	saved := a.state.View() == app.ViewSaved
	header := RenderHeader(a.state.Category(), saved, a.state.FavoriteCount(), a.width, a.styles)
	helpView := a.help.View(keys)
	status := RenderStatusBar(StatusInfo{
		Loading:  a.state.Loading(),
		Spinner:  a.spinner.View(),
		Category: a.state.Category(),
		Saved:    saved,
		Count:    len(a.state.Visible()),
		Cursor:   a.cursor,
		Notice:   a.notice,
		LastWork: a.lastWork,
	}, a.width, a.styles)

	var panel string
	if a.showWork && a.pool != nil {
		panel = RenderWorkPanel(a.pool.Snapshot(), a.width, a.styles)
	}

	contentHeight := a.height - lipgloss.Height(header) - lipgloss.Height(helpView) - 1
	if panel != "" {
		contentHeight -= lipgloss.Height(panel)
	}

	var content string
	switch {
	case !saved && a.state.ErrMessage() != "":
		content = a.styles.ErrorStyle.Render("Failed to fetch: " + a.state.ErrMessage() + "\n\nPress r to retry.")
	case saved && len(a.state.Saved()) == 0:
		content = a.styles.HelpStyle.Render("No saved stories. Press space on a story to save it.")
	case !saved && len(a.state.Stories()) == 0 && a.state.Loading():
		content = a.styles.HelpStyle.Render(a.spinner.View() + " Fetching stories...")
	default:
		content = RenderStories(a.state.Visible(), a.state.IsFavorite, a.cursor, a.width, contentHeight, a.styles, a.now())
	}

	// Pin status and help to the bottom.
	gap := contentHeight - lipgloss.Height(content)
	if gap > 0 {
		content += lipgloss.NewStyle().Height(gap).Render("")
	}

	if panel != "" {
		return lipgloss.JoinVertical(lipgloss.Left, header, content, panel, status, helpView)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, content, status, helpView)
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Notice returns the transient status message (for testing).
func (a App) Notice() string {
	return a.notice
}

// openInBrowser opens url with the platform's default handler.
func openInBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Run()
}
