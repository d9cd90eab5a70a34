// Package shell is the interactive terminal front end: a content screen
// showing the remote or offline page and a settings screen driving the
// update flow.
package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nexhax/nexhax/internal/config"
	"github.com/nexhax/nexhax/internal/content"
	"github.com/nexhax/nexhax/internal/report"
	"github.com/nexhax/nexhax/internal/updater"
)

// Screen identifies one of the two screens.
type Screen int

const (
	ScreenContent Screen = iota
	ScreenSettings
)

func (s Screen) String() string {
	if s == ScreenSettings {
		return "Settings"
	}
	return "Home"
}

// Updater is the part of the update flow the shell drives.
type Updater interface {
	Check(ctx context.Context, current string) updater.Outcome
	Install(ctx context.Context, out updater.Outcome) error
	OpenRelease(ctx context.Context, out updater.Outcome) error
}

// Deps are the collaborators of the shell.
type Deps struct {
	Updater        Updater
	Prober         content.Prober
	CurrentVersion string
	RepositoryURL  string
	Theme          string
	// SaveTheme persists a theme preference. Nil keeps it for this session.
	SaveTheme func(theme string) error
	// DarkBackground selects the palette for the "auto" theme.
	DarkBackground bool
}

type sourceMsg struct{ source content.Source }

type checkMsg struct{ outcome updater.Outcome }

type installMsg struct{ err error }

type openMsg struct{ err error }

type themeSavedMsg struct {
	theme string
	err   error
}

// Model is the bubbletea model of the shell.
type Model struct {
	ctx  context.Context
	deps Deps

	screen  Screen
	spinner spinner.Model
	styles  styles
	theme   string

	source     *content.Source
	outcome    *updater.Outcome
	checking   bool
	installing bool
	message    string
	failed     bool

	width  int
	height int
}

// New returns a shell model.
func New(ctx context.Context, deps Deps) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	m := &Model{
		ctx:     ctx,
		deps:    deps,
		spinner: s,
		theme:   deps.Theme,
	}
	if m.theme == "" {
		m.theme = config.Themes[0]
	}
	m.applyTheme()
	return m
}

// Run starts the shell on the terminal and blocks until it exits.
func Run(ctx context.Context, deps Deps) error {
	_, err := tea.NewProgram(New(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) applyTheme() {
	p := ResolvePalette(m.theme, m.deps.DarkBackground)
	m.styles = newStyles(p)
	m.spinner.Style = lipgloss.NewStyle().Foreground(p.Primary)
}

// Init starts the content decision and the update check concurrently.
func (m *Model) Init() tea.Cmd {
	m.checking = true
	return tea.Batch(m.spinner.Tick, m.decideSource(), m.check())
}

func (m *Model) decideSource() tea.Cmd {
	return func() tea.Msg {
		return sourceMsg{source: content.Decide(m.ctx, m.deps.Prober)}
	}
}

func (m *Model) check() tea.Cmd {
	return func() tea.Msg {
		return checkMsg{outcome: m.deps.Updater.Check(m.ctx, m.deps.CurrentVersion)}
	}
}

func (m *Model) install(out updater.Outcome) tea.Cmd {
	return func() tea.Msg {
		return installMsg{err: m.deps.Updater.Install(m.ctx, out)}
	}
}

func (m *Model) openRelease(out updater.Outcome) tea.Cmd {
	return func() tea.Msg {
		return openMsg{err: m.deps.Updater.OpenRelease(m.ctx, out)}
	}
}

func (m *Model) saveTheme(theme string) tea.Cmd {
	save := m.deps.SaveTheme
	return func() tea.Msg {
		if save == nil {
			return themeSavedMsg{theme: theme}
		}
		return themeSavedMsg{theme: theme, err: save(theme)}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case sourceMsg:
		src := msg.source
		m.source = &src

	case checkMsg:
		out := msg.outcome
		m.outcome = &out
		m.checking = false
		m.setMessage(report.Summary(out), out.Status == updater.StatusUnavailable)

	case installMsg:
		m.installing = false
		switch {
		case errors.Is(msg.err, updater.ErrNoPackage):
			m.setMessage("No app-release.apk was found in the release.", true)
		case msg.err != nil:
			m.setMessage("Could not download or open the installer: "+msg.err.Error(), true)
		default:
			m.setMessage("Installer opened.", false)
		}

	case openMsg:
		if msg.err != nil {
			m.setMessage("Could not open the release page: "+msg.err.Error(), true)
		}

	case themeSavedMsg:
		if msg.err != nil {
			m.setMessage("Theme not saved: "+msg.err.Error(), true)
		} else {
			m.setMessage("Theme: "+msg.theme, false)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		if m.screen == ScreenContent {
			m.screen = ScreenSettings
		} else {
			m.screen = ScreenContent
		}

	case "c":
		if m.checking {
			return m, nil
		}
		m.checking = true
		m.setMessage("Checking for updates...", false)
		return m, m.check()

	case "i":
		if m.installing {
			return m, nil
		}
		if m.outcome == nil {
			m.setMessage("Check for updates first.", true)
			return m, nil
		}
		if !m.outcome.UpdateAvailable() {
			if m.outcome.Status == updater.StatusUpToDate {
				m.setMessage("You already have the latest version.", false)
			} else {
				m.setMessage(report.Summary(*m.outcome), true)
			}
			return m, nil
		}
		if !m.outcome.Release.HasPackage() {
			m.setMessage("No app-release.apk was found in the release.", true)
			return m, nil
		}
		m.installing = true
		m.setMessage("Downloading "+m.outcome.LatestVersion()+"...", false)
		return m, m.install(*m.outcome)

	case "o":
		if m.outcome == nil || m.outcome.ReleaseURL() == "" {
			m.setMessage("No release page. Repository: "+m.deps.RepositoryURL, true)
			return m, nil
		}
		return m, m.openRelease(*m.outcome)

	case "t":
		m.theme = config.NextTheme(m.theme)
		m.applyTheme()
		return m, m.saveTheme(m.theme)
	}

	return m, nil
}

func (m *Model) setMessage(text string, failed bool) {
	m.message = text
	m.failed = failed
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render("nexhax"))
	b.WriteString("  ")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if m.screen == ScreenSettings {
		b.WriteString(m.viewSettings())
	} else {
		b.WriteString(m.viewContent())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.styles.help.Render("tab switch  c check  i install  o release page  t theme  q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderTabs() string {
	tabs := make([]string, 0, 2)
	for _, s := range []Screen{ScreenContent, ScreenSettings} {
		style := m.styles.tab
		if s == m.screen {
			style = m.styles.activeTab
		}
		tabs = append(tabs, style.Render(s.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) viewContent() string {
	var b strings.Builder

	if m.source == nil {
		b.WriteString(m.spinner.View() + " Loading page...\n")
	} else {
		b.WriteString(m.row("Source", string(m.source.Kind)))
		b.WriteString(m.row("Page", m.source.Title()))
		if m.source.Remote() {
			b.WriteString(m.styles.muted.Render("The remote page is reachable at "+m.source.URL+".") + "\n")
		} else {
			b.WriteString(m.styles.muted.Render("The remote page is unreachable. Showing the bundled offline page.") + "\n")
		}
	}

	if m.outcome != nil && m.outcome.UpdateAvailable() && m.outcome.Release.HasPackage() {
		b.WriteString("\n")
		b.WriteString(m.styles.banner.Render(fmt.Sprintf("Update %s available. Press i to install.", m.outcome.LatestVersion())))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) viewSettings() string {
	var b strings.Builder

	b.WriteString(m.row("Current version", m.deps.CurrentVersion))
	latest := "-"
	status := "not checked"
	if m.outcome != nil {
		if v := m.outcome.LatestVersion(); v != "" {
			latest = v
		}
		status = report.Summary(*m.outcome)
	}
	if m.checking {
		status = m.spinner.View() + " checking"
	}
	b.WriteString(m.row("Latest version", latest))
	b.WriteString(m.row("Status", status))
	b.WriteString(m.row("Theme", m.theme))
	b.WriteString(m.row("Repository", m.deps.RepositoryURL))
	return b.String()
}

func (m *Model) row(label, value string) string {
	return m.styles.label.Render(label) + m.styles.value.Render(value) + "\n"
}

func (m *Model) renderStatus() string {
	text := m.message
	if m.installing {
		text = m.spinner.View() + " " + text
	}
	if m.failed {
		return m.styles.errorText.Render(text)
	}
	return m.styles.muted.Render(text)
}
