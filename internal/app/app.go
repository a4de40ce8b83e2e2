package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/lembar/internal/assessment"
	"github.com/abhisek/lembar/internal/export"
	"github.com/abhisek/lembar/internal/orchestrator"
	"github.com/abhisek/lembar/internal/render"
	"github.com/abhisek/lembar/internal/router"
	"github.com/abhisek/lembar/internal/screen"
	"github.com/abhisek/lembar/internal/screens/form"
	"github.com/abhisek/lembar/internal/screens/generation"
	"github.com/abhisek/lembar/internal/ui/layout"
)

// Options holds the dependencies the terminal UI runs on.
type Options struct {
	Runner   generation.Runner
	Exporter *export.Exporter
	Paper    render.PaperOptions
	Logger   *zap.Logger

	// Inputs prefills the form. Zero value means the form defaults.
	Inputs *assessment.FormInputs
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	session *orchestrator.Session
	cancel  context.CancelFunc
	width   int
	height  int
}

// newAppModel creates a new AppModel with the form screen. Runs started
// from the UI are cancelled when ctx is.
func newAppModel(ctx context.Context, opts Options) AppModel {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	session := orchestrator.NewSession()
	deps := generation.Deps{
		Context:  ctx,
		Runner:   opts.Runner,
		Session:  session,
		Exporter: opts.Exporter,
		Paper:    opts.Paper,
		Logger:   opts.Logger.Named("tui"),
	}

	in := assessment.DefaultFormInputs()
	if opts.Inputs != nil {
		in = opts.Inputs.Clone()
	}
	formScreen := form.New(in, func(in assessment.FormInputs) screen.Screen {
		return generation.NewProgress(deps, in)
	})

	return AppModel{
		router:  router.New(formScreen),
		session: session,
		cancel:  cancel,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit
		case "esc":
			if b, ok := m.router.Active().(screen.BackInterceptor); ok && b.InterceptsBack() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// status is the header badge for the session phase.
func (m AppModel) status() string {
	snap := m.session.Snapshot()
	switch snap.Phase {
	case orchestrator.PhaseAssessmentPending:
		return "menyusun soal"
	case orchestrator.PhaseIllustrating:
		if snap.Progress != nil {
			return fmt.Sprintf("gambar %d/%d", snap.Progress.Current, snap.Progress.Total)
		}
		return "membuat gambar"
	case orchestrator.PhaseAssessmentReady, orchestrator.PhaseComplete:
		return "selesai"
	case orchestrator.PhaseFailed:
		return "gagal"
	}
	return ""
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.frame())
	return v
}

// frame composes header, active screen and footer for the current size.
func (m AppModel) frame() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status(), m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Kembali"},
			{Key: "Ctrl+C", Description: "Keluar"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	m := newAppModel(ctx, opts)
	defer m.cancel()

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
