package generation

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/lembar/internal/assessment"
	"github.com/abhisek/lembar/internal/assessmentgen"
	"github.com/abhisek/lembar/internal/orchestrator"
	"github.com/abhisek/lembar/internal/router"
	"github.com/abhisek/lembar/internal/screen"
	"github.com/abhisek/lembar/internal/ui/components"
	"github.com/abhisek/lembar/internal/ui/layout"
	"github.com/abhisek/lembar/internal/ui/theme"
)

const tickInterval = 150 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ProgressScreen starts a run and waits for the assessment text. It hands
// over to the result screen as soon as the questions are available.
type ProgressScreen struct {
	job        *job
	sub        subscription
	started    time.Time
	elapsed    time.Duration
	frame      int
	confirming bool
	failure    string
	menu       components.Menu
}

var (
	_ screen.Screen          = (*ProgressScreen)(nil)
	_ screen.BackInterceptor = (*ProgressScreen)(nil)
)

// NewProgress creates the screen for a submission of in.
func NewProgress(deps Deps, in assessment.FormInputs) *ProgressScreen {
	return &ProgressScreen{job: newJob(deps, in)}
}

func (p *ProgressScreen) Init() tea.Cmd {
	p.sub = subscribe(p.job.deps.Session)
	p.started = time.Now()
	return tea.Batch(p.job.start(), p.sub.next(), tick())
}

func (p *ProgressScreen) Title() string {
	return "Menyusun Soal"
}

func (p *ProgressScreen) InterceptsBack() bool { return true }

func (p *ProgressScreen) KeyHints() []layout.KeyHint {
	if p.failure != "" {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Pilih"},
			{Key: "Enter", Description: "Lanjut"},
			{Key: "Esc", Description: "Kembali"},
		}
	}
	return []layout.KeyHint{
		{Key: "Esc", Description: "Batalkan"},
		{Key: "Ctrl+C", Description: "Keluar"},
	}
}

func (p *ProgressScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		if !p.sub.owns(msg) {
			return p, nil
		}
		return p, p.handleSnapshot(msg.snap)

	case runDoneMsg:
		if msg.Err != nil && !msg.superseded() && p.failure == "" {
			p.job.deps.Logger.Error("generation run ended", zap.Error(msg.Err))
			p.fail(assessmentgen.UserMessage)
		}
		return p, nil

	case tickMsg:
		if p.failure != "" {
			return p, nil
		}
		p.frame++
		p.elapsed = time.Time(msg).Sub(p.started)
		return p, tick()

	case tea.KeyPressMsg:
		return p, p.handleKey(msg)
	}
	return p, nil
}

func (p *ProgressScreen) handleSnapshot(snap orchestrator.Snapshot) tea.Cmd {
	switch snap.Phase {
	case orchestrator.PhaseAssessmentReady, orchestrator.PhaseIllustrating, orchestrator.PhaseComplete:
		p.sub.close()
		result := newResult(p.job, snap)
		return func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: result}
		}
	case orchestrator.PhaseFailed:
		p.fail(snap.Err)
	}
	return p.sub.next()
}

func (p *ProgressScreen) fail(message string) {
	if message == "" {
		message = assessmentgen.UserMessage
	}
	p.failure = message
	deps, in := p.job.deps, p.job.inputs
	p.menu = components.NewMenu([]components.MenuItem{
		{Label: "Coba lagi", Action: func() tea.Cmd {
			p.leave()
			next := NewProgress(deps, in)
			return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
		}},
		{Label: "Ubah isian", Action: p.back},
	})
}

func (p *ProgressScreen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if p.failure != "" {
		if msg.String() == "esc" {
			return p.back()
		}
		var cmd tea.Cmd
		p.menu, cmd = p.menu.Update(msg)
		return cmd
	}

	if p.confirming {
		switch msg.String() {
		case "y", "enter":
			return p.back()
		case "n", "esc":
			p.confirming = false
		}
		return nil
	}

	if msg.String() == "esc" {
		p.confirming = true
	}
	return nil
}

// leave discards the run and stops following the session.
func (p *ProgressScreen) leave() {
	p.job.discard()
	p.sub.close()
}

func (p *ProgressScreen) back() tea.Cmd {
	p.leave()
	return func() tea.Msg { return router.PopScreenMsg{} }
}

func (p *ProgressScreen) View(width, height int) string {
	in := p.job.inputs
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render(in.Subject + " · " + in.Grade))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render(fmt.Sprintf(
		"%d pilihan ganda · %d isian singkat · %d uraian", in.CountMCQ, in.CountShort, in.CountEssay)))
	b.WriteString("\n\n")

	switch {
	case p.failure != "":
		b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
			Render(theme.Warning.Render("✗ " + p.failure)))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().PaddingLeft(max(width/2-10, 0)).Render(p.menu.View()))

	case p.confirming:
		b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
			Render(theme.Warning.Render("Batalkan pembuatan soal? (y/n)")))

	default:
		frame := spinnerFrames[p.frame%len(spinnerFrames)]
		line := fmt.Sprintf("%s Sedang menyusun soal... %ds", frame, int(p.elapsed.Seconds()))
		b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
			Render(theme.Selected.Render(line)))
		b.WriteString("\n\n")
		b.WriteString(theme.Subtitle.Width(width).Render("Gambar ilustrasi dibuat setelah soal selesai."))
	}

	return lipgloss.NewStyle().MaxHeight(height).Render(b.String())
}
