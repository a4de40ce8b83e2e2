package generation

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lembar/internal/assessment"
	"github.com/abhisek/lembar/internal/orchestrator"
	"github.com/abhisek/lembar/internal/render"
	"github.com/abhisek/lembar/internal/router"
	"github.com/abhisek/lembar/internal/screen"
	"github.com/abhisek/lembar/internal/ui/components"
	"github.com/abhisek/lembar/internal/ui/layout"
	"github.com/abhisek/lembar/internal/ui/theme"
)

type tab int

const (
	tabPaper tab = iota
	tabBlueprint
)

var tabNames = []string{"Soal", "Kisi-kisi"}

// exportDoneMsg reports the outcome of an export or copy action.
type exportDoneMsg struct {
	Notice string
	Err    error
}

// ResultScreen shows the paper and the blueprint while illustrations are
// still arriving, and offers the export actions.
type ResultScreen struct {
	job        *job
	sub        subscription
	snap       orchestrator.Snapshot
	tab        tab
	scroll     int
	page       int
	confirming bool
	notice     string
	noticeErr  bool
}

var (
	_ screen.Screen          = (*ResultScreen)(nil)
	_ screen.BackInterceptor = (*ResultScreen)(nil)
)

func newResult(j *job, snap orchestrator.Snapshot) *ResultScreen {
	return &ResultScreen{job: j, snap: snap, page: 10}
}

func (r *ResultScreen) Init() tea.Cmd {
	r.sub = subscribe(r.job.deps.Session)
	return r.sub.next()
}

func (r *ResultScreen) Title() string {
	return "Hasil"
}

func (r *ResultScreen) InterceptsBack() bool { return true }

func (r *ResultScreen) KeyHints() []layout.KeyHint {
	if r.confirming {
		return []layout.KeyHint{
			{Key: "y", Description: "Ya, buang"},
			{Key: "n", Description: "Batal"},
		}
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Soal/Kisi-kisi"},
		{Key: "↑↓", Description: "Gulir"},
		{Key: "w", Description: "Word"},
		{Key: "x", Description: "Excel"},
		{Key: "c", Description: "Salin"},
		{Key: "n", Description: "Mulai ulang"},
	}
}

func (r *ResultScreen) data() *assessment.Data {
	return r.snap.Data
}

func (r *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		if !r.sub.owns(msg) {
			return r, nil
		}
		if msg.snap.Data != nil {
			r.snap = msg.snap
		}
		return r, r.sub.next()

	case runDoneMsg:
		switch {
		case msg.Err == nil && msg.Result != nil:
			if failed := msg.Result.Failed(); len(failed) > 0 {
				r.setNotice(fmt.Sprintf("%d gambar gagal dibuat; soal tetap lengkap.", len(failed)), true)
			}
		case msg.Err != nil && !msg.superseded():
			r.setNotice("Pembuatan gambar terhenti: "+msg.Err.Error(), true)
		}
		return r, nil

	case exportDoneMsg:
		if msg.Err != nil {
			r.setNotice(exportFailureNotice(msg.Err), true)
		} else {
			r.setNotice(msg.Notice, false)
		}
		return r, nil

	case tea.KeyPressMsg:
		return r, r.handleKey(msg)
	}
	return r, nil
}

func (r *ResultScreen) setNotice(text string, isErr bool) {
	r.notice = text
	r.noticeErr = isErr
}

func exportFailureNotice(err error) string {
	var exportErr *render.ExportError
	if errors.As(err, &exportErr) && exportErr.Kind == render.KindClipboard {
		return "Gagal menyalin ke clipboard. Silakan gunakan ekspor berkas."
	}
	return "Ekspor gagal: " + err.Error()
}

func (r *ResultScreen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if r.confirming {
		switch msg.String() {
		case "y", "enter":
			return r.startOver()
		case "n", "esc":
			r.confirming = false
		}
		return nil
	}

	switch msg.String() {
	case "tab", "shift+tab":
		r.tab = (r.tab + 1) % tab(len(tabNames))
		r.scroll = 0
	case "1":
		r.tab, r.scroll = tabPaper, 0
	case "2":
		r.tab, r.scroll = tabBlueprint, 0
	case "up", "k":
		r.scroll--
	case "down", "j":
		r.scroll++
	case "pgup":
		r.scroll -= r.page
	case "pgdown", "space":
		r.scroll += r.page
	case "home", "g":
		r.scroll = 0
	case "w":
		return r.exportWord()
	case "x":
		return r.exportExcel()
	case "c":
		return r.copy()
	case "n", "esc":
		r.confirming = true
	}
	if r.scroll < 0 {
		r.scroll = 0
	}
	return nil
}

func (r *ResultScreen) startOver() tea.Cmd {
	r.job.discard()
	r.sub.close()
	return func() tea.Msg { return router.PopScreenMsg{} }
}

func (r *ResultScreen) exportWord() tea.Cmd {
	e, d, ctx := r.job.deps.Exporter, r.data(), r.job.deps.Context
	if e == nil || d == nil {
		return nil
	}
	r.setNotice("Menyiapkan dokumen Word...", false)
	return func() tea.Msg {
		path, err := e.Word(ctx, d)
		return exportDoneMsg{Notice: "Soal disimpan ke " + path, Err: err}
	}
}

func (r *ResultScreen) exportExcel() tea.Cmd {
	e, d := r.job.deps.Exporter, r.data()
	if e == nil || d == nil {
		return nil
	}
	return func() tea.Msg {
		path, err := e.Excel(d)
		return exportDoneMsg{Notice: "Kisi-kisi disimpan ke " + path, Err: err}
	}
}

func (r *ResultScreen) copy() tea.Cmd {
	e, d, current := r.job.deps.Exporter, r.data(), r.tab
	if e == nil || d == nil {
		return nil
	}
	return func() tea.Msg {
		if current == tabBlueprint {
			return exportDoneMsg{Notice: "Kisi-kisi disalin ke clipboard.", Err: e.CopyBlueprint(d)}
		}
		return exportDoneMsg{Notice: "Soal disalin ke clipboard.", Err: e.CopyPaper(d)}
	}
}

func (r *ResultScreen) View(width, height int) string {
	d := r.data()
	if d == nil {
		return ""
	}

	var header strings.Builder
	for i, name := range tabNames {
		if tab(i) == r.tab {
			header.WriteString(theme.TabActive.Render(name))
		} else {
			header.WriteString(theme.TabInactive.Render(name))
		}
	}
	header.WriteString("  " + theme.Hint.Render(fmt.Sprintf("%s · %s · %d soal", d.Subject, d.Grade, len(d.Questions))))
	header.WriteString("\n")

	if p := r.snap.Progress; p != nil && r.snap.Phase == orchestrator.PhaseIllustrating {
		bar := components.NewProgressBar("Membuat gambar", p.Current, p.Total, min(width-2, 60))
		header.WriteString(" " + bar.View() + "\n")
	}

	switch {
	case r.confirming:
		header.WriteString(" " + theme.Warning.Render("Mulai ulang? Soal yang sudah dibuat akan dibuang. (y/n)") + "\n")
	case r.notice != "" && r.noticeErr:
		header.WriteString(" " + theme.Warning.Render(r.notice) + "\n")
	case r.notice != "":
		header.WriteString(" " + theme.Notice.Render(r.notice) + "\n")
	}

	head := header.String()
	bodyHeight := max(height-lipgloss.Height(head)-1, 1)
	r.page = max(bodyHeight-1, 1)

	var text string
	if r.tab == tabBlueprint {
		text = blueprintText(d)
	} else {
		text = paperText(d, r.job.deps.Paper)
	}
	lines := strings.Split(lipgloss.NewStyle().Width(max(width-2, 20)).Render(text), "\n")

	maxScroll := max(len(lines)-bodyHeight, 0)
	if r.scroll > maxScroll {
		r.scroll = maxScroll
	}
	end := min(r.scroll+bodyHeight, len(lines))
	body := strings.Join(lines[r.scroll:end], "\n")

	return head + "\n" + lipgloss.NewStyle().PaddingLeft(1).Render(body)
}

// paperText is the plain-text paper followed by the answer key.
func paperText(d *assessment.Data, opts render.PaperOptions) string {
	var b strings.Builder
	b.WriteString(render.PaperText(d, opts))
	b.WriteString("\n\nKUNCI JAWABAN & PANDUAN PENSKORAN\n")
	for _, sec := range render.Sections(d) {
		for _, it := range sec.Items {
			fmt.Fprintf(&b, "%d. %s", it.No, it.CorrectAnswer)
			if it.ScoringGuide != "" {
				fmt.Fprintf(&b, " (%s)", it.ScoringGuide)
			}
			fmt.Fprintf(&b, "  [%s, %s]\n", it.CognitiveLevel, it.Difficulty)
		}
	}
	return b.String()
}

// blueprintText lays the blueprint out one block per row, which reads
// better than a ten-column table in a terminal.
func blueprintText(d *assessment.Data) string {
	var b strings.Builder
	fmt.Fprintf(&b, "KISI-KISI PENULISAN SOAL\n%s · %s\n\n", d.Subject, d.Grade)
	for _, row := range render.BlueprintRows(d) {
		if row.CP != "" {
			fmt.Fprintf(&b, "CP: %s\n\n", row.CP)
		}
		fmt.Fprintf(&b, "%d. No Soal %d · %s · %s · %s\n", row.No, row.QuestionNo, row.Type, row.Level, row.Difficulty)
		fmt.Fprintf(&b, "   TP: %s\n", row.Objective)
		fmt.Fprintf(&b, "   Indikator: %s\n", row.Indicator)
		fmt.Fprintf(&b, "   Soal: %s\n", row.Excerpt)
		fmt.Fprintf(&b, "   Kunci: %s\n\n", row.Answer)
	}
	return b.String()
}
