package generation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lembar/internal/assessment"
	"github.com/abhisek/lembar/internal/assessmentgen"
	"github.com/abhisek/lembar/internal/blobstore"
	"github.com/abhisek/lembar/internal/export"
	"github.com/abhisek/lembar/internal/illustration"
	"github.com/abhisek/lembar/internal/llm"
	"github.com/abhisek/lembar/internal/orchestrator"
	"github.com/abhisek/lembar/internal/render"
	"github.com/abhisek/lembar/internal/router"
)

const twoQuestionJSON = `{
	"cpReference": "Peserta didik mengenal bagian tubuh hewan.",
	"phase": "Fase A",
	"questions": [
		{"id": 1, "type": "Pilihan Ganda", "indicator": "Menyebutkan bagian tubuh kucing",
		 "cognitiveLevel": "C1", "difficulty": "Mudah", "questionText": "Kucing berjalan dengan ....",
		 "options": ["kaki", "sayap", "sirip"], "correctAnswer": "kaki", "tpAssociated": "Mengenal hewan",
		 "needsImage": true, "imagePrompt": "kucing berjalan"},
		{"id": 2, "type": "Isian Singkat", "indicator": "Menyebutkan tempat hidup ikan",
		 "cognitiveLevel": "C1", "difficulty": "Mudah", "questionText": "Ikan hidup di ....",
		 "correctAnswer": "air", "tpAssociated": "Mengenal hewan", "needsImage": false}
	]
}`

func testInputs() assessment.FormInputs {
	in := assessment.DefaultFormInputs()
	in.Subject = "IPA"
	in.Materials = []string{"Hewan di sekitarku"}
	in.CountMCQ, in.CountShort, in.CountEssay = 1, 1, 0
	return in
}

type fixture struct {
	deps      Deps
	copied    string
	copyError error
}

func newFixture(t *testing.T, text llm.MockResponse, images ...llm.MockImageResponse) *fixture {
	t.Helper()
	blobs := blobstore.NewMemoryStore()
	gen := assessmentgen.New(llm.NewMockProvider(text), assessmentgen.DefaultConfig(), nil)
	orch := orchestrator.New(gen, illustration.NewRequester(llm.NewMockImageProvider(images...)), blobs, orchestrator.Options{})

	f := &fixture{}
	exp := export.New(t.TempDir(), blobs, render.DefaultPaperOptions(), nil)
	exp.Clipboard = func(s string) error {
		if f.copyError != nil {
			return f.copyError
		}
		f.copied = s
		return nil
	}
	f.deps = Deps{
		Context:  context.Background(),
		Runner:   orch,
		Session:  orchestrator.NewSession(),
		Exporter: exp,
		Paper:    render.DefaultPaperOptions(),
	}
	return f
}

// runProgress drives a progress screen through a complete run without the
// Bubble Tea runtime and returns the follow-up command and run outcome.
func runProgress(t *testing.T, p *ProgressScreen) (tea.Cmd, runDoneMsg) {
	t.Helper()
	p.sub = subscribe(p.job.deps.Session)
	done, ok := p.job.start()().(runDoneMsg)
	if !ok {
		t.Fatal("start did not yield runDoneMsg")
	}
	_, cmd := p.Update(p.sub.next()())
	return cmd, done
}

func keyPress(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	}
	return tea.KeyPressMsg{Code: []rune(s)[0], Text: s}
}

func resultFrom(t *testing.T, cmd tea.Cmd) *ResultScreen {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	r, ok := msg.Screen.(*ResultScreen)
	if !ok {
		t.Fatalf("expected *ResultScreen, got %T", msg.Screen)
	}
	r.Init()
	return r
}

func TestProgressHandsOverToResult(t *testing.T) {
	f := newFixture(t,
		llm.MockResponse{Content: json.RawMessage(twoQuestionJSON)},
		llm.MockImageResponse{MIMEType: "image/png", Data: []byte("kucing")},
	)
	p := NewProgress(f.deps, testInputs())

	cmd, done := runProgress(t, p)
	if done.Err != nil {
		t.Fatalf("run failed: %v", done.Err)
	}
	r := resultFrom(t, cmd)

	view := r.View(100, 40)
	if !strings.Contains(view, "Kucing berjalan dengan") {
		t.Errorf("paper tab missing question:\n%s", view)
	}
	if !strings.Contains(view, "[Gambar]") {
		t.Errorf("expected illustration marker:\n%s", view)
	}

	r.Update(keyPress("tab"))
	view = r.View(100, 40)
	if !strings.Contains(view, "KISI-KISI") || !strings.Contains(view, "Indikator: Menyebutkan tempat hidup ikan") {
		t.Errorf("blueprint tab not rendered:\n%s", view)
	}
}

func TestProgressShowsFailureAndGoesBack(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("503")}})
	p := NewProgress(f.deps, testInputs())

	cmd, done := runProgress(t, p)
	if done.Err == nil {
		t.Fatal("expected run error")
	}
	if cmd == nil {
		t.Fatal("expected the screen to keep listening")
	}
	if p.failure != assessmentgen.UserMessage {
		t.Fatalf("failure = %q", p.failure)
	}
	if !strings.Contains(p.View(100, 30), assessmentgen.UserMessage) {
		t.Error("failure message not shown")
	}

	p.Update(keyPress("down"))
	_, cmd = p.Update(keyPress("enter"))
	if cmd == nil {
		t.Fatal("expected a command from the menu")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Fatalf("expected PopScreenMsg, got %T", cmd())
	}
	if got := f.deps.Session.Snapshot().Phase; got != orchestrator.PhaseIdle {
		t.Errorf("session phase = %s, want idle", got)
	}
}

func TestProgressRetryReplacesScreen(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("503")}})
	p := NewProgress(f.deps, testInputs())
	runProgress(t, p)

	_, cmd := p.Update(keyPress("enter"))
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*ProgressScreen); !ok {
		t.Errorf("expected a fresh progress screen, got %T", msg.Screen)
	}
}

func TestResultReportsFailedIllustrations(t *testing.T) {
	f := newFixture(t,
		llm.MockResponse{Content: json.RawMessage(twoQuestionJSON)},
		llm.MockImageResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("429")}},
	)
	p := NewProgress(f.deps, testInputs())
	cmd, done := runProgress(t, p)
	r := resultFrom(t, cmd)

	r.Update(done)
	if !r.noticeErr || !strings.Contains(r.notice, "1 gambar gagal dibuat") {
		t.Errorf("notice = %q", r.notice)
	}
	if strings.Contains(r.View(100, 40), "[Gambar]") {
		t.Error("failed illustration must not be shown")
	}
}

func TestResultExportAndCopy(t *testing.T) {
	f := newFixture(t,
		llm.MockResponse{Content: json.RawMessage(twoQuestionJSON)},
		llm.MockImageResponse{MIMEType: "image/png", Data: []byte("kucing")},
	)
	p := NewProgress(f.deps, testInputs())
	cmd, _ := runProgress(t, p)
	r := resultFrom(t, cmd)

	_, cmd = r.Update(keyPress("x"))
	r.Update(cmd())
	if r.noticeErr || !strings.Contains(r.notice, "Kisi-kisi_IPA_Kelas_1.csv") {
		t.Errorf("excel notice = %q", r.notice)
	}

	_, cmd = r.Update(keyPress("w"))
	r.Update(cmd())
	if r.noticeErr || !strings.Contains(r.notice, "Soal_IPA_Kelas_1.doc") {
		t.Errorf("word notice = %q", r.notice)
	}

	_, cmd = r.Update(keyPress("c"))
	r.Update(cmd())
	if !strings.Contains(f.copied, "Kucing berjalan dengan") {
		t.Errorf("paper not copied: %q", f.copied)
	}

	r.Update(keyPress("tab"))
	_, cmd = r.Update(keyPress("c"))
	r.Update(cmd())
	if !strings.HasPrefix(f.copied, "No\tCP\t") {
		t.Errorf("blueprint not copied as TSV: %q", f.copied)
	}

	f.copyError = errors.New("no clipboard")
	_, cmd = r.Update(keyPress("c"))
	r.Update(cmd())
	if !r.noticeErr || !strings.Contains(r.notice, "Gagal menyalin") {
		t.Errorf("clipboard failure notice = %q", r.notice)
	}
	if r.data() == nil || len(r.data().Questions) != 2 {
		t.Error("export failure must not touch the assessment")
	}
}

func TestResultStartOverNeedsConfirmation(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Content: json.RawMessage(twoQuestionJSON)},
		llm.MockImageResponse{MIMEType: "image/png", Data: []byte("kucing")})
	p := NewProgress(f.deps, testInputs())
	cmd, _ := runProgress(t, p)
	r := resultFrom(t, cmd)

	_, cmd = r.Update(keyPress("n"))
	if cmd != nil || !r.confirming {
		t.Fatal("first n should only ask for confirmation")
	}
	r.Update(keyPress("n"))
	if r.confirming {
		t.Fatal("second n should cancel the prompt")
	}
	if f.deps.Session.Snapshot().Phase != orchestrator.PhaseComplete {
		t.Fatal("cancelled prompt must keep the assessment")
	}

	r.Update(keyPress("esc"))
	_, cmd = r.Update(keyPress("y"))
	if cmd == nil {
		t.Fatal("expected a command after confirming")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Fatalf("expected PopScreenMsg, got %T", cmd())
	}
	if got := f.deps.Session.Snapshot().Phase; got != orchestrator.PhaseIdle {
		t.Errorf("session phase = %s, want idle", got)
	}
}

func TestResultIgnoresForeignSnapshots(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Content: json.RawMessage(twoQuestionJSON)},
		llm.MockImageResponse{MIMEType: "image/png", Data: []byte("kucing")})
	p := NewProgress(f.deps, testInputs())
	cmd, _ := runProgress(t, p)
	r := resultFrom(t, cmd)

	stale := make(chan orchestrator.Snapshot)
	_, next := r.Update(snapshotMsg{sub: stale, snap: orchestrator.Snapshot{Phase: orchestrator.PhaseFailed}})
	if next != nil {
		t.Error("foreign snapshot must not schedule another read")
	}
	if r.snap.Phase != orchestrator.PhaseComplete {
		t.Errorf("phase = %s, want complete", r.snap.Phase)
	}
}
