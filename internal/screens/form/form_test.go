package form

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lembar/internal/assessment"
	"github.com/abhisek/lembar/internal/router"
	"github.com/abhisek/lembar/internal/screen"
)

type stubScreen struct {
	in assessment.FormInputs
}

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return "next" }
func (s *stubScreen) Title() string                          { return "next" }

func validInputs() assessment.FormInputs {
	in := assessment.DefaultFormInputs()
	in.Subject = "Matematika"
	in.Materials = []string{"Penjumlahan", "Pengurangan"}
	return in
}

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestInputsRoundTrip(t *testing.T) {
	want := validInputs()
	want.LearningObjectives = []string{"Menjumlahkan bilangan 1-10"}
	f := New(want, nil)

	got, err := f.Inputs()
	if err != nil {
		t.Fatalf("Inputs: %v", err)
	}
	if got.Subject != want.Subject || got.Grade != want.Grade || got.Level != want.Level {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if strings.Join(got.Materials, "|") != "Penjumlahan|Pengurangan" {
		t.Errorf("materials = %v", got.Materials)
	}
	if len(got.LearningObjectives) != 1 {
		t.Errorf("objectives = %v", got.LearningObjectives)
	}
	if got.CountMCQ != 10 || got.CountShort != 5 || got.CountEssay != 5 {
		t.Errorf("counts = %d/%d/%d", got.CountMCQ, got.CountShort, got.CountEssay)
	}
	if !got.SmartImages {
		t.Error("expected smart images on")
	}
}

func TestSubmitPushesNextScreen(t *testing.T) {
	var submitted assessment.FormInputs
	f := New(validInputs(), func(in assessment.FormInputs) screen.Screen {
		submitted = in
		return &stubScreen{in: in}
	})
	f.Init()

	_, cmd := f.Update(key("enter"))
	if cmd == nil {
		t.Fatal("expected a command on submit")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*stubScreen); !ok {
		t.Errorf("unexpected screen %T", msg.Screen)
	}
	if submitted.Subject != "Matematika" {
		t.Errorf("submitted inputs = %+v", submitted)
	}
}

func TestSubmitRejectsMissingSubject(t *testing.T) {
	in := validInputs()
	in.Subject = ""
	called := false
	f := New(in, func(assessment.FormInputs) screen.Screen {
		called = true
		return &stubScreen{}
	})
	f.Init()

	_, cmd := f.Update(key("enter"))
	if cmd != nil {
		if _, ok := cmd().(router.PushScreenMsg); ok {
			t.Fatal("invalid form must not advance")
		}
	}
	if called {
		t.Error("submit func must not be called for invalid inputs")
	}
	if f.focus != fieldSubject {
		t.Errorf("expected focus on subject, got %d", f.focus)
	}
	if !strings.Contains(f.View(100, 40), "mata pelajaran wajib diisi") {
		t.Error("expected validation message in view")
	}
}

func TestLevelChangeRestrictsGrades(t *testing.T) {
	f := New(validInputs(), nil)
	f.Init()
	f.setFocus(fieldLevel)

	f.Update(key("right"))

	if got := f.choices[fieldLevel].Value(); got != "SMP" {
		t.Fatalf("level = %q, want SMP", got)
	}
	if got := f.choices[fieldGrade].Value(); got != "Kelas 7" {
		t.Errorf("grade = %q, want Kelas 7", got)
	}
	in, err := f.Inputs()
	if err != nil {
		t.Fatalf("Inputs: %v", err)
	}
	if in.Grade != "Kelas 7" {
		t.Errorf("inputs grade = %q", in.Grade)
	}
}

func TestNumericFieldIgnoresLetters(t *testing.T) {
	in := validInputs()
	in.CountMCQ = 0
	f := New(in, nil)
	f.Init()
	f.setFocus(fieldMCQ)
	f.texts[fieldMCQ].SetValue("")

	for _, k := range []string{"1", "x", "2"} {
		f.Update(key(k))
	}

	if got := f.texts[fieldMCQ].Value(); got != "12" {
		t.Errorf("value = %q, want 12", got)
	}
}

func TestTabCyclesFocus(t *testing.T) {
	f := New(validInputs(), nil)
	f.Init()
	start := f.focus

	for range fieldCount {
		f.Update(key("tab"))
	}
	if f.focus != start {
		t.Errorf("expected focus to wrap back to %d, got %d", start, f.focus)
	}
}
