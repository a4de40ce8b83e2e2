package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/abhisek/lembar/internal/assessment"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("render").ParseFS(templateFS, "templates/*.tmpl"))

// officeHead asks Word to open the document in print layout.
const officeHead = template.HTML(`<!--[if gte mso 9]><xml><w:WordDocument><w:View>Print</w:View><w:Zoom>100</w:Zoom></w:WordDocument></xml><![endif]-->`)

type paperView struct {
	Data       *assessment.Data
	Sections   []Section
	Materials  string
	Options    PaperOptions
	Images     map[int]template.URL
	OfficeHead template.HTML
}

func newPaperView(d *assessment.Data, opts PaperOptions) paperView {
	opts = opts.withDefaults()
	images := make(map[int]template.URL)
	for _, q := range d.Questions {
		if src := opts.imageSrc(q.ImageRef); src != "" {
			// Sources come from our own blob keys or data URIs.
			images[q.ID] = template.URL(src)
		}
	}
	return paperView{
		Data:      d,
		Sections:  Sections(d),
		Materials: Materials(d),
		Options:   opts,
		Images:    images,
	}
}

// Paper writes the printable paper as an HTML fragment. Use
// PaperStyle in the page head.
func Paper(w io.Writer, d *assessment.Data, opts PaperOptions) error {
	return templates.ExecuteTemplate(w, "paper", newPaperView(d, opts))
}

// PaperPage writes the printable paper as a standalone HTML page.
func PaperPage(w io.Writer, d *assessment.Data, opts PaperOptions) error {
	return templates.ExecuteTemplate(w, "paper-page", newPaperView(d, opts))
}

// PaperStyle returns the style block the paper fragment expects.
func PaperStyle() template.HTML {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "paper-style", nil); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}

// PaperText renders the paper as plain text for the clipboard. The
// answer key is never included.
func PaperText(d *assessment.Data, opts PaperOptions) string {
	opts = opts.withDefaults()
	var b strings.Builder

	fmt.Fprintln(&b, "LEMBAR EVALUASI PESERTA DIDIK")
	fmt.Fprintln(&b, strings.ToUpper(d.School))
	fmt.Fprintf(&b, "Tahun Pelajaran %s\n\n", opts.AcademicYear)
	fmt.Fprintf(&b, "Mata Pelajaran : %s\n", d.Subject)
	fmt.Fprintf(&b, "Kelas / Fase   : %s / %s\n", d.Grade, d.Phase)
	fmt.Fprintf(&b, "Materi Pokok   : %s\n", Materials(d))
	fmt.Fprintln(&b, "Nama Siswa     : ......................")
	fmt.Fprintln(&b, "Nomor Absen    : ......................")
	fmt.Fprintln(&b, "Hari/Tanggal   : ......................")

	for _, sec := range Sections(d) {
		fmt.Fprintf(&b, "\nBagian %s. %s\n", sec.Numeral, strings.ToUpper(sec.Title))
		fmt.Fprintf(&b, "%s\n\n", sec.Instruction)
		for _, it := range sec.Items {
			if it.HasIllustration() {
				fmt.Fprintln(&b, "[Gambar]")
			}
			fmt.Fprintf(&b, "%d. %s\n", it.No, it.Text)
			for _, c := range it.Choices {
				fmt.Fprintf(&b, "   %s. %s\n", c.Label, c.Text)
			}
			for range sec.AnswerLines() {
				fmt.Fprintln(&b, "   ..............................................................")
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\n%s, ....................\n", opts.City)
	fmt.Fprintln(&b, "Guru Mata Pelajaran                    Orang Tua/Wali")
	fmt.Fprintln(&b, "\n( ____________________ )               ( ____________________ )")
	return b.String()
}
