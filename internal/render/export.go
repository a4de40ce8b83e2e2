package render

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/abhisek/lembar/internal/assessment"
	"github.com/abhisek/lembar/internal/blobstore"
)

// Export kinds.
const (
	KindWord      = "word"
	KindExcel     = "excel"
	KindClipboard = "clipboard"
)

// ExportError reports a failed export. It is shown to the user as a
// notice and never affects the session.
type ExportError struct {
	Kind string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Kind, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// utf8BOM lets spreadsheet programs detect the encoding.
const utf8BOM = "\ufeff"

// WordDocument writes the paper as an HTML document Word opens
// directly. opts.ImageSrc must yield self-contained sources (see
// InlineImages); the answer key is always left out.
func WordDocument(w io.Writer, d *assessment.Data, opts PaperOptions) error {
	opts.IncludeAnswerKey = false
	view := newPaperView(d, opts)
	view.OfficeHead = officeHead
	if err := templates.ExecuteTemplate(w, "word", view); err != nil {
		return &ExportError{Kind: KindWord, Err: err}
	}
	return nil
}

// BlueprintCSV writes the blueprint as semicolon-separated UTF-8 text
// with a byte-order mark.
func BlueprintCSV(w io.Writer, d *assessment.Data) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return &ExportError{Kind: KindExcel, Err: err}
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(BlueprintHeader); err != nil {
		return &ExportError{Kind: KindExcel, Err: err}
	}
	for _, row := range BlueprintRows(d) {
		if err := cw.Write(row.Cells()); err != nil {
			return &ExportError{Kind: KindExcel, Err: err}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return &ExportError{Kind: KindExcel, Err: err}
	}
	return nil
}

// BlueprintTSV renders the blueprint as tab-separated text, the form
// spreadsheets accept on paste.
func BlueprintTSV(d *assessment.Data) string {
	var b strings.Builder
	writeTSVRow(&b, BlueprintHeader)
	for _, row := range BlueprintRows(d) {
		writeTSVRow(&b, row.Cells())
	}
	return b.String()
}

var tsvReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ")

func writeTSVRow(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte('\t')
		}
		b.WriteString(tsvReplacer.Replace(c))
	}
	b.WriteByte('\n')
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9-]+`)

// FileName builds an export file name such as Soal_IPA_Kelas_1.doc.
func FileName(prefix string, d *assessment.Data, ext string) string {
	name := strings.Join([]string{prefix, d.Subject, d.Grade}, "_")
	return unsafeFileChars.ReplaceAllString(name, "_") + ext
}

// WordFileName is the file name of the Word export.
func WordFileName(d *assessment.Data) string { return FileName("Soal", d, ".doc") }

// ExcelFileName is the file name of the Excel export.
func ExcelFileName(d *assessment.Data) string { return FileName("Kisi-kisi", d, ".csv") }

// InlineImages loads every attached illustration from store and returns
// an ImageSrc function that yields data URIs. Missing blobs render as
// no picture.
func InlineImages(ctx context.Context, store blobstore.Store, d *assessment.Data) (func(string) string, error) {
	uris := make(map[string]string)
	for _, q := range d.Questions {
		if q.ImageRef == "" {
			continue
		}
		if _, ok := uris[q.ImageRef]; ok {
			continue
		}
		blob, err := store.Get(ctx, q.ImageRef)
		if err != nil {
			if errors.Is(err, blobstore.ErrNotFound) {
				continue
			}
			return nil, &ExportError{Kind: KindWord, Err: err}
		}
		uris[q.ImageRef] = blob.DataURI()
	}
	return func(ref string) string { return uris[ref] }, nil
}
