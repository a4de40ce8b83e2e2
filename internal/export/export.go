// Package export writes the Word and Excel files to disk and copies the
// plain-text renditions to the system clipboard.
package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/abhisek/lembar/internal/assessment"
	"github.com/abhisek/lembar/internal/blobstore"
	"github.com/abhisek/lembar/internal/render"
)

// Exporter produces export artifacts for a finished or partial assessment.
// Failures are returned as *render.ExportError and never touch the data.
type Exporter struct {
	Dir    string
	Blobs  blobstore.Store
	Paper  render.PaperOptions
	Logger *zap.Logger

	// Clipboard replaces the system clipboard when set.
	Clipboard func(string) error
}

// New creates an Exporter writing into dir.
func New(dir string, blobs blobstore.Store, paper render.PaperOptions, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		Dir:    dir,
		Blobs:  blobs,
		Paper:  paper,
		Logger: logger.Named("export"),
	}
}

// Word writes the paper as a Word-compatible document with inlined
// illustrations and returns its path.
func (e *Exporter) Word(ctx context.Context, d *assessment.Data) (string, error) {
	opts := e.Paper
	if e.Blobs != nil {
		src, err := render.InlineImages(ctx, e.Blobs, d)
		if err != nil {
			return "", err
		}
		opts.ImageSrc = src
	}

	var buf bytes.Buffer
	if err := render.WordDocument(&buf, d, opts); err != nil {
		return "", &render.ExportError{Kind: render.KindWord, Err: err}
	}
	return e.write(render.KindWord, render.WordFileName(d), buf.Bytes())
}

// Excel writes the blueprint as a spreadsheet-readable file and returns its path.
func (e *Exporter) Excel(d *assessment.Data) (string, error) {
	var buf bytes.Buffer
	if err := render.BlueprintCSV(&buf, d); err != nil {
		return "", &render.ExportError{Kind: render.KindExcel, Err: err}
	}
	return e.write(render.KindExcel, render.ExcelFileName(d), buf.Bytes())
}

// CopyPaper puts the plain-text paper on the clipboard.
func (e *Exporter) CopyPaper(d *assessment.Data) error {
	return e.copy(render.PaperText(d, e.Paper))
}

// CopyBlueprint puts the tab-separated blueprint on the clipboard.
func (e *Exporter) CopyBlueprint(d *assessment.Data) error {
	return e.copy(render.BlueprintTSV(d))
}

func (e *Exporter) copy(text string) error {
	write := e.Clipboard
	if write == nil {
		write = clipboard.WriteAll
	}
	if err := write(text); err != nil {
		e.Logger.Warn("clipboard copy failed", zap.Error(err))
		return &render.ExportError{Kind: render.KindClipboard, Err: err}
	}
	return nil
}

func (e *Exporter) write(kind, name string, data []byte) (string, error) {
	dir := e.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &render.ExportError{Kind: kind, Err: fmt.Errorf("create output dir: %w", err)}
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &render.ExportError{Kind: kind, Err: err}
	}
	e.Logger.Info("export written", zap.String("kind", kind), zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}
