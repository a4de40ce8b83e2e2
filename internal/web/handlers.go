package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abhisek/lembar/internal/assessment"
	"github.com/abhisek/lembar/internal/blobstore"
	"github.com/abhisek/lembar/internal/orchestrator"
	"github.com/abhisek/lembar/internal/render"
)

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, "form", newFormView(assessment.DefaultFormInputs()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.registry.Len()})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "formulir tidak valid", http.StatusBadRequest)
		return
	}
	in, err := inputsFromForm(r.PostForm)
	if err != nil {
		view := newFormView(in)
		view.Error = err.Error()
		var verr *assessment.ValidationError
		if errors.As(err, &verr) {
			view.Field = verr.Field
			view.Error = verr.Message
		}
		s.renderPage(w, http.StatusUnprocessableEntity, "form", view)
		return
	}

	id, session := s.registry.Create()
	s.startRun(id, session, in)
	http.Redirect(w, r, "/sessions/"+id, http.StatusSeeOther)
}

func (s *Server) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	in, err := inputsFromJSON(r.Body)
	if err != nil {
		status := http.StatusBadRequest
		var verr *assessment.ValidationError
		if errors.As(err, &verr) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	id, session := s.registry.Create()
	s.startRun(id, session, in)
	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":     id,
		"status": "/api/sessions/" + id,
		"events": "/api/sessions/" + id + "/events",
	})
}

// session resolves the {id} URL parameter, answering 404 itself.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *orchestrator.Session, bool) {
	id := chi.URLParam(r, "id")
	session, ok := s.registry.Get(id)
	if !ok {
		http.Error(w, "sesi tidak ditemukan", http.StatusNotFound)
		return id, nil, false
	}
	return id, session, true
}

// assessmentOf answers 409 when the session has no assessment yet.
func (s *Server) assessmentOf(w http.ResponseWriter, r *http.Request) (*assessment.Data, bool) {
	_, session, ok := s.session(w, r)
	if !ok {
		return nil, false
	}
	data := session.Snapshot().Data
	if data == nil {
		http.Error(w, "soal belum tersedia", http.StatusConflict)
		return nil, false
	}
	return data, true
}

type sessionView struct {
	ID         string
	Snapshot   orchestrator.Snapshot
	Percent    int
	PaperStyle template.HTML
	Paper      template.HTML
	Blueprint  template.HTML
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	id, session, ok := s.session(w, r)
	if !ok {
		return
	}
	snap := session.Snapshot()
	view := sessionView{ID: id, Snapshot: snap, PaperStyle: render.PaperStyle()}
	if p := snap.Progress; p != nil && p.Total > 0 {
		view.Percent = 100 * p.Current / p.Total
	}
	if snap.Data != nil {
		var paper, blueprint bytes.Buffer
		if err := render.Paper(&paper, snap.Data, s.paperOptions()); err != nil {
			s.serverError(w, "render paper", err)
			return
		}
		if err := render.Blueprint(&blueprint, snap.Data); err != nil {
			s.serverError(w, "render blueprint", err)
			return
		}
		view.Paper = template.HTML(paper.String())
		view.Blueprint = template.HTML(blueprint.String())
	}
	s.renderPage(w, http.StatusOK, "session", view)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	_, session, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

func (s *Server) handlePaper(w http.ResponseWriter, r *http.Request) {
	data, ok := s.assessmentOf(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	var err error
	if r.URL.Query().Get("fragment") != "" {
		err = render.Paper(&buf, data, s.paperOptions())
	} else {
		err = render.PaperPage(&buf, data, s.paperOptions())
	}
	if err != nil {
		s.serverError(w, "render paper", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleBlueprint(w http.ResponseWriter, r *http.Request) {
	data, ok := s.assessmentOf(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.Blueprint(&buf, data); err != nil {
		s.serverError(w, "render blueprint", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleExportWord(w http.ResponseWriter, r *http.Request) {
	data, ok := s.assessmentOf(w, r)
	if !ok {
		return
	}
	opts := s.paperOptions()
	src, err := render.InlineImages(r.Context(), s.blobs, data)
	if err != nil {
		s.serverError(w, "export word", err)
		return
	}
	opts.ImageSrc = src

	var buf bytes.Buffer
	if err := render.WordDocument(&buf, data, opts); err != nil {
		s.serverError(w, "export word", err)
		return
	}
	attach(w, "application/msword", render.WordFileName(data))
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	data, ok := s.assessmentOf(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.BlueprintCSV(&buf, data); err != nil {
		s.serverError(w, "export excel", err)
		return
	}
	attach(w, "text/csv; charset=utf-8", render.ExcelFileName(data))
	_, _ = buf.WriteTo(w)
}

// handleReset discards the session and everything it holds.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id, _, ok := s.session(w, r)
	if !ok {
		return
	}
	s.registry.Delete(id)
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleIllustration(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	if !blobstore.ValidKey(ref) {
		http.NotFound(w, r)
		return
	}
	blob, err := s.blobs.Get(r.Context(), ref)
	if errors.Is(err, blobstore.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, "load illustration", err)
		return
	}
	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	_, _ = w.Write(blob.Data)
}

func (s *Server) paperOptions() render.PaperOptions {
	opts := s.paper
	opts.IncludeAnswerKey = true
	opts.ImageSrc = func(ref string) string { return "/illustrations/" + ref }
	return opts
}

func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.serverError(w, "render "+name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) serverError(w http.ResponseWriter, what string, err error) {
	s.logger.Error(what+" failed", zap.Error(err))
	http.Error(w, "Terjadi kesalahan sistem. Silakan coba beberapa saat lagi.", http.StatusInternalServerError)
}

func attach(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
