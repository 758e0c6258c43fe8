package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/orgtower/pkg/buildinfo"
	"github.com/matzehuels/orgtower/pkg/errors"
	orgio "github.com/matzehuels/orgtower/pkg/io"
	"github.com/matzehuels/orgtower/pkg/pipeline"
	"github.com/matzehuels/orgtower/pkg/render"
	"github.com/matzehuels/orgtower/pkg/session"
)

// CreateResponse is returned by POST /v1/sessions.
type CreateResponse struct {
	ID       string          `json:"id"`
	Document render.Document `json:"document"`
}

// RepositionRequest is the body of POST /v1/sessions/{id}/positions/{contactID}.
// A zero zoom is treated as 1.
type RepositionRequest struct {
	DX   float64 `json:"dx"`
	DY   float64 `json:"dy"`
	Zoom float64 `json:"zoom"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	a, err := orgio.ReadAnalysis(http.MaxBytesReader(w, r.Body, maxBodyBytes), orgio.FormatJSON)
	if err != nil {
		s.writeError(w, err)
		return
	}
	dept := r.URL.Query().Get("department")
	if err := errors.ValidateDepartment(dept); err != nil {
		s.writeError(w, err)
		return
	}

	sess, err := s.sessions.Create(r.Context(), a, dept)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := sess.Document(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("session created", "id", sess.ID(), "contacts", len(a.Contacts))
	writeJSON(w, http.StatusCreated, CreateResponse{ID: sess.ID(), Document: doc})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if q := r.URL.Query(); q.Has("department") && q.Get("department") != sess.Department() {
		if err := sess.SetDepartment(q.Get("department")); err != nil {
			s.writeError(w, err)
			return
		}
		if err := s.sessions.Save(r.Context(), sess); err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.writeDocument(w, r, sess)
}

func (s *Server) handleDepartments(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active":      sess.Department(),
		"departments": sess.Departments(),
	})
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}

	artifacts, err := sess.Render(r.Context(), []string{format})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	w.Write(artifacts[format])
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:      "image/svg+xml",
	pipeline.FormatGraphviz: "image/svg+xml",
	pipeline.FormatJSON:     "application/json",
	pipeline.FormatDOT:      "text/vnd.graphviz",
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	contactID := chi.URLParam(r, "contactID")
	if err := errors.ValidateContactID(contactID); err != nil {
		s.writeError(w, err)
		return
	}

	if sess.Delete(r.Context(), contactID) {
		if err := s.sessions.Save(r.Context(), sess); err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.writeDocument(w, r, sess)
}

func (s *Server) handleReposition(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	contactID := chi.URLParam(r, "contactID")
	if err := errors.ValidateContactID(contactID); err != nil {
		s.writeError(w, err)
		return
	}

	var req RepositionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode reposition request"))
		return
	}
	if err := errors.ValidateZoom(req.Zoom); err != nil {
		s.writeError(w, err)
		return
	}

	// The view must be built before a drag can land on it.
	if _, err := sess.Document(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	if sess.Reposition(r.Context(), contactID, req.DX, req.DY, req.Zoom) {
		if err := s.sessions.Save(r.Context(), sess); err != nil {
			s.writeError(w, err)
			return
		}
	} else {
		s.logger.Debug("dropped stale reposition", "session", sess.ID(), "contact", contactID)
	}
	s.writeDocument(w, r, sess)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) writeDocument(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	doc, err := sess.Document(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
