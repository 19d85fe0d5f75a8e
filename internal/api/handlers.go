package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/leapchat/internal/dataset"
)

// maxUploadBytes caps dataset uploads at 64 MiB.
const maxUploadBytes = 64 << 20

// handleCreateSession ingests an uploaded CSV and starts a session for it.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer func() { _ = f.Close() }()

	ds, err := dataset.ParseCSV(f)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := header.Filename
	if name == "" {
		name = "upload.csv"
	}

	sess, err := s.manager.Create(name, ds)
	if err != nil {
		s.logger.Error("failed to create session", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	s.respondJSON(w, http.StatusCreated, sessionResponse{
		ID:      sess.ID(),
		Name:    sess.Name(),
		Profile: sess.Profile(),
	})
}

// handleGetSession returns session metadata and the cached profile.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.manager.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	s.respondJSON(w, http.StatusOK, sessionResponse{
		ID:      sess.ID(),
		Name:    sess.Name(),
		Profile: sess.Profile(),
		Turns:   sess.Turns(),
	})
}

// handlePostTurn runs one turn. Reasoning failures surface in the response
// body as error_message; the HTTP status stays 200 because the turn itself
// was processed and folded back.
func (s *Server) handlePostTurn(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.manager.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.respondError(w, http.StatusBadRequest, "question is required")
		return
	}

	st, err := sess.HandleTurn(r.Context(), req.Question)
	if err != nil {
		s.logger.Warn("turn ended with error", "session", sess.ID(), "error", err)
	}

	resp := turnResponse{
		Seq:          sess.Turns(),
		Decision:     string(st.Routing),
		Synthesis:    st.Synthesis,
		ErrorMessage: st.ErrorMessage,
	}
	if st.Execution != nil {
		resp.Output = st.Execution.Output
		resp.HasChart = len(st.Execution.Image) > 0
	}
	if resp.HasChart {
		resp.ChartURL = fmt.Sprintf("/api/sessions/%s/turns/%d/chart", sess.ID(), resp.Seq)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleListTurns returns the audit log for a session.
func (s *Server) handleListTurns(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, ok := s.manager.Get(sessionID); !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}

	recs, err := s.store.ListTurns(sessionID)
	if err != nil {
		s.logger.Error("failed to list turns", "session", sessionID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list turns")
		return
	}

	resp := turnListResponse{Turns: []turnListEntry{}}
	for _, rec := range recs {
		resp.Turns = append(resp.Turns, turnListEntry{
			Seq:      rec.Seq,
			Question: rec.Question,
			Decision: string(rec.Decision),
			Success:  rec.Success,
			Error:    rec.Error,
			HasChart: rec.HasChart,
		})
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleGetChart serves a turn's chart artifact. An absent chart is a 404:
// not every turn renders one.
func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	seq, err := strconv.Atoi(chi.URLParam(r, "seq"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid turn sequence")
		return
	}

	png, err := s.store.GetChart(sessionID, seq)
	if err != nil {
		s.logger.Error("failed to get chart", "session", sessionID, "seq", seq, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to get chart")
		return
	}
	if png == nil {
		s.respondError(w, http.StatusNotFound, "no chart for this turn")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, errorResponse{Error: msg})
}
