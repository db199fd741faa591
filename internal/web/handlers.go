package web

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/podiumlab/podium/internal/domain"
	"github.com/podiumlab/podium/internal/stream"
)

// maxUploadBytes bounds one submission's multipart body: slide deck plus
// recording plus form fields.
const maxUploadBytes = 256 << 20

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sub, err := s.parseSubmission(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	log := s.log.With("submission", sub.ID, "user", sub.UserID)
	log.Info("submission accepted", "slide", sub.SlideName, "audio", sub.AudioName)

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering if present

	st := stream.New(0)
	go func() {
		if err := s.evaluator.Run(r.Context(), sub, st); err != nil {
			log.Warn("run ended with error", "err", err)
		}
	}()

	enc := json.NewEncoder(w)
	for ev := range st.Events() {
		if err := enc.Encode(ev); err != nil {
			// Client went away; the run's context is tied to the request
			// and will unwind on its own.
			log.Info("client disconnected", "err", err)
			return
		}
		flusher.Flush()
	}
}

// parseSubmission builds a Submission from the multipart form, invoking
// the transcriber when the caller did not supply a transcript.
func (s *Server) parseSubmission(r *http.Request) (*domain.Submission, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, errBadRequest("parse form: " + err.Error())
	}

	userID := r.FormValue("user_id")
	if userID == "" {
		return nil, errBadRequest("user_id is required")
	}

	slide, slideName, err := formFile(r, "slide")
	if err != nil {
		return nil, err
	}
	audio, audioName, err := formFile(r, "audio")
	if err != nil {
		return nil, err
	}

	sub := &domain.Submission{
		ID:            domain.NewSubmissionID(),
		UserID:        userID,
		SlideDocument: slide,
		SlideName:     slideName,
		Audio:         audio,
		AudioName:     audioName,
		Transcript:    r.FormValue("transcript"),
		NotifyAddress: r.FormValue("notify_email"),
		ReceivedAt:    time.Now(),
	}

	if sub.Transcript == "" {
		transcript, err := s.transcriber.Transcribe(r.Context(), audio, audioName)
		if err != nil {
			return nil, errBadRequest("transcribe audio: " + err.Error())
		}
		sub.Transcript = transcript
	}
	return sub, nil
}

func formFile(r *http.Request, field string) ([]byte, string, error) {
	f, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", errBadRequest(field + " file is required")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", errBadRequest("read " + field + ": " + err.Error())
	}
	return data, header.Filename, nil
}

type errBadRequest string

func (e errBadRequest) Error() string { return string(e) }

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := userIDFromPath(r.URL.Path)
	if userID == "" {
		http.Error(w, "user id is required", http.StatusBadRequest)
		return
	}

	records, err := s.history.FetchHistory(r.Context(), userID)
	if err != nil {
		s.log.Error("history fetch failed", "user", userID, "err", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(records)
}

// handleReset wipes all history. Available only in dev mode.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.devMode || s.resetter == nil {
		http.Error(w, "not available", http.StatusForbidden)
		return
	}
	if err := s.resetter.ResetAll(r.Context()); err != nil {
		s.log.Error("history reset failed", "err", err)
		http.Error(w, "reset failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
