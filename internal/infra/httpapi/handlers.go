package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"jarvis/internal/application"
	"jarvis/internal/domain"
)

const (
	maxJSONBody  = 64 * 1024
	maxAudioBody = 10 * 1024 * 1024
)

type chatRequest struct {
	Prompt *string `json:"prompt"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type commandRequest struct {
	Text string `json:"text"`
}

type commandResponse struct {
	Transcript string        `json:"transcript,omitempty"`
	Reply      string        `json:"reply"`
	Intent     domain.Intent `json:"intent"`
	SearchURL  string        `json:"search_url,omitempty"`
}

type noteJSON struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type reminderJSON struct {
	Text  string    `json:"text"`
	DueAt time.Time `json:"due_at"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing prompt")
		return
	}
	if req.Prompt == nil || strings.TrimSpace(*req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "Missing prompt")
		return
	}

	if s.relay == nil {
		writeError(w, http.StatusInternalServerError, "Server not configured with an LLM API key")
		return
	}

	reply, err := s.relay.SendPrompt(r.Context(), *req.Prompt)
	if err != nil {
		s.logger.Error("LLM error", "relay", s.relay.Name(), "error", err)
		status, msg := relayStatus(err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

// relayStatus maps relay failures to the HTTP status of /api/chat.
func relayStatus(err error) (int, string) {
	var relayErr *domain.RelayError
	if !errors.As(err, &relayErr) {
		return http.StatusInternalServerError, err.Error()
	}
	if relayErr.Kind == domain.RelayUpstream {
		return http.StatusBadGateway, relayErr.Message
	}
	return http.StatusInternalServerError, relayErr.Message
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Missing text")
		return
	}

	s.respond(w, r, req.Text, "")
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	defer r.Body.Close()

	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty audio")
		return
	}

	transcript, err := s.assistant.Transcribe(r.Context(), data)
	if err != nil {
		s.logger.Error("transcribing voice command", "error", err, "bytes", len(data))
		status := http.StatusBadGateway
		if errors.Is(err, application.ErrNoSpeechBackend) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}
	s.logger.Info("transcribed voice command", "text", transcript)

	s.respond(w, r, transcript, transcript)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, text, transcript string) {
	resp, err := s.assistant.Respond(r.Context(), text)
	if err != nil {
		s.logger.Error("handling command", "error", err, "text", text)
		writeError(w, http.StatusInternalServerError, resp.Reply)
		return
	}

	out := commandResponse{
		Transcript: transcript,
		Reply:      resp.Reply,
		Intent:     resp.Outcome.Intent,
	}
	if search, ok := resp.Outcome.Effect.(domain.OpenSearch); ok {
		out.SearchURL = search.URL
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.notes.Notes(r.Context())
	if err != nil {
		s.logger.Error("loading notes", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load notes")
		return
	}

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		notes = FilterNotes(notes, q)
	}

	out := make([]noteJSON, len(notes))
	for i, n := range notes {
		out[i] = noteJSON{Text: n.Text, CreatedAt: n.CreatedAt}
	}
	writeJSON(w, http.StatusOK, out)
}

// FilterNotes keeps notes whose text fuzzy-matches query, best match first.
func FilterNotes(notes []domain.Note, query string) []domain.Note {
	texts := make([]string, len(notes))
	for i, n := range notes {
		texts[i] = n.Text
	}
	matches := fuzzy.Find(query, texts)
	out := make([]domain.Note, len(matches))
	for i, m := range matches {
		out[i] = notes[m.Index]
	}
	return out
}

func (s *Server) handleReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := s.reminders.Reminders(r.Context())
	if err != nil {
		s.logger.Error("loading reminders", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load reminders")
		return
	}

	out := make([]reminderJSON, len(reminders))
	for i, rm := range reminders {
		out[i] = reminderJSON{Text: rm.Text, DueAt: rm.DueAt}
	}
	writeJSON(w, http.StatusOK, out)
}

type firedResponse struct {
	Announcements []Announcement `json:"announcements"`
	LastID        int64          `json:"last_id"`
}

// handleFired returns announcements newer than ?after. Without it only the
// current last_id is returned, so a freshly loaded page does not replay old
// reminders.
func (s *Server) handleFired(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("after")
	if raw == "" {
		writeJSON(w, http.StatusOK, firedResponse{Announcements: []Announcement{}, LastID: s.announcements.LastID()})
		return
	}

	after, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid after")
		return
	}
	items, last := s.announcements.Since(after)
	writeJSON(w, http.StatusOK, firedResponse{Announcements: items, LastID: last})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	relay := "none"
	if s.relay != nil {
		relay = s.relay.Name()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"running":   running,
		"relay":     relay,
		"assistant": s.assistant.Status(),
		"llm_mode":  s.assistant.Mode(),
	})
}
