package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/dispute"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/outcome"
)

// agentHeader carries the platform agent id of the caller.
const agentHeader = "X-Agent-ID"

func (s *Server) registerAPI(mux *http.ServeMux) {
	// Questionnaire
	mux.HandleFunc("GET /api/questions", s.listQuestions)

	// Disputes
	mux.HandleFunc("GET /api/disputes/{id}", s.getDisputeView)
	mux.HandleFunc("POST /api/disputes/{id}/initiate", s.initiateDispute)
	mux.HandleFunc("POST /api/disputes/{id}/answers", s.submitAnswers)

	// System
	mux.HandleFunc("GET /api/status", s.getStatus)
}

func (s *Server) listQuestions(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, s.svc.Engine().Catalog.Questions())
}

func (s *Server) getDisputeView(w http.ResponseWriter, r *http.Request) {
	agentID, ok := callerID(w, r)
	if !ok {
		return
	}

	view, err := s.svc.View(r.Context(), r.PathValue("id"), agentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, view)
}

func (s *Server) initiateDispute(w http.ResponseWriter, r *http.Request) {
	agentID, ok := callerID(w, r)
	if !ok {
		return
	}
	disputeID := r.PathValue("id")

	if _, err := s.svc.Initiate(r.Context(), disputeID, agentID); err != nil {
		writeServiceError(w, err)
		return
	}

	view, err := s.svc.View(r.Context(), disputeID, agentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, view)
}

func (s *Server) submitAnswers(w http.ResponseWriter, r *http.Request) {
	agentID, ok := callerID(w, r)
	if !ok {
		return
	}
	disputeID := r.PathValue("id")

	var body struct {
		Answers map[string]string `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(body.Answers) == 0 {
		jsonError(w, "answers are required", http.StatusBadRequest)
		return
	}

	if err := s.svc.Submit(r.Context(), disputeID, agentID, body.Answers); err != nil {
		writeServiceError(w, err)
		return
	}

	view, err := s.svc.View(r.Context(), disputeID, agentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, view)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := s.svc.PhaseCounts(r.Context())
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	natsStatus := "disabled"
	if s.bus != nil {
		natsStatus = "ok"
	}

	status := map[string]any{
		"status":            "ok",
		"disputes":          total,
		"phases":            counts,
		"questions":         s.svc.Engine().Catalog.Len(),
		"catalog":           s.svc.Engine().Catalog.Source(),
		"websocket_clients": s.hub.Len(),
		"uptime":            formatUptime(time.Since(s.startedAt)),
		"nats":              natsStatus,
		"timestamp":         time.Now().UTC(),
		"version":           s.version,
	}

	jsonResponse(w, status)
}

// callerID reads the caller's agent id, writing a 400 if it is missing.
func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get(agentHeader)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, fmt.Sprintf("%s header must be a positive agent id", agentHeader), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	var notFound *outcome.QuestionNotFoundError
	switch {
	case errors.Is(err, dispute.ErrInvalidAgent),
		errors.Is(err, dispute.ErrUnknownQuestion),
		errors.Is(err, dispute.ErrInvalidAnswer),
		errors.Is(err, dispute.ErrPrerequisiteUnmet):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, dispute.ErrNotParticipant):
		jsonError(w, err.Error(), http.StatusForbidden)
	case errors.As(err, &notFound):
		slog.Error("decision tree does not match the catalog", "question", notFound.QuestionID)
		jsonError(w, err.Error(), http.StatusInternalServerError)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

func jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
