package inspector

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/GoCodeAlone/workflow-debugger/debugger"
)

// Handler exposes an Inspector's projections as a JSON HTTP API, grounded
// on the teacher's debug/handler.go route table and writeJSON helper.
type Handler struct {
	inspector *Inspector
	session   *debugger.Session
	sessionID string
}

func NewHandler(i *Inspector, session *debugger.Session) *Handler {
	return &Handler{inspector: i, session: session, sessionID: uuid.NewString()}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/debug/status", h.handleStatus)
	mux.HandleFunc("GET /api/v1/debug/position", h.handlePosition)
	mux.HandleFunc("GET /api/v1/debug/variables", h.handleVariables)
	mux.HandleFunc("GET /api/v1/debug/tasks/{id}", h.handleTask)
	mux.HandleFunc("GET /api/v1/debug/stack", h.handleStack)
	mux.HandleFunc("GET /api/v1/debug/effects", h.handleEffects)
	mux.HandleFunc("GET /api/v1/debug/timeline", h.handleTimeline)
	mux.HandleFunc("GET /api/v1/debug/snapshots", h.handleSnapshots)
	mux.HandleFunc("GET /api/v1/debug/breakpoints", h.handleBreakpoints)
	mux.HandleFunc("POST /api/v1/debug/pause", h.handlePause)
	mux.HandleFunc("POST /api/v1/debug/resume", h.handleResume)
}

type statusResponse struct {
	SessionID string          `json:"session_id"`
	Status    debugger.Status `json:"status"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{SessionID: h.sessionID, Status: h.inspector.Status()})
}

func (h *Handler) handlePosition(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.inspector.CurrentPosition())
}

func (h *Handler) handleVariables(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.inspector.InspectVariables(nil))
}

func (h *Handler) handleTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	task, ok := h.inspector.InspectTask(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown task"})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) handleStack(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"frames":  h.inspector.CallStack(),
		"display": h.inspector.CallStackString(),
	})
}

func (h *Handler) handleEffects(w http.ResponseWriter, r *http.Request) {
	var filter *SideEffectFilter
	if t := r.URL.Query().Get("type"); t != "" {
		filter = &SideEffectFilter{Type: SideEffectFilterType(t), TaskID: r.URL.Query().Get("task")}
	}
	writeJSON(w, http.StatusOK, h.inspector.SideEffects(filter))
}

func (h *Handler) handleTimeline(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.inspector.Timeline())
}

func (h *Handler) handleSnapshots(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.inspector.Snapshots())
}

func (h *Handler) handleBreakpoints(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.inspector.Breakpoints())
}

func (h *Handler) handlePause(w http.ResponseWriter, _ *http.Request) {
	h.session.Pause()
	writeJSON(w, http.StatusOK, map[string]string{"status": "paused"})
}

func (h *Handler) handleResume(w http.ResponseWriter, _ *http.Request) {
	h.session.Resume()
	if err := h.session.SignalResume(debugger.VerdictContinue); err != nil && err != debugger.ErrNotPaused {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "resumed"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
