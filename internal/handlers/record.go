package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"SoberTrack/internal/middleware"
	"SoberTrack/internal/service"
)

// RecordHandler принимает upsert/delete записей от клиентской очереди
// синхронизации. Сервер не различает insert и update: upsert идемпотентен
// по клиентскому id.
type RecordHandler struct {
	RecordService *service.RecordService
	Logger        *zap.SugaredLogger
}

// NewRecordHandler создаёт хендлер записей
func NewRecordHandler(recordService *service.RecordService, logger *zap.SugaredLogger) *RecordHandler {
	return &RecordHandler{RecordService: recordService, Logger: logger}
}

type upsertResponse struct {
	RemoteID string `json:"remote_id"`
}

func (h *RecordHandler) UpsertJournal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req service.JournalUpsert
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	remoteID, err := h.RecordService.UpsertJournal(r.Context(), userID, req)
	h.respond(w, userID, "journal_entries", remoteID, err)
}

func (h *RecordHandler) UpsertStep(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req service.StepUpsert
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	remoteID, err := h.RecordService.UpsertStep(r.Context(), userID, req)
	h.respond(w, userID, "step_answers", remoteID, err)
}

func (h *RecordHandler) UpsertCheckIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req service.CheckInUpsert
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	remoteID, err := h.RecordService.UpsertCheckIn(r.Context(), userID, req)
	h.respond(w, userID, "check_ins", remoteID, err)
}

func (h *RecordHandler) respond(w http.ResponseWriter, userID int64, resource, remoteID string, err error) {
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			http.Error(w, "invalid record", http.StatusBadRequest)
			return
		}
		h.Logger.Errorw("upsert failed", "resource", resource, "user_id", userID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, upsertResponse{RemoteID: remoteID})
}

// Delete строит хендлер удаления для ресурса. Отсутствующая запись — 404,
// клиент трактует его как успех.
func (h *RecordHandler) Delete(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		clientID := chi.URLParam(r, "id")
		if clientID == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		deleted, err := h.RecordService.Delete(r.Context(), userID, resource, clientID)
		if err != nil {
			h.Logger.Errorw("delete failed", "resource", resource, "user_id", userID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !deleted {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SponsorUnimplemented — фиксированный отказ: синхронизация связей
// спонсорства ещё не реализована на сервере.
func (h *RecordHandler) SponsorUnimplemented(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	http.Error(w, "sponsor connections sync is not available yet", http.StatusNotImplemented)
}
