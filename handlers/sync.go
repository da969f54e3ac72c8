package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"vodsync/models"
	"vodsync/services/store"
	"vodsync/services/syncer"
)

// SyncHandler exposes the operational surface of the engine: trigger a pass,
// inspect the last summary, inspect the manifest. It is deliberately not a
// catalog browsing API.
type SyncHandler struct {
	syncService *syncer.Service
	store       *store.Store
}

func NewSyncHandler(syncService *syncer.Service, st *store.Store) *SyncHandler {
	return &SyncHandler{syncService: syncService, store: st}
}

type statusResponse struct {
	Running     bool                `json:"running"`
	LastSummary *models.SyncSummary `json:"lastSummary,omitempty"`
}

// GetStatus reports whether a pass is in flight plus the last pass summary.
func (h *SyncHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Running:     h.syncService.Running(),
		LastSummary: h.syncService.LastSummary(),
	})
}

// TriggerSync starts a pass in the background. 409 when one is in flight.
func (h *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if h.syncService.Running() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "sync pass already running"})
		return
	}

	go func() {
		if _, err := h.syncService.Run(context.Background()); err != nil &&
			!errors.Is(err, syncer.ErrAlreadyRunning) {
			log.Printf("[api] manual sync failed: %v", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// GetCategories returns the manifest view of the catalog.
func (h *SyncHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	manifest, err := h.store.ReadManifest()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, manifest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[api] failed to encode response: %v", err)
	}
}
