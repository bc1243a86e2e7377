package game

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type submitAnswerRequest struct {
	Answer string `json:"answer"`
}

func (h *Handler) GetGameState(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	view, err := h.service.GetGameState(userID)
	if err != nil {
		writeGameError(w, err)
		return
	}

	json.NewEncoder(w).Encode(view)
}

func (h *Handler) GetFolderDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	folderID, err := parseID(mux.Vars(r)["folderId"])
	if err != nil {
		http.Error(w, "Invalid folder id", http.StatusBadRequest)
		return
	}

	details, err := h.service.GetFolderDetails(userID, folderID)
	if err != nil {
		writeGameError(w, err)
		return
	}

	json.NewEncoder(w).Encode(details)
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	folderID, err := parseID(mux.Vars(r)["folderId"])
	if err != nil {
		http.Error(w, "Invalid folder id", http.StatusBadRequest)
		return
	}

	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	result, err := h.service.SubmitAnswer(userID, folderID, req.Answer)
	if err != nil {
		writeGameError(w, err)
		return
	}

	switch result.Status {
	case StatusIncorrect:
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  result.Status,
			"message": "Incorrect answer. Try again!",
		})
	case StatusAdvanced:
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     result.Status,
			"message":    "Correct answer! Here is the next part of the riddle.",
			"nextRiddle": result.NextRiddle,
		})
	case StatusUnlocked:
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":        result.Status,
			"message":       "Correct answer! Folder unlocked!",
			"unlockedCount": result.UnlockedCount,
		})
	case StatusAlreadyUnlocked:
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  result.Status,
			"message": "Folder is already unlocked.",
		})
	}
}

func (h *Handler) GetAllFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.service.ListFolders()
	if err != nil {
		writeGameError(w, err)
		return
	}

	json.NewEncoder(w).Encode(folders)
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// writeGameError maps the game error taxonomy to distinct client-visible
// outcomes. Configuration errors are logged and hidden behind a generic
// server error.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrLocked):
		http.Error(w, "This folder is locked! Unlock its prerequisites first.", http.StatusForbidden)
	case errors.Is(err, ErrConfiguration):
		log.Printf("Configuration error: %v", err)
		http.Error(w, "This folder is misconfigured. Please contact support.", http.StatusInternalServerError)
	default:
		log.Printf("Internal error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
