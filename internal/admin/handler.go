package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"riddle-game/internal/leaderboard"
	"riddle-game/internal/models"

	"github.com/gorilla/mux"
)

// LeaderboardSource supplies the ranked leaderboard for the admin view.
type LeaderboardSource interface {
	Leaderboard() ([]leaderboard.Entry, error)
}

type Handler struct {
	service     *Service
	leaderboard LeaderboardSource
}

func NewHandler(service *Service, leaderboard LeaderboardSource) *Handler {
	return &Handler{service: service, leaderboard: leaderboard}
}

type AddRiddleRequest struct {
	Question            string `json:"question"`
	Image               string `json:"image"`
	Answer              string `json:"answer"`
	AnswerCaseSensitive bool   `json:"answer_case_sensitive"`
	NextRiddleID        *uint  `json:"next_riddle_id"`
}

type AddFolderRequest struct {
	Name         string `json:"name"`
	Order        int    `json:"order"`
	RiddleID     uint   `json:"riddle_id"`
	Dependencies []uint `json:"dependencies"`
}

func (h *Handler) AddRiddle(w http.ResponseWriter, r *http.Request) {
	var req AddRiddleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if req.Question == "" || req.Answer == "" {
		http.Error(w, "Question and answer are required", http.StatusBadRequest)
		return
	}

	riddle := &models.Riddle{
		Question:            req.Question,
		Image:               req.Image,
		Answer:              req.Answer,
		AnswerCaseSensitive: req.AnswerCaseSensitive,
		NextRiddleID:        req.NextRiddleID,
	}

	if err := h.service.AddRiddle(riddle); err != nil {
		log.Printf("Error adding riddle: %v", err)
		http.Error(w, "Failed to add riddle", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Riddle added successfully",
		"riddle":  riddle.ToDTO(true),
	})
}

func (h *Handler) GetAllRiddles(w http.ResponseWriter, r *http.Request) {
	riddles, err := h.service.ListRiddles()
	if err != nil {
		http.Error(w, "Failed to list riddles", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(riddles)
}

func (h *Handler) AddFolder(w http.ResponseWriter, r *http.Request) {
	var req AddFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.RiddleID == 0 {
		http.Error(w, "Name and riddle_id are required", http.StatusBadRequest)
		return
	}

	folder := &models.Folder{
		Name:     req.Name,
		Order:    req.Order,
		RiddleID: req.RiddleID,
	}

	if err := h.service.AddFolder(folder, req.Dependencies); err != nil {
		switch {
		case errors.Is(err, ErrRiddleNotFound), errors.Is(err, ErrDependencyNotFound):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("Error adding folder: %v", err)
			http.Error(w, "Failed to add folder", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Folder added successfully",
		"folder":  folder,
	})
}

func (h *Handler) GetAllFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.service.ListFolders()
	if err != nil {
		http.Error(w, "Failed to list folders", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(folders)
}

func (h *Handler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers()
	if err != nil {
		http.Error(w, "Failed to list users", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(users)
}

func (h *Handler) ToggleAdminStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseUint(mux.Vars(r)["userId"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.service.ToggleAdmin(uint(userID))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		log.Printf("Error toggling admin status: %v", err)
		http.Error(w, "Failed to toggle admin status", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{
		"message": fmt.Sprintf("User %s admin status toggled to %t", user.Username, user.IsAdmin),
	})
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboard.Leaderboard()
	if err != nil {
		log.Printf("Error fetching leaderboard: %v", err)
		http.Error(w, "Failed to fetch leaderboard", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(entries)
}
