package game

import (
	"errors"
	"fmt"
	"log"
	"time"

	"riddle-game/internal/models"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FolderByID(folderID uint) (*models.Folder, error) {
	var folder models.Folder
	err := r.db.Preload("Dependencies").First(&folder, folderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("folder %d: %w", folderID, ErrNotFound)
		}
		log.Printf("Error getting folder %d: %v", folderID, err)
		return nil, err
	}
	return &folder, nil
}

func (r *Repository) RiddleByID(riddleID uint) (*models.Riddle, error) {
	var riddle models.Riddle
	err := r.db.First(&riddle, riddleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("riddle %d: %w", riddleID, ErrNotFound)
		}
		log.Printf("Error getting riddle %d: %v", riddleID, err)
		return nil, err
	}
	return &riddle, nil
}

func (r *Repository) StateByUser(userID uint) (*models.GameState, error) {
	var state models.GameState
	err := r.db.Preload("UnlockedFolders").
		Where("user_id = ?", userID).
		First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("game state for user %d: %w", userID, ErrNotFound)
		}
		log.Printf("Error getting game state for user %d: %v", userID, err)
		return nil, err
	}
	return &state, nil
}

func (r *Repository) ListFolders() ([]models.Folder, error) {
	var folders []models.Folder
	err := r.db.Preload("Dependencies").
		Order("display_order asc").
		Find(&folders).Error
	if err != nil {
		log.Printf("Error listing folders: %v", err)
		return nil, err
	}
	return folders, nil
}

func (r *Repository) AllStates() ([]models.GameState, error) {
	var states []models.GameState
	err := r.db.Preload("UnlockedFolders").Preload("User").Find(&states).Error
	if err != nil {
		log.Printf("Error listing game states: %v", err)
		return nil, err
	}
	return states, nil
}

// AdvanceEntry moves the folder's progress pointer to the next riddle in the
// chain, creating the entry if the user has no progress on the folder yet.
// An existing entry keeps its UnlockedAt.
func (r *Repository) AdvanceEntry(stateID, folderID, nextRiddleID uint, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var entry models.UnlockedFolder
		err := tx.Where("game_state_id = ? AND folder_id = ?", stateID, folderID).
			First(&entry).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				entry = models.UnlockedFolder{
					GameStateID:            stateID,
					FolderID:               folderID,
					UnlockedAt:             now,
					CurrentRiddleAttemptID: &nextRiddleID,
				}
				return tx.Create(&entry).Error
			}
			return err
		}
		return tx.Model(&entry).
			Update("current_riddle_attempt_id", nextRiddleID).Error
	})
}

// CompleteEntry records the folder-completion transition: the entry's
// progress pointer is cleared, its UnlockedAt is stamped, and the game
// state's LastFolderUnlockedAt is updated, all in one transaction.
func (r *Repository) CompleteEntry(stateID, folderID uint, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var entry models.UnlockedFolder
		err := tx.Where("game_state_id = ? AND folder_id = ?", stateID, folderID).
			First(&entry).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				entry = models.UnlockedFolder{
					GameStateID: stateID,
					FolderID:    folderID,
					UnlockedAt:  now,
				}
				if createErr := tx.Create(&entry).Error; createErr != nil {
					return createErr
				}
			} else {
				return err
			}
		} else {
			updates := map[string]interface{}{
				"current_riddle_attempt_id": nil,
				"unlocked_at":               now,
			}
			if updateErr := tx.Model(&entry).Updates(updates).Error; updateErr != nil {
				return updateErr
			}
		}

		return tx.Model(&models.GameState{}).
			Where("id = ?", stateID).
			Update("last_folder_unlocked_at", now).Error
	})
}

// TouchLastActivity records the user's most recent activity. Best effort,
// callers log and ignore failures.
func (r *Repository) TouchLastActivity(userID uint, now time.Time) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_activity", now).Error
}
