package models

import (
	"time"

	"gorm.io/gorm"
)

// Riddle is a single puzzle. Riddles form singly-linked chains via
// NextRiddleID; the chain is assumed acyclic (authoring discipline, the
// server does not detect cycles).
type Riddle struct {
	ID                  uint           `json:"id" gorm:"primaryKey"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	Question            string         `json:"question" gorm:"not null"`
	Image               string         `json:"image,omitempty"`
	Answer              string         `json:"-" gorm:"not null"`
	AnswerCaseSensitive bool           `json:"answer_case_sensitive" gorm:"default:false"`
	NextRiddleID        *uint          `json:"next_riddle_id,omitempty"`
}

// Folder is an unlockable content node. Its entry riddle starts the chain,
// and every folder in Dependencies must be fully solved before it can be
// opened.
type Folder struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	Name         string         `json:"name" gorm:"uniqueIndex;not null"`
	Order        int            `json:"order" gorm:"column:display_order;uniqueIndex;not null"`
	RiddleID     uint           `json:"riddle_id" gorm:"not null"`
	Riddle       *Riddle        `json:"riddle,omitempty" gorm:"foreignKey:RiddleID"`
	Dependencies []Folder       `json:"dependencies,omitempty" gorm:"many2many:folder_dependencies"`
}

// GameState tracks one user's progression through all folders. Created once
// at account verification (or first login) and never deleted.
type GameState struct {
	ID                   uint             `json:"id" gorm:"primaryKey"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
	UserID               uint             `json:"user_id" gorm:"uniqueIndex;not null"`
	User                 *User            `json:"user,omitempty" gorm:"foreignKey:UserID"`
	GameStartTime        time.Time        `json:"game_start_time"`
	LastFolderUnlockedAt *time.Time       `json:"last_folder_unlocked_at"`
	UnlockedFolders      []UnlockedFolder `json:"unlocked_folders" gorm:"foreignKey:GameStateID"`
}

// UnlockedFolder is a per-folder progress entry. A nil
// CurrentRiddleAttemptID means the folder's whole riddle chain is solved;
// a non-nil value points at the next unsolved riddle. Entries are created on
// first correct answer and mutated in place, never removed.
type UnlockedFolder struct {
	ID                     uint      `json:"id" gorm:"primaryKey"`
	GameStateID            uint      `json:"game_state_id" gorm:"uniqueIndex:idx_state_folder;not null"`
	FolderID               uint      `json:"folder_id" gorm:"uniqueIndex:idx_state_folder;not null"`
	UnlockedAt             time.Time `json:"unlocked_at"`
	CurrentRiddleAttemptID *uint     `json:"current_riddle_attempt_id"`
}

// Completed reports whether the folder's entire riddle chain is solved.
func (uf UnlockedFolder) Completed() bool {
	return uf.CurrentRiddleAttemptID == nil
}

// FolderProgress is the progression state of a single folder for a user.
type FolderProgress int

const (
	ProgressUnstarted FolderProgress = iota
	ProgressInProgress
	ProgressCompleted
)

// Entry returns the progress entry for folderID, or nil if the user has not
// started that folder.
func (gs *GameState) Entry(folderID uint) *UnlockedFolder {
	for i := range gs.UnlockedFolders {
		if gs.UnlockedFolders[i].FolderID == folderID {
			return &gs.UnlockedFolders[i]
		}
	}
	return nil
}

// Progress returns the tagged progression state for folderID.
func (gs *GameState) Progress(folderID uint) FolderProgress {
	entry := gs.Entry(folderID)
	switch {
	case entry == nil:
		return ProgressUnstarted
	case entry.Completed():
		return ProgressCompleted
	default:
		return ProgressInProgress
	}
}

// CompletedCount returns the number of fully solved folders. In-progress
// entries do not count.
func (gs *GameState) CompletedCount() int {
	count := 0
	for _, uf := range gs.UnlockedFolders {
		if uf.Completed() {
			count++
		}
	}
	return count
}
