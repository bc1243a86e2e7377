package game

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"riddle-game/internal/leaderboard"
	"riddle-game/internal/models"
	"riddle-game/pkg/cache"
)

// Store is the persistence surface the progression engine depends on.
type Store interface {
	FolderByID(folderID uint) (*models.Folder, error)
	RiddleByID(riddleID uint) (*models.Riddle, error)
	StateByUser(userID uint) (*models.GameState, error)
	ListFolders() ([]models.Folder, error)
	AllStates() ([]models.GameState, error)
	AdvanceEntry(stateID, folderID, nextRiddleID uint, now time.Time) error
	CompleteEntry(stateID, folderID uint, now time.Time) error
	TouchLastActivity(userID uint, now time.Time) error
}

// Notifier broadcasts leaderboard updates to connected observers. Delivery is
// best effort; absence of subscribers is not an error.
type Notifier interface {
	BroadcastMessage(messageType string, data interface{})
}

type SubmitStatus string

const (
	StatusIncorrect       SubmitStatus = "incorrect"
	StatusAdvanced        SubmitStatus = "advanced"
	StatusUnlocked        SubmitStatus = "unlocked"
	StatusAlreadyUnlocked SubmitStatus = "already_unlocked"
)

// SubmitResult is the outcome of an answer submission.
type SubmitResult struct {
	Status        SubmitStatus      `json:"status"`
	NextRiddle    *models.RiddleDTO `json:"next_riddle,omitempty"`
	UnlockedCount int               `json:"unlocked_count,omitempty"`
}

// FolderDetails is the response shape for a folder read. Riddle is nil once
// the folder is fully solved.
type FolderDetails struct {
	Folder     *models.Folder    `json:"folder"`
	Riddle     *models.RiddleDTO `json:"riddle"`
	IsUnlocked bool              `json:"isUnlocked"`
}

// StateView is a user's game state with folder and riddle references
// expanded, answers stripped.
type StateView struct {
	GameStartTime        time.Time   `json:"game_start_time"`
	LastFolderUnlockedAt *time.Time  `json:"last_folder_unlocked_at"`
	UnlockedFolders      []EntryView `json:"unlocked_folders"`
}

type EntryView struct {
	FolderID      uint              `json:"folder_id"`
	FolderName    string            `json:"folder_name"`
	Order         int               `json:"order"`
	UnlockedAt    time.Time         `json:"unlocked_at"`
	Completed     bool              `json:"completed"`
	CurrentRiddle *models.RiddleDTO `json:"current_riddle,omitempty"`
}

type Service struct {
	store    Store
	cache    *cache.RedisCache
	notifier Notifier
	locks    userLocks
}

func NewService(store Store, cache *cache.RedisCache, notifier Notifier) *Service {
	return &Service{
		store:    store,
		cache:    cache,
		notifier: notifier,
		locks:    userLocks{locks: make(map[uint]*sync.Mutex)},
	}
}

// userLocks hands out one mutex per user so answer submissions for a user are
// serialized. Reads stay lock-free.
type userLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func (l *userLocks) forUser(userID uint) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[userID] = lock
	}
	return lock
}

// SubmitAnswer evaluates a submitted answer against the folder's active
// riddle and applies exactly one state transition on a correct answer. A
// wrong answer leaves the game state untouched, and a folder that is already
// fully solved short-circuits without mutating anything.
func (s *Service) SubmitAnswer(userID, folderID uint, answer string) (*SubmitResult, error) {
	submitted := strings.TrimSpace(answer)
	if submitted == "" {
		return nil, fmt.Errorf("%w: answer is required", ErrValidation)
	}

	lock := s.locks.forUser(userID)
	lock.Lock()
	defer lock.Unlock()

	folder, err := s.store.FolderByID(folderID)
	if err != nil {
		return nil, err
	}

	state, err := s.store.StateByUser(userID)
	if err != nil {
		return nil, err
	}

	if !isAccessible(folder, state) {
		return nil, fmt.Errorf("folder %q: %w", folder.Name, ErrLocked)
	}

	if entry := state.Entry(folder.ID); entry != nil && entry.Completed() {
		log.Printf("User %d re-submitted answer for already unlocked folder %d", userID, folder.ID)
		return &SubmitResult{Status: StatusAlreadyUnlocked}, nil
	}

	riddle, err := s.activeRiddle(folder, state)
	if err != nil {
		return nil, err
	}

	if !answerMatches(submitted, riddle) {
		return &SubmitResult{Status: StatusIncorrect}, nil
	}

	now := time.Now()

	if riddle.NextRiddleID != nil {
		next, err := s.store.RiddleByID(*riddle.NextRiddleID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("riddle %d: dangling next riddle %d: %w",
					riddle.ID, *riddle.NextRiddleID, ErrConfiguration)
			}
			return nil, err
		}
		if err := s.store.AdvanceEntry(state.ID, folder.ID, next.ID, now); err != nil {
			return nil, err
		}
		dto := next.ToDTO(false)
		return &SubmitResult{Status: StatusAdvanced, NextRiddle: &dto}, nil
	}

	// Final riddle of the chain: unlock the folder.
	if err := s.store.CompleteEntry(state.ID, folder.ID, now); err != nil {
		return nil, err
	}

	// Count from the pre-write snapshot so the result does not depend on
	// whether the store aliases the loaded state.
	count := 1
	for _, uf := range state.UnlockedFolders {
		if uf.FolderID != folder.ID && uf.Completed() {
			count++
		}
	}

	s.publishLeaderboardUpdate(userID, count)
	if err := s.store.TouchLastActivity(userID, now); err != nil {
		log.Printf("Error updating last activity for user %d: %v", userID, err)
	}

	return &SubmitResult{Status: StatusUnlocked, UnlockedCount: count}, nil
}

// GetFolderDetails returns the folder with its active riddle (answer
// stripped), after the dependency gate has passed.
func (s *Service) GetFolderDetails(userID, folderID uint) (*FolderDetails, error) {
	folder, err := s.store.FolderByID(folderID)
	if err != nil {
		return nil, err
	}

	state, err := s.store.StateByUser(userID)
	if err != nil {
		return nil, err
	}

	if !isAccessible(folder, state) {
		return nil, fmt.Errorf("folder %q: %w", folder.Name, ErrLocked)
	}

	if entry := state.Entry(folder.ID); entry != nil && entry.Completed() {
		return &FolderDetails{Folder: folder, IsUnlocked: true}, nil
	}

	riddle, err := s.activeRiddle(folder, state)
	if err != nil {
		return nil, err
	}

	dto := riddle.ToDTO(false)
	return &FolderDetails{Folder: folder, Riddle: &dto, IsUnlocked: false}, nil
}

// GetGameState returns the user's progression with folder names and current
// riddles expanded.
func (s *Service) GetGameState(userID uint) (*StateView, error) {
	state, err := s.store.StateByUser(userID)
	if err != nil {
		return nil, err
	}

	folders, err := s.store.ListFolders()
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}

	view := &StateView{
		GameStartTime:        state.GameStartTime,
		LastFolderUnlockedAt: state.LastFolderUnlockedAt,
		UnlockedFolders:      make([]EntryView, 0, len(state.UnlockedFolders)),
	}

	for _, uf := range state.UnlockedFolders {
		ev := EntryView{
			FolderID:   uf.FolderID,
			UnlockedAt: uf.UnlockedAt,
			Completed:  uf.Completed(),
		}
		if f, ok := byID[uf.FolderID]; ok {
			ev.FolderName = f.Name
			ev.Order = f.Order
		}
		if uf.CurrentRiddleAttemptID != nil {
			riddle, err := s.store.RiddleByID(*uf.CurrentRiddleAttemptID)
			if err != nil {
				log.Printf("Error loading current riddle %d for folder %d: %v",
					*uf.CurrentRiddleAttemptID, uf.FolderID, err)
			} else {
				dto := riddle.ToDTO(false)
				ev.CurrentRiddle = &dto
			}
		}
		view.UnlockedFolders = append(view.UnlockedFolders, ev)
	}

	return view, nil
}

// ListFolders returns all folders in display order.
func (s *Service) ListFolders() ([]models.Folder, error) {
	return s.store.ListFolders()
}

// Leaderboard returns the ranked leaderboard, served from the cache when a
// fresh projection is available.
func (s *Service) Leaderboard() ([]leaderboard.Entry, error) {
	if s.cache != nil {
		if entries, err := s.cache.GetLeaderboard(); err == nil {
			return entries, nil
		}
	}

	states, err := s.store.AllStates()
	if err != nil {
		return nil, err
	}
	entries := leaderboard.Project(states)

	if s.cache != nil {
		if err := s.cache.SetLeaderboard(entries); err != nil {
			log.Printf("Error caching leaderboard: %v", err)
		}
	}
	return entries, nil
}

// activeRiddle resolves which riddle the user must answer next for folder:
// the entry's progress pointer when one is set, the folder's entry riddle
// otherwise.
func (s *Service) activeRiddle(folder *models.Folder, state *models.GameState) (*models.Riddle, error) {
	if entry := state.Entry(folder.ID); entry != nil && entry.CurrentRiddleAttemptID != nil {
		riddle, err := s.store.RiddleByID(*entry.CurrentRiddleAttemptID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("folder %q: current riddle %d missing: %w",
					folder.Name, *entry.CurrentRiddleAttemptID, ErrConfiguration)
			}
			return nil, err
		}
		return riddle, nil
	}

	if folder.RiddleID == 0 {
		return nil, fmt.Errorf("folder %q has no entry riddle: %w", folder.Name, ErrConfiguration)
	}

	riddle, err := s.store.RiddleByID(folder.RiddleID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("folder %q: entry riddle %d missing: %w",
				folder.Name, folder.RiddleID, ErrConfiguration)
		}
		return nil, err
	}
	return riddle, nil
}

// isAccessible reports whether every dependency of folder is fully solved in
// the given game state. An empty dependency set is vacuously accessible.
func isAccessible(folder *models.Folder, state *models.GameState) bool {
	for _, dep := range folder.Dependencies {
		if state.Progress(dep.ID) != models.ProgressCompleted {
			return false
		}
	}
	return true
}

// answerMatches compares a trimmed submission against the riddle's expected
// answer. Exact string equality after trimming, lower-cased when the riddle
// is case-insensitive.
func answerMatches(submitted string, riddle *models.Riddle) bool {
	expected := strings.TrimSpace(riddle.Answer)
	if riddle.AnswerCaseSensitive {
		return submitted == expected
	}
	return strings.ToLower(submitted) == strings.ToLower(expected)
}

func (s *Service) publishLeaderboardUpdate(userID uint, unlockedCount int) {
	if s.cache != nil {
		if err := s.cache.InvalidateLeaderboard(); err != nil {
			log.Printf("Error invalidating leaderboard cache: %v", err)
		}
	}
	if s.notifier != nil {
		s.notifier.BroadcastMessage("leaderboardUpdate", map[string]interface{}{
			"userId":               userID,
			"unlockedFoldersCount": unlockedCount,
		})
	}
}
