package game

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"riddle-game/internal/models"
)

// fakeStore is an in-memory Store for exercising the progression engine.
type fakeStore struct {
	folders      map[uint]*models.Folder
	riddles      map[uint]*models.Riddle
	states       map[uint]*models.GameState // keyed by user id
	lastActivity map[uint]time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		folders:      make(map[uint]*models.Folder),
		riddles:      make(map[uint]*models.Riddle),
		states:       make(map[uint]*models.GameState),
		lastActivity: make(map[uint]time.Time),
	}
}

func (f *fakeStore) FolderByID(folderID uint) (*models.Folder, error) {
	folder, ok := f.folders[folderID]
	if !ok {
		return nil, fmt.Errorf("folder %d: %w", folderID, ErrNotFound)
	}
	dup := *folder
	return &dup, nil
}

func (f *fakeStore) RiddleByID(riddleID uint) (*models.Riddle, error) {
	riddle, ok := f.riddles[riddleID]
	if !ok {
		return nil, fmt.Errorf("riddle %d: %w", riddleID, ErrNotFound)
	}
	dup := *riddle
	return &dup, nil
}

func (f *fakeStore) StateByUser(userID uint) (*models.GameState, error) {
	state, ok := f.states[userID]
	if !ok {
		return nil, fmt.Errorf("game state for user %d: %w", userID, ErrNotFound)
	}
	return copyState(state), nil
}

func (f *fakeStore) ListFolders() ([]models.Folder, error) {
	folders := make([]models.Folder, 0, len(f.folders))
	for _, folder := range f.folders {
		folders = append(folders, *folder)
	}
	return folders, nil
}

func (f *fakeStore) AllStates() ([]models.GameState, error) {
	states := make([]models.GameState, 0, len(f.states))
	for _, state := range f.states {
		states = append(states, *copyState(state))
	}
	return states, nil
}

func (f *fakeStore) AdvanceEntry(stateID, folderID, nextRiddleID uint, now time.Time) error {
	state := f.stateByID(stateID)
	if state == nil {
		return fmt.Errorf("game state %d: %w", stateID, ErrNotFound)
	}
	for i := range state.UnlockedFolders {
		if state.UnlockedFolders[i].FolderID == folderID {
			next := nextRiddleID
			state.UnlockedFolders[i].CurrentRiddleAttemptID = &next
			return nil
		}
	}
	next := nextRiddleID
	state.UnlockedFolders = append(state.UnlockedFolders, models.UnlockedFolder{
		GameStateID:            stateID,
		FolderID:               folderID,
		UnlockedAt:             now,
		CurrentRiddleAttemptID: &next,
	})
	return nil
}

func (f *fakeStore) CompleteEntry(stateID, folderID uint, now time.Time) error {
	state := f.stateByID(stateID)
	if state == nil {
		return fmt.Errorf("game state %d: %w", stateID, ErrNotFound)
	}
	found := false
	for i := range state.UnlockedFolders {
		if state.UnlockedFolders[i].FolderID == folderID {
			state.UnlockedFolders[i].CurrentRiddleAttemptID = nil
			state.UnlockedFolders[i].UnlockedAt = now
			found = true
			break
		}
	}
	if !found {
		state.UnlockedFolders = append(state.UnlockedFolders, models.UnlockedFolder{
			GameStateID: stateID,
			FolderID:    folderID,
			UnlockedAt:  now,
		})
	}
	unlockedAt := now
	state.LastFolderUnlockedAt = &unlockedAt
	return nil
}

func (f *fakeStore) TouchLastActivity(userID uint, now time.Time) error {
	f.lastActivity[userID] = now
	return nil
}

func (f *fakeStore) stateByID(stateID uint) *models.GameState {
	for _, state := range f.states {
		if state.ID == stateID {
			return state
		}
	}
	return nil
}

func copyState(s *models.GameState) *models.GameState {
	dup := *s
	dup.UnlockedFolders = append([]models.UnlockedFolder(nil), s.UnlockedFolders...)
	return &dup
}

type broadcast struct {
	messageType string
	data        interface{}
}

type fakeNotifier struct {
	events []broadcast
}

func (n *fakeNotifier) BroadcastMessage(messageType string, data interface{}) {
	n.events = append(n.events, broadcast{messageType: messageType, data: data})
}

func uintPtr(v uint) *uint { return &v }

func newTestService() (*Service, *fakeStore, *fakeNotifier) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	return NewService(store, nil, notifier), store, notifier
}

func addRiddle(store *fakeStore, id uint, answer string, caseSensitive bool, next *uint) {
	store.riddles[id] = &models.Riddle{
		ID:                  id,
		Question:            fmt.Sprintf("riddle %d", id),
		Answer:              answer,
		AnswerCaseSensitive: caseSensitive,
		NextRiddleID:        next,
	}
}

func addFolder(store *fakeStore, id uint, name string, riddleID uint, depIDs ...uint) {
	deps := make([]models.Folder, 0, len(depIDs))
	for _, depID := range depIDs {
		deps = append(deps, models.Folder{ID: depID})
	}
	store.folders[id] = &models.Folder{
		ID:           id,
		Name:         name,
		Order:        int(id),
		RiddleID:     riddleID,
		Dependencies: deps,
	}
}

func addState(store *fakeStore, userID uint, entries ...models.UnlockedFolder) *models.GameState {
	state := &models.GameState{
		ID:              userID * 100,
		UserID:          userID,
		GameStartTime:   time.Now().Add(-time.Hour),
		UnlockedFolders: entries,
	}
	for i := range state.UnlockedFolders {
		state.UnlockedFolders[i].GameStateID = state.ID
	}
	store.states[userID] = state
	return state
}

func TestIsAccessible(t *testing.T) {
	tests := []struct {
		name    string
		deps    []uint
		entries []models.UnlockedFolder
		want    bool
	}{
		{
			name: "no dependencies",
			deps: nil,
			want: true,
		},
		{
			name: "dependency not started",
			deps: []uint{1},
			want: false,
		},
		{
			name: "dependency in progress",
			deps: []uint{1},
			entries: []models.UnlockedFolder{
				{FolderID: 1, CurrentRiddleAttemptID: uintPtr(5)},
			},
			want: false,
		},
		{
			name: "dependency fully solved",
			deps: []uint{1},
			entries: []models.UnlockedFolder{
				{FolderID: 1},
			},
			want: true,
		},
		{
			name: "one of two dependencies unsolved",
			deps: []uint{1, 2},
			entries: []models.UnlockedFolder{
				{FolderID: 1},
				{FolderID: 2, CurrentRiddleAttemptID: uintPtr(6)},
			},
			want: false,
		},
		{
			name: "all dependencies solved",
			deps: []uint{1, 2},
			entries: []models.UnlockedFolder{
				{FolderID: 1},
				{FolderID: 2},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := make([]models.Folder, 0, len(tt.deps))
			for _, id := range tt.deps {
				deps = append(deps, models.Folder{ID: id})
			}
			folder := &models.Folder{ID: 10, Dependencies: deps}
			state := &models.GameState{UnlockedFolders: tt.entries}

			if got := isAccessible(folder, state); got != tt.want {
				t.Errorf("isAccessible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubmitAnswerMatching(t *testing.T) {
	tests := []struct {
		name          string
		answer        string
		caseSensitive bool
		submitted     string
		wantStatus    SubmitStatus
	}{
		{
			name:       "exact match",
			answer:     "Key",
			submitted:  "Key",
			wantStatus: StatusUnlocked,
		},
		{
			name:       "case insensitive match",
			answer:     "Key",
			submitted:  "key",
			wantStatus: StatusUnlocked,
		},
		{
			name:       "trailing whitespace trimmed",
			answer:     "Key",
			submitted:  "Key ",
			wantStatus: StatusUnlocked,
		},
		{
			name:       "wrong answer",
			answer:     "Key",
			submitted:  "lock",
			wantStatus: StatusIncorrect,
		},
		{
			name:          "case sensitive mismatch",
			answer:        "Key",
			caseSensitive: true,
			submitted:     "key",
			wantStatus:    StatusIncorrect,
		},
		{
			name:          "case sensitive match",
			answer:        "Key",
			caseSensitive: true,
			submitted:     "Key",
			wantStatus:    StatusUnlocked,
		},
		{
			name:       "no fuzzy matching",
			answer:     "Key",
			submitted:  "keys",
			wantStatus: StatusIncorrect,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newTestService()
			addRiddle(store, 1, tt.answer, tt.caseSensitive, nil)
			addFolder(store, 1, "Attic", 1)
			addState(store, 7)

			result, err := svc.SubmitAnswer(7, 1, tt.submitted)
			if err != nil {
				t.Fatalf("SubmitAnswer() error = %v", err)
			}
			if result.Status != tt.wantStatus {
				t.Errorf("SubmitAnswer() status = %q, want %q", result.Status, tt.wantStatus)
			}
		})
	}
}

func TestSubmitAnswerWrongAnswerLeavesStateUntouched(t *testing.T) {
	svc, store, notifier := newTestService()
	addRiddle(store, 1, "Key", false, nil)
	addFolder(store, 1, "Attic", 1)
	addState(store, 7)

	result, err := svc.SubmitAnswer(7, 1, "lock")
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if result.Status != StatusIncorrect {
		t.Fatalf("status = %q, want %q", result.Status, StatusIncorrect)
	}

	state := store.states[7]
	if len(state.UnlockedFolders) != 0 {
		t.Errorf("expected no entries after wrong answer, got %d", len(state.UnlockedFolders))
	}
	if state.LastFolderUnlockedAt != nil {
		t.Errorf("LastFolderUnlockedAt mutated by wrong answer")
	}
	if len(notifier.events) != 0 {
		t.Errorf("expected no broadcasts after wrong answer, got %d", len(notifier.events))
	}
}

func TestSubmitAnswerUnlocksFolder(t *testing.T) {
	svc, store, notifier := newTestService()
	addRiddle(store, 1, "Key", false, nil)
	addFolder(store, 1, "Attic", 1)
	addState(store, 7)

	before := time.Now()
	result, err := svc.SubmitAnswer(7, 1, "key")
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if result.Status != StatusUnlocked {
		t.Fatalf("status = %q, want %q", result.Status, StatusUnlocked)
	}
	if result.UnlockedCount != 1 {
		t.Errorf("UnlockedCount = %d, want 1", result.UnlockedCount)
	}

	state := store.states[7]
	entry := state.Entry(1)
	if entry == nil {
		t.Fatalf("no entry created for folder 1")
	}
	if !entry.Completed() {
		t.Errorf("entry not marked completed")
	}
	if entry.UnlockedAt.Before(before) {
		t.Errorf("UnlockedAt not stamped: %v", entry.UnlockedAt)
	}
	if state.LastFolderUnlockedAt == nil {
		t.Fatalf("LastFolderUnlockedAt not stamped")
	}

	if len(notifier.events) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(notifier.events))
	}
	if notifier.events[0].messageType != "leaderboardUpdate" {
		t.Errorf("broadcast type = %q, want leaderboardUpdate", notifier.events[0].messageType)
	}
	payload, ok := notifier.events[0].data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected broadcast payload type %T", notifier.events[0].data)
	}
	if payload["unlockedFoldersCount"] != 1 {
		t.Errorf("unlockedFoldersCount = %v, want 1", payload["unlockedFoldersCount"])
	}
	if payload["userId"] != uint(7) {
		t.Errorf("userId = %v, want 7", payload["userId"])
	}
}

func TestSubmitAnswerAdvancesChain(t *testing.T) {
	svc, store, notifier := newTestService()
	addRiddle(store, 1, "first", false, uintPtr(2))
	addRiddle(store, 2, "second", false, nil)
	addFolder(store, 1, "Cellar", 1)
	addState(store, 7)

	result, err := svc.SubmitAnswer(7, 1, "first")
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if result.Status != StatusAdvanced {
		t.Fatalf("status = %q, want %q", result.Status, StatusAdvanced)
	}
	if result.NextRiddle == nil || result.NextRiddle.ID != 2 {
		t.Fatalf("NextRiddle = %+v, want riddle 2", result.NextRiddle)
	}
	if result.NextRiddle.Answer != "" {
		t.Errorf("next riddle answer leaked: %q", result.NextRiddle.Answer)
	}

	state := store.states[7]
	entry := state.Entry(1)
	if entry == nil {
		t.Fatalf("no entry created for folder 1")
	}
	if entry.CurrentRiddleAttemptID == nil || *entry.CurrentRiddleAttemptID != 2 {
		t.Errorf("CurrentRiddleAttemptID = %v, want 2", entry.CurrentRiddleAttemptID)
	}
	if state.LastFolderUnlockedAt != nil {
		t.Errorf("LastFolderUnlockedAt stamped on mid-chain advance")
	}
	if len(notifier.events) != 0 {
		t.Errorf("broadcast fired on mid-chain advance")
	}

	// Finishing the chain unlocks the folder.
	result, err = svc.SubmitAnswer(7, 1, "second")
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if result.Status != StatusUnlocked {
		t.Fatalf("status = %q, want %q", result.Status, StatusUnlocked)
	}
	if entry := store.states[7].Entry(1); !entry.Completed() {
		t.Errorf("entry not completed after final riddle")
	}
}

func TestSubmitAnswerAdvanceKeepsUnlockedAt(t *testing.T) {
	svc, store, _ := newTestService()
	addRiddle(store, 1, "first", false, uintPtr(2))
	addRiddle(store, 2, "second", false, nil)
	addFolder(store, 1, "Cellar", 1)

	started := time.Now().Add(-30 * time.Minute)
	addState(store, 7, models.UnlockedFolder{
		FolderID:               1,
		UnlockedAt:             started,
		CurrentRiddleAttemptID: uintPtr(1),
	})

	result, err := svc.SubmitAnswer(7, 1, "first")
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if result.Status != StatusAdvanced {
		t.Fatalf("status = %q, want %q", result.Status, StatusAdvanced)
	}

	entry := store.states[7].Entry(1)
	if !entry.UnlockedAt.Equal(started) {
		t.Errorf("UnlockedAt changed on advance: %v, want %v", entry.UnlockedAt, started)
	}
}

func TestSubmitAnswerAlreadyUnlocked(t *testing.T) {
	svc, store, notifier := newTestService()
	addRiddle(store, 1, "Key", false, nil)
	addFolder(store, 1, "Attic", 1)

	unlockedAt := time.Now().Add(-10 * time.Minute)
	state := addState(store, 7, models.UnlockedFolder{
		FolderID:   1,
		UnlockedAt: unlockedAt,
	})
	state.LastFolderUnlockedAt = &unlockedAt

	result, err := svc.SubmitAnswer(7, 1, "Key")
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if result.Status != StatusAlreadyUnlocked {
		t.Fatalf("status = %q, want %q", result.Status, StatusAlreadyUnlocked)
	}

	if !store.states[7].LastFolderUnlockedAt.Equal(unlockedAt) {
		t.Errorf("LastFolderUnlockedAt shifted by duplicate submission")
	}
	if len(store.states[7].UnlockedFolders) != 1 {
		t.Errorf("duplicate submission appended an entry")
	}
	if len(notifier.events) != 0 {
		t.Errorf("duplicate submission re-fired the unlock broadcast")
	}
}

func TestSubmitAnswerLockedFolder(t *testing.T) {
	svc, store, _ := newTestService()
	addRiddle(store, 1, "one", false, nil)
	addRiddle(store, 2, "two", false, nil)
	addFolder(store, 1, "Attic", 1)
	addFolder(store, 2, "Basement", 2, 1)

	// Dependency only in progress, not solved.
	addState(store, 7, models.UnlockedFolder{
		FolderID:               1,
		UnlockedAt:             time.Now(),
		CurrentRiddleAttemptID: uintPtr(1),
	})

	_, err := svc.SubmitAnswer(7, 2, "two")
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("SubmitAnswer() error = %v, want ErrLocked", err)
	}

	// Solving the dependency opens the gate.
	if _, err := svc.SubmitAnswer(7, 1, "one"); err != nil {
		t.Fatalf("SubmitAnswer() dependency error = %v", err)
	}
	result, err := svc.SubmitAnswer(7, 2, "two")
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if result.Status != StatusUnlocked {
		t.Errorf("status = %q, want %q", result.Status, StatusUnlocked)
	}
	if result.UnlockedCount != 2 {
		t.Errorf("UnlockedCount = %d, want 2", result.UnlockedCount)
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	svc, store, _ := newTestService()
	addRiddle(store, 1, "Key", false, nil)
	addFolder(store, 1, "Attic", 1)
	addState(store, 7)

	for _, answer := range []string{"", "   ", "\t\n"} {
		if _, err := svc.SubmitAnswer(7, 1, answer); !errors.Is(err, ErrValidation) {
			t.Errorf("SubmitAnswer(%q) error = %v, want ErrValidation", answer, err)
		}
	}
}

func TestSubmitAnswerErrors(t *testing.T) {
	svc, store, _ := newTestService()
	addRiddle(store, 1, "Key", false, nil)
	addFolder(store, 1, "Attic", 1)
	addState(store, 7)

	t.Run("unknown folder", func(t *testing.T) {
		if _, err := svc.SubmitAnswer(7, 99, "Key"); !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("missing game state", func(t *testing.T) {
		if _, err := svc.SubmitAnswer(8, 1, "Key"); !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("missing entry riddle", func(t *testing.T) {
		addFolder(store, 2, "Broken", 99)
		if _, err := svc.SubmitAnswer(7, 2, "Key"); !errors.Is(err, ErrConfiguration) {
			t.Errorf("error = %v, want ErrConfiguration", err)
		}
	})

	t.Run("dangling next riddle", func(t *testing.T) {
		addRiddle(store, 3, "go", false, uintPtr(99))
		addFolder(store, 3, "Dangling", 3)
		if _, err := svc.SubmitAnswer(7, 3, "go"); !errors.Is(err, ErrConfiguration) {
			t.Errorf("error = %v, want ErrConfiguration", err)
		}
	})

	t.Run("dangling current attempt", func(t *testing.T) {
		addRiddle(store, 4, "x", false, nil)
		addFolder(store, 4, "Stale", 4)
		state := store.states[7]
		state.UnlockedFolders = append(state.UnlockedFolders, models.UnlockedFolder{
			GameStateID:            state.ID,
			FolderID:               4,
			UnlockedAt:             time.Now(),
			CurrentRiddleAttemptID: uintPtr(98),
		})
		if _, err := svc.SubmitAnswer(7, 4, "x"); !errors.Is(err, ErrConfiguration) {
			t.Errorf("error = %v, want ErrConfiguration", err)
		}
	})
}

func TestSubmitAnswerCountsOnlyCompletedFolders(t *testing.T) {
	svc, store, notifier := newTestService()
	addRiddle(store, 1, "one", false, nil)
	addRiddle(store, 2, "two", false, nil)
	addRiddle(store, 3, "three", false, nil)
	addFolder(store, 1, "A", 1)
	addFolder(store, 2, "B", 2)
	addFolder(store, 3, "C", 3)

	// Folder 1 solved, folder 2 only in progress.
	done := time.Now().Add(-time.Hour)
	addState(store, 7,
		models.UnlockedFolder{FolderID: 1, UnlockedAt: done},
		models.UnlockedFolder{FolderID: 2, UnlockedAt: done, CurrentRiddleAttemptID: uintPtr(2)},
	)

	result, err := svc.SubmitAnswer(7, 3, "three")
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if result.UnlockedCount != 2 {
		t.Errorf("UnlockedCount = %d, want 2 (in-progress folders must not count)", result.UnlockedCount)
	}
	payload := notifier.events[0].data.(map[string]interface{})
	if payload["unlockedFoldersCount"] != 2 {
		t.Errorf("broadcast count = %v, want 2", payload["unlockedFoldersCount"])
	}
}

func TestGetFolderDetails(t *testing.T) {
	svc, store, _ := newTestService()
	addRiddle(store, 1, "one", false, nil)
	addRiddle(store, 2, "two", false, nil)
	addFolder(store, 1, "Attic", 1)
	addFolder(store, 2, "Basement", 2, 1)
	addState(store, 7)

	t.Run("unstarted folder serves entry riddle", func(t *testing.T) {
		details, err := svc.GetFolderDetails(7, 1)
		if err != nil {
			t.Fatalf("GetFolderDetails() error = %v", err)
		}
		if details.IsUnlocked {
			t.Errorf("IsUnlocked = true for unstarted folder")
		}
		if details.Riddle == nil || details.Riddle.ID != 1 {
			t.Fatalf("Riddle = %+v, want riddle 1", details.Riddle)
		}
		if details.Riddle.Answer != "" {
			t.Errorf("riddle answer leaked: %q", details.Riddle.Answer)
		}
	})

	t.Run("locked folder", func(t *testing.T) {
		if _, err := svc.GetFolderDetails(7, 2); !errors.Is(err, ErrLocked) {
			t.Errorf("error = %v, want ErrLocked", err)
		}
	})

	t.Run("unknown folder", func(t *testing.T) {
		if _, err := svc.GetFolderDetails(7, 99); !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("completed folder has no riddle", func(t *testing.T) {
		if _, err := svc.SubmitAnswer(7, 1, "one"); err != nil {
			t.Fatalf("SubmitAnswer() error = %v", err)
		}
		details, err := svc.GetFolderDetails(7, 1)
		if err != nil {
			t.Fatalf("GetFolderDetails() error = %v", err)
		}
		if !details.IsUnlocked {
			t.Errorf("IsUnlocked = false for completed folder")
		}
		if details.Riddle != nil {
			t.Errorf("Riddle = %+v, want nil for completed folder", details.Riddle)
		}
	})

	t.Run("mid-chain folder serves current attempt", func(t *testing.T) {
		addRiddle(store, 3, "a", false, uintPtr(4))
		addRiddle(store, 4, "b", false, nil)
		addFolder(store, 3, "Chained", 3)
		if _, err := svc.SubmitAnswer(7, 3, "a"); err != nil {
			t.Fatalf("SubmitAnswer() error = %v", err)
		}
		details, err := svc.GetFolderDetails(7, 3)
		if err != nil {
			t.Fatalf("GetFolderDetails() error = %v", err)
		}
		if details.IsUnlocked {
			t.Errorf("IsUnlocked = true for mid-chain folder")
		}
		if details.Riddle == nil || details.Riddle.ID != 4 {
			t.Errorf("Riddle = %+v, want riddle 4", details.Riddle)
		}
	})
}

func TestConcurrentFinalSubmissionsUnlockOnce(t *testing.T) {
	svc, store, notifier := newTestService()
	addRiddle(store, 1, "Key", false, nil)
	addFolder(store, 1, "Attic", 1)
	addState(store, 7)

	const workers = 8
	results := make(chan SubmitStatus, workers)
	for i := 0; i < workers; i++ {
		go func() {
			result, err := svc.SubmitAnswer(7, 1, "Key")
			if err != nil {
				t.Errorf("SubmitAnswer() error = %v", err)
				results <- ""
				return
			}
			results <- result.Status
		}()
	}

	unlocked := 0
	for i := 0; i < workers; i++ {
		if status := <-results; status == StatusUnlocked {
			unlocked++
		}
	}

	if unlocked != 1 {
		t.Errorf("unlock fired %d times, want exactly 1", unlocked)
	}
	if len(store.states[7].UnlockedFolders) != 1 {
		t.Errorf("duplicate entries appended: %d", len(store.states[7].UnlockedFolders))
	}
	if len(notifier.events) != 1 {
		t.Errorf("broadcast fired %d times, want exactly 1", len(notifier.events))
	}
}
