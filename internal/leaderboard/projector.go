package leaderboard

import (
	"log"
	"sort"
	"time"

	"riddle-game/internal/models"
)

// Entry is one row of the ranked leaderboard.
type Entry struct {
	UserID             uint       `json:"userId"`
	Username           string     `json:"username"`
	RollNumber         string     `json:"rollNumber"`
	UnlockedCount      int        `json:"unlockedCount"`
	Score              int        `json:"score"`
	LastCompletionTime *time.Time `json:"lastCompletionTime"`
	LastActivity       *time.Time `json:"lastActivity"`
}

// Project derives the ranked leaderboard from persisted game states. The
// score is the number of fully solved folders; in-progress entries do not
// count. Game states whose user cannot be resolved are logged and skipped.
func Project(states []models.GameState) []Entry {
	entries := make([]Entry, 0, len(states))

	for _, gs := range states {
		if gs.User == nil {
			log.Printf("Game state %d has no associated user, skipping", gs.ID)
			continue
		}

		count := gs.CompletedCount()
		entries = append(entries, Entry{
			UserID:             gs.UserID,
			Username:           gs.User.Username,
			RollNumber:         gs.User.RollNumber,
			UnlockedCount:      count,
			Score:              count,
			LastCompletionTime: gs.LastFolderUnlockedAt,
			LastActivity:       gs.User.LastActivity,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return rankBefore(entries[i], entries[j])
	})

	return entries
}

// rankBefore orders by score descending, then earliest completion time, then
// earliest last activity. Missing timestamps sort after present ones.
func rankBefore(a, b Entry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if c := compareTimes(a.LastCompletionTime, b.LastCompletionTime); c != 0 {
		return c < 0
	}
	if c := compareTimes(a.LastActivity, b.LastActivity); c != 0 {
		return c < 0
	}
	return false
}

func compareTimes(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.Before(*b):
		return -1
	case b.Before(*a):
		return 1
	}
	return 0
}
