package game

import "errors"

// Error taxonomy for the progression engine. Handlers map these to distinct
// client-visible outcomes; none of them should crash the process.
var (
	// ErrNotFound covers missing folders, riddles, game states and users.
	ErrNotFound = errors.New("not found")

	// ErrLocked means the folder's dependency gate failed: one or more
	// prerequisite folders are not fully solved yet.
	ErrLocked = errors.New("folder is locked")

	// ErrConfiguration is an authoring bug in the game content, such as a
	// folder without an entry riddle or a dangling next-riddle reference.
	// Surfaced distinctly from ErrNotFound so operators can tell content
	// bugs from client errors.
	ErrConfiguration = errors.New("game content misconfigured")

	// ErrValidation means the submission itself was malformed.
	ErrValidation = errors.New("invalid submission")
)
